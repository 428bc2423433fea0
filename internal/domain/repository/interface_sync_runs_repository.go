package repository

import (
	"context"

	"CamperMap-App/internal/domain/model"
)

// SyncRunsRepository 同期実行履歴の保存先インターフェース
// 運用者向けのログであり、保存失敗が同期実行自体を失敗させてはならない
type SyncRunsRepository interface {
	// SaveRunSummary は1回の同期実行のサマリーを保存する
	SaveRunSummary(ctx context.Context, summary *model.SyncSummary) error
}
