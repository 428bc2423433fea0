package usecase

import (
	"context"
	"fmt"
	"log"

	"CamperMap-App/internal/domain/model"
	"CamperMap-App/internal/domain/repository"
	"CamperMap-App/internal/domain/service"
)

type POISyncUseCase interface {
	// RunSync は指定カテゴリの同期を1回実行し、結果サマリーを返す
	RunSync(ctx context.Context, category model.SyncCategory) (*model.SyncSummary, error)
}

// poiSyncUseCaseImpl はPOISyncUseCaseの実装
type poiSyncUseCaseImpl struct {
	orchestrator *service.SyncOrchestrator
	syncRunsRepo repository.SyncRunsRepository // nilの場合は履歴保存をスキップ
}

// NewPOISyncUseCase は新しいPOISyncUseCaseインスタンスを作成
func NewPOISyncUseCase(orchestrator *service.SyncOrchestrator, syncRunsRepo repository.SyncRunsRepository) POISyncUseCase {
	return &poiSyncUseCaseImpl{
		orchestrator: orchestrator,
		syncRunsRepo: syncRunsRepo,
	}
}

// RunSync は指定カテゴリの同期を1回実行し、結果サマリーを返す
func (u *poiSyncUseCaseImpl) RunSync(ctx context.Context, category model.SyncCategory) (*model.SyncSummary, error) {
	if !category.IsValid() {
		return nil, fmt.Errorf("不明な同期カテゴリです: %s", category)
	}

	log.Printf("🚀 同期実行開始 (カテゴリ: %s)", category)

	summary, err := u.orchestrator.Run(ctx, category)

	// 実行履歴は運用者向けのログなので、保存失敗で実行自体を失敗させない
	if summary != nil {
		u.saveRunHistory(ctx, summary)
	}

	if err != nil {
		log.Printf("❌ 同期実行失敗 (カテゴリ: %s): %v", category, err)
		return summary, err
	}

	log.Printf("🎉 同期実行完了 (カテゴリ: %s, アップサート: %d件, エンリッチ: %d件, リクエスト: %d回, 上限到達: %v)",
		category, summary.Upserted, summary.Enriched, summary.RequestsUsed, summary.CapReached)
	return summary, nil
}

// saveRunHistory は実行サマリーをベストエフォートで保存する
func (u *poiSyncUseCaseImpl) saveRunHistory(ctx context.Context, summary *model.SyncSummary) {
	if u.syncRunsRepo == nil {
		return
	}
	if err := u.syncRunsRepo.SaveRunSummary(ctx, summary); err != nil {
		log.Printf("⚠️ 同期実行履歴の保存に失敗（処理は継続）: %v", err)
	}
}
