package repository

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"

	"CamperMap-App/internal/domain/model"
	"CamperMap-App/internal/domain/repository"
)

// syncRunRetentionDays 実行履歴ドキュメントの保持日数（FirestoreのTTLポリシーで削除）
const syncRunRetentionDays = 30

// FirestoreSyncRunRepository Firestoreを使用した同期実行履歴リポジトリ
// 運用者が直近の実行結果（消費リクエスト数・上限到達の有無）を確認するためのログで、
// 同期パイプライン自体はこの履歴を読み戻さない
type FirestoreSyncRunRepository struct {
	client *firestore.Client
}

// NewFirestoreSyncRunRepository 新しいFirestoreSyncRunRepositoryインスタンスを作成
func NewFirestoreSyncRunRepository(client *firestore.Client) repository.SyncRunsRepository {
	return &FirestoreSyncRunRepository{
		client: client,
	}
}

// SaveRunSummary は1回の同期実行のサマリーをFirestoreに保存する
func (r *FirestoreSyncRunRepository) SaveRunSummary(ctx context.Context, summary *model.SyncSummary) error {
	doc := map[string]interface{}{
		"category":      string(summary.Category),
		"upserted":      summary.Upserted,
		"enriched":      summary.Enriched,
		"requests_used": summary.RequestsUsed,
		"cap_reached":   summary.CapReached,
		"started_at":    summary.StartedAt,
		"finished_at":   summary.FinishedAt,
		"expire_at":     summary.FinishedAt.Add(syncRunRetentionDays * 24 * time.Hour),
	}

	_, err := r.client.Collection("syncRuns").Doc(summary.RunID).Set(ctx, doc)
	if err != nil {
		return fmt.Errorf("同期実行履歴の保存に失敗しました: %w", err)
	}

	log.Printf("✅ Sync run saved: %s (category: %s)", summary.RunID, summary.Category)
	return nil
}
