package repository

import (
	"context"

	"CamperMap-App/internal/domain/model"
)

// POIsRepository POIの永続化層インターフェース
// 書き込みは (external_source, external_id) をキーとした冪等なアップサートのみ
type POIsRepository interface {
	// UpsertBatch はバッチ全体を1トランザクションでアップサートする
	// 部分的な失敗はバッチ全体の失敗として返す（途中まで書いて成功を装わない）
	UpsertBatch(ctx context.Context, pois []model.POI) error

	// GetByExternalKey は自然キーでPOIを1件取得する
	GetByExternalKey(ctx context.Context, source model.ExternalSource, externalID string) (*model.POI, error)

	// ListEnrichable はエンリッチ対象となりうるPOI（campsite / rest_stop かつ
	// google_place_idを持つもの）を全件取得する
	ListEnrichable(ctx context.Context) ([]model.POI, error)

	// UpdateImages はエンリッチメント結果の画像一覧とupdated_atのみを書き戻す
	UpdateImages(ctx context.Context, source model.ExternalSource, externalID string, images []string) error
}
