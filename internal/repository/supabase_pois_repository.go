package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"CamperMap-App/internal/domain/model"
	"CamperMap-App/internal/domain/repository"
	"CamperMap-App/internal/infrastructure/database"
)

// SupabasePOIsRepository PostgREST経由のPOIリポジトリ
// 直接DB接続のパスワードが使えない環境向けの実装。アップサートはPostgRESTの
// on_conflict指定で行うが、トランザクション境界はリクエスト単位になる点に注意
type SupabasePOIsRepository struct {
	client *database.SupabaseClient
}

// NewSupabasePOIsRepository 新しいSupabasePOIsRepositoryインスタンスを作成
func NewSupabasePOIsRepository(client *database.SupabaseClient) repository.POIsRepository {
	return &SupabasePOIsRepository{
		client: client,
	}
}

// UpsertBatch はバッチ全体を (external_source, external_id) のコンフリクト指定でアップサートする
// 画像を持たないレコードではimages列自体を送らず、既存行のエンリッチ済み画像を保持する
func (r *SupabasePOIsRepository) UpsertBatch(ctx context.Context, pois []model.POI) error {
	if len(pois) == 0 {
		return nil
	}

	withImages, withoutImages, err := buildUpsertRows(pois)
	if err != nil {
		return err
	}

	for _, batch := range [][]map[string]interface{}{withImages, withoutImages} {
		if len(batch) == 0 {
			continue
		}
		data, err := json.Marshal(batch)
		if err != nil {
			return fmt.Errorf("POI一括データのJSONマーシャル失敗: %w", err)
		}

		_, _, err = r.client.GetClient().From("pois").
			Insert(string(data), true, "external_source,external_id", "minimal", "").
			Execute()
		if err != nil {
			return fmt.Errorf("POI一括データのアップサート失敗: %w", err)
		}
	}

	return nil
}

// buildUpsertRows はPostgREST用のアップサート行を構築する
// 既存行のエンリッチ済み画像を空配列で上書きしないため、画像を持たないレコードでは
// images列を削る。PostgRESTの一括リクエストは全行のキーが一致している必要があるため、
// images列の有無で2グループに分ける。created_atは挿入時のDBデフォルトに任せ、
// 再アップサートで巻き戻さない
func buildUpsertRows(pois []model.POI) ([]map[string]interface{}, []map[string]interface{}, error) {
	var withImages, withoutImages []map[string]interface{}

	for _, poi := range pois {
		data, err := json.Marshal(poi)
		if err != nil {
			return nil, nil, fmt.Errorf("POI %s のJSONマーシャル失敗: %w", poi.ExternalKey(), err)
		}
		var row map[string]interface{}
		if err := json.Unmarshal(data, &row); err != nil {
			return nil, nil, fmt.Errorf("POI %s の行データ構築失敗: %w", poi.ExternalKey(), err)
		}

		delete(row, "created_at")
		if len(poi.Images) == 0 {
			delete(row, "images")
			withoutImages = append(withoutImages, row)
		} else {
			withImages = append(withImages, row)
		}
	}

	return withImages, withoutImages, nil
}

// GetByExternalKey は自然キーでPOIを1件取得する
func (r *SupabasePOIsRepository) GetByExternalKey(ctx context.Context, source model.ExternalSource, externalID string) (*model.POI, error) {
	var pois []model.POI
	data, count, err := r.client.GetClient().From("pois").
		Select("*", "exact", false).
		Eq("external_source", string(source)).
		Eq("external_id", externalID).
		Execute()
	if err != nil {
		return nil, fmt.Errorf("POIデータの取得失敗: %w", err)
	}
	_ = count

	if err := json.Unmarshal([]byte(data), &pois); err != nil {
		return nil, fmt.Errorf("POIデータのJSONアンマーシャル失敗: %w", err)
	}

	if len(pois) == 0 {
		return nil, fmt.Errorf("POI (%s, %s) が見つかりません", source, externalID)
	}

	return &pois[0], nil
}

// ListEnrichable はエンリッチ対象となりうるPOIを全件取得する
func (r *SupabasePOIsRepository) ListEnrichable(ctx context.Context) ([]model.POI, error) {
	var pois []model.POI
	data, count, err := r.client.GetClient().From("pois").
		Select("*", "exact", false).
		In("type", []string{string(model.POITypeCampsite), string(model.POITypeRestStop)}).
		Not("google_place_id", "is", "null").
		Execute()
	if err != nil {
		return nil, fmt.Errorf("エンリッチ対象POIデータの取得失敗: %w", err)
	}
	_ = count

	if err := json.Unmarshal([]byte(data), &pois); err != nil {
		return nil, fmt.Errorf("POIデータのJSONアンマーシャル失敗: %w", err)
	}

	return pois, nil
}

// UpdateImages はエンリッチメント結果の画像一覧とupdated_atのみを更新する
func (r *SupabasePOIsRepository) UpdateImages(ctx context.Context, source model.ExternalSource, externalID string, images []string) error {
	payload := map[string]interface{}{
		"images":     images,
		"updated_at": time.Now().Format(time.RFC3339),
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("画像更新データのJSONマーシャル失敗: %w", err)
	}

	_, _, err = r.client.GetClient().From("pois").
		Update(string(data), "", "").
		Eq("external_source", string(source)).
		Eq("external_id", externalID).
		Execute()
	if err != nil {
		return fmt.Errorf("POI (%s, %s) の画像更新失敗: %w", source, externalID, err)
	}

	return nil
}
