package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/lib/pq"

	"CamperMap-App/internal/domain/model"
	"CamperMap-App/internal/domain/repository"
	"CamperMap-App/internal/infrastructure/database"
)

// PostgresPOIsRepository PostgreSQL直接接続によるPOIリポジトリ
// バッチアップサートを1トランザクションで行うため、PostgRESTではなく直接SQLを使う
type PostgresPOIsRepository struct {
	client *database.PostgreSQLClient
}

// NewPostgresPOIsRepository 新しいPostgresPOIsRepositoryインスタンスを作成
func NewPostgresPOIsRepository(client *database.PostgreSQLClient) repository.POIsRepository {
	return &PostgresPOIsRepository{
		client: client,
	}
}

const poiColumns = `name, type, lat, lng, description, address, price, facilities, images,
	website, phone, google_place_id, external_id, external_source,
	rating, review_count, price_level, opening_hours, created_at, updated_at`

// UpsertBatch はバッチ全体を1トランザクションでアップサートする
// コンフリクトキーは (external_source, external_id)。既存行の画像は、取り込み側が
// 画像を持たない場合に限り保持する（エンリッチ済みの画像を後続のクロールで消さないため）
func (r *PostgresPOIsRepository) UpsertBatch(ctx context.Context, pois []model.POI) error {
	if len(pois) == 0 {
		return nil
	}

	tx, err := r.client.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("トランザクションの開始に失敗: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pois (`+poiColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20)
		ON CONFLICT (external_source, external_id) DO UPDATE SET
			name = EXCLUDED.name,
			type = EXCLUDED.type,
			lat = EXCLUDED.lat,
			lng = EXCLUDED.lng,
			description = EXCLUDED.description,
			address = EXCLUDED.address,
			price = EXCLUDED.price,
			facilities = EXCLUDED.facilities,
			images = CASE WHEN cardinality(EXCLUDED.images) > 0 THEN EXCLUDED.images ELSE pois.images END,
			website = EXCLUDED.website,
			phone = EXCLUDED.phone,
			google_place_id = EXCLUDED.google_place_id,
			rating = EXCLUDED.rating,
			review_count = EXCLUDED.review_count,
			price_level = EXCLUDED.price_level,
			opening_hours = EXCLUDED.opening_hours,
			updated_at = EXCLUDED.updated_at
	`)
	if err != nil {
		return fmt.Errorf("アップサート文の準備に失敗: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for _, poi := range pois {
		var openingHours interface{}
		if len(poi.OpeningHours) > 0 {
			openingHours = []byte(poi.OpeningHours)
		}

		_, err := stmt.ExecContext(ctx,
			poi.Name, string(poi.Type), poi.Lat, poi.Lng, poi.Description, poi.Address,
			poi.Price, pq.Array(poi.Facilities), pq.Array(poi.Images),
			poi.Website, poi.Phone, poi.GooglePlaceID, poi.ExternalID, string(poi.ExternalSource),
			poi.Rating, poi.ReviewCount, poi.PriceLevel, openingHours, now, now,
		)
		if err != nil {
			return fmt.Errorf("POI %s のアップサートに失敗: %w", poi.ExternalKey(), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("トランザクションのコミットに失敗: %w", err)
	}
	return nil
}

// GetByExternalKey は自然キーでPOIを1件取得する
func (r *PostgresPOIsRepository) GetByExternalKey(ctx context.Context, source model.ExternalSource, externalID string) (*model.POI, error) {
	row := r.client.DB.QueryRowContext(ctx, `
		SELECT `+poiColumns+`
		FROM pois
		WHERE external_source = $1 AND external_id = $2
	`, string(source), externalID)

	poi, err := scanPOI(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("POI (%s, %s) が見つかりません", source, externalID)
	}
	if err != nil {
		return nil, fmt.Errorf("POIデータの取得に失敗: %w", err)
	}
	return poi, nil
}

// ListEnrichable はエンリッチ対象となりうるPOIを全件取得する
func (r *PostgresPOIsRepository) ListEnrichable(ctx context.Context) ([]model.POI, error) {
	rows, err := r.client.DB.QueryContext(ctx, `
		SELECT `+poiColumns+`
		FROM pois
		WHERE type IN ('campsite', 'rest_stop')
		  AND google_place_id IS NOT NULL AND google_place_id <> ''
	`)
	if err != nil {
		return nil, fmt.Errorf("エンリッチ対象POIの取得に失敗: %w", err)
	}
	defer rows.Close()

	var pois []model.POI
	for rows.Next() {
		poi, err := scanPOI(rows)
		if err != nil {
			return nil, fmt.Errorf("POIデータのスキャンに失敗: %w", err)
		}
		pois = append(pois, *poi)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("POIデータの走査に失敗: %w", err)
	}
	return pois, nil
}

// UpdateImages はエンリッチメント結果の画像一覧とupdated_atのみを書き戻す
func (r *PostgresPOIsRepository) UpdateImages(ctx context.Context, source model.ExternalSource, externalID string, images []string) error {
	_, err := r.client.DB.ExecContext(ctx, `
		UPDATE pois
		SET images = $3, updated_at = $4
		WHERE external_source = $1 AND external_id = $2
	`, string(source), externalID, pq.Array(images), time.Now())
	if err != nil {
		return fmt.Errorf("POI (%s, %s) の画像更新に失敗: %w", source, externalID, err)
	}
	return nil
}

// rowScanner QueryRowとQuery双方のScanを受けるための小さなインターフェース
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanPOI は1行分のカラムをPOIモデルに読み込む
func scanPOI(row rowScanner) (*model.POI, error) {
	var poi model.POI
	var typeStr, sourceStr string
	var openingHours []byte

	err := row.Scan(
		&poi.Name, &typeStr, &poi.Lat, &poi.Lng, &poi.Description, &poi.Address,
		&poi.Price, pq.Array(&poi.Facilities), pq.Array(&poi.Images),
		&poi.Website, &poi.Phone, &poi.GooglePlaceID, &poi.ExternalID, &sourceStr,
		&poi.Rating, &poi.ReviewCount, &poi.PriceLevel, &openingHours,
		&poi.CreatedAt, &poi.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	poi.Type = model.POIType(typeStr)
	poi.ExternalSource = model.ExternalSource(sourceStr)
	if len(openingHours) > 0 {
		poi.OpeningHours = json.RawMessage(openingHours)
	}
	return &poi, nil
}
