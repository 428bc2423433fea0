package model

import (
	"encoding/json"
	"time"
)

// LatLng 緯度経度を表す基本的な型（グリッド走査や検索で使用）
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// POIType 正規化後のスポット種別（この3種類以外は保存しない）
type POIType string

const (
	POITypeCampsite  POIType = "campsite"
	POITypeEVCharger POIType = "ev_charger"
	POITypeRestStop  POIType = "rest_stop"
)

// ExternalSource データ提供元の識別子
type ExternalSource string

const (
	SourceGoogle        ExternalSource = "google"
	SourceOpenChargeMap ExternalSource = "open_charge_map"
)

// POI 全プロバイダーを正規化した統一スポットモデル（poisテーブルに対応）
type POI struct {
	Name           string          `json:"name" db:"name"`                                 // スポット名
	Type           POIType         `json:"type" db:"type"`                                 // 種別（campsite / ev_charger / rest_stop）
	Lat            float64         `json:"lat" db:"lat"`                                   // 緯度
	Lng            float64         `json:"lng" db:"lng"`                                   // 経度
	Description    string          `json:"description" db:"description"`                   // 説明文
	Address        string          `json:"address" db:"address"`                           // 住所
	Price          *string         `json:"price,omitempty" db:"price"`                     // 料金（NULLABLE）
	Facilities     []string        `json:"facilities" db:"facilities"`                     // 設備一覧（最大6件）
	Images         []string        `json:"images" db:"images"`                             // プロキシ経由の画像参照（生URLは保存しない）
	Website        *string         `json:"website,omitempty" db:"website"`                 // 公式サイト（NULLABLE）
	Phone          *string         `json:"phone,omitempty" db:"phone"`                     // 電話番号（NULLABLE）
	GooglePlaceID  *string         `json:"google_place_id,omitempty" db:"google_place_id"` // Google Place ID（google由来のみ）
	ExternalID     string          `json:"external_id" db:"external_id"`                   // プロバイダー固有ID
	ExternalSource ExternalSource  `json:"external_source" db:"external_source"`           // 提供元
	Rating         *float64        `json:"rating,omitempty" db:"rating"`                   // 評価値（google由来のみ）
	ReviewCount    *int            `json:"review_count,omitempty" db:"review_count"`       // レビュー数（google由来のみ）
	PriceLevel     *int            `json:"price_level,omitempty" db:"price_level"`         // 価格帯
	OpeningHours   json.RawMessage `json:"opening_hours,omitempty" db:"opening_hours"`     // 営業時間（プロバイダー固有の形をそのまま保持）
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`                     // 作成日時
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`                     // 更新日時
}

// ExternalKey マージ・アップサートに使う唯一の自然キー (external_source, external_id)
func (p *POI) ExternalKey() string {
	return string(p.ExternalSource) + ":" + p.ExternalID
}

// ToLatLng POIの位置情報をLatLng型に変換
func (p *POI) ToLatLng() LatLng {
	return LatLng{Lat: p.Lat, Lng: p.Lng}
}

// IsEnrichable 写真エンリッチメントの対象となりうるかどうか
// （ev_chargerはGoogle詳細IDを持たないため常に対象外）
func (p *POI) IsEnrichable() bool {
	if p.Type != POITypeCampsite && p.Type != POITypeRestStop {
		return false
	}
	return p.GooglePlaceID != nil && *p.GooglePlaceID != ""
}

// RatingValue 評価値を取得（未設定の場合は0）
func (p *POI) RatingValue() float64 {
	if p.Rating != nil {
		return *p.Rating
	}
	return 0
}

// ReviewCountValue レビュー数を取得（未設定の場合は0）
func (p *POI) ReviewCountValue() int {
	if p.ReviewCount != nil {
		return *p.ReviewCount
	}
	return 0
}
