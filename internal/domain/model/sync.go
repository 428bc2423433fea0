package model

import (
	"time"

	"github.com/paulmach/orb"
)

// SyncCategory 1回の同期実行で扱うカテゴリ
type SyncCategory string

const (
	SyncCategoryEVOnly       SyncCategory = "ev_only"
	SyncCategoryCampsites    SyncCategory = "campsites"
	SyncCategoryRestStops    SyncCategory = "rest_stops"
	SyncCategoryEnrichPhotos SyncCategory = "enrich_photos"
)

// IsValid 有効なカテゴリかどうか
func (c SyncCategory) IsValid() bool {
	switch c {
	case SyncCategoryEVOnly, SyncCategoryCampsites, SyncCategoryRestStops, SyncCategoryEnrichPhotos:
		return true
	}
	return false
}

// GridCell グリッド走査の1セル（永続化しない一時データ、実行ごとに再計算する）
type GridCell struct {
	CenterLat float64 `json:"center_lat"`
	CenterLng float64 `json:"center_lng"`
}

// ToLatLng セル中心をLatLng型に変換
func (g GridCell) ToLatLng() LatLng {
	return LatLng{Lat: g.CenterLat, Lng: g.CenterLng}
}

// SyncConfig 同期実行の設定（オーケストレーターに構築時に渡す不変の設定オブジェクト）
// グローバル変数を使わないことで、テストごとに上限値を変えられる
type SyncConfig struct {
	RegionBounds           orb.Bound     // 対象地域のバウンディングボックス
	SearchRadiusMeters     int           // Google Nearby Search の検索半径
	GridStepMeters         float64       // グリッドセルの間隔
	MaxGridCells           int           // グリッドセル数の上限
	MaxRequestsPerRun      int           // 1回の実行でのリクエスト総数上限
	MaxRequestsPerCategory int           // カテゴリごとのリクエスト数上限
	MaxPagesPerCell        int           // 1セルあたりのページ取得上限
	PageTokenDelay         time.Duration // 継続トークン使用前の待機時間（プロバイダー要件）
	DetailRequestDelay     time.Duration // 詳細取得リクエスト間の待機時間
	MaxEnrichPerRun        int           // 1回の実行でエンリッチする最大件数
	EnrichTopFraction      float64       // エンリッチ対象とする上位割合（0.10 = 上位1割）
	MaxPhotosPerPOI        int           // 1スポットあたりの写真トークン上限
	OCMCountryCode         string        // Open Charge Map の国コード
	OCMMaxResults          int           // Open Charge Map の一括取得上限
}

// SyncSummary 同期実行の結果サマリー（呼び出し元に返す）
type SyncSummary struct {
	RunID        string       `json:"run_id"`
	Category     SyncCategory `json:"type"`
	Upserted     int          `json:"upserted"`
	Enriched     int          `json:"enriched"`
	RequestsUsed int          `json:"google_requests_used"`
	CapReached   bool         `json:"cap_reached"`
	StartedAt    time.Time    `json:"started_at"`
	FinishedAt   time.Time    `json:"finished_at"`
}
