package model

import (
	"time"

	"github.com/paulmach/orb"
)

// CategoryTermConstants Google Places検索に使うカテゴリ検索語
const (
	TermCampground = "campground"
	TermRestStop   = "rest stop"
)

// CategoryTermMap 同期カテゴリから検索語へのマッピング
var CategoryTermMap = map[SyncCategory]string{
	SyncCategoryCampsites: TermCampground,
	SyncCategoryRestStops: TermRestStop,
}

// TermTypeMap 検索語から正規化後の種別へのマッピング
// （プロバイダー固有のサブタイプは取り込み時点で閉じた3種類に変換する）
var TermTypeMap = map[string]POIType{
	TermCampground: POITypeCampsite,
	TermRestStop:   POITypeRestStop,
}

// GetTermForCategory カテゴリに対応する検索語を取得する
func GetTermForCategory(category SyncCategory) (string, bool) {
	term, ok := CategoryTermMap[category]
	return term, ok
}

// DefaultSyncConfig 英国全土を対象とするデフォルト設定を返す
// コスト上限はGoogle課金リクエスト数に直結するため、広げる際は注意
func DefaultSyncConfig() SyncConfig {
	return SyncConfig{
		// 英国本土のバウンディングボックス（orb.Boundは [lng, lat] の min/max）
		RegionBounds:           orb.Bound{Min: orb.Point{-8.2, 49.9}, Max: orb.Point{1.8, 58.7}},
		SearchRadiusMeters:     50000, // Nearby Searchの最大半径
		GridStepMeters:         70000,
		MaxGridCells:           24,
		MaxRequestsPerRun:      120,
		MaxRequestsPerCategory: 60,
		MaxPagesPerCell:        3, // Nearby Searchは最大3ページまでしか返さない
		PageTokenDelay:         2 * time.Second,
		DetailRequestDelay:     200 * time.Millisecond,
		MaxEnrichPerRun:        30,
		EnrichTopFraction:      0.10,
		MaxPhotosPerPOI:        5,
		OCMCountryCode:         "GB",
		OCMMaxResults:          10000,
	}
}
