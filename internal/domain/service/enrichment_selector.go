package service

import (
	"math"
	"sort"

	"CamperMap-App/internal/domain/model"
)

// SelectEnrichmentCandidates は写真エンリッチメントの対象POIを選定する
//
// 限られた詳細取得の予算を、表示・クリックされやすい高評価スポットに優先的に使う
// 品質バイアス付きサンプリング。種別ごとに評価値・レビュー数の降順で並べ、
// 各種別の上位 ceil(fraction * 件数)（非空なら最低1件）を取り、連結後にmaxTotalで切り詰める
func SelectEnrichmentCandidates(pois []model.POI, fraction float64, maxTotal int) []model.POI {
	byType := make(map[model.POIType][]model.POI)
	for _, poi := range pois {
		if !poi.IsEnrichable() {
			continue
		}
		byType[poi.Type] = append(byType[poi.Type], poi)
	}

	var selected []model.POI
	// 種別の順序を固定して結果を決定的にする
	for _, poiType := range []model.POIType{model.POITypeCampsite, model.POITypeRestStop} {
		partition := byType[poiType]
		if len(partition) == 0 {
			continue
		}

		sort.SliceStable(partition, func(i, j int) bool {
			if partition[i].RatingValue() != partition[j].RatingValue() {
				return partition[i].RatingValue() > partition[j].RatingValue()
			}
			return partition[i].ReviewCountValue() > partition[j].ReviewCountValue()
		})

		take := int(math.Ceil(fraction * float64(len(partition))))
		if take < 1 {
			take = 1
		}
		if take > len(partition) {
			take = len(partition)
		}
		selected = append(selected, partition[:take]...)
	}

	if len(selected) > maxTotal {
		selected = selected[:maxTotal]
	}
	return selected
}
