package service

import (
	"CamperMap-App/internal/domain/model"
)

// DeduplicateByExternalKey は (external_source, external_id) が重複するPOIを1件に集約する
//
// グリッドセルは重なりを許容しているため、同一スポットが複数セル・複数ページに
// またがって出現するのは想定内の挙動。同一キーは後に処理された方を残す（last wins）
// 出力順は保証しない
func DeduplicateByExternalKey(pois []model.POI) []model.POI {
	byKey := make(map[string]model.POI, len(pois))
	for _, poi := range pois {
		byKey[poi.ExternalKey()] = poi
	}

	result := make([]model.POI, 0, len(byKey))
	for _, poi := range byKey {
		result = append(result, poi)
	}
	return result
}
