package service

import (
	"math"

	"github.com/paulmach/orb"

	"CamperMap-App/internal/domain/model"
)

// metersPerDegreeLat 緯度1度あたりのメートル数（平面近似）
const metersPerDegreeLat = 111320.0

// PartitionRegion は対象地域をプロバイダー検索半径に収まるグリッドセルに分割する
//
// 対象地域の中心緯度での平面近似（経度方向はcosでスケール）を使う意図的に粗い計算で、
// 国土スケールでは端の取りこぼしを許容する代わりにセル数の上限を保証する。
// 同じ入力に対して常に同じセル数・同じ中心座標を返す（乱数は使わない）
func PartitionRegion(bounds orb.Bound, stepMeters float64, maxCells int) []model.GridCell {
	minLng, minLat := bounds.Min.Lon(), bounds.Min.Lat()
	maxLng, maxLat := bounds.Max.Lon(), bounds.Max.Lat()

	centerLat := (minLat + maxLat) / 2
	metersPerDegreeLng := metersPerDegreeLat * math.Cos(centerLat*math.Pi/180)

	latSpanMeters := (maxLat - minLat) * metersPerDegreeLat
	lngSpanMeters := (maxLng - minLng) * metersPerDegreeLng

	rows := int(math.Ceil(latSpanMeters / stepMeters))
	cols := int(math.Ceil(lngSpanMeters / stepMeters))
	if rows < 1 {
		rows = 1
	}
	if cols < 1 {
		cols = 1
	}

	// セル数が上限を超える場合は両方向を同率で縮小する
	// floor(rows*s) * floor(cols*s) <= rows*cols*s^2 = maxCells が常に成り立つ
	if rows*cols > maxCells {
		scale := math.Sqrt(float64(maxCells) / float64(rows*cols))
		rows = int(float64(rows) * scale)
		cols = int(float64(cols) * scale)
		if rows < 1 {
			rows = 1
		}
		if cols < 1 {
			cols = 1
		}
		// 細長い地域では片方向が1にクランプされてfloorの前提が崩れるため、
		// もう片方向を再度上限内に収める
		if rows*cols > maxCells {
			if rows > cols {
				rows = maxCells / cols
			} else {
				cols = maxCells / rows
			}
			if rows < 1 {
				rows = 1
			}
			if cols < 1 {
				cols = 1
			}
		}
	}

	latStep := (maxLat - minLat) / float64(rows)
	lngStep := (maxLng - minLng) / float64(cols)

	cells := make([]model.GridCell, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			cells = append(cells, model.GridCell{
				CenterLat: minLat + (float64(i)+0.5)*latStep,
				CenterLng: minLng + (float64(j)+0.5)*lngStep,
			})
		}
	}

	return cells
}
