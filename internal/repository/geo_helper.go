package repository

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/paulmach/orb"

	"CamperMap-App/internal/domain/model"
)

// LatLngToPoint model.LatLng を orb.Point に変換（orbは [lng, lat] の順）
func LatLngToPoint(latLng model.LatLng) orb.Point {
	return orb.Point{latLng.Lng, latLng.Lat}
}

// PointToLatLng orb.Point を model.LatLng に変換
func PointToLatLng(point orb.Point) model.LatLng {
	return model.LatLng{
		Lat: point.Lat(),
		Lng: point.Lon(),
	}
}

// ParseBound "min_lng,min_lat,max_lng,max_lat" 形式の文字列からバウンディングボックスを構築する
// 環境変数REGION_BOUNDSでの対象地域の上書きに使用する
func ParseBound(s string) (orb.Bound, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return orb.Bound{}, fmt.Errorf("バウンディングボックスは4つの座標が必要です (min_lng,min_lat,max_lng,max_lat): %s", s)
	}

	values := make([]float64, 4)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return orb.Bound{}, fmt.Errorf("座標値の解析に失敗 (%s): %w", part, err)
		}
		values[i] = v
	}

	bound := orb.Bound{
		Min: orb.Point{values[0], values[1]},
		Max: orb.Point{values[2], values[3]},
	}
	if bound.Min.Lon() >= bound.Max.Lon() || bound.Min.Lat() >= bound.Max.Lat() {
		return orb.Bound{}, fmt.Errorf("バウンディングボックスのmin/maxが逆転しています: %s", s)
	}

	return bound, nil
}

// ContainsPOI POIが指定のバウンディングボックス内にあるかどうか
func ContainsPOI(bound orb.Bound, poi *model.POI) bool {
	return bound.Contains(orb.Point{poi.Lng, poi.Lat})
}
