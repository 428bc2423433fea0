package repository

import (
	"testing"

	"CamperMap-App/internal/domain/model"
)

// TestParseBound 正常な文字列からバウンディングボックスが構築されることを確認する
func TestParseBound(t *testing.T) {
	bound, err := ParseBound("-8.2,49.9,1.8,58.7")
	if err != nil {
		t.Fatalf("解析でエラーが発生: %v", err)
	}

	if bound.Min.Lon() != -8.2 || bound.Min.Lat() != 49.9 {
		t.Errorf("Minが一致しません: %v", bound.Min)
	}
	if bound.Max.Lon() != 1.8 || bound.Max.Lat() != 58.7 {
		t.Errorf("Maxが一致しません: %v", bound.Max)
	}
}

// TestParseBound_AllowsWhitespace 空白を含む入力を許容することを確認する
func TestParseBound_AllowsWhitespace(t *testing.T) {
	bound, err := ParseBound(" -8.2, 49.9, 1.8, 58.7 ")
	if err != nil {
		t.Fatalf("空白を含む入力の解析でエラーが発生: %v", err)
	}
	if bound.Min.Lat() != 49.9 {
		t.Errorf("Minの緯度が一致しません: %f", bound.Min.Lat())
	}
}

// TestParseBound_Invalid 不正な入力が拒否されることを確認する
func TestParseBound_Invalid(t *testing.T) {
	cases := []string{
		"",
		"1,2,3",          // 座標が足りない
		"1,2,3,4,5",      // 座標が多い
		"a,b,c,d",        // 数値でない
		"1.8,49.9,-8.2,58.7", // 経度のmin/maxが逆転
		"-8.2,58.7,1.8,49.9", // 緯度のmin/maxが逆転
	}

	for _, input := range cases {
		if _, err := ParseBound(input); err == nil {
			t.Errorf("不正な入力 %q が受理されました", input)
		}
	}
}

// TestContainsPOI バウンディングボックスによる内外判定を確認する
func TestContainsPOI(t *testing.T) {
	bound, err := ParseBound("-8.2,49.9,1.8,58.7")
	if err != nil {
		t.Fatalf("解析でエラーが発生: %v", err)
	}

	inside := &model.POI{Lat: 51.5, Lng: -0.1}
	outside := &model.POI{Lat: 48.85, Lng: 2.35}

	if !ContainsPOI(bound, inside) {
		t.Error("領域内のPOIが外と判定されました")
	}
	if ContainsPOI(bound, outside) {
		t.Error("領域外のPOIが中と判定されました")
	}
}

// TestLatLngPointRoundTrip LatLngとorb.Pointの相互変換で軸が入れ替わらないことを確認する
func TestLatLngPointRoundTrip(t *testing.T) {
	original := model.LatLng{Lat: 51.5, Lng: -0.1}

	point := LatLngToPoint(original)
	if point.Lon() != -0.1 || point.Lat() != 51.5 {
		t.Errorf("orb.Pointへの変換で軸が入れ替わりました: %v", point)
	}

	back := PointToLatLng(point)
	if back != original {
		t.Errorf("往復変換で値が変わりました: %+v != %+v", back, original)
	}
}
