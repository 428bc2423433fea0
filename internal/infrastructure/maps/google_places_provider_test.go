package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"CamperMap-App/internal/domain/model"
)

func newTestProvider() *GooglePlacesProvider {
	return NewGooglePlacesProvider("test-key", 50000, 5)
}

// TestGooglePlacesProvider_Normalize 代表的な生レコードが正しく正規化されることを確認する
func TestGooglePlacesProvider_Normalize(t *testing.T) {
	provider := newTestProvider()

	raw := GooglePlaceResult{
		PlaceID: "abc",
		Name:    "Riverside Camping",
		Geometry: &googleGeometry{
			Location: googleLocation{Lat: 51.5, Lng: -0.1},
		},
		Photos: []googlePhoto{{PhotoReference: "tok1"}},
	}

	poi := provider.Normalize(raw, model.TermCampground)
	if poi == nil {
		t.Fatal("正規化結果がnilです")
	}

	if poi.Type != model.POITypeCampsite {
		t.Errorf("種別が一致しません: %s != campsite", poi.Type)
	}
	if poi.Lat != 51.5 || poi.Lng != -0.1 {
		t.Errorf("座標が一致しません: (%f, %f)", poi.Lat, poi.Lng)
	}
	if poi.ExternalSource != model.SourceGoogle {
		t.Errorf("提供元が一致しません: %s", poi.ExternalSource)
	}
	if poi.ExternalID != "abc" {
		t.Errorf("external_idが一致しません: %s", poi.ExternalID)
	}
	if len(poi.Images) != 1 || poi.Images[0] != "/api/place-photo?photo_reference=tok1" {
		t.Errorf("画像参照がプロキシ形式になっていません: %v", poi.Images)
	}
	if poi.GooglePlaceID == nil || *poi.GooglePlaceID != "abc" {
		t.Error("google_place_idが設定されていません")
	}
}

// TestGooglePlacesProvider_NormalizeNoCoordinates 座標を解決できないレコードはnilになることを確認する
func TestGooglePlacesProvider_NormalizeNoCoordinates(t *testing.T) {
	provider := newTestProvider()

	raw := GooglePlaceResult{PlaceID: "abc", Name: "No Geometry"}

	if poi := provider.Normalize(raw, model.TermCampground); poi != nil {
		t.Errorf("座標なしのレコードが正規化されました: %+v", poi)
	}
}

// TestGooglePlacesProvider_NormalizePhotoCap 写真トークンが上限件数で切られることを確認する
func TestGooglePlacesProvider_NormalizePhotoCap(t *testing.T) {
	provider := newTestProvider()

	var photos []googlePhoto
	for i := 0; i < 8; i++ {
		photos = append(photos, googlePhoto{PhotoReference: fmt.Sprintf("tok%d", i)})
	}
	raw := GooglePlaceResult{
		PlaceID:  "abc",
		Geometry: &googleGeometry{Location: googleLocation{Lat: 51.5, Lng: -0.1}},
		Photos:   photos,
	}

	poi := provider.Normalize(raw, model.TermCampground)
	if poi == nil {
		t.Fatal("正規化結果がnilです")
	}
	if len(poi.Images) != 5 {
		t.Errorf("写真の上限が守られていません: %d != 5", len(poi.Images))
	}
}

// TestGooglePlacesProvider_FetchPage 1ページ分の取得と継続トークンの伝播を確認する
func TestGooglePlacesProvider_FetchPage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":          "OK",
			"next_page_token": "next-token",
			"results": []map[string]interface{}{
				{
					"place_id": "abc",
					"name":     "Riverside Camping",
					"geometry": map[string]interface{}{"location": map[string]float64{"lat": 51.5, "lng": -0.1}},
				},
				{
					// geometryなし → 正規化で捨てられる
					"place_id": "def",
					"name":     "Broken Record",
				},
			},
		})
	}))
	defer server.Close()

	original := nearbySearchBaseURL
	nearbySearchBaseURL = server.URL
	defer func() { nearbySearchBaseURL = original }()

	provider := newTestProvider()
	page, err := provider.FetchPage(context.Background(), model.LatLng{Lat: 51.5, Lng: -0.1}, model.TermCampground, "")
	if err != nil {
		t.Fatalf("ページ取得でエラーが発生: %v", err)
	}

	if len(page.POIs) != 1 {
		t.Errorf("正規化後の件数が一致しません: %d != 1", len(page.POIs))
	}
	if page.NextPageToken != "next-token" {
		t.Errorf("継続トークンが伝播していません: %s", page.NextPageToken)
	}
}

// TestGooglePlacesProvider_FetchPageInvalidToken 未有効化トークンは「これ以上なし」として扱われることを確認する
func TestGooglePlacesProvider_FetchPageInvalidToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "INVALID_REQUEST"})
	}))
	defer server.Close()

	original := nearbySearchBaseURL
	nearbySearchBaseURL = server.URL
	defer func() { nearbySearchBaseURL = original }()

	provider := newTestProvider()
	page, err := provider.FetchPage(context.Background(), model.LatLng{}, model.TermCampground, "stale-token")
	if err != nil {
		t.Fatalf("未有効化トークンが致命的エラーになりました: %v", err)
	}

	if len(page.POIs) != 0 || page.NextPageToken != "" {
		t.Errorf("未有効化トークンで結果が返りました: %+v", page)
	}
}

// TestGooglePlacesProvider_FetchPageZeroResults ZERO_RESULTSは空ページとして扱われることを確認する
func TestGooglePlacesProvider_FetchPageZeroResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "ZERO_RESULTS"})
	}))
	defer server.Close()

	original := nearbySearchBaseURL
	nearbySearchBaseURL = server.URL
	defer func() { nearbySearchBaseURL = original }()

	provider := newTestProvider()
	page, err := provider.FetchPage(context.Background(), model.LatLng{}, model.TermCampground, "")
	if err != nil {
		t.Fatalf("ZERO_RESULTSがエラーになりました: %v", err)
	}
	if len(page.POIs) != 0 {
		t.Errorf("空のはずのページに結果があります: %d件", len(page.POIs))
	}
}

// TestGooglePlacesProvider_FetchDetailPhotosSoftFail 非成功ステータスで空スライスが返ることを確認する
func TestGooglePlacesProvider_FetchDetailPhotosSoftFail(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{"status": "NOT_FOUND"})
	}))
	defer server.Close()

	original := placeDetailsBaseURL
	placeDetailsBaseURL = server.URL
	defer func() { placeDetailsBaseURL = original }()

	provider := newTestProvider()
	images, err := provider.FetchDetailPhotos(context.Background(), "missing-place")
	if err != nil {
		t.Fatalf("ソフト失敗がエラーとして返りました: %v", err)
	}
	if len(images) != 0 {
		t.Errorf("非成功ステータスで画像が返りました: %v", images)
	}
}

// TestGooglePlacesProvider_FetchDetailPhotos 詳細取得の写真がプロキシ参照に変換されることを確認する
func TestGooglePlacesProvider_FetchDetailPhotos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "OK",
			"result": map[string]interface{}{
				"photos": []map[string]string{
					{"photo_reference": "tokA"},
					{"photo_reference": "tokB"},
				},
			},
		})
	}))
	defer server.Close()

	original := placeDetailsBaseURL
	placeDetailsBaseURL = server.URL
	defer func() { placeDetailsBaseURL = original }()

	provider := newTestProvider()
	images, err := provider.FetchDetailPhotos(context.Background(), "abc")
	if err != nil {
		t.Fatalf("詳細取得でエラーが発生: %v", err)
	}

	if len(images) != 2 {
		t.Fatalf("画像件数が一致しません: %d != 2", len(images))
	}
	if images[0] != "/api/place-photo?photo_reference=tokA" {
		t.Errorf("画像参照がプロキシ形式になっていません: %s", images[0])
	}
}
