package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"time"

	"CamperMap-App/internal/domain/model"
	"CamperMap-App/internal/domain/repository"
)

// テストでモックサーバーに差し替えるため、エンドポイントはvarにしている
var (
	nearbySearchBaseURL = "https://maps.googleapis.com/maps/api/place/nearbysearch/json"
	placeDetailsBaseURL = "https://maps.googleapis.com/maps/api/place/details/json"
)

// PhotoProxyPath クライアントに返す画像参照のプレフィックス
// プロバイダーのドメインやAPIキーをクライアントに渡さないため、必ずこの形式にする
const PhotoProxyPath = "/api/place-photo?photo_reference="

// GooglePlacesProvider はGoogle Places Nearby Search APIを使用したスポット検索の実装
type GooglePlacesProvider struct {
	apiKey          string
	httpClient      *http.Client
	searchRadius    int
	maxPhotosPerPOI int
}

// NewGooglePlacesProvider は新しいプロバイダを生成する
func NewGooglePlacesProvider(apiKey string, searchRadiusMeters, maxPhotosPerPOI int) *GooglePlacesProvider {
	return &GooglePlacesProvider{
		apiKey:          apiKey,
		httpClient:      &http.Client{Timeout: 10 * time.Second},
		searchRadius:    searchRadiusMeters,
		maxPhotosPerPOI: maxPhotosPerPOI,
	}
}

// FetchPage はNearby Search APIを呼び出して1ページ分のスポットを取得する
// 継続トークンは不透明な値としてそのまま渡す（こちらで生成・推測してはならない）
func (g *GooglePlacesProvider) FetchPage(ctx context.Context, center model.LatLng, categoryTerm string, pageToken string) (*repository.PlacesPage, error) {
	reqURL := g.buildSearchURL(center, categoryTerm, pageToken)

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("APIからエラーステータスが返されました: %s", resp.Status)
	}

	var apiResp googlePlacesResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("JSONのパースに失敗: %w", err)
	}

	switch apiResp.Status {
	case "OK":
		// 続行
	case "ZERO_RESULTS":
		return &repository.PlacesPage{}, nil
	case "INVALID_REQUEST":
		// 継続トークンの有効化前に呼んだ場合に返る。致命的エラーではなく
		// 「これ以上の結果なし」として扱う
		if pageToken != "" {
			log.Printf("⚠️ 継続トークンが未有効化のため打ち切り (term: %s)", categoryTerm)
			return &repository.PlacesPage{}, nil
		}
		return nil, fmt.Errorf("Nearby Searchのリクエストが不正です: %s", apiResp.ErrorMessage)
	default:
		// 非成功ステータスはソフト失敗（0件として扱い、リトライしない）
		log.Printf("⚠️ Nearby Searchが非成功ステータスを返却 (status: %s): %s", apiResp.Status, apiResp.ErrorMessage)
		return &repository.PlacesPage{}, nil
	}

	page := &repository.PlacesPage{NextPageToken: apiResp.NextPageToken}
	for _, raw := range apiResp.Results {
		if poi := g.Normalize(raw, categoryTerm); poi != nil {
			page.POIs = append(page.POIs, *poi)
		}
	}
	return page, nil
}

// Normalize は生のプレイス情報を統一POIモデルに変換する
// 座標を解決できないレコードはnilを返し、シンクに到達させない
func (g *GooglePlacesProvider) Normalize(raw GooglePlaceResult, categoryTerm string) *model.POI {
	if raw.Geometry == nil {
		return nil
	}

	poiType, ok := model.TermTypeMap[categoryTerm]
	if !ok {
		return nil
	}

	now := time.Now()
	poi := &model.POI{
		Name:           raw.Name,
		Type:           poiType,
		Lat:            raw.Geometry.Location.Lat,
		Lng:            raw.Geometry.Location.Lng,
		ExternalID:     raw.PlaceID,
		ExternalSource: model.SourceGoogle,
		Rating:         raw.Rating,
		ReviewCount:    raw.UserRatingsTotal,
		PriceLevel:     raw.PriceLevel,
		Facilities:     []string{},
		Images:         g.photoRefsToImages(raw.Photos),
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	placeID := raw.PlaceID
	poi.GooglePlaceID = &placeID

	if raw.Vicinity != nil {
		poi.Address = *raw.Vicinity
	}
	if raw.OpeningHours != nil {
		// プロバイダー固有の形のまま保持する
		poi.OpeningHours = *raw.OpeningHours
	}

	return poi
}

// FetchDetailPhotos はPlace Details APIで写真トークンを追加取得し、プロキシ参照に変換して返す
// プロバイダーが非成功ステータスを返した場合は空スライスを返す（同一実行内ではリトライしない）
func (g *GooglePlacesProvider) FetchDetailPhotos(ctx context.Context, placeID string) ([]string, error) {
	params := url.Values{}
	params.Set("place_id", placeID)
	params.Set("fields", "photos")
	params.Set("key", g.apiKey)
	reqURL := fmt.Sprintf("%s?%s", placeDetailsBaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("APIからエラーステータスが返されました: %s", resp.Status)
	}

	var apiResp googlePlaceDetailsResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("JSONのパースに失敗: %w", err)
	}

	if apiResp.Status != "OK" {
		log.Printf("⚠️ Place Detailsが非成功ステータスを返却 (place_id: %s, status: %s)", placeID, apiResp.Status)
		return []string{}, nil
	}

	return g.photoRefsToImages(apiResp.Result.Photos), nil
}

// photoRefsToImages は写真トークンを上限件数までプロキシ画像参照に変換する
func (g *GooglePlacesProvider) photoRefsToImages(photos []googlePhoto) []string {
	images := []string{}
	for _, photo := range photos {
		if photo.PhotoReference == "" {
			continue
		}
		images = append(images, PhotoProxyPath+url.QueryEscape(photo.PhotoReference))
		if len(images) >= g.maxPhotosPerPOI {
			break
		}
	}
	return images
}

func (g *GooglePlacesProvider) buildSearchURL(center model.LatLng, categoryTerm string, pageToken string) string {
	params := url.Values{}
	if pageToken != "" {
		// トークン指定時は他のパラメータは無視されるため付けない
		params.Set("pagetoken", pageToken)
	} else {
		params.Set("location", fmt.Sprintf("%f,%f", center.Lat, center.Lng))
		params.Set("radius", fmt.Sprintf("%d", g.searchRadius))
		params.Set("keyword", categoryTerm)
	}
	params.Set("key", g.apiKey)

	return fmt.Sprintf("%s?%s", nearbySearchBaseURL, params.Encode())
}

// --- Google Places APIのレスポンスをパースするための構造体 ---

type googlePlacesResponse struct {
	Results       []GooglePlaceResult `json:"results"`
	NextPageToken string              `json:"next_page_token"`
	Status        string              `json:"status"`
	ErrorMessage  string              `json:"error_message,omitempty"`
}

// GooglePlaceResult Nearby Search / Place Details の1件分の生レコード
type GooglePlaceResult struct {
	PlaceID          string           `json:"place_id"`
	Name             string           `json:"name"`
	Geometry         *googleGeometry  `json:"geometry"`
	Vicinity         *string          `json:"vicinity,omitempty"`
	Photos           []googlePhoto    `json:"photos,omitempty"`
	Rating           *float64         `json:"rating,omitempty"`
	UserRatingsTotal *int             `json:"user_ratings_total,omitempty"`
	PriceLevel       *int             `json:"price_level,omitempty"`
	OpeningHours     *json.RawMessage `json:"opening_hours,omitempty"`
	Types            []string         `json:"types,omitempty"`
}

type googleGeometry struct {
	Location googleLocation `json:"location"`
}

type googleLocation struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type googlePhoto struct {
	PhotoReference string `json:"photo_reference"`
}

type googlePlaceDetailsResponse struct {
	Result googleDetailsResult `json:"result"`
	Status string              `json:"status"`
}

type googleDetailsResult struct {
	Photos []googlePhoto `json:"photos"`
}
