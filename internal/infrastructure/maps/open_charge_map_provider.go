package maps

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"CamperMap-App/internal/domain/model"
)

// テストでモックサーバーに差し替えるため、エンドポイントはvarにしている
var openChargeMapBaseURL = "https://api.openchargemap.io/v3/poi/"

// maxFacilitiesPerPOI 設備一覧に載せるコネクタ種別名の上限
const maxFacilitiesPerPOI = 6

// OpenChargeMapProvider はOpen Charge Map APIを使用した充電スポット取得の実装
// 国単位の一括クエリをサポートするため、ページネーションは不要
type OpenChargeMapProvider struct {
	apiKey     string
	httpClient *http.Client
	maxResults int
}

// NewOpenChargeMapProvider は新しいプロバイダを生成する
func NewOpenChargeMapProvider(apiKey string, maxResults int) *OpenChargeMapProvider {
	return &OpenChargeMapProvider{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		maxResults: maxResults,
	}
}

// FetchAll は指定国コードの充電スポットを一括取得し、正規化済みPOIを返す
func (o *OpenChargeMapProvider) FetchAll(ctx context.Context, countryCode string) ([]model.POI, error) {
	params := url.Values{}
	params.Set("output", "json")
	params.Set("countrycode", countryCode)
	params.Set("maxresults", fmt.Sprintf("%d", o.maxResults))
	params.Set("compact", "true")
	params.Set("verbose", "false")
	if o.apiKey != "" {
		params.Set("key", o.apiKey)
	}
	reqURL := fmt.Sprintf("%s?%s", openChargeMapBaseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("リクエストの作成に失敗: %w", err)
	}

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("APIリクエストに失敗: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("APIからエラーステータスが返されました: %s", resp.Status)
	}

	var rawPOIs []OCMChargePoint
	if err := json.NewDecoder(resp.Body).Decode(&rawPOIs); err != nil {
		return nil, fmt.Errorf("JSONのパースに失敗: %w", err)
	}

	var pois []model.POI
	for _, raw := range rawPOIs {
		if poi := o.Normalize(raw); poi != nil {
			pois = append(pois, *poi)
		}
	}
	return pois, nil
}

// Normalize は生の充電スポット情報を統一POIモデルに変換する
// 座標はAddressInfo優先、なければ旧形式のトップレベル項目にフォールバックする
// 両座標が0のレコードは未解決として捨てる（実在位置(0,0)とは扱わない）
func (o *OpenChargeMapProvider) Normalize(raw OCMChargePoint) *model.POI {
	lat, lng := o.resolveCoordinates(raw)
	if lat == 0 && lng == 0 {
		return nil
	}

	name := "EV Charging Station"
	if raw.AddressInfo != nil && raw.AddressInfo.Title != "" {
		name = raw.AddressInfo.Title
	}

	now := time.Now()
	poi := &model.POI{
		Name:           name,
		Type:           model.POITypeEVCharger,
		Lat:            lat,
		Lng:            lng,
		Description:    o.buildDescription(raw),
		Address:        o.buildAddress(raw.AddressInfo),
		Facilities:     o.buildFacilities(raw.Connections),
		Images:         []string{},
		ExternalID:     fmt.Sprintf("%d", raw.ID),
		ExternalSource: model.SourceOpenChargeMap,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if raw.UsageCost != nil && *raw.UsageCost != "" {
		poi.Price = raw.UsageCost
	}
	if raw.AddressInfo != nil && raw.AddressInfo.RelatedURL != nil && *raw.AddressInfo.RelatedURL != "" {
		poi.Website = raw.AddressInfo.RelatedURL
	}
	if raw.AddressInfo != nil && raw.AddressInfo.ContactTelephone1 != nil && *raw.AddressInfo.ContactTelephone1 != "" {
		poi.Phone = raw.AddressInfo.ContactTelephone1
	}

	return poi
}

// resolveCoordinates はAddressInfoの座標を優先し、旧形式のトップレベル座標にフォールバックする
func (o *OpenChargeMapProvider) resolveCoordinates(raw OCMChargePoint) (float64, float64) {
	if raw.AddressInfo != nil && (raw.AddressInfo.Latitude != 0 || raw.AddressInfo.Longitude != 0) {
		return raw.AddressInfo.Latitude, raw.AddressInfo.Longitude
	}
	return raw.Latitude, raw.Longitude
}

// buildFacilities はコネクタ種別名から設備一覧を合成する（最大6件）
func (o *OpenChargeMapProvider) buildFacilities(connections []ocmConnection) []string {
	facilities := []string{}
	for _, conn := range connections {
		if conn.ConnectionType == nil || conn.ConnectionType.Title == "" {
			continue
		}
		facilities = append(facilities, conn.ConnectionType.Title)
		if len(facilities) >= maxFacilitiesPerPOI {
			break
		}
	}
	return facilities
}

// buildDescription はコネクタ数・コネクタ種別（上位3件）・料金から説明文を合成する
func (o *OpenChargeMapProvider) buildDescription(raw OCMChargePoint) string {
	parts := []string{fmt.Sprintf("%d charging connections", len(raw.Connections))}

	var typeNames []string
	for _, conn := range raw.Connections {
		if conn.ConnectionType == nil || conn.ConnectionType.Title == "" {
			continue
		}
		typeNames = append(typeNames, conn.ConnectionType.Title)
		if len(typeNames) >= 3 {
			break
		}
	}
	if len(typeNames) > 0 {
		parts = append(parts, strings.Join(typeNames, ", "))
	}

	if raw.UsageCost != nil && *raw.UsageCost != "" {
		parts = append(parts, "Cost: "+*raw.UsageCost)
	}

	return strings.Join(parts, " • ")
}

// buildAddress は住所サブフィールドの非空値を ", " で連結する
// すべて空の場合は固定のプレースホルダーを返す
func (o *OpenChargeMapProvider) buildAddress(info *ocmAddressInfo) string {
	if info == nil {
		return "Address not listed"
	}

	var parts []string
	for _, field := range []string{info.AddressLine1, info.Town, info.StateOrProvince, info.Postcode} {
		if field != "" {
			parts = append(parts, field)
		}
	}
	if len(parts) == 0 {
		return "Address not listed"
	}
	return strings.Join(parts, ", ")
}

// --- Open Charge Map APIのレスポンスをパースするための構造体 ---

// OCMChargePoint Open Charge Map の1スポット分の生レコード
type OCMChargePoint struct {
	ID          int             `json:"ID"`
	UsageCost   *string         `json:"UsageCost,omitempty"`
	AddressInfo *ocmAddressInfo `json:"AddressInfo,omitempty"`
	Connections []ocmConnection `json:"Connections,omitempty"`
	// 旧形式のトップレベル座標（AddressInfoがない古いレコード用）
	Latitude  float64 `json:"Latitude,omitempty"`
	Longitude float64 `json:"Longitude,omitempty"`
}

type ocmAddressInfo struct {
	Title             string  `json:"Title"`
	AddressLine1      string  `json:"AddressLine1"`
	Town              string  `json:"Town"`
	StateOrProvince   string  `json:"StateOrProvince"`
	Postcode          string  `json:"Postcode"`
	Latitude          float64 `json:"Latitude"`
	Longitude         float64 `json:"Longitude"`
	RelatedURL        *string `json:"RelatedURL,omitempty"`
	ContactTelephone1 *string `json:"ContactTelephone1,omitempty"`
}

type ocmConnection struct {
	ConnectionType *ocmConnectionType `json:"ConnectionType,omitempty"`
	PowerKW        *float64           `json:"PowerKW,omitempty"`
}

type ocmConnectionType struct {
	Title string `json:"Title"`
}
