package repository

import (
	"context"

	"CamperMap-App/internal/domain/model"
)

// PlacesPage Google Places Nearby Search の1ページ分の取得結果
// NextPageTokenはプロバイダーが発行する不透明なトークンで、こちらで生成・推測してはならない
type PlacesPage struct {
	POIs          []model.POI
	NextPageToken string
}

// PlacesProvider 商用プレイス検索プロバイダー（Google Places）のインターフェース
type PlacesProvider interface {
	// FetchPage は指定座標周辺を1ページ分検索し、正規化済みPOIと継続トークンを返す
	// pageTokenが空の場合は先頭ページを取得する
	FetchPage(ctx context.Context, center model.LatLng, categoryTerm string, pageToken string) (*PlacesPage, error)

	// FetchDetailPhotos は写真エンリッチメント用の詳細取得
	// プロバイダーが非成功ステータスを返した場合は空スライスを返す（エラーにしない）
	FetchDetailPhotos(ctx context.Context, placeID string) ([]string, error)
}

// ChargePointProvider 充電スポットディレクトリ（Open Charge Map）のインターフェース
// 国単位の一括取得をサポートするため、グリッド走査もページネーションも不要
type ChargePointProvider interface {
	// FetchAll は指定国コードの充電スポットを一括取得し、正規化済みPOIを返す
	FetchAll(ctx context.Context, countryCode string) ([]model.POI, error)
}
