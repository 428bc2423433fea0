package handler

import (
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
)

// テストでモックサーバーに差し替えるため、エンドポイントはvarにしている
var placePhotoBaseURL = "https://maps.googleapis.com/maps/api/place/photo"

// photoCacheControl 解決済み画像URLは長期間安定しているため長めにキャッシュさせる
const photoCacheControl = "public, max-age=2592000"

// PlacePhotoHandler 写真プロキシAPIのハンドラー
// APIキーをクライアントに渡さないため、プロバイダーの写真エンドポイントへの
// 問い合わせをサーバー側で行い、解決されたリダイレクト先だけを中継する
type PlacePhotoHandler struct {
	apiKey     string
	httpClient *http.Client
}

// NewPlacePhotoHandler 新しいPlacePhotoHandlerインスタンスを作成
func NewPlacePhotoHandler(apiKey string) *PlacePhotoHandler {
	return &PlacePhotoHandler{
		apiKey: apiKey,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			// プロバイダーのリダイレクトを追跡せず、Locationをそのまま中継する
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// HandlePlacePhoto GET /api/place-photo - 写真トークンをプロバイダーの画像URLに解決する
func (h *PlacePhotoHandler) HandlePlacePhoto(c *gin.Context) {
	photoReference := c.Query("photo_reference")
	if photoReference == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "missing_parameter",
			"message": "photo_reference parameter is required",
		})
		return
	}

	if h.apiKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":   "server_configuration_error",
			"message": "photo provider is not configured",
		})
		return
	}

	maxWidth := c.DefaultQuery("maxwidth", "800")

	params := url.Values{}
	params.Set("photo_reference", photoReference)
	params.Set("maxwidth", maxWidth)
	params.Set("key", h.apiKey)
	reqURL := fmt.Sprintf("%s?%s", placePhotoBaseURL, params.Encode())

	req, err := http.NewRequestWithContext(c.Request.Context(), "GET", reqURL, nil)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "internal_error",
			"message": "failed to build provider request",
		})
		return
	}

	resp, err := h.httpClient.Do(req)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{
			"error":   "upstream_failure",
			"message": "photo provider request failed",
		})
		return
	}
	defer resp.Body.Close()

	// 正常時、プロバイダーは実画像のURLへのリダイレクトを返す
	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		location := resp.Header.Get("Location")
		if location != "" {
			c.Header("Cache-Control", photoCacheControl)
			c.Redirect(http.StatusFound, location)
			return
		}
	}

	// リダイレクト以外はアップストリーム障害としてプロバイダーのステータスを中継する
	c.JSON(resp.StatusCode, gin.H{
		"error":   "upstream_failure",
		"message": fmt.Sprintf("photo provider returned status %d", resp.StatusCode),
	})
}
