package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"CamperMap-App/internal/domain/model"
	"CamperMap-App/internal/usecase"
)

// SyncHandler 同期トリガーAPIのハンドラー（スケジューラーまたは手動呼び出し用）
type SyncHandler struct {
	syncUseCase      usecase.POISyncUseCase // nilの場合はストア未設定として503を返す
	cronSecret       string
	googleConfigured bool
}

// NewSyncHandler 新しいSyncHandlerインスタンスを作成
func NewSyncHandler(syncUseCase usecase.POISyncUseCase, cronSecret string, googleConfigured bool) *SyncHandler {
	return &SyncHandler{
		syncUseCase:      syncUseCase,
		cronSecret:       cronSecret,
		googleConfigured: googleConfigured,
	}
}

// HandleSync GET /api/sync - 指定カテゴリの同期を実行する
// 認証・カテゴリ検証・設定確認のいずれかに失敗した場合、プロバイダーへの
// リクエストを1件も発行せずに拒否する
func (h *SyncHandler) HandleSync(c *gin.Context) {
	// シークレットが設定されている場合はBearerトークンを照合する
	// 内部状態を漏らさないため、失敗理由の詳細は返さない
	if h.cronSecret != "" {
		authHeader := c.GetHeader("Authorization")
		token := strings.TrimPrefix(authHeader, "Bearer ")
		if authHeader == "" || token == authHeader || token != h.cronSecret {
			c.JSON(http.StatusUnauthorized, gin.H{
				"ok":    false,
				"error": "unauthorized",
			})
			return
		}
	}

	category := model.SyncCategory(c.Query("type"))
	if !category.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{
			"ok":      false,
			"error":   "invalid_parameter",
			"message": "type must be one of: ev_only, campsites, rest_stops, enrich_photos",
		})
		return
	}

	// ストア認証情報が無い場合はプロバイダーに触れる前に拒否する
	if h.syncUseCase == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"ok":      false,
			"error":   "server_configuration_error",
			"message": "destination store is not configured",
		})
		return
	}

	// Googleキーが必要なカテゴリの事前確認
	if category != model.SyncCategoryEVOnly && !h.googleConfigured {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"ok":      false,
			"error":   "server_configuration_error",
			"message": "GOOGLE_MAPS_API_KEY is not configured",
		})
		return
	}

	summary, err := h.syncUseCase.RunSync(c.Request.Context(), category)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"ok":      false,
			"error":   "sync_failed",
			"message": err.Error(),
		})
		return
	}

	response := gin.H{
		"ok":                   true,
		"type":                 summary.Category,
		"run_id":               summary.RunID,
		"google_requests_used": summary.RequestsUsed,
		"cap_reached":          summary.CapReached,
	}
	if summary.Category == model.SyncCategoryEnrichPhotos {
		response["enriched"] = summary.Enriched
	} else {
		response["upserted"] = summary.Upserted
	}

	c.JSON(http.StatusOK, response)
}
