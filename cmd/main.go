package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"CamperMap-App/internal/domain/model"
	domainrepo "CamperMap-App/internal/domain/repository"
	"CamperMap-App/internal/domain/service"
	"CamperMap-App/internal/handler"
	"CamperMap-App/internal/infrastructure/database"
	fsinfra "CamperMap-App/internal/infrastructure/firestore"
	"CamperMap-App/internal/infrastructure/maps"
	repoimpl "CamperMap-App/internal/repository"
	"CamperMap-App/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found, using system environment variables")
	}

	ctx := context.Background()

	// 同期設定の構築（デフォルトは英国全土、環境変数で上書き可能）
	config := model.DefaultSyncConfig()
	if boundsStr := os.Getenv("REGION_BOUNDS"); boundsStr != "" {
		bounds, err := repoimpl.ParseBound(boundsStr)
		if err != nil {
			log.Fatalf("REGION_BOUNDSの解析に失敗: %v", err)
		}
		config.RegionBounds = bounds
	}

	googleMapsAPIKey := os.Getenv("GOOGLE_MAPS_API_KEY")
	if googleMapsAPIKey == "" {
		fmt.Println("⚠️ GOOGLE_MAPS_API_KEYが未設定のため、campsites / rest_stops / enrich_photos の同期は無効です")
	}
	ocmAPIKey := os.Getenv("OCM_API_KEY")
	cronSecret := os.Getenv("CRON_SECRET")
	if cronSecret == "" {
		fmt.Println("⚠️ CRON_SECRETが未設定のため、同期トリガーは認証なしで呼び出せます")
	}

	// 保存先ストアの初期化（直接接続を優先し、PostgRESTにフォールバック）
	poiRepo := initPOIRepository()

	// 実行履歴の保存先（任意、未設定なら履歴保存をスキップ）
	var syncRunsRepo domainrepo.SyncRunsRepository
	if projectID := os.Getenv("GOOGLE_CLOUD_PROJECT"); projectID != "" {
		fsClient, err := fsinfra.NewFirestoreClient(ctx, projectID)
		if err != nil {
			log.Printf("⚠️ Firestoreクライアントの初期化に失敗、実行履歴は保存しません: %v", err)
		} else {
			defer fsClient.Close()
			syncRunsRepo = repoimpl.NewFirestoreSyncRunRepository(fsClient.GetClient())
		}
	}

	// 同期ユースケースの組み立て（ストアが無い場合はnilのままハンドラーが503を返す）
	var syncUseCase usecase.POISyncUseCase
	if poiRepo != nil {
		placesProvider := maps.NewGooglePlacesProvider(googleMapsAPIKey, config.SearchRadiusMeters, config.MaxPhotosPerPOI)
		chargePointProvider := maps.NewOpenChargeMapProvider(ocmAPIKey, config.OCMMaxResults)
		orchestrator := service.NewSyncOrchestrator(placesProvider, chargePointProvider, poiRepo, config)
		syncUseCase = usecase.NewPOISyncUseCase(orchestrator, syncRunsRepo)
	}

	syncHandler := handler.NewSyncHandler(syncUseCase, cronSecret, googleMapsAPIKey != "")
	photoHandler := handler.NewPlacePhotoHandler(googleMapsAPIKey)

	r := gin.Default()
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy", "service": "CamperMap-App"})
	})
	r.GET("/api/sync", syncHandler.HandleSync)
	r.GET("/api/place-photo", photoHandler.HandlePlacePhoto)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	fmt.Printf("CamperMap-App server starting on :%s...\n", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("サーバーの起動に失敗: %v", err)
	}
}

// initPOIRepository は保存先ストアへのリポジトリを初期化する
// 認証情報が無い場合はnilを返し、同期トリガーは設定エラーとして拒否される
func initPOIRepository() domainrepo.POIsRepository {
	if os.Getenv("SUPABASE_URL") == "" {
		fmt.Println("⚠️ SUPABASE_URLが未設定のため、保存先ストアは無効です")
		return nil
	}

	if os.Getenv("SUPABASE_DB_PASSWORD") != "" {
		pgClient, err := database.NewPostgreSQLClient()
		if err != nil {
			log.Printf("⚠️ PostgreSQL直接接続に失敗、PostgRESTにフォールバック: %v", err)
		} else {
			fmt.Println("✅ PostgreSQL direct connection established")
			return repoimpl.NewPostgresPOIsRepository(pgClient)
		}
	}

	supabaseClient, err := database.NewSupabaseClient()
	if err != nil {
		log.Printf("⚠️ Supabaseクライアントの初期化に失敗: %v", err)
		return nil
	}
	fmt.Println("✅ Supabase PostgREST connection established")
	return repoimpl.NewSupabasePOIsRepository(supabaseClient)
}
