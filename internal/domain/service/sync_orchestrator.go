package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"CamperMap-App/internal/domain/model"
	"CamperMap-App/internal/domain/repository"
)

// SyncOrchestrator 1回の同期実行を駆動するオーケストレーター
//
// 実行内の取得は厳密に逐次実行する。継続トークンの待機時間を挟む都合と、
// QuotaGovernorのカウンターを競合させないため、セル間・ページ間の並行化はしない
type SyncOrchestrator struct {
	places       repository.PlacesProvider
	chargePoints repository.ChargePointProvider
	poiRepo      repository.POIsRepository
	config       model.SyncConfig
	sleep        func(time.Duration)
}

// NewSyncOrchestrator 新しいSyncOrchestratorインスタンスを作成
func NewSyncOrchestrator(
	places repository.PlacesProvider,
	chargePoints repository.ChargePointProvider,
	poiRepo repository.POIsRepository,
	config model.SyncConfig,
) *SyncOrchestrator {
	return NewSyncOrchestratorWithSleeper(places, chargePoints, poiRepo, config, time.Sleep)
}

// NewSyncOrchestratorWithSleeper 待機処理を差し替え可能にしたコンストラクタ
// テストでは実際の待機をスキップするためにno-opを渡す
func NewSyncOrchestratorWithSleeper(
	places repository.PlacesProvider,
	chargePoints repository.ChargePointProvider,
	poiRepo repository.POIsRepository,
	config model.SyncConfig,
	sleep func(time.Duration),
) *SyncOrchestrator {
	return &SyncOrchestrator{
		places:       places,
		chargePoints: chargePoints,
		poiRepo:      poiRepo,
		config:       config,
		sleep:        sleep,
	}
}

// Run は指定カテゴリの同期を1回実行し、結果サマリーを返す
// シンク（アップサート）の失敗のみがエラーとして返る。ページ単位の取得失敗は
// ログに残して0件として継続する
func (o *SyncOrchestrator) Run(ctx context.Context, category model.SyncCategory) (*model.SyncSummary, error) {
	summary := &model.SyncSummary{
		RunID:     uuid.New().String(),
		Category:  category,
		StartedAt: time.Now(),
	}

	governor := NewQuotaGovernor(
		o.config.MaxRequestsPerRun,
		o.config.MaxRequestsPerCategory,
		o.config.MaxPagesPerCell,
	)

	var err error
	switch category {
	case model.SyncCategoryEVOnly:
		err = o.runEVSync(ctx, summary)
	case model.SyncCategoryCampsites, model.SyncCategoryRestStops:
		err = o.runGridSync(ctx, category, governor, summary)
	case model.SyncCategoryEnrichPhotos:
		err = o.runEnrichPhotos(ctx, governor, summary)
	default:
		err = fmt.Errorf("不明な同期カテゴリです: %s", category)
	}

	summary.RequestsUsed = governor.RequestsUsed()
	summary.CapReached = governor.CapReached()
	summary.FinishedAt = time.Now()

	if err != nil {
		return summary, err
	}
	return summary, nil
}

// runEVSync はOpen Charge Mapの一括取得で充電スポットを同期する
// 国単位の単一クエリなのでグリッド走査もセル単位の上限も使わない（論理的に1ページ）
func (o *SyncOrchestrator) runEVSync(ctx context.Context, summary *model.SyncSummary) error {
	pois, err := o.chargePoints.FetchAll(ctx, o.config.OCMCountryCode)
	if err != nil {
		// 取得失敗は1ページ分の失敗と同じ扱い（0件で継続、実行は失敗にしない）
		log.Printf("⚠️ Open Charge Map の取得に失敗、0件として継続: %v", err)
		return nil
	}

	deduped := DeduplicateByExternalKey(pois)
	if len(deduped) == 0 {
		return nil
	}

	if err := o.poiRepo.UpsertBatch(ctx, deduped); err != nil {
		return fmt.Errorf("充電スポットのアップサートに失敗: %w", err)
	}
	summary.Upserted = len(deduped)
	return nil
}

// runGridSync は1カテゴリ分のグリッド走査を実行する
// 1回の実行で複数カテゴリを混ぜない（2カテゴリ分は実行時間の上限を超えるため、
// カテゴリごとに別の実行としてスケジュールする）
func (o *SyncOrchestrator) runGridSync(ctx context.Context, category model.SyncCategory, governor *QuotaGovernor, summary *model.SyncSummary) error {
	term, ok := model.GetTermForCategory(category)
	if !ok {
		return fmt.Errorf("カテゴリ %s に対応する検索語がありません", category)
	}

	cells := PartitionRegion(o.config.RegionBounds, o.config.GridStepMeters, o.config.MaxGridCells)
	log.Printf("🗺️ グリッド走査開始 (カテゴリ: %s, セル数: %d)", category, len(cells))

	var collected []model.POI
	for _, cell := range cells {
		if governor.RunExhausted() {
			break
		}
		governor.ResetCell()

		pageToken := ""
		for {
			if !governor.TryConsumePage() {
				break
			}
			if pageToken != "" {
				// 継続トークンは発行直後には有効化されないため、プロバイダー要件の待機を挟む
				o.sleep(o.config.PageTokenDelay)
			}

			page, err := o.places.FetchPage(ctx, cell.ToLatLng(), term, pageToken)
			if err != nil {
				// ページ単位の失敗は最小スコープで握りつぶし、0件として次のセルへ
				log.Printf("⚠️ セル (%.4f, %.4f) のページ取得に失敗、スキップ: %v", cell.CenterLat, cell.CenterLng, err)
				break
			}

			collected = append(collected, page.POIs...)
			pageToken = page.NextPageToken
			if pageToken == "" {
				break
			}
		}
	}

	deduped := DeduplicateByExternalKey(collected)
	if len(deduped) == 0 {
		return nil
	}

	if err := o.poiRepo.UpsertBatch(ctx, deduped); err != nil {
		return fmt.Errorf("カテゴリ %s のアップサートに失敗: %w", category, err)
	}
	summary.Upserted = len(deduped)
	return nil
}

// runEnrichPhotos は保存済みの高評価POIに対して写真の追加取得を行う
// グリッド走査は行わず、選定した各POIに1回ずつ詳細取得を発行する
func (o *SyncOrchestrator) runEnrichPhotos(ctx context.Context, governor *QuotaGovernor, summary *model.SyncSummary) error {
	persisted, err := o.poiRepo.ListEnrichable(ctx)
	if err != nil {
		return fmt.Errorf("エンリッチ対象POIの取得に失敗: %w", err)
	}

	candidates := SelectEnrichmentCandidates(persisted, o.config.EnrichTopFraction, o.config.MaxEnrichPerRun)
	log.Printf("📸 写真エンリッチメント開始 (対象: %d件 / 保存済み: %d件)", len(candidates), len(persisted))

	for i, poi := range candidates {
		// 上限到達で打ち切る場合は待機しない
		if !governor.TryConsume() {
			break
		}
		if i > 0 {
			o.sleep(o.config.DetailRequestDelay)
		}

		images, err := o.places.FetchDetailPhotos(ctx, *poi.GooglePlaceID)
		if err != nil {
			log.Printf("⚠️ %s の詳細取得に失敗、スキップ: %v", poi.Name, err)
			continue
		}
		if len(images) == 0 {
			continue
		}

		if err := o.poiRepo.UpdateImages(ctx, poi.ExternalSource, poi.ExternalID, images); err != nil {
			return fmt.Errorf("%s の画像更新に失敗: %w", poi.Name, err)
		}
		summary.Enriched++
	}

	return nil
}
