package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hvaldivia/repuestos-analytics/internal/analytics"
	"github.com/hvaldivia/repuestos-analytics/internal/cache"
	"github.com/hvaldivia/repuestos-analytics/internal/config"
	"github.com/hvaldivia/repuestos-analytics/internal/domain"
	"github.com/hvaldivia/repuestos-analytics/internal/forecast"
	"github.com/hvaldivia/repuestos-analytics/internal/repository"
)

const defaultTopLimit = 50

// AnalyticsService runs the full analytics pipeline per request: every view
// is a fresh recompute over the filtered source tables. The forecast cache is
// the only memoization and never changes observable results.
type AnalyticsService struct {
	source      repository.DataSource
	cache       cache.ForecastCache
	forecastCfg forecast.Config
}

func NewAnalyticsService(source repository.DataSource, cacheImpl cache.ForecastCache, cfg config.ForecastConfig) *AnalyticsService {
	if cacheImpl == nil {
		cacheImpl = cache.NewNoopForecastCache()
	}
	return &AnalyticsService{
		source:      source,
		cache:       cacheImpl,
		forecastCfg: forecastConfigFrom(cfg),
	}
}

func forecastConfigFrom(cfg config.ForecastConfig) forecast.Config {
	out := forecast.DefaultConfig()
	if cfg.ModelKind != "" {
		out.ModelKind = forecast.ModelKind(cfg.ModelKind)
	}
	if cfg.NEstimators > 0 {
		out.NEstimators = cfg.NEstimators
	}
	if cfg.LearningRate > 0 {
		out.LearningRate = cfg.LearningRate
	}
	if cfg.MaxDepth > 0 {
		out.MaxDepth = cfg.MaxDepth
	}
	if cfg.HoldoutFraction > 0 && cfg.HoldoutFraction < 1 {
		out.HoldoutFraction = cfg.HoldoutFraction
	}
	if cfg.Seed != 0 {
		out.Seed = cfg.Seed
	}
	out.UseLagFeatures = cfg.UseLagFeatures
	return out
}

// Stores lists the store IDs available for selection.
func (s *AnalyticsService) Stores(ctx context.Context) ([]int64, error) {
	return s.source.StoreIDs(ctx)
}

// SaleDateBounds reports the earliest and latest sale dates for a store,
// used to preset the dashboard's date pickers. Zero times mean no history.
func (s *AnalyticsService) SaleDateBounds(ctx context.Context, storeID int64) (time.Time, time.Time, error) {
	return s.source.SaleDateBounds(ctx, storeID)
}

// Sales returns the raw filtered transactions for display.
func (s *AnalyticsService) Sales(ctx context.Context, filter domain.QueryFilter) ([]domain.SaleRecord, error) {
	sales, err := s.source.Sales(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch sales: %w", err)
	}
	return analytics.FilterSales(sales, filter), nil
}

// TopParts returns the best-selling parts in the window, descending.
func (s *AnalyticsService) TopParts(ctx context.Context, filter domain.QueryFilter, limit int) ([]domain.PartSales, error) {
	if limit <= 0 {
		limit = defaultTopLimit
	}

	sales, err := s.source.Sales(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch sales: %w", err)
	}

	return analytics.TopParts(sales, filter, limit), nil
}

// BrandSales returns per-brand totals for the window.
func (s *AnalyticsService) BrandSales(ctx context.Context, filter domain.QueryFilter) ([]domain.BrandSales, error) {
	sales, err := s.source.Sales(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch sales: %w", err)
	}

	catalog, err := s.source.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("fetch catalog: %w", err)
	}

	return analytics.SalesByBrand(sales, catalog, filter), nil
}

// Recommendations builds the stock-rotation view: the classified inventory
// table split into its display sections, plus the stockout opportunities
// drawn from the same filtered sales. An empty report is a valid answer for
// a store with no inventory.
func (s *AnalyticsService) Recommendations(ctx context.Context, filter domain.QueryFilter) (*domain.RecommendationReport, error) {
	sales, err := s.source.Sales(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch sales: %w", err)
	}

	stock, err := s.source.Stock(ctx, filter.StoreID)
	if err != nil {
		return nil, fmt.Errorf("fetch stock: %w", err)
	}

	rows := analytics.Aggregate(sales, stock, filter)

	report := &domain.RecommendationReport{
		Keep:         make([]domain.InventoryRow, 0),
		NoSales:      make([]domain.InventoryRow, 0),
		LowRotation:  make([]domain.InventoryRow, 0),
		Unclassified: make([]domain.InventoryRow, 0),
	}

	if len(rows) > 0 {
		report.HighCutoff, report.LowCutoff = analytics.RotationCutoffs(rows)
	}

	for _, row := range rows {
		switch row.Recommendation {
		case domain.RecommendKeep:
			report.Keep = append(report.Keep, row)
		case domain.RecommendReviewNoSales:
			report.NoSales = append(report.NoSales, row)
		case domain.RecommendReviewLowRotation:
			report.LowRotation = append(report.LowRotation, row)
		default:
			report.Unclassified = append(report.Unclassified, row)
		}
	}

	report.Opportunities = analytics.DetectOpportunities(analytics.FilterSales(sales, filter))

	return report, nil
}

// Forecast engineers the monthly demand features, trains the configured
// model, evaluates it on the held-out split, and projects the next calendar
// month for every part in the window. A window with no history returns
// domain.ErrNoData before the model is ever touched.
func (s *AnalyticsService) Forecast(ctx context.Context, filter domain.QueryFilter) (*domain.ForecastResult, error) {
	if cached, ok, err := s.cache.Get(ctx, filter); err == nil && ok {
		return cached, nil
	} else if err != nil {
		log.Warn().Err(err).Msg("forecast: cache get failed")
	}

	sales, err := s.source.Sales(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("fetch sales: %w", err)
	}

	features := analytics.BuildFeatures(sales, filter)
	if len(features.Rows) == 0 {
		return nil, domain.ErrNoData
	}

	train, holdout := forecast.Split(features.Rows, s.forecastCfg)
	model, err := forecast.Train(train, s.forecastCfg)
	if err != nil {
		return nil, fmt.Errorf("train model: %w", err)
	}

	metrics := forecast.Evaluate(model, holdout)

	predictions, err := forecast.PredictNextMonth(model, features.Rows, features.Encoding)
	if err != nil {
		return nil, fmt.Errorf("predict next month: %w", err)
	}
	forecast.SortPredictions(predictions)

	result := &domain.ForecastResult{
		TargetMonth: predictions[0].TargetMonth,
		Metrics:     metrics,
		Predictions: predictions,
	}

	if err := s.cache.Set(ctx, filter, result); err != nil {
		log.Warn().Err(err).Msg("forecast: cache set failed")
	}

	return result, nil
}
