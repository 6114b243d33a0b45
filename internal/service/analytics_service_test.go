package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvaldivia/repuestos-analytics/internal/config"
	"github.com/hvaldivia/repuestos-analytics/internal/domain"
	"github.com/hvaldivia/repuestos-analytics/internal/loader"
)

func testSale(store int64, part string, qty int, day string) domain.SaleRecord {
	d, _ := time.Parse("2006-01-02", day)
	return domain.SaleRecord{ReceiptID: "R1", StoreID: store, PartID: part, Quantity: qty, SaleDate: d}
}

func testService() *AnalyticsService {
	sales := []domain.SaleRecord{
		testSale(1, "A100", 10, "2025-01-10"),
		testSale(1, "A100", 12, "2025-02-10"),
		testSale(1, "A100", 14, "2025-03-10"),
		testSale(1, "B200", 2, "2025-03-10"),
		testSale(1, "B200", -1, "2025-03-12"),
		testSale(2, "C300", 99, "2025-03-10"),
	}
	stock := []domain.StockRecord{
		{StoreID: 1, PartID: "A100", StockQuantity: 4},
		{StoreID: 1, PartID: "B200", StockQuantity: 10},
		{StoreID: 1, PartID: "D400", StockQuantity: 7},
	}
	catalog := []domain.BrandCatalogEntry{
		{LetterPrefix: "A", BrandName: "Acme"},
		{LetterPrefix: "B", BrandName: "Bosch"},
	}

	source := loader.NewSource(sales, stock, catalog)
	return NewAnalyticsService(source, nil, config.ForecastConfig{UseLagFeatures: true})
}

func TestServiceStores(t *testing.T) {
	svc := testService()
	ids, err := svc.Stores(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)
}

func TestServiceSaleDateBounds(t *testing.T) {
	svc := testService()

	min, max, err := svc.SaleDateBounds(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-10", min.Format("2006-01-02"))
	assert.Equal(t, "2025-03-12", max.Format("2006-01-02"))

	min, max, err = svc.SaleDateBounds(context.Background(), 42)
	require.NoError(t, err)
	assert.True(t, min.IsZero())
	assert.True(t, max.IsZero())
}

func TestServiceSalesFiltersStore(t *testing.T) {
	svc := testService()
	sales, err := svc.Sales(context.Background(), domain.QueryFilter{StoreID: 2})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "C300", sales[0].PartID)
}

func TestServiceTopParts(t *testing.T) {
	svc := testService()
	top, err := svc.TopParts(context.Background(), domain.QueryFilter{StoreID: 1}, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "A100", top[0].PartID)
	assert.Equal(t, 36, top[0].Quantity)
}

func TestServiceBrandSales(t *testing.T) {
	svc := testService()
	brands, err := svc.BrandSales(context.Background(), domain.QueryFilter{StoreID: 1})
	require.NoError(t, err)
	require.Len(t, brands, 2)
	assert.Equal(t, "Acme", brands[0].Brand)
	assert.Equal(t, 36, brands[0].Quantity)
	assert.Equal(t, "Bosch", brands[1].Brand)
	assert.Equal(t, 1, brands[1].Quantity)
}

func TestServiceRecommendations(t *testing.T) {
	svc := testService()
	report, err := svc.Recommendations(context.Background(), domain.QueryFilter{StoreID: 1})
	require.NoError(t, err)

	total := len(report.Keep) + len(report.NoSales) + len(report.LowRotation) + len(report.Unclassified)
	assert.Equal(t, 3, total)

	// D400 holds stock with zero sales.
	require.Len(t, report.NoSales, 1)
	assert.Equal(t, "D400", report.NoSales[0].PartID)

	// B200's single negative row is one stockout attempt.
	require.Len(t, report.Opportunities, 1)
	assert.Equal(t, "B200", report.Opportunities[0].PartID)
	assert.Equal(t, 1, report.Opportunities[0].FailedAttempts)

	assert.GreaterOrEqual(t, report.HighCutoff, report.LowCutoff)
}

func TestServiceRecommendationsEmptyStore(t *testing.T) {
	svc := testService()
	report, err := svc.Recommendations(context.Background(), domain.QueryFilter{StoreID: 99})
	require.NoError(t, err)

	assert.Empty(t, report.Keep)
	assert.Empty(t, report.NoSales)
	assert.Empty(t, report.LowRotation)
	assert.Empty(t, report.Unclassified)
	assert.Empty(t, report.Opportunities)
}

func TestServiceForecast(t *testing.T) {
	svc := testService()
	result, err := svc.Forecast(context.Background(), domain.QueryFilter{StoreID: 1})
	require.NoError(t, err)

	assert.Equal(t, 202504, result.TargetMonth)
	require.Len(t, result.Predictions, 2)
	for _, p := range result.Predictions {
		assert.Equal(t, 202504, p.TargetMonth)
	}

	// Descending by predicted quantity.
	assert.GreaterOrEqual(t, result.Predictions[0].PredictedQuantity, result.Predictions[1].PredictedQuantity)
}

func TestServiceForecastEmptyWindowReturnsErrNoData(t *testing.T) {
	svc := testService()
	_, err := svc.Forecast(context.Background(), domain.QueryFilter{StoreID: 42})
	assert.ErrorIs(t, err, domain.ErrNoData)
}

func TestServiceForecastDeterministic(t *testing.T) {
	svc := testService()
	a, err := svc.Forecast(context.Background(), domain.QueryFilter{StoreID: 1})
	require.NoError(t, err)
	b, err := svc.Forecast(context.Background(), domain.QueryFilter{StoreID: 1})
	require.NoError(t, err)

	assert.Equal(t, a.Metrics, b.Metrics)
	assert.Equal(t, a.Predictions, b.Predictions)
}
