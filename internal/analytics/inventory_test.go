package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvaldivia/repuestos-analytics/internal/domain"
)

func saleOn(store int64, part string, qty int, day string) domain.SaleRecord {
	d, err := time.Parse("2006-01-02", day)
	if err != nil {
		panic(err)
	}
	return domain.SaleRecord{ReceiptID: "R1", StoreID: store, PartID: part, Quantity: qty, SaleDate: d}
}

func rowByPart(rows []domain.InventoryRow, part string) (domain.InventoryRow, bool) {
	for _, r := range rows {
		if r.PartID == part {
			return r, true
		}
	}
	return domain.InventoryRow{}, false
}

func TestAggregateScenario(t *testing.T) {
	sales := []domain.SaleRecord{
		saleOn(1, "A1", 1, "2025-03-10"),
		saleOn(1, "B1", 1, "2025-03-11"),
		saleOn(1, "C1", 2, "2025-03-12"),
		saleOn(1, "D1", 2, "2025-03-13"),
	}
	stock := []domain.StockRecord{
		{StoreID: 1, PartID: "A1", StockQuantity: 3}, // rotation 1/4
		{StoreID: 1, PartID: "B1", StockQuantity: 1}, // rotation 1/2
		{StoreID: 1, PartID: "C1", StockQuantity: 1}, // rotation 2/2
		{StoreID: 1, PartID: "D1", StockQuantity: 0}, // rotation 2/1
		{StoreID: 1, PartID: "E1", StockQuantity: 5}, // stock, no sales
	}

	rows := Aggregate(sales, stock, domain.QueryFilter{StoreID: 1})
	require.Len(t, rows, 5)

	// Sorted rotations are [0, 0.25, 0.5, 1, 2], so the 75th percentile
	// lands exactly on 1 and the 25th on 0.25.
	high, low := RotationCutoffs(rows)
	assert.InDelta(t, 1.0, high, 1e-9)
	assert.InDelta(t, 0.25, low, 1e-9)

	expect := map[string]domain.Recommendation{
		"A1": domain.RecommendReviewLowRotation,
		"B1": domain.RecommendUnclassified,
		"C1": domain.RecommendKeep,
		"D1": domain.RecommendKeep,
		"E1": domain.RecommendReviewNoSales,
	}
	for part, want := range expect {
		row, ok := rowByPart(rows, part)
		require.True(t, ok, part)
		assert.Equal(t, want, row.Recommendation, part)
	}
}

func TestRotationCutoffsInterpolatesBetweenRanks(t *testing.T) {
	rows := []domain.InventoryRow{
		{Rotation: 4},
		{Rotation: 2},
		{Rotation: 1},
		{Rotation: 3},
	}

	// Sorted [1,2,3,4]: h = p*(n-1) puts the 75th percentile at rank 2.25
	// and the 25th at rank 0.75.
	high, low := RotationCutoffs(rows)
	assert.InDelta(t, 3.25, high, 1e-9)
	assert.InDelta(t, 1.75, low, 1e-9)
}

func TestRotationCutoffsSingleRow(t *testing.T) {
	high, low := RotationCutoffs([]domain.InventoryRow{{Rotation: 0.5}})
	assert.Equal(t, 0.5, high)
	assert.Equal(t, 0.5, low)
}

func TestRotationCutoffsEmpty(t *testing.T) {
	high, low := RotationCutoffs(nil)
	assert.Zero(t, high)
	assert.Zero(t, low)
}

func TestAggregateDropsZeroStockZeroSales(t *testing.T) {
	stock := []domain.StockRecord{
		{StoreID: 1, PartID: "A1", StockQuantity: 0},
		{StoreID: 1, PartID: "B1", StockQuantity: 2},
	}

	rows := Aggregate(nil, stock, domain.QueryFilter{StoreID: 1})
	require.Len(t, rows, 1)
	assert.Equal(t, "B1", rows[0].PartID)
}

func TestAggregateClampsNegativeStock(t *testing.T) {
	sales := []domain.SaleRecord{saleOn(1, "A1", 2, "2025-03-10")}
	stock := []domain.StockRecord{{StoreID: 1, PartID: "A1", StockQuantity: -5}}

	rows := Aggregate(sales, stock, domain.QueryFilter{StoreID: 1})
	require.Len(t, rows, 1)
	assert.Equal(t, 0, rows[0].StockQuantity)
	// Denominator is clamped stock + 1.
	assert.InDelta(t, 2.0, rows[0].Rotation, 1e-9)
}

func TestAggregateRespectsStoreAndWindow(t *testing.T) {
	sales := []domain.SaleRecord{
		saleOn(1, "A1", 1, "2025-03-10"),
		saleOn(2, "A1", 9, "2025-03-10"), // other store
		saleOn(1, "A1", 9, "2025-06-01"), // outside window
	}
	stock := []domain.StockRecord{
		{StoreID: 1, PartID: "A1", StockQuantity: 4},
		{StoreID: 2, PartID: "A1", StockQuantity: 4},
	}

	to, _ := time.Parse("2006-01-02", "2025-03-31")
	rows := Aggregate(sales, stock, domain.QueryFilter{StoreID: 1, To: to})
	require.Len(t, rows, 1)
	assert.Equal(t, int64(1), rows[0].StoreID)
	assert.Equal(t, 1, rows[0].SoldQuantity)
}

func TestAggregateEmptyStock(t *testing.T) {
	sales := []domain.SaleRecord{saleOn(1, "A1", 1, "2025-03-10")}
	rows := Aggregate(sales, nil, domain.QueryFilter{StoreID: 1})
	assert.Empty(t, rows)
}

func TestAggregateRecoveredPartStillCounts(t *testing.T) {
	// A part whose negative rows are offset by positive rows in the same
	// window keeps its net sold quantity.
	sales := []domain.SaleRecord{
		saleOn(1, "A1", 5, "2025-03-10"),
		saleOn(1, "A1", -2, "2025-03-12"),
	}
	stock := []domain.StockRecord{{StoreID: 1, PartID: "A1", StockQuantity: 2}}

	rows := Aggregate(sales, stock, domain.QueryFilter{StoreID: 1})
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].SoldQuantity)
	assert.InDelta(t, 1.0, rows[0].Rotation, 1e-9)
}
