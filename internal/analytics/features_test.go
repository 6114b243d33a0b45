package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvaldivia/repuestos-analytics/internal/domain"
)

func mustDay(t *testing.T, day string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", day)
	require.NoError(t, err)
	return d
}

func TestBuildFeaturesMonthlyTotalsAndOrder(t *testing.T) {
	sales := []domain.SaleRecord{
		saleOn(1, "B1", 4, "2025-01-10"),
		saleOn(1, "B1", 6, "2025-01-20"), // same month, summed
		saleOn(1, "B1", 20, "2025-02-05"),
		saleOn(1, "A1", 3, "2025-02-01"),
	}

	set := BuildFeatures(sales, domain.QueryFilter{StoreID: 1})
	require.Len(t, set.Rows, 3)

	// Codes follow the lexicographic part order: A1 before B1.
	codeA, ok := set.Encoding.Code("A1")
	require.True(t, ok)
	codeB, ok := set.Encoding.Code("B1")
	require.True(t, ok)
	assert.Equal(t, 0, codeA)
	assert.Equal(t, 1, codeB)

	// Rows ordered by (code, month).
	assert.Equal(t, []int{202502, 202501, 202502}, []int{set.Rows[0].Month, set.Rows[1].Month, set.Rows[2].Month})
	assert.Equal(t, 3.0, set.Rows[0].Quantity)
	assert.Equal(t, 10.0, set.Rows[1].Quantity)
	assert.Equal(t, 20.0, set.Rows[2].Quantity)
}

func TestBuildFeaturesLagAndRollingMean(t *testing.T) {
	sales := []domain.SaleRecord{
		saleOn(1, "A1", 10, "2025-01-15"),
		saleOn(1, "A1", 20, "2025-02-15"),
		saleOn(1, "A1", 30, "2025-03-15"),
		saleOn(1, "A1", 40, "2025-04-15"),
	}

	set := BuildFeatures(sales, domain.QueryFilter{StoreID: 1})
	require.Len(t, set.Rows, 4)

	// First row of a series has lag 0, never null.
	assert.Equal(t, 0.0, set.Rows[0].Lag1)
	assert.Equal(t, 10.0, set.Rows[0].RollingMean3)

	assert.Equal(t, 10.0, set.Rows[1].Lag1)
	assert.Equal(t, 15.0, set.Rows[1].RollingMean3) // mean(10, 20)

	assert.Equal(t, 20.0, set.Rows[2].Lag1)
	assert.Equal(t, 20.0, set.Rows[2].RollingMean3) // mean(10, 20, 30)

	assert.Equal(t, 30.0, set.Rows[3].Lag1)
	assert.Equal(t, 30.0, set.Rows[3].RollingMean3) // trailing three only
}

func TestBuildFeaturesNeverCrossesPartBoundaries(t *testing.T) {
	sales := []domain.SaleRecord{
		saleOn(1, "A1", 100, "2025-01-15"),
		saleOn(1, "A1", 200, "2025-02-15"),
		saleOn(1, "B1", 7, "2025-03-15"),
	}

	set := BuildFeatures(sales, domain.QueryFilter{StoreID: 1})
	require.Len(t, set.Rows, 3)

	// B1's first row must not see A1's history.
	last := set.Rows[2]
	code, _ := set.Encoding.Code("B1")
	assert.Equal(t, code, last.PartCode)
	assert.Equal(t, 0.0, last.Lag1)
	assert.Equal(t, 7.0, last.RollingMean3)
}

func TestBuildFeaturesEncodingRoundTrip(t *testing.T) {
	sales := []domain.SaleRecord{
		saleOn(1, "C3", 1, "2025-01-01"),
		saleOn(1, "A1", 1, "2025-01-01"),
		saleOn(1, "B2", 1, "2025-01-01"),
	}

	set := BuildFeatures(sales, domain.QueryFilter{StoreID: 1})
	require.Equal(t, 3, set.Encoding.Len())

	for _, part := range []string{"A1", "B2", "C3"} {
		code, ok := set.Encoding.Code(part)
		require.True(t, ok)
		back, ok := set.Encoding.Part(code)
		require.True(t, ok)
		assert.Equal(t, part, back)
	}

	_, ok := set.Encoding.Part(99)
	assert.False(t, ok)
}

func TestBuildFeaturesEmptyWindow(t *testing.T) {
	sales := []domain.SaleRecord{saleOn(2, "A1", 1, "2025-01-01")}
	set := BuildFeatures(sales, domain.QueryFilter{StoreID: 1})
	assert.Empty(t, set.Rows)
	assert.Equal(t, 0, set.Encoding.Len())
}

func TestMonthKey(t *testing.T) {
	assert.Equal(t, 202503, MonthKey(mustDay(t, "2025-03-31")))
	assert.Equal(t, 202512, MonthKey(mustDay(t, "2025-12-01")))
}

func TestNextMonthRollsOverYear(t *testing.T) {
	assert.Equal(t, 202504, NextMonth(202503))
	assert.Equal(t, 202601, NextMonth(202512))
}
