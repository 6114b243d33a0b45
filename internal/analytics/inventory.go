package analytics

import (
	"math"
	"sort"

	"github.com/hvaldivia/repuestos-analytics/internal/domain"
)

const (
	highQuantile = 0.75
	lowQuantile  = 0.25
)

// Aggregate builds the classified inventory table for one store. Sales are
// restricted to the filter's store and date window, summed per part, and
// left-joined onto the store's stock snapshot (a part with stock but no sales
// gets sold=0). Raw negative stock values are clamped to zero here, so
// upstream loaders do not need to normalize. Rows with neither stock nor
// sales carry no signal and are dropped before the quantile cutoffs are
// computed, then every surviving row is classified against those cutoffs.
//
// The returned order is unspecified; callers sort for display. An empty stock
// snapshot for the store yields an empty table, not an error.
func Aggregate(sales []domain.SaleRecord, stock []domain.StockRecord, filter domain.QueryFilter) []domain.InventoryRow {
	soldByPart := make(map[string]int)
	for _, s := range sales {
		if !filter.Matches(s) {
			continue
		}
		soldByPart[s.PartID] += s.Quantity
	}

	rows := make([]domain.InventoryRow, 0, len(stock))
	for _, st := range stock {
		if filter.StoreID != 0 && st.StoreID != filter.StoreID {
			continue
		}

		stockQty := st.StockQuantity
		if stockQty < 0 {
			stockQty = 0
		}

		sold := soldByPart[st.PartID]
		if stockQty == 0 && sold == 0 {
			continue
		}

		rows = append(rows, domain.InventoryRow{
			StoreID:       st.StoreID,
			PartID:        st.PartID,
			StockQuantity: stockQty,
			SoldQuantity:  sold,
			Rotation:      float64(sold) / float64(stockQty+1),
		})
	}

	if len(rows) == 0 {
		return rows
	}

	high, low := rotationCutoffs(rows)
	for i := range rows {
		rows[i].Recommendation = Classify(rows[i].SoldQuantity, rows[i].StockQuantity, rows[i].Rotation, high, low)
	}

	return rows
}

// RotationCutoffs returns the high (75th percentile) and low (25th
// percentile) rotation thresholds over an inventory row set. The cutoffs are
// recomputed per query; they are properties of the filtered rows, not
// constants. An empty row set yields zero cutoffs.
func RotationCutoffs(rows []domain.InventoryRow) (high, low float64) {
	return rotationCutoffs(rows)
}

func rotationCutoffs(rows []domain.InventoryRow) (high, low float64) {
	if len(rows) == 0 {
		return 0, 0
	}

	rotations := make([]float64, len(rows))
	for i, r := range rows {
		rotations[i] = r.Rotation
	}
	sort.Float64s(rotations)

	return percentile(rotations, highQuantile), percentile(rotations, lowQuantile)
}

// percentile interpolates the p-th quantile over a sorted, non-empty slice by
// closest ranks: h = p*(n-1), linear between x[floor(h)] and x[ceil(h)]. This
// is the interpolation the rotation thresholds are defined against.
func percentile(sorted []float64, p float64) float64 {
	h := p * float64(len(sorted)-1)
	lo := int(math.Floor(h))
	hi := int(math.Ceil(h))
	if lo == hi {
		return sorted[lo]
	}
	return sorted[lo] + (h-float64(lo))*(sorted[hi]-sorted[lo])
}
