package analytics

import (
	"sort"

	"github.com/hvaldivia/repuestos-analytics/internal/domain"
)

// FilterSales returns the sales matching the filter, preserving input order.
func FilterSales(sales []domain.SaleRecord, filter domain.QueryFilter) []domain.SaleRecord {
	out := make([]domain.SaleRecord, 0, len(sales))
	for _, s := range sales {
		if filter.Matches(s) {
			out = append(out, s)
		}
	}
	return out
}

// TopParts sums quantities per part over the filtered sales and returns the
// best sellers, descending, limited to n (n <= 0 means no limit).
func TopParts(sales []domain.SaleRecord, filter domain.QueryFilter, n int) []domain.PartSales {
	totals := make(map[string]int)
	for _, s := range sales {
		if filter.Matches(s) {
			totals[s.PartID] += s.Quantity
		}
	}

	out := make([]domain.PartSales, 0, len(totals))
	for part, qty := range totals {
		out = append(out, domain.PartSales{PartID: part, Quantity: qty})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].PartID < out[j].PartID
	})

	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// SalesByBrand enriches the filtered sales with the brand looked up from the
// first character of each part ID and sums quantities per brand. Parts whose
// prefix is missing from the catalog land in the empty-brand bucket. Results
// are sorted by quantity descending.
func SalesByBrand(sales []domain.SaleRecord, catalog []domain.BrandCatalogEntry, filter domain.QueryFilter) []domain.BrandSales {
	brandByPrefix := make(map[string]string, len(catalog))
	for _, e := range catalog {
		brandByPrefix[e.LetterPrefix] = e.BrandName
	}

	totals := make(map[string]int)
	for _, s := range sales {
		if !filter.Matches(s) || s.PartID == "" {
			continue
		}
		totals[brandByPrefix[s.PartID[:1]]] += s.Quantity
	}

	out := make([]domain.BrandSales, 0, len(totals))
	for brand, qty := range totals {
		out = append(out, domain.BrandSales{StoreID: filter.StoreID, Brand: brand, Quantity: qty})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Quantity != out[j].Quantity {
			return out[i].Quantity > out[j].Quantity
		}
		return out[i].Brand < out[j].Brand
	})

	return out
}
