package loader

import (
	"context"
	"sort"
	"time"

	"github.com/hvaldivia/repuestos-analytics/internal/domain"
)

// Source serves already-loaded CSV tables through the repository.DataSource
// interface, so the analytics service runs identically against files or
// Postgres. The tables are read-only after construction.
type Source struct {
	sales   []domain.SaleRecord
	stock   []domain.StockRecord
	catalog []domain.BrandCatalogEntry
}

// NewSource builds an in-memory source from pre-loaded tables.
func NewSource(sales []domain.SaleRecord, stock []domain.StockRecord, catalog []domain.BrandCatalogEntry) *Source {
	return &Source{sales: sales, stock: stock, catalog: catalog}
}

// Open loads the three analytics tables from their CSV paths.
func Open(salesPath, stockPath, catalogPath string) (*Source, error) {
	sales, err := LoadSales(salesPath)
	if err != nil {
		return nil, err
	}
	stock, err := LoadStock(stockPath)
	if err != nil {
		return nil, err
	}
	catalog, err := LoadCatalog(catalogPath)
	if err != nil {
		return nil, err
	}
	return NewSource(sales, stock, catalog), nil
}

func (s *Source) Sales(_ context.Context, filter domain.QueryFilter) ([]domain.SaleRecord, error) {
	out := make([]domain.SaleRecord, 0)
	for _, sale := range s.sales {
		if filter.Matches(sale) {
			out = append(out, sale)
		}
	}
	return out, nil
}

func (s *Source) Stock(_ context.Context, storeID int64) ([]domain.StockRecord, error) {
	out := make([]domain.StockRecord, 0)
	for _, st := range s.stock {
		if storeID == 0 || st.StoreID == storeID {
			out = append(out, st)
		}
	}
	return out, nil
}

func (s *Source) Catalog(_ context.Context) ([]domain.BrandCatalogEntry, error) {
	return s.catalog, nil
}

// StoreIDs lists the distinct stores appearing in the sales table, sorted
// ascending. It feeds the store selector in the UI.
func (s *Source) StoreIDs(_ context.Context) ([]int64, error) {
	seen := make(map[int64]struct{})
	for _, sale := range s.sales {
		seen[sale.StoreID] = struct{}{}
	}

	ids := make([]int64, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	return ids, nil
}

// SaleDateBounds returns the earliest and latest sale dates for a store
// (0 selects all stores), used to preset the UI date range. Both times are
// zero when the store has no sales.
func (s *Source) SaleDateBounds(_ context.Context, storeID int64) (min, max time.Time, err error) {
	for _, sale := range s.sales {
		if storeID != 0 && sale.StoreID != storeID {
			continue
		}
		if min.IsZero() || sale.SaleDate.Before(min) {
			min = sale.SaleDate
		}
		if max.IsZero() || sale.SaleDate.After(max) {
			max = sale.SaleDate
		}
	}
	return min, max, nil
}
