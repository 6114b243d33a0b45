package repository

import (
	"context"
	"time"

	"github.com/hvaldivia/repuestos-analytics/internal/domain"
)

// DataSource supplies the three read-only tables every analytical view is
// computed from. Implementations may pre-filter sales by the query filter;
// the analytics core re-applies the filter either way, so over-returning is
// harmless and under-returning is not possible.
type DataSource interface {
	Sales(ctx context.Context, filter domain.QueryFilter) ([]domain.SaleRecord, error)
	Stock(ctx context.Context, storeID int64) ([]domain.StockRecord, error)
	Catalog(ctx context.Context) ([]domain.BrandCatalogEntry, error)
	StoreIDs(ctx context.Context) ([]int64, error)

	// SaleDateBounds reports the earliest and latest sale dates for a store
	// (0 selects all stores), used to preset the dashboard's date range.
	// Both times are zero when the store has no sales.
	SaleDateBounds(ctx context.Context, storeID int64) (min, max time.Time, err error)
}

// UserRepository resolves dashboard accounts for login.
type UserRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
