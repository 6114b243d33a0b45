package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/hvaldivia/repuestos-analytics/internal/domain"
	"github.com/hvaldivia/repuestos-analytics/internal/repository"
)

// AnalyticsRepository serves the sales, inventory and brand catalog tables
// from Postgres. It implements repository.DataSource.
type AnalyticsRepository struct {
	db *sqlx.DB
}

func NewAnalyticsRepository(db *sqlx.DB) repository.DataSource {
	return &AnalyticsRepository{db: db}
}

func (r *AnalyticsRepository) Sales(ctx context.Context, filter domain.QueryFilter) ([]domain.SaleRecord, error) {
	query := `
		SELECT receipt_id, store_id, part_id, quantity, sale_date
		FROM sales
	`

	var args []interface{}
	var conditions []string
	argCounter := 1

	if filter.StoreID != 0 {
		conditions = append(conditions, fmt.Sprintf("store_id = $%d", argCounter))
		args = append(args, filter.StoreID)
		argCounter++
	}

	if !filter.From.IsZero() {
		conditions = append(conditions, fmt.Sprintf("sale_date >= $%d", argCounter))
		args = append(args, filter.From)
		argCounter++
	}

	if !filter.To.IsZero() {
		conditions = append(conditions, fmt.Sprintf("sale_date <= $%d", argCounter))
		args = append(args, filter.To)
		argCounter++
	}

	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}

	var sales []domain.SaleRecord
	if err := r.db.SelectContext(ctx, &sales, query, args...); err != nil {
		return nil, fmt.Errorf("error getting sales: %w", err)
	}

	return sales, nil
}

func (r *AnalyticsRepository) Stock(ctx context.Context, storeID int64) ([]domain.StockRecord, error) {
	query := `
		SELECT store_id, part_id, stock_quantity
		FROM inventory
		WHERE $1 = 0 OR store_id = $1
	`

	var stock []domain.StockRecord
	if err := r.db.SelectContext(ctx, &stock, query, storeID); err != nil {
		return nil, fmt.Errorf("error getting stock: %w", err)
	}

	return stock, nil
}

func (r *AnalyticsRepository) Catalog(ctx context.Context) ([]domain.BrandCatalogEntry, error) {
	query := `
		SELECT letter_prefix, brand_name
		FROM brand_catalog
		ORDER BY letter_prefix
	`

	var catalog []domain.BrandCatalogEntry
	if err := r.db.SelectContext(ctx, &catalog, query); err != nil {
		return nil, fmt.Errorf("error getting brand catalog: %w", err)
	}

	return catalog, nil
}

func (r *AnalyticsRepository) SaleDateBounds(ctx context.Context, storeID int64) (time.Time, time.Time, error) {
	query := `
		SELECT MIN(sale_date), MAX(sale_date)
		FROM sales
		WHERE $1 = 0 OR store_id = $1
	`

	var min, max sql.NullTime
	if err := r.db.QueryRowContext(ctx, query, storeID).Scan(&min, &max); err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("error getting sale date bounds: %w", err)
	}

	return min.Time, max.Time, nil
}

func (r *AnalyticsRepository) StoreIDs(ctx context.Context) ([]int64, error) {
	query := `
		SELECT DISTINCT store_id
		FROM sales
		ORDER BY store_id
	`

	var ids []int64
	if err := r.db.SelectContext(ctx, &ids, query); err != nil {
		return nil, fmt.Errorf("error getting store ids: %w", err)
	}

	return ids, nil
}
