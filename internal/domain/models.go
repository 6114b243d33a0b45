package domain

import (
	"errors"
	"time"
)

// ErrNoData is returned when a query window contains no history to work with.
var ErrNoData = errors.New("no data for the selected store and date range")

// SaleRecord is a single point-of-sale transaction. A negative quantity means
// the sale was attempted against insufficient stock.
type SaleRecord struct {
	ReceiptID string    `json:"receipt_id" db:"receipt_id"`
	StoreID   int64     `json:"store_id" db:"store_id"`
	PartID    string    `json:"part_id" db:"part_id"`
	Quantity  int       `json:"quantity" db:"quantity"`
	SaleDate  time.Time `json:"sale_date" db:"sale_date"`
}

// StockRecord is the current stock snapshot for one (store, part) pair.
type StockRecord struct {
	StoreID       int64  `json:"store_id" db:"store_id"`
	PartID        string `json:"part_id" db:"part_id"`
	StockQuantity int    `json:"stock_quantity" db:"stock_quantity"`
}

// BrandCatalogEntry maps the first character of a part ID to a brand name.
type BrandCatalogEntry struct {
	LetterPrefix string `json:"letter_prefix" db:"letter_prefix"`
	BrandName    string `json:"brand_name" db:"brand_name"`
}

// InventoryRow is one classified row of the stock-rotation table. Rebuilt on
// every query, never persisted.
type InventoryRow struct {
	StoreID        int64          `json:"store_id"`
	PartID         string         `json:"part_id"`
	StockQuantity  int            `json:"stock_quantity"`
	SoldQuantity   int            `json:"sold_quantity"`
	Rotation       float64        `json:"rotation"`
	Recommendation Recommendation `json:"recommendation"`
}

// StockoutOpportunity counts recorded sale attempts against missing stock for
// one part. An empty opportunity list means no stockouts were observed, which
// is a positive signal, not missing data.
type StockoutOpportunity struct {
	PartID         string `json:"part_id"`
	FailedAttempts int    `json:"failed_attempts"`
}

// MonthlyDemandRow is one engineered time-series observation. Rows are ordered
// by (PartCode, Month); reordering breaks the lag semantics.
type MonthlyDemandRow struct {
	StoreID      int64   `json:"store_id"`
	PartCode     int     `json:"part_code"`
	Month        int     `json:"month"` // YYYYMM
	Quantity     float64 `json:"quantity"`
	Lag1         float64 `json:"lag_1"`
	RollingMean3 float64 `json:"rolling_mean_3"`
}

// ModelMetrics reports forecast model quality on the held-out split.
type ModelMetrics struct {
	MAE  float64 `json:"mae"`
	RMSE float64 `json:"rmse"`
	R2   float64 `json:"r2"`
}

// Prediction is the projected demand for one part in the target month.
type Prediction struct {
	PartID            string  `json:"part_id"`
	PredictedQuantity float64 `json:"predicted_quantity"`
	TargetMonth       int     `json:"target_month"` // YYYYMM
}

// ForecastResult bundles everything the forecast view renders.
type ForecastResult struct {
	TargetMonth int          `json:"target_month"`
	Metrics     ModelMetrics `json:"metrics"`
	Predictions []Prediction `json:"predictions"`
}

// BrandSales is the per-brand sales total for the filtered window. Brand is
// empty when the part prefix has no catalog entry.
type BrandSales struct {
	StoreID  int64  `json:"store_id"`
	Brand    string `json:"brand"`
	Quantity int    `json:"quantity"`
}

// PartSales is a per-part sales total, used for the top-products view.
type PartSales struct {
	PartID   string `json:"part_id"`
	Quantity int    `json:"quantity"`
}

// RecommendationReport is the stock-recommendation view: the classified
// inventory rows split the way the dashboard displays them, plus the stockout
// opportunities derived from the same filtered sales.
type RecommendationReport struct {
	Keep          []InventoryRow        `json:"keep"`
	NoSales       []InventoryRow        `json:"no_sales"`
	LowRotation   []InventoryRow        `json:"low_rotation"`
	Unclassified  []InventoryRow        `json:"unclassified"`
	Opportunities []StockoutOpportunity `json:"opportunities"`
	HighCutoff    float64               `json:"high_cutoff"`
	LowCutoff     float64               `json:"low_cutoff"`
}

// User is an account allowed to open the dashboard.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Username     string    `json:"username" db:"username"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// Session identifies an authenticated user at the presentation edge. The
// analytics pipeline never sees it.
type Session struct {
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}
