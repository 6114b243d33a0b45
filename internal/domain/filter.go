package domain

import "time"

// QueryFilter selects the store and inclusive date window every analytical
// view is computed over. StoreID 0 selects all stores; zero From/To means the
// window is unbounded on that side.
type QueryFilter struct {
	StoreID int64     `json:"store_id"`
	From    time.Time `json:"date_start"`
	To      time.Time `json:"date_end"`
}

// Matches reports whether a sale falls inside the filter. The date window is
// inclusive on both ends.
func (f QueryFilter) Matches(s SaleRecord) bool {
	if f.StoreID != 0 && s.StoreID != f.StoreID {
		return false
	}
	if !f.From.IsZero() && s.SaleDate.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && s.SaleDate.After(f.To) {
		return false
	}
	return true
}
