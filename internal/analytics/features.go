package analytics

import (
	"sort"
	"time"

	"github.com/hvaldivia/repuestos-analytics/internal/domain"
)

// PartEncoding is the integer encoding assigned to part IDs for one feature
// build. Codes are assigned over the lexicographically sorted distinct part
// IDs, so the mapping is deterministic within a build; it is not meant to be
// stable across builds or processes.
type PartEncoding struct {
	codeByPart map[string]int
	partByCode []string
}

// Code returns the integer code for a part ID.
func (e *PartEncoding) Code(partID string) (int, bool) {
	code, ok := e.codeByPart[partID]
	return code, ok
}

// Part resolves a code back to the original part ID.
func (e *PartEncoding) Part(code int) (string, bool) {
	if code < 0 || code >= len(e.partByCode) {
		return "", false
	}
	return e.partByCode[code], true
}

// Len returns the number of encoded parts.
func (e *PartEncoding) Len() int {
	return len(e.partByCode)
}

func newPartEncoding(parts map[string]struct{}) *PartEncoding {
	ordered := make([]string, 0, len(parts))
	for p := range parts {
		ordered = append(ordered, p)
	}
	sort.Strings(ordered)

	byPart := make(map[string]int, len(ordered))
	for code, p := range ordered {
		byPart[p] = code
	}

	return &PartEncoding{codeByPart: byPart, partByCode: ordered}
}

// FeatureSet is the engineered monthly demand table plus the part encoding it
// was built with. Predictions made on the rows round-trip back to part IDs
// through Encoding.
type FeatureSet struct {
	Rows     []domain.MonthlyDemandRow
	Encoding *PartEncoding
}

// BuildFeatures converts raw transactions into the monthly per-part feature
// table the forecast model trains on. Sales are restricted by the filter,
// dates truncated to calendar months (YYYYMM), quantities summed per
// (part, month), and rows ordered by (part code, month) before the time
// features are derived:
//
//   - Lag1 is the previous month's observed quantity, 0 for the first row of
//     each part's series.
//   - RollingMean3 averages the trailing window of up to three rows ending at
//     the current one, never crossing part boundaries.
//
// Missing values become 0, never null, so the first period of every series
// feeds the model a zero lag rather than a gap.
func BuildFeatures(sales []domain.SaleRecord, filter domain.QueryFilter) FeatureSet {
	type partMonth struct {
		part  string
		month int
	}

	totals := make(map[partMonth]float64)
	parts := make(map[string]struct{})
	for _, s := range sales {
		if !filter.Matches(s) {
			continue
		}
		totals[partMonth{part: s.PartID, month: MonthKey(s.SaleDate)}] += float64(s.Quantity)
		parts[s.PartID] = struct{}{}
	}

	enc := newPartEncoding(parts)

	rows := make([]domain.MonthlyDemandRow, 0, len(totals))
	for pm, qty := range totals {
		code, _ := enc.Code(pm.part)
		rows = append(rows, domain.MonthlyDemandRow{
			StoreID:  filter.StoreID,
			PartCode: code,
			Month:    pm.month,
			Quantity: qty,
		})
	}

	sort.Slice(rows, func(i, j int) bool {
		if rows[i].PartCode != rows[j].PartCode {
			return rows[i].PartCode < rows[j].PartCode
		}
		return rows[i].Month < rows[j].Month
	})

	for i := range rows {
		start := i
		for start > 0 && rows[start-1].PartCode == rows[i].PartCode && i-start < 2 {
			start--
		}

		if i > 0 && rows[i-1].PartCode == rows[i].PartCode {
			rows[i].Lag1 = rows[i-1].Quantity
		}

		var sum float64
		for j := start; j <= i; j++ {
			sum += rows[j].Quantity
		}
		rows[i].RollingMean3 = sum / float64(i-start+1)
	}

	return FeatureSet{Rows: rows, Encoding: enc}
}

// MonthKey truncates a date to its calendar month as a YYYYMM integer.
func MonthKey(t time.Time) int {
	return t.Year()*100 + int(t.Month())
}

// NextMonth advances a YYYYMM key by one calendar month, rolling the year
// over after December (202512 -> 202601).
func NextMonth(month int) int {
	if month%100 >= 12 {
		return (month/100+1)*100 + 1
	}
	return month + 1
}
