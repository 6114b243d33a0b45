package analytics

import (
	"sort"

	"github.com/hvaldivia/repuestos-analytics/internal/domain"
)

// DetectOpportunities extracts the unmet-demand signal from a sales slice:
// every negative-quantity row is one failed sale attempt, counted per part.
// Units are deliberately ignored; three attempts of -1 and -5 and -2 are
// three attempts. The result is sorted by failed attempts descending for
// stable output, and an empty slice means no stockouts were observed in the
// window.
func DetectOpportunities(sales []domain.SaleRecord) []domain.StockoutOpportunity {
	attempts := make(map[string]int)
	for _, s := range sales {
		if s.Quantity < 0 {
			attempts[s.PartID]++
		}
	}

	out := make([]domain.StockoutOpportunity, 0, len(attempts))
	for part, n := range attempts {
		out = append(out, domain.StockoutOpportunity{PartID: part, FailedAttempts: n})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].FailedAttempts != out[j].FailedAttempts {
			return out[i].FailedAttempts > out[j].FailedAttempts
		}
		return out[i].PartID < out[j].PartID
	})

	return out
}
