package domain

import "strings"

// Recommendation is the rotation category assigned to an inventory row.
type Recommendation string

const (
	// RecommendKeep marks parts rotating at or above the high cutoff.
	RecommendKeep Recommendation = "keep"
	// RecommendReviewNoSales marks parts holding stock with zero sales.
	RecommendReviewNoSales Recommendation = "review_no_sales"
	// RecommendReviewLowRotation marks parts at or below the low cutoff.
	RecommendReviewLowRotation Recommendation = "review_low_rotation"
	// RecommendUnclassified marks parts between both cutoffs.
	RecommendUnclassified Recommendation = "unclassified"
)

var recommendationLabels = map[Recommendation]string{
	RecommendKeep:              "Maintain stock",
	RecommendReviewNoSales:     "Review (stock with no sales)",
	RecommendReviewLowRotation: "Review",
	RecommendUnclassified:      "Evaluate further",
}

// Label returns a human-readable label for a recommendation.
func (r Recommendation) Label() string {
	if label, ok := recommendationLabels[r]; ok {
		return label
	}

	return "Unknown"
}

// ParseRecommendation returns the recommendation for a given value
// (case-insensitive) and whether it is known.
func ParseRecommendation(value string) (Recommendation, bool) {
	r := Recommendation(strings.ToLower(strings.TrimSpace(value)))
	_, ok := recommendationLabels[r]

	return r, ok
}
