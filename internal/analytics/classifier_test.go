package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hvaldivia/repuestos-analytics/internal/domain"
)

func TestClassifyNoSalesWinsOverCutoffs(t *testing.T) {
	// Rule 1 fires before the cutoff comparisons even when rotation 0 would
	// also satisfy the low-cutoff rule.
	got := Classify(0, 10, 0, 0.5, 0.1)
	assert.Equal(t, domain.RecommendReviewNoSales, got)
}

func TestClassifyKeep(t *testing.T) {
	assert.Equal(t, domain.RecommendKeep, Classify(20, 4, 4.0, 2.0, 0.5))
	// Exactly on the high cutoff still keeps.
	assert.Equal(t, domain.RecommendKeep, Classify(10, 4, 2.0, 2.0, 0.5))
}

func TestClassifyLowRotation(t *testing.T) {
	assert.Equal(t, domain.RecommendReviewLowRotation, Classify(1, 9, 0.1, 2.0, 0.5))
	// Exactly on the low cutoff reviews.
	assert.Equal(t, domain.RecommendReviewLowRotation, Classify(2, 3, 0.5, 2.0, 0.5))
}

func TestClassifyUnclassified(t *testing.T) {
	assert.Equal(t, domain.RecommendUnclassified, Classify(3, 2, 1.0, 2.0, 0.5))
}

func TestClassifyEqualCutoffsPrefersKeep(t *testing.T) {
	// When both cutoffs collapse to one value, a row sitting exactly on it
	// matches the keep rule first.
	got := Classify(5, 4, 1.0, 1.0, 1.0)
	assert.Equal(t, domain.RecommendKeep, got)
}

func TestClassifyZeroStockZeroSold(t *testing.T) {
	// Rule 1 needs stock on hand; with neither stock nor sales the cutoff
	// rules decide. The aggregator drops these rows before classification,
	// but the function stays total.
	got := Classify(0, 0, 0, 2.0, 0.5)
	assert.Equal(t, domain.RecommendReviewLowRotation, got)
}

func TestClassifyDeterministic(t *testing.T) {
	for i := 0; i < 10; i++ {
		assert.Equal(t, Classify(7, 3, 1.75, 1.5, 0.25), Classify(7, 3, 1.75, 1.5, 0.25))
	}
}
