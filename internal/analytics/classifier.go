package analytics

import "github.com/hvaldivia/repuestos-analytics/internal/domain"

// Classify assigns a rotation category to one inventory row. Rules are
// evaluated in order and the first match wins:
//
//  1. stock held but nothing sold        -> review_no_sales
//  2. rotation >= highCutoff             -> keep
//  3. rotation <= lowCutoff              -> review_low_rotation
//  4. otherwise                          -> unclassified
//
// When both cutoffs collapse to the same value, rule 2 still runs before
// rule 3, so a row sitting exactly on the shared cutoff is classified keep.
// Rotation is precomputed by the caller with a +1 denominator, so the
// function is total over its inputs.
func Classify(soldQty, stockQty int, rotation, highCutoff, lowCutoff float64) domain.Recommendation {
	switch {
	case soldQty == 0 && stockQty > 0:
		return domain.RecommendReviewNoSales
	case rotation >= highCutoff:
		return domain.RecommendKeep
	case rotation <= lowCutoff:
		return domain.RecommendReviewLowRotation
	default:
		return domain.RecommendUnclassified
	}
}
