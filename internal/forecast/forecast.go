// Package forecast trains the monthly demand regressor and projects the next
// calendar month for every active part.
package forecast

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/hvaldivia/repuestos-analytics/internal/analytics"
	"github.com/hvaldivia/repuestos-analytics/internal/domain"
)

// Split partitions the engineered rows into train and holdout sets with a
// seeded shuffle, so the same configuration always yields the same split.
// With at least two rows the holdout is never empty and never swallows the
// whole set.
func Split(rows []domain.MonthlyDemandRow, cfg Config) (train, holdout []domain.MonthlyDemandRow) {
	cfg = cfg.normalized()
	if len(rows) < 2 {
		return rows, nil
	}

	perm := rand.New(rand.NewSource(cfg.Seed)).Perm(len(rows))

	nHoldout := int(math.Round(float64(len(rows)) * cfg.HoldoutFraction))
	if nHoldout < 1 {
		nHoldout = 1
	}
	if nHoldout >= len(rows) {
		nHoldout = len(rows) - 1
	}

	holdout = make([]domain.MonthlyDemandRow, 0, nHoldout)
	train = make([]domain.MonthlyDemandRow, 0, len(rows)-nHoldout)
	for i, p := range perm {
		if i < nHoldout {
			holdout = append(holdout, rows[p])
		} else {
			train = append(train, rows[p])
		}
	}

	return train, holdout
}

// Evaluate scores a trained model on the held-out rows, reporting mean
// absolute error, root-mean-squared error, and the explained-variance score.
func Evaluate(m *Model, holdout []domain.MonthlyDemandRow) domain.ModelMetrics {
	if len(holdout) == 0 {
		return domain.ModelMetrics{}
	}

	estimates := make([]float64, len(holdout))
	values := make([]float64, len(holdout))

	var absSum, sqSum float64
	for i, r := range holdout {
		pred := m.Predict(featureVector(r, m.useLag))
		estimates[i] = pred
		values[i] = r.Quantity

		d := pred - r.Quantity
		absSum += math.Abs(d)
		sqSum += d * d
	}

	n := float64(len(holdout))
	r2 := stat.RSquaredFrom(estimates, values, nil)
	if math.IsNaN(r2) || math.IsInf(r2, 0) {
		// A constant holdout has no variance to explain.
		r2 = 0
	}

	return domain.ModelMetrics{
		MAE:  absSum / n,
		RMSE: math.Sqrt(sqSum / n),
		R2:   r2,
	}
}

// PredictNextMonth builds one feature vector per part from its most recent
// history and scores it one calendar month past the latest observed month.
// Rows must come from the feature builder (ordered by part then month); every
// part present in rows has at least one observation by construction, so no
// zero-history prediction can occur. Results are unordered; callers sort by
// predicted quantity for display.
func PredictNextMonth(m *Model, rows []domain.MonthlyDemandRow, enc *analytics.PartEncoding) ([]domain.Prediction, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("forecast: no history to predict from: %w", domain.ErrNoData)
	}

	maxMonth := 0
	lastRows := make(map[int][]domain.MonthlyDemandRow)
	for _, r := range rows {
		if r.Month > maxMonth {
			maxMonth = r.Month
		}
		tail := append(lastRows[r.PartCode], r)
		if len(tail) > 3 {
			tail = tail[1:]
		}
		lastRows[r.PartCode] = tail
	}
	targetMonth := analytics.NextMonth(maxMonth)

	predictions := make([]domain.Prediction, 0, len(lastRows))
	for code, tail := range lastRows {
		partID, ok := enc.Part(code)
		if !ok {
			return nil, fmt.Errorf("forecast: part code %d missing from encoding", code)
		}

		var sum float64
		for _, r := range tail {
			sum += r.Quantity
		}
		latest := tail[len(tail)-1]

		row := domain.MonthlyDemandRow{
			PartCode:     code,
			Month:        targetMonth,
			Lag1:         latest.Quantity,
			RollingMean3: sum / float64(len(tail)),
		}

		predictions = append(predictions, domain.Prediction{
			PartID:            partID,
			PredictedQuantity: m.Predict(featureVector(row, m.useLag)),
			TargetMonth:       targetMonth,
		})
	}

	return predictions, nil
}

// SortPredictions orders a prediction slice by predicted quantity descending,
// the order the dashboard displays.
func SortPredictions(predictions []domain.Prediction) {
	sort.Slice(predictions, func(i, j int) bool {
		if predictions[i].PredictedQuantity != predictions[j].PredictedQuantity {
			return predictions[i].PredictedQuantity > predictions[j].PredictedQuantity
		}
		return predictions[i].PartID < predictions[j].PartID
	})
}
