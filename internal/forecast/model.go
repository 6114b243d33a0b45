package forecast

import (
	"fmt"
	"math/rand"

	"github.com/hvaldivia/repuestos-analytics/internal/domain"
)

// ModelKind selects the ensemble family used for demand regression. Both
// kinds consume the same feature set; the choice is configuration, not a
// separate code path.
type ModelKind string

const (
	GradientBoosted ModelKind = "gradient_boosted"
	RandomForest    ModelKind = "random_forest"
)

// Config controls training. Holdout fraction and seed live here rather than
// in code so every run is reproducible given the same configuration.
type Config struct {
	ModelKind       ModelKind
	NEstimators     int
	LearningRate    float64
	MaxDepth        int
	MinLeaf         int
	HoldoutFraction float64
	Seed            int64
	UseLagFeatures  bool
}

// DefaultConfig mirrors the tuning the dashboard ships with.
func DefaultConfig() Config {
	return Config{
		ModelKind:       GradientBoosted,
		NEstimators:     100,
		LearningRate:    0.1,
		MaxDepth:        3,
		MinLeaf:         1,
		HoldoutFraction: 0.2,
		Seed:            42,
		UseLagFeatures:  true,
	}
}

func (c Config) normalized() Config {
	if c.ModelKind == "" {
		c.ModelKind = GradientBoosted
	}
	if c.NEstimators <= 0 {
		c.NEstimators = 100
	}
	if c.LearningRate <= 0 {
		c.LearningRate = 0.1
	}
	if c.MaxDepth <= 0 {
		c.MaxDepth = 3
	}
	if c.MinLeaf <= 0 {
		c.MinLeaf = 1
	}
	if c.HoldoutFraction <= 0 || c.HoldoutFraction >= 1 {
		c.HoldoutFraction = 0.2
	}
	return c
}

// Model is a trained demand regressor.
type Model struct {
	kind         ModelKind
	base         float64
	learningRate float64
	trees        []*treeNode
	useLag       bool
}

// Predict scores one feature vector.
func (m *Model) Predict(x []float64) float64 {
	switch m.kind {
	case RandomForest:
		var sum float64
		for _, t := range m.trees {
			sum += t.predict(x)
		}
		return sum / float64(len(m.trees))
	default:
		pred := m.base
		for _, t := range m.trees {
			pred += m.learningRate * t.predict(x)
		}
		return pred
	}
}

// Train fits an ensemble on the engineered rows. Training on zero rows is
// undefined by contract, so it is rejected here; callers guard the empty
// window before ever reaching the model.
func Train(rows []domain.MonthlyDemandRow, cfg Config) (*Model, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("forecast: cannot train on zero rows: %w", domain.ErrNoData)
	}
	cfg = cfg.normalized()

	features := make([][]float64, len(rows))
	target := make([]float64, len(rows))
	for i, r := range rows {
		features[i] = featureVector(r, cfg.UseLagFeatures)
		target[i] = r.Quantity
	}

	m := &Model{kind: cfg.ModelKind, learningRate: cfg.LearningRate, useLag: cfg.UseLagFeatures}
	switch cfg.ModelKind {
	case RandomForest:
		fitRandomForest(m, features, target, cfg)
	case GradientBoosted:
		fitGradientBoosted(m, features, target, cfg)
	default:
		return nil, fmt.Errorf("forecast: unknown model kind %q", cfg.ModelKind)
	}

	return m, nil
}

func fitGradientBoosted(m *Model, features [][]float64, target []float64, cfg Config) {
	idx := make([]int, len(target))
	var sum float64
	for i, y := range target {
		idx[i] = i
		sum += y
	}
	m.base = sum / float64(len(target))

	current := make([]float64, len(target))
	for i := range current {
		current[i] = m.base
	}

	residual := make([]float64, len(target))
	for iter := 0; iter < cfg.NEstimators; iter++ {
		for i := range target {
			residual[i] = target[i] - current[i]
		}

		tree := fitTree(features, residual, idx, cfg.MaxDepth, cfg.MinLeaf)
		m.trees = append(m.trees, tree)

		for i := range current {
			current[i] += cfg.LearningRate * tree.predict(features[i])
		}
	}
}

func fitRandomForest(m *Model, features [][]float64, target []float64, cfg Config) {
	rng := rand.New(rand.NewSource(cfg.Seed))
	n := len(target)

	for iter := 0; iter < cfg.NEstimators; iter++ {
		sample := make([]int, n)
		for i := range sample {
			sample[i] = rng.Intn(n)
		}
		m.trees = append(m.trees, fitTree(features, target, sample, cfg.MaxDepth, cfg.MinLeaf))
	}
}

// featureVector encodes one row the way the model expects. Dropping the lag
// features is a configuration choice for older deployments that trained on
// [part, month] only.
func featureVector(r domain.MonthlyDemandRow, useLag bool) []float64 {
	if !useLag {
		return []float64{float64(r.PartCode), float64(r.Month)}
	}
	return []float64{float64(r.PartCode), float64(r.Month), r.Lag1, r.RollingMean3}
}
