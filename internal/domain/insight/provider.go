// Package insight runs the predictive add-ons (clustering, classification
// and forecasting) as interchangeable providers over a working table.
package insight

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/okian/mailboard/internal/domain/model"
)

// Provider fits a model on a table.
type Provider interface {
	Name() string
	Fit(ctx context.Context, t *model.Table) (Model, error)
}

// Model produces derived per-row columns for a table. Results are computed
// per call and never written back into the table.
type Model interface {
	Predict(ctx context.Context, t *model.Table) (Result, error)
}

// Kind classifies a result.
type Kind string

// Result kinds.
const (
	KindClusters      Kind = "clusters"
	KindProbabilities Kind = "probabilities"
	KindForecast      Kind = "forecast"
)

// Score is one row's derived value: a cluster id or a probability.
type Score struct {
	Row       int     `json:"row"` // index into the predicted table
	LeadEmail string  `json:"lead_email"`
	Campaign  string  `json:"campaign"`
	Cluster   int     `json:"cluster"`
	Value     float64 `json:"value"`
}

// Cluster summarizes one cluster in source units.
type Cluster struct {
	ID       int       `json:"id"`
	Size     int       `json:"size"`
	Centroid []float64 `json:"centroid"`
}

// Point is one day of a forecast.
type Point struct {
	Date      time.Time `json:"date"`
	Actual    float64   `json:"actual"`
	Predicted float64   `json:"predicted"`
	Lower     float64   `json:"lower"`
	Upper     float64   `json:"upper"`
	Future    bool      `json:"future"`
}

// Result is the output of one provider run.
type Result struct {
	Provider string             `json:"provider"`
	Kind     Kind               `json:"kind"`
	Features []string           `json:"features,omitempty"`
	Scores   []Score            `json:"scores,omitempty"`
	Clusters []Cluster          `json:"clusters,omitempty"`
	Forecast []Point            `json:"forecast,omitempty"`
	Metrics  map[string]float64 `json:"metrics,omitempty"`
}

// Top returns the n highest scores, ties in row order. n <= 0 returns all.
func (r Result) Top(n int) []Score {
	out := make([]Score, len(r.Scores))
	copy(out, r.Scores)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}

// Run fits p on t and predicts over the same table.
func Run(ctx context.Context, p Provider, t *model.Table) (Result, error) {
	m, err := p.Fit(ctx, t)
	if err != nil {
		return Result{}, err
	}
	res, err := m.Predict(ctx, t)
	if err != nil {
		return Result{}, fmt.Errorf("%s predict: %w", p.Name(), err)
	}
	return res, nil
}

// Providers returns every built-in provider in display order.
func Providers(opts ...Option) []Provider {
	return []Provider{
		NewBehaviorClusters(opts...),
		NewGeoClusters(opts...),
		NewOpenClassifier(opts...),
		NewBotClassifier(opts...),
		NewOpensForecaster(opts...),
	}
}

// Lookup finds a provider by name.
func Lookup(name string, opts ...Option) (Provider, error) {
	for _, p := range Providers(opts...) {
		if p.Name() == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, name)
}
