package service

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/okian/mailboard/internal/adapters/chart"
	"github.com/okian/mailboard/internal/domain/aggregate"
	"github.com/okian/mailboard/internal/domain/insight"
	"github.com/okian/mailboard/pkg/metrics"
)

// ChartNames lists the renderable charts: every breakdown dimension plus the
// opens forecast.
func ChartNames() []string {
	dims := aggregate.Dimensions()
	names := make([]string, 0, len(dims)+1)
	for _, d := range dims {
		names = append(names, string(d))
	}
	return append(names, insight.NameOpensForecaster)
}

// Chart renders the named chart of dataset id under q as PNG into w.
func (s *Service) Chart(ctx context.Context, id, name string, q Query, w io.Writer) error {
	spec, err := s.chartSpec(ctx, id, name, q)
	if err != nil {
		return err
	}
	if err := chart.Render(w, spec); err != nil {
		return err
	}
	metrics.RecordChartRendered(string(spec.Kind))
	return nil
}

func (s *Service) chartSpec(ctx context.Context, id, name string, q Query) (chart.Spec, error) {
	if name == insight.NameOpensForecaster {
		return s.forecastSpec(ctx, id, q)
	}

	dim := aggregate.Dimension(name)
	sec, err := s.Breakdown(ctx, id, dim, q)
	if errors.Is(err, aggregate.ErrUnknownDimension) {
		return chart.Spec{}, fmt.Errorf("%w: %q", ErrUnknownChart, name)
	}
	if err != nil {
		return chart.Spec{}, err
	}
	spec := chart.Spec{Kind: chart.KindBar, Title: sec.Title}
	if dim == aggregate.TrafficShare || dim == aggregate.EngagementDistribution {
		spec.Kind = chart.KindPie
	}
	for _, g := range sec.Groups {
		spec.Labels = append(spec.Labels, g.Key)
		spec.Values = append(spec.Values, float64(g.Count))
	}
	return spec, nil
}

func (s *Service) forecastSpec(ctx context.Context, id string, q Query) (chart.Spec, error) {
	rep, err := s.Insight(ctx, id, insight.NameOpensForecaster, q)
	if err != nil {
		return chart.Spec{}, err
	}
	if rep.Result == nil {
		return chart.Spec{}, &insight.InsufficientDataError{Provider: rep.Provider, Reason: rep.Warning}
	}
	spec := chart.Spec{Kind: chart.KindLine, Title: "Daily Opens Forecast"}
	for _, p := range rep.Result.Forecast {
		spec.Times = append(spec.Times, p.Date)
		spec.Values = append(spec.Values, p.Predicted)
		spec.Actual = append(spec.Actual, p.Actual)
		spec.Lower = append(spec.Lower, p.Lower)
		spec.Upper = append(spec.Upper, p.Upper)
	}
	return spec, nil
}
