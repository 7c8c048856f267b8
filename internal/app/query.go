package service

import (
	"context"
	"time"

	"github.com/okian/mailboard/internal/domain/aggregate"
	"github.com/okian/mailboard/internal/domain/filter"
	"github.com/okian/mailboard/internal/domain/model"
	"github.com/okian/mailboard/pkg/metrics"
)

// Query selects the working subset and how results are shaped. A nil
// dimension slice selects every known value; a non-nil empty slice selects
// nothing.
type Query struct {
	Years      []int
	Quarters   []int
	Campaigns  []string
	BotStates  []string
	TimeRanges []string

	ExcludeInvalid bool
	Top            aggregate.TopN
	FullNumbers    bool
}

// DefaultQuery selects everything with placeholders excluded.
func (s *Service) DefaultQuery() Query {
	return Query{ExcludeInvalid: true, Top: s.defaultTopN}
}

// Policy returns the aggregation policy of q.
func (q Query) Policy() aggregate.Policy {
	return aggregate.Policy{ExcludeInvalid: q.ExcludeInvalid}
}

// Formatter returns the number formatter of q.
func (q Query) Formatter() aggregate.Formatter {
	return aggregate.NewFormatter(q.FullNumbers)
}

// Selection resolves q against t's known values.
func (q Query) Selection(t *model.Table) filter.Selection {
	sel := filter.Defaults(t)
	if q.Years != nil {
		sel.Years = filter.NewSet(q.Years...)
	}
	if q.Quarters != nil {
		sel.Quarters = filter.NewSet(q.Quarters...)
	}
	if q.Campaigns != nil {
		sel.Campaigns = filter.NewSet(q.Campaigns...)
	}
	if q.BotStates != nil {
		sel.BotStates = filter.NewSet(q.BotStates...)
	}
	if q.TimeRanges != nil {
		sel.TimeRanges = filter.NewSet(q.TimeRanges...)
	}
	return sel
}

// working returns the cached table for id and its filtered subset.
func (s *Service) working(ctx context.Context, id string, q Query) (full, sub *model.Table, err error) {
	full, err = s.Dataset(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	start := time.Now()
	sub = filter.Apply(full, q.Selection(full))
	metrics.RecordFilter(sub.Len(), float64(time.Since(start).Microseconds())/1000)
	return full, sub, nil
}

// Options returns the filter surface of dataset id.
func (s *Service) Options(ctx context.Context, id string) (filter.Options, error) {
	t, err := s.Dataset(ctx, id)
	if err != nil {
		return filter.Options{}, err
	}
	return filter.OptionsOf(t), nil
}
