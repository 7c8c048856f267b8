package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/okian/mailboard/internal/domain/insight"
	"github.com/okian/mailboard/internal/domain/model"
	"github.com/okian/mailboard/pkg/logger"
	"github.com/okian/mailboard/pkg/metrics"
)

// InsightReport is the outcome of one provider run. Exactly one of Result,
// Warning and Error is set.
type InsightReport struct {
	Provider    string          `json:"provider"`
	Result      *insight.Result `json:"result,omitempty"`
	ScoredRows  int             `json:"scored_rows,omitempty"`
	Warning     string          `json:"warning,omitempty"`
	Error       string          `json:"error,omitempty"`
	ElapsedMsec int64           `json:"elapsed_ms"`
}

// Insight runs one provider over the working subset of dataset id.
// Insufficient data is reported as a warning, not an error.
func (s *Service) Insight(ctx context.Context, id, name string, q Query) (*InsightReport, error) {
	p, err := insight.Lookup(name, s.insightOpts...)
	if err != nil {
		return nil, err
	}
	_, sub, err := s.working(ctx, id, q)
	if err != nil {
		return nil, err
	}
	rep, err := s.runInsight(ctx, p, sub)
	if err != nil {
		return nil, err
	}
	return rep, nil
}

// Insights runs every provider concurrently over the working subset of
// dataset id. A failing provider only affects its own report.
func (s *Service) Insights(ctx context.Context, id string, q Query) ([]InsightReport, error) {
	_, sub, err := s.working(ctx, id, q)
	if err != nil {
		return nil, err
	}
	providers := insight.Providers(s.insightOpts...)
	reports := make([]InsightReport, len(providers))

	var wg sync.WaitGroup
	for i, p := range providers {
		wg.Add(1)
		go func(i int, p insight.Provider) {
			defer wg.Done()
			rep, err := s.runInsight(ctx, p, sub)
			if err != nil {
				reports[i] = InsightReport{Provider: p.Name(), Error: err.Error()}
				return
			}
			reports[i] = *rep
		}(i, p)
	}
	wg.Wait()
	return reports, nil
}

// runInsight fits and predicts p on t. Only errors other than insufficient
// data are returned.
func (s *Service) runInsight(ctx context.Context, p insight.Provider, t *model.Table) (rep *InsightReport, err error) {
	start := time.Now()
	name := p.Name()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s panicked: %v", name, r)
			metrics.RecordInsightRun(name, "error", float64(time.Since(start).Milliseconds()))
			s.logger.Error(ctx, "insight provider panicked", logger.String("provider", name), logger.Any("panic", r))
		}
	}()

	res, err := insight.Run(ctx, p, t)
	elapsed := time.Since(start)
	rep = &InsightReport{Provider: name, ElapsedMsec: elapsed.Milliseconds()}

	var short *insight.InsufficientDataError
	switch {
	case errors.As(err, &short):
		metrics.RecordInsightRun(name, "insufficient_data", float64(elapsed.Milliseconds()))
		s.logger.Info(ctx, "insight skipped", logger.String("provider", name), logger.String("reason", short.Error()))
		rep.Warning = short.Error()
		return rep, nil
	case err != nil:
		metrics.RecordInsightRun(name, "error", float64(elapsed.Milliseconds()))
		metrics.RecordErrorByComponent("insight", name)
		s.logger.Error(ctx, "insight failed", logger.String("provider", name), logger.Error(err))
		return nil, err
	}

	metrics.RecordInsightRun(name, "ok", float64(elapsed.Milliseconds()))
	rep.ScoredRows = len(res.Scores)
	res.Scores = s.limitScores(res)
	rep.Result = &res
	s.logger.Debug(ctx, "insight computed",
		logger.String("provider", name),
		logger.Int("scoredRows", rep.ScoredRows),
		logger.Duration("elapsed", elapsed),
	)
	return rep, nil
}

// limitScores keeps the response bounded: the most likely rows for
// probabilities, the first rows otherwise.
func (s *Service) limitScores(res insight.Result) []insight.Score {
	if len(res.Scores) <= s.scoreLimit {
		return res.Scores
	}
	if res.Kind == insight.KindProbabilities {
		return res.Top(s.scoreLimit)
	}
	return res.Scores[:s.scoreLimit]
}
