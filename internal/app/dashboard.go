package service

import (
	"context"
	"errors"

	"github.com/okian/mailboard/internal/domain/aggregate"
	"github.com/okian/mailboard/internal/domain/model"
	"github.com/okian/mailboard/pkg/logger"
	"github.com/okian/mailboard/pkg/metrics"
)

// Dashboard is the executive view of a working subset.
type Dashboard struct {
	Source       model.Source                    `json:"source"`
	Capabilities model.Capabilities              `json:"capabilities"`
	TotalRows    int                             `json:"total_rows"`
	Rows         int                             `json:"rows"`
	Top          string                          `json:"top"`
	FullNumbers  bool                            `json:"full_numbers"`
	Summary      aggregate.Summary               `json:"summary"`
	Display      map[string]string               `json:"display"`
	Takeaways    []string                        `json:"takeaways"`
	Sections     []Section                       `json:"sections"`
	Notices      []*aggregate.EmptyResultWarning `json:"notices,omitempty"`
}

// Section is one grouped breakdown. A section that cannot be computed
// carries a notice instead of groups and never fails the dashboard.
type Section struct {
	Dimension aggregate.Dimension           `json:"dimension"`
	Title     string                        `json:"title"`
	Advice    string                        `json:"advice,omitempty"`
	Groups    []aggregate.Group             `json:"groups"`
	Notice    *aggregate.EmptyResultWarning `json:"notice,omitempty"`
}

// Dashboard summarizes dataset id under q with every available breakdown.
func (s *Service) Dashboard(ctx context.Context, id string, q Query) (*Dashboard, error) {
	full, sub, err := s.working(ctx, id, q)
	if err != nil {
		return nil, err
	}
	p, f := q.Policy(), q.Formatter()
	sum := aggregate.Summarize(sub, p)

	d := &Dashboard{
		Source:       full.Source,
		Capabilities: full.Capabilities,
		TotalRows:    full.Len(),
		Rows:         sub.Len(),
		Top:          q.Top.String(),
		FullNumbers:  q.FullNumbers,
		Summary:      sum,
		Display:      f.Summary(sum),
		Takeaways:    aggregate.Takeaways(sum, f),
		Notices:      aggregate.Notices(sub, sum),
	}
	for _, dim := range aggregate.Dimensions() {
		sec, err := s.section(sub, dim, q)
		if errors.Is(err, aggregate.ErrUnavailable) {
			continue
		}
		if err != nil {
			metrics.RecordErrorByComponent("aggregate", string(dim))
			s.logger.Warn(ctx, "breakdown failed", logger.String("dimension", string(dim)), logger.Error(err))
			sec = Section{Dimension: dim, Title: dim.Title(), Notice: &aggregate.EmptyResultWarning{
				Section: string(dim), Message: err.Error(),
			}}
		}
		d.Sections = append(d.Sections, sec)
	}

	s.logger.Debug(ctx, "dashboard computed",
		logger.String("dataset", id),
		logger.Int("rows", d.Rows),
		logger.Int("sections", len(d.Sections)),
		logger.Int("notices", len(d.Notices)),
	)
	return d, nil
}

// Breakdown computes one grouped breakdown of dataset id under q.
func (s *Service) Breakdown(ctx context.Context, id string, dim aggregate.Dimension, q Query) (*Section, error) {
	_, sub, err := s.working(ctx, id, q)
	if err != nil {
		return nil, err
	}
	sec, err := s.section(sub, dim, q)
	if err != nil {
		return nil, err
	}
	return &sec, nil
}

func (s *Service) section(t *model.Table, dim aggregate.Dimension, q Query) (Section, error) {
	groups, err := aggregate.Breakdown(t, dim, q.Policy(), q.Top)
	if err != nil {
		return Section{}, err
	}
	sec := Section{Dimension: dim, Title: dim.Title(), Advice: aggregate.Advice(dim), Groups: groups}
	if sec.Groups == nil {
		sec.Groups = []aggregate.Group{}
	}
	if n := aggregate.GroupNotice(string(dim), len(groups)); n != nil {
		metrics.RecordEmptyResult()
		sec.Notice = n
	}
	return sec, nil
}

// CityGeo returns the per-city map points of dataset id under q.
func (s *Service) CityGeo(ctx context.Context, id string, q Query) ([]aggregate.CityPoint, error) {
	_, sub, err := s.working(ctx, id, q)
	if err != nil {
		return nil, err
	}
	return aggregate.CityGeo(sub, q.Policy(), q.Top)
}

// Replies returns the per-campaign reply table of dataset id under q.
func (s *Service) Replies(ctx context.Context, id string, q Query) ([]aggregate.CampaignReply, error) {
	_, sub, err := s.working(ctx, id, q)
	if err != nil {
		return nil, err
	}
	return aggregate.CampaignReplies(sub), nil
}

// Leaders returns the top campaigns of dataset id under q.
func (s *Service) Leaders(ctx context.Context, id string, q Query) ([]aggregate.CampaignLeader, error) {
	_, sub, err := s.working(ctx, id, q)
	if err != nil {
		return nil, err
	}
	return aggregate.CampaignLeaders(sub, q.Top), nil
}

// Compare summarizes the selected quarters of the whole dataset side by side.
// The dimension filters of q are ignored.
func (s *Service) Compare(ctx context.Context, id string, quarters []int, q Query) ([]aggregate.QuarterSummary, error) {
	t, err := s.Dataset(ctx, id)
	if err != nil {
		return nil, err
	}
	return aggregate.CompareQuarters(t, quarters, q.Policy(), q.Top)
}
