// Package filter derives working subsets of a normalized table from
// per-dimension inclusion sets.
package filter

import (
	"cmp"
	"slices"

	"github.com/okian/mailboard/internal/domain/model"
)

// Set is a membership set. A nil or empty set matches nothing.
type Set[T comparable] map[T]struct{}

// NewSet builds a set from values.
func NewSet[T comparable](values ...T) Set[T] {
	s := make(Set[T], len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Has reports membership.
func (s Set[T]) Has(v T) bool {
	_, ok := s[v]
	return ok
}

// Sorted returns the members in ascending order.
func Sorted[T cmp.Ordered](s Set[T]) []T {
	out := make([]T, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}

// Selection holds one inclusion set per filter dimension.
type Selection struct {
	Years      Set[int]
	Quarters   Set[int]
	Campaigns  Set[string]
	BotStates  Set[string]
	TimeRanges Set[string]
}

// Match reports whether r is a member on every dimension. Null years and
// quarters (0) never match.
func (s Selection) Match(r *model.Record) bool {
	if r.SentYear == 0 || r.SentQuarter == 0 {
		return false
	}
	return s.Years.Has(r.SentYear) &&
		s.Quarters.Has(r.SentQuarter) &&
		s.Campaigns.Has(r.CampaignName) &&
		s.BotStates.Has(r.BotCheck) &&
		s.TimeRanges.Has(r.TimeRange)
}

// Apply returns the rows of t matching s, in their original order. The input
// table is not modified.
func Apply(t *model.Table, s Selection) *model.Table {
	if t == nil {
		return &model.Table{}
	}
	if len(s.Years) == 0 || len(s.Quarters) == 0 || len(s.Campaigns) == 0 ||
		len(s.BotStates) == 0 || len(s.TimeRanges) == 0 {
		return t.WithRows(nil)
	}
	rows := make([]model.Record, 0, len(t.Rows))
	for i := range t.Rows {
		if s.Match(&t.Rows[i]) {
			rows = append(rows, t.Rows[i])
		}
	}
	return t.WithRows(rows)
}
