package filter

import (
	"slices"

	"github.com/okian/mailboard/internal/domain/model"
)

// Options lists every selectable value per dimension.
type Options struct {
	Years      []int    `json:"years"`
	Quarters   []int    `json:"quarters"`
	Campaigns  []string `json:"campaigns"`
	BotStates  []string `json:"bot_states"`
	TimeRanges []string `json:"time_ranges"`
}

// AllQuarters is the quarter dimension's domain.
var AllQuarters = []int{1, 2, 3, 4} //nolint:gochecknoglobals // fixed domain

// OptionsOf collects the filter surface of t: non-null years ascending,
// quarters 1..4, campaigns sorted, bot states and time ranges in the order
// they first appear.
func OptionsOf(t *model.Table) Options {
	years := Set[int]{}
	campaigns := Set[string]{}
	var bots, ranges []string
	seenBot, seenRange := Set[string]{}, Set[string]{}

	for i := range t.Rows {
		r := &t.Rows[i]
		if r.SentYear != 0 {
			years[r.SentYear] = struct{}{}
		}
		campaigns[r.CampaignName] = struct{}{}
		if !seenBot.Has(r.BotCheck) {
			seenBot[r.BotCheck] = struct{}{}
			bots = append(bots, r.BotCheck)
		}
		if !seenRange.Has(r.TimeRange) {
			seenRange[r.TimeRange] = struct{}{}
			ranges = append(ranges, r.TimeRange)
		}
	}

	return Options{
		Years:      Sorted(years),
		Quarters:   slices.Clone(AllQuarters),
		Campaigns:  Sorted(campaigns),
		BotStates:  nonNil(bots),
		TimeRanges: nonNil(ranges),
	}
}

// Defaults selects every known value, giving the unfiltered view (rows with
// null dates excepted).
func Defaults(t *model.Table) Selection {
	return OptionsOf(t).Selection()
}

// Selection converts the option lists into inclusion sets.
func (o Options) Selection() Selection {
	return Selection{
		Years:      NewSet(o.Years...),
		Quarters:   NewSet(o.Quarters...),
		Campaigns:  NewSet(o.Campaigns...),
		BotStates:  NewSet(o.BotStates...),
		TimeRanges: NewSet(o.TimeRanges...),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
