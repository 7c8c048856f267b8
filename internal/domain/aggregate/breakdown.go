package aggregate

import (
	"fmt"

	"github.com/okian/mailboard/internal/domain/model"
)

// Dimension names a grouped breakdown.
type Dimension string

// Supported breakdowns.
const (
	OpensByTimeRange        Dimension = "opens_by_time_range"
	OpensByCity             Dimension = "opens_by_city"
	OpensByCampaign         Dimension = "opens_by_campaign"
	OpensByESP              Dimension = "opens_by_esp"
	OpensByState            Dimension = "opens_by_state"
	ClicksByCampaign        Dimension = "clicks_by_campaign"
	UnsubscribesByCampaign  Dimension = "unsubscribes_by_campaign"
	TrafficShare            Dimension = "traffic_share"
	HighEngagementByWebsite Dimension = "high_engagement_by_website"
	EngagementDistribution  Dimension = "engagement_distribution"
)

// breakdown describes how rows feed one grouping.
type breakdown struct {
	title    string
	key      func(*model.Record) string
	include  func(*model.Record) bool
	requires func(model.Capabilities) bool
}

func always(*model.Record) bool          { return true }
func available(model.Capabilities) bool  { return true }
func opened(r *model.Record) bool        { return r.Opened() }
func highEngaged(r *model.Record) bool   { return r.Engagement == model.EngagementHigh }
func campaignKey(r *model.Record) string { return r.CampaignName }

var breakdowns = map[Dimension]breakdown{ //nolint:gochecknoglobals // dispatch table
	OpensByTimeRange: {"Opens by Sent Time Range", func(r *model.Record) string { return r.TimeRange }, opened, available},
	OpensByCity:      {"Opens by City", func(r *model.Record) string { return r.City }, opened,
		func(c model.Capabilities) bool { return c.HasCity }},
	OpensByCampaign:  {"Opens by Campaign", campaignKey, opened, available},
	OpensByESP: {"Opens by ESP", func(r *model.Record) string { return r.ESPType }, opened,
		func(c model.Capabilities) bool { return c.HasESP }},
	OpensByState: {"Opens by State", func(r *model.Record) string { return r.State }, opened,
		func(c model.Capabilities) bool { return c.HasState }},
	ClicksByCampaign: {"Clicks by Campaign", campaignKey, func(r *model.Record) bool { return r.Clicked() }, available},
	UnsubscribesByCampaign: {"Unsubscribes by Campaign", campaignKey,
		func(r *model.Record) bool { return r.IsUnsubscribed },
		func(c model.Capabilities) bool { return c.HasUnsubscribe }},
	TrafficShare: {"Traffic Sources", func(r *model.Record) string { return r.Traffic }, always,
		func(c model.Capabilities) bool { return c.HasTraffic }},
	HighEngagementByWebsite: {"Top Companies by HE", func(r *model.Record) string { return r.Website }, highEngaged,
		func(c model.Capabilities) bool { return c.HasWebsite }},
	EngagementDistribution: {"Engagement Distribution", func(r *model.Record) string { return r.Engagement }, always, available},
}

// Dimensions lists every breakdown in display order.
func Dimensions() []Dimension {
	return []Dimension{
		OpensByTimeRange, OpensByCity, OpensByCampaign, OpensByESP, OpensByState,
		ClicksByCampaign, UnsubscribesByCampaign, TrafficShare,
		HighEngagementByWebsite, EngagementDistribution,
	}
}

// Title returns the display title of a dimension.
func (d Dimension) Title() string {
	if b, ok := breakdowns[d]; ok {
		return b.title
	}
	return string(d)
}

// Breakdown groups the rows of t along dim and returns the top n groups by
// count. Ties keep the order in which keys were first encountered. It fails
// with ErrUnavailable when the upload lacks the column dim depends on.
func Breakdown(t *model.Table, dim Dimension, p Policy, n TopN) ([]Group, error) {
	b, ok := breakdowns[dim]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDimension, dim)
	}
	if !b.requires(t.Capabilities) {
		return nil, fmt.Errorf("%s: %w", dim, ErrUnavailable)
	}
	counts := newTally()
	for i := range t.Rows {
		r := &t.Rows[i]
		if !b.include(r) {
			continue
		}
		key := b.key(r)
		if !p.keep(key) {
			continue
		}
		counts.add(key, 1)
	}
	return counts.top(n), nil
}
