package aggregate

import "github.com/okian/mailboard/internal/domain/model"

// Takeaways returns the executive summary sentences for s.
func Takeaways(s Summary, f Formatter) []string {
	return []string{
		"Campaign reach: " + f.Count(s.Campaigns) + " campaigns reached " + f.Count(s.Prospects) + " unique prospects.",
		"Engagement: open rate of " + f.Percent(s.OpenRate) + " and click rate of " + f.Percent(s.ClickRate) + ".",
		"Replies: " + f.Count(s.Replies) + " total replies with " + f.Count(s.PositiveReplies) +
			" positive replies and a reply rate of " + f.Percent(s.ReplyRate) +
			" (based on " + f.Count(s.Brands) + " unique brands).",
		"Bot detection: " + f.Count(s.Bots) + " bot interactions detected.",
	}
}

// Notices reports the informational warnings for a working subset: an empty
// selection, and a selection without any high-engagement rows.
func Notices(t *model.Table, s Summary) []*EmptyResultWarning {
	if t.Empty() {
		return []*EmptyResultWarning{emptyWarning("filter", "no rows match the current filters; widen the selection")}
	}
	if s.HighEngagement == 0 {
		return []*EmptyResultWarning{emptyWarning("engagement", "no HE engagements found in filtered data; try adjusting filters")}
	}
	return nil
}

// GroupNotice returns a warning when a grouped section has nothing to show.
func GroupNotice(section string, n int) *EmptyResultWarning {
	if n > 0 {
		return nil
	}
	return emptyWarning(section, "no rows to group")
}

// Advice returns a short reading guide for a breakdown.
func Advice(d Dimension) string {
	switch d {
	case OpensByTimeRange:
		return "Schedule sends in the time windows with the most opens."
	case OpensByCity, OpensByState:
		return "Concentrate campaign frequency and localized content on the strongest locations."
	case OpensByCampaign:
		return "Study subject lines, structure and timing of the leading campaigns."
	case OpensByESP:
		return "Engagement differs by mail provider; weight effort toward the best performing ones."
	case ClicksByCampaign:
		return "Review call-to-action placement and copy of the campaigns with most clicks."
	case UnsubscribesByCampaign:
		return "High unsubscribe counts point at frequency, relevance or targeting problems."
	case TrafficShare:
		return "Allocate budget toward the strongest traffic sources."
	case HighEngagementByWebsite:
		return "Companies with many high-engagement events are prime follow-up targets."
	case EngagementDistribution:
		return "Grow the HE share to improve overall return."
	default:
		return ""
	}
}
