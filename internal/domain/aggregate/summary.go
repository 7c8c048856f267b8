package aggregate

import "github.com/okian/mailboard/internal/domain/model"

// Summary holds the scalar dashboard metrics of a table. Rates are
// percentages in [0, 100].
type Summary struct {
	Campaigns       int            `json:"campaigns"`
	Sent            int            `json:"sent"`
	Prospects       int            `json:"prospects"`
	Brands          int            `json:"brands"`
	Opens           int            `json:"opens"`
	Clicks          int            `json:"clicks"`
	Engagement      map[string]int `json:"engagement"`
	HighEngagement  int            `json:"high_engagement"`
	LowEngagement   int            `json:"low_engagement"`
	NoEngagement    int            `json:"no_engagement"`
	Bots            int            `json:"bots"`
	Humans          int            `json:"humans"`
	Replies         int            `json:"replies"`
	PositiveReplies int            `json:"positive_replies"`
	Unsubscribes    int            `json:"unsubscribes"`
	OpenRate        float64        `json:"open_rate"`
	ClickRate       float64        `json:"click_rate"`
	ReplyRate       float64        `json:"reply_rate"`
}

// Summarize computes the scalar metrics of t. Opens and clicks count rows
// with at least one open or click. The reply rate divides replies by the
// number of distinct brands (websites) valid under p.
func Summarize(t *model.Table, p Policy) Summary {
	s := Summary{Engagement: make(map[string]int)}
	campaigns := make(map[string]struct{})
	prospects := make(map[string]struct{})
	brands := make(map[string]struct{})

	for i := range t.Rows {
		r := &t.Rows[i]
		s.Sent++
		campaigns[r.CampaignName] = struct{}{}
		prospects[r.LeadEmail] = struct{}{}
		if r.Opened() {
			s.Opens++
		}
		if r.Clicked() {
			s.Clicks++
		}
		s.Engagement[r.Engagement]++
		switch r.BotCheck {
		case model.BotStateBot:
			s.Bots++
		case model.BotStateHuman:
			s.Humans++
		}
		if r.HasReply {
			s.Replies++
		}
		if r.PositiveReply {
			s.PositiveReplies++
		}
		if r.IsUnsubscribed {
			s.Unsubscribes++
		}
		if t.Capabilities.HasWebsite && p.keep(r.Website) {
			brands[r.Website] = struct{}{}
		}
	}

	s.Campaigns = len(campaigns)
	s.Prospects = len(prospects)
	s.Brands = len(brands)
	s.HighEngagement = s.Engagement[model.EngagementHigh]
	s.LowEngagement = s.Engagement[model.EngagementLow]
	s.NoEngagement = s.Engagement[model.EngagementNone]
	s.OpenRate = percent(s.Opens, s.Sent)
	s.ClickRate = percent(s.Clicks, s.Opens)
	s.ReplyRate = percent(s.Replies, s.Brands)
	return s
}
