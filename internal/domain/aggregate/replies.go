package aggregate

import (
	"math"
	"sort"
	"time"

	"github.com/okian/mailboard/internal/domain/model"
)

// CampaignReply is the reply performance of one campaign.
type CampaignReply struct {
	Campaign  string    `json:"campaign"`
	FirstSent time.Time `json:"first_sent"` // zero when no send date parsed
	Sent      int       `json:"sent"`
	Replied   int       `json:"replied"`
	Positive  int       `json:"positive"`
	ReplyRate float64   `json:"reply_rate"` // replied/sent percent, two decimals
}

// CampaignReplies summarizes replies per campaign, ordered by campaign name.
func CampaignReplies(t *model.Table) []CampaignReply {
	index := make(map[string]int)
	var out []CampaignReply
	for i := range t.Rows {
		r := &t.Rows[i]
		j, ok := index[r.CampaignName]
		if !ok {
			j = len(out)
			index[r.CampaignName] = j
			out = append(out, CampaignReply{Campaign: r.CampaignName})
		}
		c := &out[j]
		c.Sent++
		if r.HasReply {
			c.Replied++
		}
		if r.PositiveReply {
			c.Positive++
		}
		if r.HasSentAt() && (c.FirstSent.IsZero() || r.SentAt.Before(c.FirstSent)) {
			c.FirstSent = r.SentAt
		}
	}
	for i := range out {
		out[i].ReplyRate = math.Round(percent(out[i].Replied, out[i].Sent)*100) / 100
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Campaign < out[j].Campaign })
	return out
}

// CampaignLeader totals one campaign's engagement for the executive view.
type CampaignLeader struct {
	Campaign        string `json:"campaign"`
	Opens           int    `json:"opens"`  // sum of open counts
	Clicks          int    `json:"clicks"` // sum of click counts
	Replies         int    `json:"replies"`
	PositiveReplies int    `json:"positive_replies"`
}

// CampaignLeaders returns the top n campaigns by summed open count. Ties
// keep campaign name order.
func CampaignLeaders(t *model.Table, n TopN) []CampaignLeader {
	index := make(map[string]int)
	var out []CampaignLeader
	for i := range t.Rows {
		r := &t.Rows[i]
		j, ok := index[r.CampaignName]
		if !ok {
			j = len(out)
			index[r.CampaignName] = j
			out = append(out, CampaignLeader{Campaign: r.CampaignName})
		}
		out[j].Opens += r.OpenCount
		out[j].Clicks += r.ClickCount
		if r.HasReply {
			out[j].Replies++
		}
		if r.PositiveReply {
			out[j].PositiveReplies++
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Campaign < out[j].Campaign })
	sort.SliceStable(out, func(i, j int) bool { return out[i].Opens > out[j].Opens })
	return out[:n.limit(len(out))]
}
