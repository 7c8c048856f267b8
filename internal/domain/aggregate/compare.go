package aggregate

import (
	"fmt"

	"github.com/okian/mailboard/internal/domain/model"
)

// QuarterSummary is one column of the quarter comparison.
type QuarterSummary struct {
	Quarter      int     `json:"quarter"`
	Label        string  `json:"label"`
	Summary      Summary `json:"summary"`
	TopCampaigns []Group `json:"top_campaigns"`
}

// CompareQuarters summarizes each selected quarter of t side by side. Rows
// are matched on quarter alone, across years. t is expected to be the
// unfiltered table.
func CompareQuarters(t *model.Table, quarters []int, p Policy, n TopN) ([]QuarterSummary, error) {
	seen := make(map[int]struct{}, len(quarters))
	var qs []int
	for _, q := range quarters {
		if q < 1 || q > 4 {
			return nil, fmt.Errorf("%w: %d", ErrInvalidQuarter, q)
		}
		if _, dup := seen[q]; !dup {
			seen[q] = struct{}{}
			qs = append(qs, q)
		}
	}
	if len(qs) < 2 {
		return nil, ErrTooFewQuarters
	}

	out := make([]QuarterSummary, 0, len(qs))
	for _, q := range qs {
		var rows []model.Record
		for i := range t.Rows {
			if t.Rows[i].SentQuarter == q {
				rows = append(rows, t.Rows[i])
			}
		}
		sub := t.WithRows(rows)
		top, err := Breakdown(sub, OpensByCampaign, p, n)
		if err != nil {
			return nil, err
		}
		out = append(out, QuarterSummary{
			Quarter:      q,
			Label:        fmt.Sprintf("Q%d", q),
			Summary:      Summarize(sub, p),
			TopCampaigns: top,
		})
	}
	return out, nil
}
