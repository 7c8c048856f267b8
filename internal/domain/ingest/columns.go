package ingest

import (
	"fmt"
	"strings"

	"github.com/okian/mailboard/internal/domain/model"
)

// Source header names. Matching is exact and case-sensitive.
const (
	ColCampaign      = "Campaign Name"
	ColLeadEmail     = "Lead Email"
	ColSentDate      = "Sent_Date"
	ColOpenedTime    = "Opened Time"
	ColOpenCount     = "Open Count"
	ColClickCount    = "Click Count"
	ColEngagement    = "Engagement"
	ColBotCheck      = "Bot Check"
	ColTimeRange     = "Opend Time Range"
	ColStatus        = "Status"
	ColUnsubscribed  = "Is Unsubscribed"
	ColReplyMessage  = "Reply Message"
	ColPositiveReply = "Positive Reply(Yes/No)"
	ColWebsite       = "Website"
	ColCity          = "City"
	ColState         = "State"
	ColESP           = "ESP Type"
	ColTraffic       = "Traffic"
	ColLatitude      = "latitude"
	ColLongitude     = "longitude"
)

// RequiredColumns lists the headers every upload must carry.
var RequiredColumns = []string{ //nolint:gochecknoglobals // fixed schema
	ColCampaign, ColLeadEmail, ColSentDate, ColOpenCount,
	ColClickCount, ColEngagement, ColBotCheck, ColTimeRange,
}

// header maps column names to their position in a row.
type header map[string]int

func newHeader(cols []string) header {
	h := make(header, len(cols))
	for i, c := range cols {
		if _, dup := h[c]; !dup {
			h[c] = i
		}
	}
	return h
}

func (h header) has(col string) bool {
	_, ok := h[col]
	return ok
}

// value returns the cell for col, or "" when the column or cell is absent.
func (h header) value(row []string, col string) string {
	i, ok := h[col]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func (h header) missing() error {
	var missing []string
	for _, c := range RequiredColumns {
		if !h.has(c) {
			missing = append(missing, c)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
}

func (h header) capabilities() model.Capabilities {
	return model.Capabilities{
		HasStatus:        h.has(ColStatus),
		HasOpenedAt:      h.has(ColOpenedTime),
		HasUnsubscribe:   h.has(ColUnsubscribed),
		HasReply:         h.has(ColReplyMessage),
		HasPositiveReply: h.has(ColPositiveReply),
		HasWebsite:       h.has(ColWebsite),
		HasCity:          h.has(ColCity),
		HasState:         h.has(ColState),
		HasESP:           h.has(ColESP),
		HasTraffic:       h.has(ColTraffic),
		HasGeo:           h.has(ColLatitude) && h.has(ColLongitude),
	}
}
