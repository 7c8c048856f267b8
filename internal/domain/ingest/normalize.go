package ingest

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/mailboard/internal/domain/model"
)

// timeLayouts are tried in order; the first successful parse wins.
var timeLayouts = []string{ //nolint:gochecknoglobals // parse table
	time.RFC3339,
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05 -0700",
	"2006-01-02 15:04:05 MST",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
	"01/02/2006 15:04:05",
	"01/02/2006 15:04",
	"01/02/2006",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"1/2/2006",
	"1/2/06 15:04",
	"2006/01/02",
}

// Serial day bounds accepted as spreadsheet dates (1900-01-01 .. 9999-12-31).
const (
	minSerialDate = 1
	maxSerialDate = 2958465
)

// normalizer turns raw rows into records.
type normalizer struct {
	h         header
	loc       *time.Location
	serials   bool // spreadsheet serial dates are accepted
	date1904  bool
	blank     int
	bounced   int
	hasStatus bool
}

// blankRow reports whether every cell is empty after trimming.
func blankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// undelivered reports whether a status marks the send as bounced or failed.
func undelivered(status string) bool {
	s := strings.ToLower(status)
	return strings.Contains(s, "bounced") || strings.Contains(s, "failed")
}

// normalize converts one chunk. line is the physical row number of the
// first row in the chunk.
func (n *normalizer) normalize(chunk [][]string, line int, out []model.Record) ([]model.Record, error) {
	for i, row := range chunk {
		if blankRow(row) {
			n.blank++
			continue
		}
		if n.hasStatus && undelivered(n.h.value(row, ColStatus)) {
			n.bounced++
			continue
		}
		rec, err := n.record(row, line+i)
		if err != nil {
			return out, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (n *normalizer) record(row []string, line int) (model.Record, error) {
	v := func(col string) string { return strings.TrimSpace(n.h.value(row, col)) }

	opens, err := parseCount(v(ColOpenCount))
	if err != nil {
		return model.Record{}, &LoadError{Op: "normalize", Row: line, Column: ColOpenCount, Cause: err}
	}
	clicks, err := parseCount(v(ColClickCount))
	if err != nil {
		return model.Record{}, &LoadError{Op: "normalize", Row: line, Column: ColClickCount, Cause: err}
	}

	reply := n.h.value(row, ColReplyMessage)
	rec := model.Record{
		CampaignName:   v(ColCampaign),
		LeadEmail:      v(ColLeadEmail),
		SentAt:         n.parseTime(v(ColSentDate)),
		OpenedAt:       n.parseTime(v(ColOpenedTime)),
		OpenCount:      opens,
		ClickCount:     clicks,
		Engagement:     strings.ToUpper(v(ColEngagement)),
		BotCheck:       v(ColBotCheck),
		TimeRange:      v(ColTimeRange),
		Status:         v(ColStatus),
		IsUnsubscribed: parseFlag(v(ColUnsubscribed)),
		ReplyMessage:   reply,
		HasReply:       strings.TrimSpace(reply) != "",
		PositiveReply:  strings.EqualFold(v(ColPositiveReply), "yes"),
		Website:        v(ColWebsite),
		City:           v(ColCity),
		State:          v(ColState),
		ESPType:        v(ColESP),
		Traffic:        v(ColTraffic),
	}

	lat, latErr := strconv.ParseFloat(v(ColLatitude), 64)
	lon, lonErr := strconv.ParseFloat(v(ColLongitude), 64)
	if latErr == nil && lonErr == nil && validCoord(lat, 90) && validCoord(lon, 180) {
		rec.Latitude, rec.Longitude, rec.HasCoords = lat, lon, true
	}

	rec.Derive()
	return rec, nil
}

func validCoord(v, limit float64) bool {
	return !math.IsNaN(v) && v >= -limit && v <= limit
}

// parseTime returns the zero time for blank or unparseable values.
func (n *normalizer) parseTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	for _, layout := range timeLayouts {
		if t, err := time.ParseInLocation(layout, s, n.loc); err == nil {
			return t
		}
	}
	if n.serials {
		if f, err := strconv.ParseFloat(s, 64); err == nil && f >= minSerialDate && f <= maxSerialDate {
			if t, err := excelize.ExcelDateToTime(f, n.date1904); err == nil {
				return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, n.loc)
			}
		}
	}
	return time.Time{}
}

// parseCount accepts blank (0), integers and integral decimals such as "3.0".
func parseCount(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	if i, err := strconv.Atoi(s); err == nil {
		if i < 0 {
			return 0, ErrInvalidCount
		}
		return i, nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f != math.Trunc(f) || f >= math.MaxInt {
		return 0, ErrInvalidCount
	}
	return int(f), nil
}

func parseFlag(s string) bool {
	switch strings.ToLower(s) {
	case "true", "yes", "y", "1":
		return true
	}
	return false
}
