// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Canonical engagement tiers. Other values are preserved as read.
const (
	EngagementHigh = "HE"
	EngagementLow  = "LE"
	EngagementNone = "NO"
)

// Canonical bot check states.
const (
	BotStateBot   = "Bot"
	BotStateHuman = "Human"
)

// Record is one normalized send/open/click event row.
type Record struct {
	CampaignName string
	LeadEmail    string
	SentAt       time.Time // zero when missing or unparseable
	OpenedAt     time.Time // zero when never opened
	OpenCount    int
	ClickCount   int
	Engagement   string // trimmed, upper-cased
	BotCheck     string
	TimeRange    string // "Opend Time Range" bucket
	Status       string

	IsUnsubscribed bool
	ReplyMessage   string
	HasReply       bool
	PositiveReply  bool

	Website   string
	City      string
	State     string
	ESPType   string
	Traffic   string
	Latitude  float64
	Longitude float64
	HasCoords bool

	// Derived once at ingestion.
	SentYear            int // 0 when SentAt is null
	SentMonth           int // 1..12, 0 when SentAt is null
	SentQuarter         int // 1..4, 0 when SentAt is null
	SentDayOfWeek       int // Monday=0, -1 when SentAt is null
	ResponseTimeSeconds float64
}

// HasSentAt reports whether the send timestamp parsed.
func (r *Record) HasSentAt() bool { return !r.SentAt.IsZero() }

// Opened reports whether the event registered at least one open.
func (r *Record) Opened() bool { return r.OpenCount > 0 }

// Clicked reports whether the event registered at least one click.
func (r *Record) Clicked() bool { return r.ClickCount > 0 }

// Derive fills the date-derived fields and the response time from the
// timestamps.
func (r *Record) Derive() {
	r.SentYear, r.SentMonth, r.SentQuarter, r.SentDayOfWeek = 0, 0, 0, -1
	r.ResponseTimeSeconds = 0
	if r.SentAt.IsZero() {
		return
	}
	r.SentYear = r.SentAt.Year()
	r.SentMonth = int(r.SentAt.Month())
	r.SentQuarter = (r.SentMonth-1)/3 + 1
	r.SentDayOfWeek = (int(r.SentAt.Weekday()) + 6) % 7
	if !r.OpenedAt.IsZero() {
		r.ResponseTimeSeconds = r.OpenedAt.Sub(r.SentAt).Seconds()
	}
}

// Placeholder reports whether a dimensional value is a placeholder
// (empty, "--", "0" or "Unknown") rather than a real value.
func Placeholder(v string) bool {
	switch strings.TrimSpace(v) {
	case "", "--", "0", "Unknown":
		return true
	}
	return false
}
