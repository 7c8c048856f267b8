// Package sampledata generates synthetic campaign exports and uploads them
// to a running dashboard service.
package sampledata

import (
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/okian/mailboard/internal/domain/ingest"
)

// Header is the column order of generated files.
var Header = []string{ //nolint:gochecknoglobals // fixed schema
	ingest.ColCampaign, ingest.ColLeadEmail, ingest.ColSentDate, ingest.ColOpenedTime,
	ingest.ColOpenCount, ingest.ColClickCount, ingest.ColEngagement, ingest.ColBotCheck,
	ingest.ColTimeRange, ingest.ColStatus, ingest.ColUnsubscribed, ingest.ColReplyMessage,
	ingest.ColPositiveReply, ingest.ColWebsite, ingest.ColCity, ingest.ColState,
	ingest.ColESP, ingest.ColTraffic, ingest.ColLatitude, ingest.ColLongitude,
}

// Probabilities of the generated event mix.
const (
	openShare        = 0.45
	clickShare       = 0.35 // of opened rows
	botShare         = 0.12
	bounceShare      = 0.03
	unsubscribeShare = 0.04
	replyShare       = 0.2 // of opened rows
	positiveShare    = 0.5 // of replies
	placeholderShare = 0.05
	spanDays         = 730
	dateLayout       = "2006-01-02 15:04:05"
)

type city struct {
	name, state string
	lat, lon    float64
}

//nolint:gochecknoglobals // generator vocabularies
var (
	campaigns = []string{"Spring Launch", "Summer Promo", "Fall Webinar", "Winter Sale", "Product Update", "Partner Outreach"}
	companies = []string{"acme.com", "globex.com", "initech.com", "umbrella.com", "hooli.com", "stark.com",
		"wayne.com", "wonka.com", "cyberdyne.com", "tyrell.com", "soylent.com", "gringotts.com"}
	cities = []city{
		{"New York", "NY", 40.7128, -74.0060},
		{"San Francisco", "CA", 37.7749, -122.4194},
		{"Chicago", "IL", 41.8781, -87.6298},
		{"Austin", "TX", 30.2672, -97.7431},
		{"Seattle", "WA", 47.6062, -122.3321},
		{"Boston", "MA", 42.3601, -71.0589},
		{"Denver", "CO", 39.7392, -104.9903},
		{"Miami", "FL", 25.7617, -80.1918},
	}
	esps       = []string{"Gmail", "Outlook", "Yahoo", "Other"}
	traffic    = []string{"Organic", "Paid", "Referral", "Direct"}
	timeRanges = []string{"Morning", "Afternoon", "Evening", "Night"}
	replies    = []string{"Thanks, let's talk next week.", "Please send more details.", "Not interested.", "Remove me from this list."}
)

// Generator produces deterministic rows for a seed.
type Generator struct {
	rng   *rand.Rand
	start time.Time
}

// NewGenerator returns a generator whose output depends only on seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{
		rng:   rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)), //nolint:gosec // synthetic data
		start: time.Date(2023, time.January, 2, 0, 0, 0, 0, time.UTC),
	}
}

// Rows returns n data rows in Header order.
func (g *Generator) Rows(n int) [][]string {
	out := make([][]string, n)
	for i := range out {
		out[i] = g.row(i)
	}
	return out
}

func (g *Generator) pick(xs []string) string { return xs[g.rng.IntN(len(xs))] }

func (g *Generator) chance(p float64) bool { return g.rng.Float64() < p }

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func (g *Generator) row(i int) []string {
	sent := g.start.Add(time.Duration(g.rng.IntN(spanDays))*24*time.Hour +
		time.Duration(g.rng.IntN(24*60))*time.Minute)
	c := cities[g.rng.IntN(len(cities))]
	website := g.pick(companies)
	if g.chance(placeholderShare) {
		website = "--"
	}
	bot := g.chance(botShare)

	var (
		openCount, clickCount int
		openedAt, reply       string
		positive              bool
		engagement            = "NO"
	)
	if g.chance(openShare) || bot {
		openCount = 1 + g.rng.IntN(5)
		delay := time.Duration(1+g.rng.IntN(72*60)) * time.Minute
		if bot {
			delay = time.Duration(1+g.rng.IntN(30)) * time.Second
		}
		openedAt = sent.Add(delay).Format(dateLayout)
		engagement = "LE"
		if g.chance(clickShare) {
			clickCount = 1 + g.rng.IntN(3)
			engagement = "HE"
		}
		if !bot && g.chance(replyShare) {
			reply = g.pick(replies)
			positive = g.chance(positiveShare)
		}
	}
	status := "Delivered"
	if g.chance(bounceShare) {
		status = "Bounced"
	}
	botCheck := "Human"
	if bot {
		botCheck = "Bot"
	}

	return []string{
		g.pick(campaigns),
		fmt.Sprintf("lead%05d@%s", i, website),
		sent.Format(dateLayout),
		openedAt,
		strconv.Itoa(openCount),
		strconv.Itoa(clickCount),
		engagement,
		botCheck,
		timeRanges[sent.Hour()/6],
		status,
		yesNo(g.chance(unsubscribeShare)),
		reply,
		yesNo(positive),
		website,
		c.name,
		c.state,
		g.pick(esps),
		g.pick(traffic),
		strconv.FormatFloat(c.lat, 'f', 4, 64),
		strconv.FormatFloat(c.lon, 'f', 4, 64),
	}
}
