package aggregate

import (
	"fmt"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Formatter renders numbers for display. Formatting never alters computed
// values.
type Formatter struct {
	Full    bool // thousands separators instead of K/M abbreviations
	printer *message.Printer
}

// NewFormatter returns a formatter for the given display preference.
func NewFormatter(full bool) Formatter {
	return Formatter{Full: full, printer: message.NewPrinter(language.English)}
}

// Count renders n as "1.2K"/"3.4M" or, in full mode, "1,234,567".
func (f Formatter) Count(n int) string {
	if f.Full {
		p := f.printer
		if p == nil {
			p = message.NewPrinter(language.English)
		}
		return p.Sprintf("%d", n)
	}
	switch {
	case n >= 1_000_000:
		return fmt.Sprintf("%.1fM", float64(n)/1_000_000)
	case n >= 1_000:
		return fmt.Sprintf("%.1fK", float64(n)/1_000)
	default:
		return strconv.Itoa(n)
	}
}

// Percent renders v with one decimal and a percent sign.
func (f Formatter) Percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Summary renders every metric of s for display.
func (f Formatter) Summary(s Summary) map[string]string {
	return map[string]string{
		"campaigns":        f.Count(s.Campaigns),
		"sent":             f.Count(s.Sent),
		"prospects":        f.Count(s.Prospects),
		"brands":           f.Count(s.Brands),
		"opens":            f.Count(s.Opens),
		"clicks":           f.Count(s.Clicks),
		"high_engagement":  f.Count(s.HighEngagement),
		"low_engagement":   f.Count(s.LowEngagement),
		"no_engagement":    f.Count(s.NoEngagement),
		"bots":             f.Count(s.Bots),
		"humans":           f.Count(s.Humans),
		"replies":          f.Count(s.Replies),
		"positive_replies": f.Count(s.PositiveReplies),
		"unsubscribes":     f.Count(s.Unsubscribes),
		"open_rate":        f.Percent(s.OpenRate),
		"click_rate":       f.Percent(s.ClickRate),
		"reply_rate":       f.Percent(s.ReplyRate),
	}
}
