// Package chart renders dashboard tables as PNG charts.
package chart

import (
	"errors"
	"fmt"
	"io"
	"time"

	gochart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
)

// Sentinel errors for chart rendering.
var (
	ErrEmptyChart  = errors.New("chart has no data")
	ErrUnknownKind = errors.New("unknown chart kind")
	ErrMismatch    = errors.New("chart series lengths differ")
)

// Kind selects the chart type.
type Kind string

// Chart kinds.
const (
	KindBar  Kind = "bar"
	KindPie  Kind = "pie"
	KindLine Kind = "line"
)

const (
	defaultWidth  = 1024
	defaultHeight = 512
	maxLabelLen   = 18
)

// Spec is a chart-ready table. Bar and pie charts use Labels and Values;
// line charts use Times and Values with optional Lower and Upper bounds and
// Actual observations.
type Spec struct {
	Kind   Kind
	Title  string
	Labels []string
	Values []float64
	Times  []time.Time
	Actual []float64
	Lower  []float64
	Upper  []float64
	Width  int
	Height int
}

// Render draws s as PNG into w.
func Render(w io.Writer, s Spec) error {
	if len(s.Values) == 0 {
		return ErrEmptyChart
	}
	if s.Width <= 0 {
		s.Width = defaultWidth
	}
	if s.Height <= 0 {
		s.Height = defaultHeight
	}
	switch s.Kind {
	case KindBar:
		return renderBar(w, s)
	case KindPie:
		return renderPie(w, s)
	case KindLine:
		return renderLine(w, s)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownKind, s.Kind)
	}
}

func values(s Spec) ([]gochart.Value, float64, error) {
	if len(s.Labels) != len(s.Values) {
		return nil, 0, fmt.Errorf("%w: %d labels, %d values", ErrMismatch, len(s.Labels), len(s.Values))
	}
	out := make([]gochart.Value, len(s.Values))
	var peak, total float64
	for i, v := range s.Values {
		out[i] = gochart.Value{Value: v, Label: shorten(s.Labels[i])}
		total += v
		peak = max(peak, v)
	}
	if total <= 0 {
		return nil, 0, ErrEmptyChart
	}
	return out, peak, nil
}

func shorten(label string) string {
	if label == "" {
		return "(blank)"
	}
	r := []rune(label)
	if len(r) > maxLabelLen {
		return string(r[:maxLabelLen-1]) + "…"
	}
	return label
}

func renderBar(w io.Writer, s Spec) error {
	vals, peak, err := values(s)
	if err != nil {
		return err
	}
	barWidth := max(8, s.Width/(2*len(vals)+1))
	bar := gochart.BarChart{
		Title:      s.Title,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		Width:      s.Width,
		Height:     s.Height,
		BarWidth:   barWidth,
		BarSpacing: barWidth / 2,
		YAxis:      gochart.YAxis{Range: &gochart.ContinuousRange{Min: 0, Max: peak * 1.1}},
		Bars:       vals,
	}
	if err := bar.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render bar chart: %w", err)
	}
	return nil
}

func renderPie(w io.Writer, s Spec) error {
	vals, _, err := values(s)
	if err != nil {
		return err
	}
	side := min(s.Width, s.Height)
	pie := gochart.PieChart{
		Title:  s.Title,
		Width:  side,
		Height: side,
		Values: vals,
	}
	if err := pie.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render pie chart: %w", err)
	}
	return nil
}

func lineStyle(col drawing.Color, width float64) gochart.Style {
	return gochart.Style{StrokeColor: col, StrokeWidth: width}
}

func renderLine(w io.Writer, s Spec) error {
	if len(s.Times) != len(s.Values) {
		return fmt.Errorf("%w: %d times, %d values", ErrMismatch, len(s.Times), len(s.Values))
	}
	times, pad := s.Times, func(v []float64) []float64 { return v }
	// go-chart needs two x values to build a range.
	if len(times) == 1 {
		times = []time.Time{times[0], times[0].Add(24 * time.Hour)}
		pad = func(v []float64) []float64 { return []float64{v[0], v[0]} }
	}

	series := []gochart.Series{
		gochart.TimeSeries{Name: "Predicted", XValues: times, YValues: pad(s.Values), Style: lineStyle(gochart.ColorBlue, 2)},
	}
	if len(s.Lower) == len(s.Values) && len(s.Upper) == len(s.Values) {
		series = append(series,
			gochart.TimeSeries{Name: "Lower", XValues: times, YValues: pad(s.Lower), Style: lineStyle(gochart.ColorAlternateGray, 1)},
			gochart.TimeSeries{Name: "Upper", XValues: times, YValues: pad(s.Upper), Style: lineStyle(gochart.ColorAlternateGray, 1)},
		)
	}
	if len(s.Actual) == len(s.Values) {
		series = append(series, gochart.TimeSeries{
			Name: "Actual", XValues: times, YValues: pad(s.Actual),
			Style: gochart.Style{StrokeWidth: 0, DotWidth: 3, DotColor: gochart.ColorGreen},
		})
	}

	graph := gochart.Chart{
		Title:      s.Title,
		Width:      s.Width,
		Height:     s.Height,
		Background: gochart.Style{Padding: gochart.Box{Top: 40, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Name: "Date", ValueFormatter: gochart.TimeValueFormatterWithFormat("2006-01-02")},
		YAxis:      gochart.YAxis{Name: "Opens"},
		Series:     series,
	}
	graph.Elements = []gochart.Renderable{gochart.Legend(&graph)}
	if err := graph.Render(gochart.PNG, w); err != nil {
		return fmt.Errorf("render line chart: %w", err)
	}
	return nil
}
