package insight

import (
	"context"
	"math"
	"sort"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/okian/mailboard/internal/domain/model"
)

// z80 is the two-sided 80% normal quantile used for forecast bounds.
const z80 = 1.2815515655446004

const day = 24 * time.Hour

// forecaster projects daily opens with a linear trend plus a
// day-of-week seasonal offset.
type forecaster struct {
	settings settings
}

// NewOpensForecaster forecasts opens per calendar day of send.
func NewOpensForecaster(opts ...Option) Provider {
	return &forecaster{settings: apply(opts, defaults())}
}

func (f *forecaster) Name() string { return NameOpensForecaster }

// dailyOpens counts opened rows per UTC calendar day of SentAt, in date order.
func dailyOpens(t *model.Table) ([]time.Time, []float64) {
	counts := make(map[time.Time]float64)
	for i := range t.Rows {
		r := &t.Rows[i]
		if !r.HasSentAt() || !r.Opened() {
			continue
		}
		y, m, d := r.SentAt.Date()
		counts[time.Date(y, m, d, 0, 0, 0, 0, time.UTC)]++
	}
	days := make([]time.Time, 0, len(counts))
	for d := range counts {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	values := make([]float64, len(days))
	for i, d := range days {
		values[i] = counts[d]
	}
	return days, values
}

func (f *forecaster) Fit(ctx context.Context, t *model.Table) (Model, error) {
	days, values := dailyOpens(t)
	if len(days) < f.settings.minPoints {
		return nil, insufficient(NameOpensForecaster, "not enough distinct days with opens", f.settings.minPoints, len(days))
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	origin := days[0]
	x := make([]float64, len(days))
	for i, d := range days {
		x[i] = d.Sub(origin).Hours() / 24
	}
	alpha, beta := stat.LinearRegression(x, values, nil, false)

	var season [7]float64
	var seen [7]float64
	for i, d := range days {
		w := weekday(d)
		season[w] += values[i] - (alpha + beta*x[i])
		seen[w]++
	}
	for w := range season {
		if seen[w] > 0 {
			season[w] /= seen[w]
		}
	}

	residuals := make([]float64, len(days))
	for i, d := range days {
		residuals[i] = values[i] - (alpha + beta*x[i] + season[weekday(d)])
	}
	sigma := stat.StdDev(residuals, nil)
	if math.IsNaN(sigma) {
		sigma = 0
	}

	return &forecastModel{
		horizon: f.settings.horizon,
		origin:  origin,
		alpha:   alpha,
		beta:    beta,
		season:  season,
		sigma:   sigma,
	}, nil
}

func weekday(d time.Time) int { return (int(d.Weekday()) + 6) % 7 }

type forecastModel struct {
	horizon     int
	origin      time.Time
	alpha, beta float64
	season      [7]float64
	sigma       float64
}

func (m *forecastModel) at(d time.Time) (yhat, lower, upper float64) {
	x := d.Sub(m.origin).Hours() / 24
	yhat = math.Max(0, m.alpha+m.beta*x+m.season[weekday(d)])
	band := z80 * m.sigma
	return yhat, math.Max(0, yhat-band), yhat + band
}

// Predict returns the fitted history of t followed by the forecast horizon
// starting the day after t's last opened day.
func (m *forecastModel) Predict(ctx context.Context, t *model.Table) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	days, values := dailyOpens(t)
	res := Result{
		Provider: NameOpensForecaster,
		Kind:     KindForecast,
		Features: []string{"sent_date"},
		Metrics: map[string]float64{
			"trend_per_day": m.beta,
			"sigma":         m.sigma,
			"horizon":       float64(m.horizon),
		},
	}
	for i, d := range days {
		yhat, lo, hi := m.at(d)
		res.Forecast = append(res.Forecast, Point{Date: d, Actual: values[i], Predicted: yhat, Lower: lo, Upper: hi})
	}
	last := m.origin
	if len(days) > 0 {
		last = days[len(days)-1]
	}
	for h := 1; h <= m.horizon; h++ {
		d := last.Add(time.Duration(h) * day)
		yhat, lo, hi := m.at(d)
		res.Forecast = append(res.Forecast, Point{Date: d, Predicted: yhat, Lower: lo, Upper: hi, Future: true})
	}
	return res, nil
}
