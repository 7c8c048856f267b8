package insight

import (
	"context"

	"github.com/okian/mailboard/internal/domain/model"
)

// featureSet turns records into numeric vectors. It is built from the
// training table so categorical encodings are fixed at fit time.
type featureSet interface {
	names() []string
	vector(r *model.Record) ([]float64, bool)
}

// classifier predicts a binary label from a feature set.
type classifier struct {
	name     string
	settings settings
	build    func(t *model.Table) featureSet
	label    func(r *model.Record) bool
}

// NewOpenClassifier estimates the probability that a send is opened from
// its calendar features and, when present, ESP, traffic source and city
// (cities only when there are at most 50 distinct values).
func NewOpenClassifier(opts ...Option) Provider {
	return &classifier{
		name:     NameOpenClassifier,
		settings: apply(opts, defaults()),
		build:    newOpenFeatures,
		label:    func(r *model.Record) bool { return r.Opened() },
	}
}

// NewBotClassifier estimates the probability that an interaction is a bot
// from its open count, click count and response time.
func NewBotClassifier(opts ...Option) Provider {
	return &classifier{
		name:     NameBotClassifier,
		settings: apply(opts, defaults()),
		build:    func(*model.Table) featureSet { return botFeatures{} },
		label:    func(r *model.Record) bool { return r.BotCheck == model.BotStateBot },
	}
}

func (c *classifier) Name() string { return c.name }

func (c *classifier) Fit(ctx context.Context, t *model.Table) (Model, error) {
	fs := c.build(t)
	var (
		x        [][]float64
		y        []float64
		pos, neg int
	)
	for i := range t.Rows {
		r := &t.Rows[i]
		v, ok := fs.vector(r)
		if !ok {
			continue
		}
		x = append(x, v)
		if c.label(r) {
			y = append(y, 1)
			pos++
		} else {
			y = append(y, 0)
			neg++
		}
	}
	if len(x) < c.settings.minRows {
		return nil, insufficient(c.name, "not enough rows to train", c.settings.minRows, len(x))
	}
	if pos == 0 || neg == 0 {
		return nil, insufficient(c.name, "label has a single class", 2, 1)
	}

	train, test := split(len(x), DefaultTestFraction, c.settings.seed)
	tx, ty := make([][]float64, len(train)), make([]float64, len(train))
	for i, idx := range train {
		tx[i], ty[i] = x[idx], y[idx]
	}
	lr, err := trainLogistic(ctx, tx, ty)
	if err != nil {
		return nil, err
	}

	correct := 0
	for _, idx := range test {
		if (lr.probability(x[idx]) >= 0.5) == (y[idx] == 1) {
			correct++
		}
	}
	metrics := map[string]float64{
		"train_rows":     float64(len(train)),
		"test_rows":      float64(len(test)),
		"positive_share": float64(pos) / float64(len(x)),
	}
	if len(test) > 0 {
		metrics["accuracy"] = float64(correct) / float64(len(test))
	}
	return &classifierModel{c: c, fs: fs, lr: lr, metrics: metrics}, nil
}

type classifierModel struct {
	c       *classifier
	fs      featureSet
	lr      *logistic
	metrics map[string]float64
}

func (m *classifierModel) Predict(ctx context.Context, t *model.Table) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	res := Result{
		Provider: m.c.name,
		Kind:     KindProbabilities,
		Features: m.fs.names(),
		Metrics:  make(map[string]float64, len(m.metrics)),
	}
	for k, v := range m.metrics {
		res.Metrics[k] = v
	}
	for i := range t.Rows {
		r := &t.Rows[i]
		v, ok := m.fs.vector(r)
		if !ok {
			continue
		}
		res.Scores = append(res.Scores, Score{
			Row: i, LeadEmail: r.LeadEmail, Campaign: r.CampaignName, Value: m.lr.probability(v),
		})
	}
	return res, nil
}

// openFeatures uses calendar fields plus label-encoded categorical columns.
// Rows without a send date are skipped.
type openFeatures struct {
	esp, traffic, city *labelEncoder
}

func newOpenFeatures(t *model.Table) featureSet {
	f := &openFeatures{}
	var esp, traffic, city []string
	for i := range t.Rows {
		r := &t.Rows[i]
		esp = append(esp, r.ESPType)
		traffic = append(traffic, r.Traffic)
		city = append(city, r.City)
	}
	if t.Capabilities.HasESP {
		f.esp = newLabelEncoder(esp)
	}
	if t.Capabilities.HasTraffic {
		f.traffic = newLabelEncoder(traffic)
	}
	if t.Capabilities.HasCity {
		if enc := newLabelEncoder(city); len(enc.classes) <= DefaultMaxCities {
			f.city = enc
		}
	}
	return f
}

func (f *openFeatures) names() []string {
	out := []string{"sent_year", "sent_month", "sent_day_of_week", "sent_quarter"}
	if f.esp != nil {
		out = append(out, "esp_type")
	}
	if f.traffic != nil {
		out = append(out, "traffic")
	}
	if f.city != nil {
		out = append(out, "city")
	}
	return out
}

func (f *openFeatures) vector(r *model.Record) ([]float64, bool) {
	if !r.HasSentAt() {
		return nil, false
	}
	v := []float64{float64(r.SentYear), float64(r.SentMonth), float64(r.SentDayOfWeek), float64(r.SentQuarter)}
	if f.esp != nil {
		v = append(v, f.esp.encode(r.ESPType))
	}
	if f.traffic != nil {
		v = append(v, f.traffic.encode(r.Traffic))
	}
	if f.city != nil {
		v = append(v, f.city.encode(r.City))
	}
	return v, true
}

type botFeatures struct{}

func (botFeatures) names() []string {
	return []string{"open_count", "click_count", "response_time_seconds"}
}

func (botFeatures) vector(r *model.Record) ([]float64, bool) {
	return []float64{float64(r.OpenCount), float64(r.ClickCount), r.ResponseTimeSeconds}, true
}
