package insight

import (
	"context"

	"github.com/okian/mailboard/internal/domain/model"
)

// Provider names.
const (
	NameBehaviorClusters = "behavior_clusters"
	NameGeoClusters      = "geo_clusters"
	NameOpenClassifier   = "open_probability"
	NameBotClassifier    = "bot_probability"
	NameOpensForecaster  = "opens_forecast"
)

const (
	behaviorClusters = 4
	geoClusters      = 3
)

// clusterer segments rows by a numeric feature vector.
type clusterer struct {
	name     string
	features []string
	k        int
	seed     int64
	scale    bool
	usable   func(model.Capabilities) bool
	extract  func(*model.Record) ([]float64, bool)
}

// NewBehaviorClusters segments leads into up to four personas by open
// count, click count and response time.
func NewBehaviorClusters(opts ...Option) Provider {
	s := apply(opts, defaults())
	return &clusterer{
		name:     NameBehaviorClusters,
		features: []string{"open_count", "click_count", "response_time_seconds"},
		k:        orDefault(s.clusters, behaviorClusters),
		seed:     s.seed,
		scale:    true,
		usable:   func(model.Capabilities) bool { return true },
		extract: func(r *model.Record) ([]float64, bool) {
			return []float64{float64(r.OpenCount), float64(r.ClickCount), r.ResponseTimeSeconds}, true
		},
	}
}

// NewGeoClusters groups rows with coordinates into up to three regions.
func NewGeoClusters(opts ...Option) Provider {
	s := apply(opts, defaults())
	return &clusterer{
		name:     NameGeoClusters,
		features: []string{"latitude", "longitude"},
		k:        orDefault(s.clusters, geoClusters),
		seed:     s.seed,
		usable:   func(c model.Capabilities) bool { return c.HasGeo },
		extract: func(r *model.Record) ([]float64, bool) {
			return []float64{r.Latitude, r.Longitude}, r.HasCoords
		},
	}
}

func orDefault(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func (c *clusterer) Name() string { return c.name }

func (c *clusterer) Fit(ctx context.Context, t *model.Table) (Model, error) {
	if !c.usable(t.Capabilities) {
		return nil, insufficient(c.name, "upload has no latitude/longitude columns", 0, 0)
	}
	var points [][]float64
	for i := range t.Rows {
		if p, ok := c.extract(&t.Rows[i]); ok {
			points = append(points, p)
		}
	}
	if len(points) == 0 {
		return nil, insufficient(c.name, "no usable rows to cluster", 1, 0)
	}

	sc := &scaler{}
	if c.scale {
		sc = fitScaler(points)
		points = sc.transformAll(points)
	}
	km := kmeans{k: min(c.k, len(points)), seed: c.seed}
	centroids, _, err := km.fit(ctx, points)
	if err != nil {
		return nil, err
	}
	return &clusterModel{c: c, scale: sc, centroids: centroids}, nil
}

type clusterModel struct {
	c         *clusterer
	scale     *scaler
	centroids [][]float64
}

func (m *clusterModel) Predict(ctx context.Context, t *model.Table) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	res := Result{Provider: m.c.name, Kind: KindClusters, Features: m.c.features}
	sizes := make([]int, len(m.centroids))
	for i := range t.Rows {
		r := &t.Rows[i]
		p, ok := m.c.extract(r)
		if !ok {
			continue
		}
		if m.c.scale {
			p = m.scale.transform(p)
		}
		cl, _ := nearest(m.centroids, p)
		sizes[cl]++
		res.Scores = append(res.Scores, Score{
			Row: i, LeadEmail: r.LeadEmail, Campaign: r.CampaignName, Cluster: cl, Value: float64(cl),
		})
	}
	for id, ctr := range m.centroids {
		if m.c.scale {
			ctr = m.scale.inverse(ctr)
		}
		res.Clusters = append(res.Clusters, Cluster{ID: id, Size: sizes[id], Centroid: ctr})
	}
	res.Metrics = map[string]float64{"k": float64(len(m.centroids)), "rows": float64(len(res.Scores))}
	return res, nil
}
