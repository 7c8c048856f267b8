package aggregate

import (
	"sort"

	"github.com/okian/mailboard/internal/domain/model"
)

// CityPoint aggregates opened rows sharing a city and coordinates.
type CityPoint struct {
	City      string  `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Opens     int     `json:"opens"`  // sum of open counts
	Clicks    int     `json:"clicks"` // sum of click counts
}

type cityKey struct {
	city     string
	lat, lon float64
}

// CityGeo sums open and click counts of opened rows per (city, latitude,
// longitude) and returns the top n points by opens.
func CityGeo(t *model.Table, p Policy, n TopN) ([]CityPoint, error) {
	if !t.Capabilities.HasGeo || !t.Capabilities.HasCity {
		return nil, ErrUnavailable
	}
	index := make(map[cityKey]int)
	var points []CityPoint
	for i := range t.Rows {
		r := &t.Rows[i]
		if !r.Opened() || !r.HasCoords || !p.keep(r.City) {
			continue
		}
		k := cityKey{r.City, r.Latitude, r.Longitude}
		j, ok := index[k]
		if !ok {
			j = len(points)
			index[k] = j
			points = append(points, CityPoint{City: r.City, Latitude: r.Latitude, Longitude: r.Longitude})
		}
		points[j].Opens += r.OpenCount
		points[j].Clicks += r.ClickCount
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Opens > points[j].Opens })
	return points[:n.limit(len(points))], nil
}
