package insight

import (
	"sort"

	"gonum.org/v1/gonum/stat"
)

// labelEncoder maps categorical values to their index among the sorted
// distinct training values. Unseen values map to len(classes).
type labelEncoder struct {
	classes []string
	index   map[string]int
}

func newLabelEncoder(values []string) *labelEncoder {
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	classes := make([]string, 0, len(seen))
	for v := range seen {
		classes = append(classes, v)
	}
	sort.Strings(classes)
	index := make(map[string]int, len(classes))
	for i, c := range classes {
		index[c] = i
	}
	return &labelEncoder{classes: classes, index: index}
}

func (e *labelEncoder) encode(v string) float64 {
	if i, ok := e.index[v]; ok {
		return float64(i)
	}
	return float64(len(e.classes))
}

// scaler standardizes columns to zero mean and unit variance.
type scaler struct {
	mean, std []float64
}

func fitScaler(rows [][]float64) *scaler {
	if len(rows) == 0 {
		return &scaler{}
	}
	d := len(rows[0])
	s := &scaler{mean: make([]float64, d), std: make([]float64, d)}
	col := make([]float64, len(rows))
	for j := 0; j < d; j++ {
		for i, r := range rows {
			col[i] = r[j]
		}
		s.mean[j], s.std[j] = stat.PopMeanStdDev(col, nil)
		if s.std[j] == 0 {
			s.std[j] = 1
		}
	}
	return s
}

func (s *scaler) transform(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = (v - s.mean[j]) / s.std[j]
	}
	return out
}

func (s *scaler) transformAll(rows [][]float64) [][]float64 {
	out := make([][]float64, len(rows))
	for i, r := range rows {
		out[i] = s.transform(r)
	}
	return out
}

func (s *scaler) inverse(x []float64) []float64 {
	out := make([]float64, len(x))
	for j, v := range x {
		out[j] = v*s.std[j] + s.mean[j]
	}
	return out
}
