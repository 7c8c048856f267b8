package insight

import (
	"context"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

const (
	logisticIterations = 300
	logisticRate       = 0.5
	logisticL2         = 1e-3
)

// logistic is a binary logistic regression over standardized features.
type logistic struct {
	scale   *scaler
	weights []float64
	bias    float64
}

func sigmoid(z float64) float64 { return 1 / (1 + math.Exp(-z)) }

// trainLogistic fits by batch gradient descent.
func trainLogistic(ctx context.Context, x [][]float64, y []float64) (*logistic, error) {
	m := &logistic{scale: fitScaler(x)}
	xs := m.scale.transformAll(x)
	n, d := float64(len(xs)), len(xs[0])
	m.weights = make([]float64, d)
	grad := make([]float64, d)

	for iter := 0; iter < logisticIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for j := range grad {
			grad[j] = 0
		}
		var gb float64
		for i, row := range xs {
			e := sigmoid(floats.Dot(m.weights, row)+m.bias) - y[i]
			floats.AddScaled(grad, e, row)
			gb += e
		}
		floats.Scale(1/n, grad)
		floats.AddScaled(grad, logisticL2, m.weights)
		floats.AddScaled(m.weights, -logisticRate, grad)
		m.bias -= logisticRate * gb / n
	}
	return m, nil
}

func (m *logistic) probability(x []float64) float64 {
	return sigmoid(floats.Dot(m.weights, m.scale.transform(x)) + m.bias)
}

// split shuffles indices with seed and returns train and test sets with
// testFraction of rows (rounded up) held out.
func split(n int, testFraction float64, seed int64) (train, test []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n) //nolint:gosec // reproducible split
	nTest := int(math.Ceil(float64(n) * testFraction))
	return perm[nTest:], perm[:nTest]
}
