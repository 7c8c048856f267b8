package insight

// Default thresholds and model settings.
const (
	DefaultMinRows      = 100
	DefaultMinPoints    = 10
	DefaultHorizon      = 30
	DefaultSeed         = 42
	DefaultTestFraction = 0.2
	DefaultMaxCities    = 50
)

type settings struct {
	minRows   int
	minPoints int
	horizon   int
	seed      int64
	clusters  int
}

func defaults() settings {
	return settings{
		minRows:   DefaultMinRows,
		minPoints: DefaultMinPoints,
		horizon:   DefaultHorizon,
		seed:      DefaultSeed,
	}
}

func apply(opts []Option, s settings) settings {
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// Option configures an insight provider.
type Option func(*settings)

// WithMinRows sets the classifier minimum row count.
func WithMinRows(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.minRows = n
		}
	}
}

// WithMinPoints sets the forecaster minimum number of distinct days.
func WithMinPoints(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.minPoints = n
		}
	}
}

// WithHorizon sets the number of forecast periods.
func WithHorizon(n int) Option {
	return func(s *settings) {
		if n > 0 {
			s.horizon = n
		}
	}
}

// WithSeed sets the random seed for splits and centroid seeding.
func WithSeed(seed int64) Option {
	return func(s *settings) {
		s.seed = seed
	}
}

// WithClusters overrides the maximum cluster count.
func WithClusters(k int) Option {
	return func(s *settings) {
		if k > 0 {
			s.clusters = k
		}
	}
}
