// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"sync"
	"time"

	"github.com/okian/mailboard/internal/adapters/repository"
	"github.com/okian/mailboard/internal/adapters/session"
	"github.com/okian/mailboard/internal/domain/aggregate"
	"github.com/okian/mailboard/internal/domain/ingest"
	"github.com/okian/mailboard/internal/domain/insight"
	"github.com/okian/mailboard/pkg/logger"
)

// Default configuration constants.
const (
	defaultScoreLimit = 100
)

// Service implements the API dependencies for the campaign dashboard.
type Service struct {
	mu sync.RWMutex

	// Core components
	datasets *repository.MemoryStore
	sessions session.Store

	// Serializes session read-modify-write.
	sessionMu sync.Mutex

	// Configuration
	maxUploadBytes int64
	chunkSize      int
	cacheEntries   int
	uploadDir      string
	defaultTopN    aggregate.TopN
	scoreLimit     int
	insightOpts    []insight.Option

	// State
	started   bool
	startedAt time.Time

	// Logging
	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithMaxUploadBytes bounds accepted upload sizes.
func WithMaxUploadBytes(n int64) Option {
	return func(s *Service) {
		if n > 0 {
			s.maxUploadBytes = n
		}
	}
}

// WithChunkSize sets how many rows ingestion normalizes at a time.
func WithChunkSize(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.chunkSize = n
		}
	}
}

// WithCacheEntries sets how many normalized tables are kept.
func WithCacheEntries(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.cacheEntries = n
		}
	}
}

// WithUploadDir sets where uploads are spooled. Empty uses os.TempDir.
func WithUploadDir(dir string) Option {
	return func(s *Service) {
		s.uploadDir = dir
	}
}

// WithDefaultTopN sets the breakdown truncation used when a query omits it.
func WithDefaultTopN(n aggregate.TopN) Option {
	return func(s *Service) {
		if n >= 0 {
			s.defaultTopN = n
		}
	}
}

// WithScoreLimit caps the per-row scores returned by an insight run.
func WithScoreLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.scoreLimit = n
		}
	}
}

// WithInsightOptions configures every insight provider.
func WithInsightOptions(opts ...insight.Option) Option {
	return func(s *Service) {
		s.insightOpts = append(s.insightOpts, opts...)
	}
}

// WithSessionStore sets the display-session backend.
func WithSessionStore(store session.Store) Option {
	return func(s *Service) {
		if store != nil {
			s.sessions = store
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		maxUploadBytes: ingest.DefaultMaxBytes,
		chunkSize:      ingest.DefaultChunkSize,
		cacheEntries:   repository.DefaultCapacity,
		defaultTopN:    aggregate.Top5,
		scoreLimit:     defaultScoreLimit,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes the service components.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting dashboard service...")

	s.datasets = repository.NewMemoryStore(ctx, repository.WithCapacity(s.cacheEntries))
	if s.sessions == nil {
		s.sessions = session.NewMemoryStore(session.DefaultTTL)
		s.logger.Info(ctx, "using in-memory session store")
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "dashboard service started",
		logger.Int64("maxUploadBytes", s.maxUploadBytes),
		logger.Int("chunkSize", s.chunkSize),
		logger.Int("cacheEntries", s.cacheEntries),
		logger.String("defaultTopN", s.defaultTopN.String()),
	)

	return nil
}

// Stop releases cached tables.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(context.Background(), "stopping dashboard service...")

	if s.datasets != nil {
		_ = s.datasets.Close()
	}

	s.started = false
	s.logger.Info(context.Background(), "dashboard service stopped")
}

// DefaultTopN returns the configured breakdown truncation.
func (s *Service) DefaultTopN() aggregate.TopN {
	return s.defaultTopN
}

// MaxUploadBytes returns the configured upload bound.
func (s *Service) MaxUploadBytes() int64 {
	return s.maxUploadBytes
}

// store returns the dataset cache or ErrNotStarted.
func (s *Service) store() (*repository.MemoryStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.datasets, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := map[string]interface{}{
		"started":        s.started,
		"maxUploadBytes": s.maxUploadBytes,
		"chunkSize":      s.chunkSize,
		"cacheEntries":   s.cacheEntries,
		"defaultTopN":    s.defaultTopN.String(),
	}

	if s.started {
		stats["cachedDatasets"] = s.datasets.Len(context.Background())
		stats["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		if m, ok := s.sessions.(*session.MemoryStore); ok {
			stats["sessions"] = m.Len()
		}
	}

	return stats
}
