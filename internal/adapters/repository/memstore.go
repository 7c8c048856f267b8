package repository

import (
	"container/list"
	"context"
	"sync"
	"time"

	"github.com/okian/mailboard/internal/domain/model"
	"github.com/okian/mailboard/pkg/metrics"
)

const defaultMetricsUpdateInterval = 15 * time.Second

// MemoryStore is a bounded, least-recently-used cache of tables.
type MemoryStore struct {
	mu       sync.RWMutex
	capacity int
	order    *list.List // front = most recently used; values are ids
	entries  map[string]*list.Element
	tables   map[string]*model.Table
	closed   bool

	metricsUpdateInterval time.Duration
	stop                  chan struct{}
	done                  chan struct{}
}

// NewMemoryStore creates a store and starts its metrics reporter, which
// stops when ctx is cancelled or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		capacity:              DefaultCapacity,
		order:                 list.New(),
		entries:               make(map[string]*list.Element),
		tables:                make(map[string]*model.Table),
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stop:                  make(chan struct{}),
		done:                  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsReporter(ctx)
	return s
}

func (s *MemoryStore) startMetricsReporter(ctx context.Context) {
	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				metrics.UpdateCachedDatasets(s.Len(ctx))
			}
		}
	}()
}

// Close stops the metrics reporter and drops every table.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.order.Init()
	s.entries = make(map[string]*list.Element)
	s.tables = make(map[string]*model.Table)
	s.mu.Unlock()

	close(s.stop)
	<-s.done
	metrics.UpdateCachedDatasets(0)
	return nil
}

// Get returns the table for id and marks it most recently used.
func (s *MemoryStore) Get(_ context.Context, id string) (*model.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStoreClose
	}
	el, ok := s.entries[id]
	if !ok {
		metrics.RecordCacheLookup("miss")
		return nil, ErrNotFound
	}
	s.order.MoveToFront(el)
	metrics.RecordCacheLookup("hit")
	return s.tables[id], nil
}

// Put stores t, replacing any table with the same id.
func (s *MemoryStore) Put(_ context.Context, t *model.Table) ([]string, error) {
	if t == nil || t.Source.ID == "" {
		return nil, ErrInvalidID
	}
	id := t.Source.ID

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrStoreClose
	}
	if el, ok := s.entries[id]; ok {
		s.order.MoveToFront(el)
		s.tables[id] = t
		return nil, nil
	}
	s.entries[id] = s.order.PushFront(id)
	s.tables[id] = t

	var evicted []string
	for s.order.Len() > s.capacity {
		oldest := s.order.Back()
		oldID := oldest.Value.(string) //nolint:forcetypeassert // list holds ids only
		s.order.Remove(oldest)
		delete(s.entries, oldID)
		delete(s.tables, oldID)
		evicted = append(evicted, oldID)
	}
	metrics.UpdateCachedDatasets(s.order.Len())
	return evicted, nil
}

// Delete drops id.
func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if el, ok := s.entries[id]; ok {
		s.order.Remove(el)
		delete(s.entries, id)
		delete(s.tables, id)
	}
	metrics.UpdateCachedDatasets(s.order.Len())
	return nil
}

// Len returns the number of cached tables.
func (s *MemoryStore) Len(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.order.Len()
}
