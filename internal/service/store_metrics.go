package service

import (
	"context"
	"time"

	"github.com/whitfield-edu/engagement-api/internal/store"
)

// InstrumentedStore wraps a persistence backend with Prometheus timings.
type InstrumentedStore struct {
	inner   store.Store
	metrics *MetricsService
}

// InstrumentStore decorates the given backend. A nil metrics service
// returns the backend unchanged.
func InstrumentStore(inner store.Store, metrics *MetricsService) store.Store {
	if metrics == nil {
		return inner
	}
	return &InstrumentedStore{inner: inner, metrics: metrics}
}

// Load delegates to the backend and records the duration.
func (s *InstrumentedStore) Load(ctx context.Context) (*store.Snapshot, error) {
	start := time.Now()
	snapshot, err := s.inner.Load(ctx)
	s.metrics.ObserveStoreOperation("load", time.Since(start))
	return snapshot, err
}

// SaveAll delegates to the backend and records the duration.
func (s *InstrumentedStore) SaveAll(ctx context.Context, snapshot *store.Snapshot) error {
	start := time.Now()
	err := s.inner.SaveAll(ctx, snapshot)
	s.metrics.ObserveStoreOperation("save_all", time.Since(start))
	return err
}
