package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/splash/pkg/domain"
	"github.com/aretw0/splash/pkg/ports"
	"github.com/prometheus/client_golang/prometheus"
)

// StoreMetrics holds the collectors shared by every store wrapped with Metrics.
type StoreMetrics struct {
	Duration *prometheus.HistogramVec
	Errors   *prometheus.CounterVec
}

// NewStoreMetrics registers the store collectors on reg.
func NewStoreMetrics(reg prometheus.Registerer) *StoreMetrics {
	m := &StoreMetrics{
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "splash_store_operation_duration_seconds",
			Help:    "Latency of snapshot store operations.",
			Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
		}, []string{"op"}),
		Errors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "splash_store_errors_total",
			Help: "Snapshot store operations that failed. Missing sessions are not counted.",
		}, []string{"op"}),
	}
	reg.MustRegister(m.Duration, m.Errors)
	return m
}

type metricsMiddleware struct {
	next ports.SnapshotStore
	m    *StoreMetrics
}

// Metrics records the latency and failures of every store operation.
func Metrics(m *StoreMetrics) Middleware {
	return func(next ports.SnapshotStore) ports.SnapshotStore {
		return &metricsMiddleware{next: next, m: m}
	}
}

func (s *metricsMiddleware) observe(op string, start time.Time, err error) {
	s.m.Duration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	if err != nil && !errors.Is(err, domain.ErrSessionNotFound) {
		s.m.Errors.WithLabelValues(op).Inc()
	}
}

func (s *metricsMiddleware) Save(ctx context.Context, sessionID string, snap domain.Snapshot) (err error) {
	defer func(start time.Time) { s.observe("save", start, err) }(time.Now())
	return s.next.Save(ctx, sessionID, snap)
}

func (s *metricsMiddleware) Load(ctx context.Context, sessionID string) (snap domain.Snapshot, err error) {
	defer func(start time.Time) { s.observe("load", start, err) }(time.Now())
	return s.next.Load(ctx, sessionID)
}

func (s *metricsMiddleware) Delete(ctx context.Context, sessionID string) (err error) {
	defer func(start time.Time) { s.observe("delete", start, err) }(time.Now())
	return s.next.Delete(ctx, sessionID)
}

func (s *metricsMiddleware) List(ctx context.Context) (ids []string, err error) {
	defer func(start time.Time) { s.observe("list", start, err) }(time.Now())
	return s.next.List(ctx)
}
