package observability

import (
	"context"

	"github.com/aretw0/splash/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the splash collectors.
type Metrics struct {
	StepsCompleted      *prometheus.CounterVec
	StepFaults          *prometheus.CounterVec
	StepRecoveries      *prometheus.CounterVec
	VisibilityChanges   *prometheus.CounterVec
	ControllersDisposed prometheus.Counter
	ActiveSessions      prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		StepsCompleted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splash_steps_completed_total",
				Help: "Total number of loading steps completed",
			},
			[]string{"step"},
		),
		StepFaults: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splash_step_faults_total",
				Help: "Total number of transient step faults",
			},
			[]string{"step"},
		),
		StepRecoveries: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splash_step_recoveries_total",
				Help: "Total number of transient step faults recovered",
			},
			[]string{"step"},
		),
		VisibilityChanges: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "splash_hidden_total",
				Help: "Total number of splash screens hidden, by reason",
			},
			[]string{"reason"},
		),
		ControllersDisposed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "splash_controllers_disposed_total",
			Help: "Total number of controllers disposed before hiding",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "splash_active_sessions",
			Help: "Number of live splash sessions",
		}),
	}
	reg.MustRegister(
		m.StepsCompleted,
		m.StepFaults,
		m.StepRecoveries,
		m.VisibilityChanges,
		m.ControllersDisposed,
		m.ActiveSessions,
	)
	return m
}

// Hooks returns lifecycle hooks recording into the collectors.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnStepCompleted: func(ctx context.Context, e *domain.StepEvent) {
			m.StepsCompleted.WithLabelValues(e.Step.Label).Inc()
		},
		OnStepFault: func(ctx context.Context, e *domain.StepEvent) {
			m.StepFaults.WithLabelValues(e.Step.Label).Inc()
		},
		OnStepRecovered: func(ctx context.Context, e *domain.StepEvent) {
			m.StepRecoveries.WithLabelValues(e.Step.Label).Inc()
		},
		OnVisibilityChanged: func(ctx context.Context, e *domain.VisibilityEvent) {
			m.VisibilityChanges.WithLabelValues(string(e.Reason)).Inc()
		},
		OnDisposed: func(ctx context.Context, e *domain.EventBase) {
			m.ControllersDisposed.Inc()
		},
	}
}

// SessionStarted implements session.Observer.
func (m *Metrics) SessionStarted(string) {
	m.ActiveSessions.Inc()
}

// SessionEnded implements session.Observer.
func (m *Metrics) SessionEnded(string) {
	m.ActiveSessions.Dec()
}
