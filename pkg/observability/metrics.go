package observability

import (
	"context"

	"github.com/aretw0/bargain/pkg/domain"
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "bargain"

// Metrics holds the negotiation collectors.
type Metrics struct {
	Started     prometheus.Counter
	Transitions *prometheus.CounterVec
	Concessions prometheus.Counter
	Jumps       prometheus.Counter
	Outcomes    *prometheus.CounterVec
	Reduction   prometheus.Histogram
}

// NewMetrics creates the collectors and registers them on reg.
// Passing prometheus.DefaultRegisterer exposes them through promhttp.Handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "negotiations_started_total",
			Help:      "Total number of negotiations that left INIT",
		}),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "transitions_total",
				Help:      "Total number of phase transitions",
			},
			[]string{"from", "to"},
		),
		Concessions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "concessions_total",
			Help:      "Total number of concessions applied",
		}),
		Jumps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "concession_jumps_total",
			Help:      "Concessions that jumped straight to the floor",
		}),
		Outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "outcomes_total",
				Help:      "Negotiations closed, by outcome",
			},
			[]string{"outcome"},
		),
		Reduction: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "concession_ratio",
			Help:      "Price reduction of one concession as a fraction of the list price",
			Buckets:   []float64{0.005, 0.01, 0.02, 0.05, 0.1, 0.2, 0.5},
		}),
	}
	reg.MustRegister(m.Started, m.Transitions, m.Concessions, m.Jumps, m.Outcomes, m.Reduction)
	return m
}

// Hooks returns lifecycle hooks that record into m.
func (m *Metrics) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(_ context.Context, ev *domain.TransitionEvent) {
			m.Transitions.WithLabelValues(string(ev.From), string(ev.To)).Inc()
			if ev.From == domain.PhaseInit {
				m.Started.Inc()
			}
			if ev.To.IsOutcome() {
				m.Outcomes.WithLabelValues(string(ev.To)).Inc()
			}
		},
		OnConcession: func(_ context.Context, ev *domain.ConcessionEvent) {
			m.Concessions.Inc()
			if ev.Jumped {
				m.Jumps.Inc()
			}
			if ev.ListPrice > 0 {
				m.Reduction.Observe(float64(ev.Previous-ev.Next) / float64(ev.ListPrice))
			}
		},
	}
}
