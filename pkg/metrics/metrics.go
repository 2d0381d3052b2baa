// Package metrics exports per-frame physics statistics to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/opd-ai/go-physics2d/pkg/physics"
)

const namespace = "physics2d"

// PhysicsMetrics holds the collectors fed by engine frame stats.
type PhysicsMetrics struct {
	// Bodies tracks live bodies by table ("static" or "moving")
	Bodies *prometheus.GaugeVec

	// Frames counts Update calls
	Frames prometheus.Counter

	// PairsTested counts broad phase candidate pairs
	PairsTested prometheus.Counter

	// Manifolds counts colliding pairs
	Manifolds prometheus.Counter

	// Contacts counts contact points
	Contacts prometheus.Counter

	// FrameDuration tracks time spent in Update
	FrameDuration prometheus.Histogram
}

// NewPhysicsMetrics creates the collectors and registers them with reg.
// A nil reg leaves them unregistered.
func NewPhysicsMetrics(reg prometheus.Registerer) *PhysicsMetrics {
	factory := promauto.With(reg)
	return &PhysicsMetrics{
		Bodies: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "bodies",
				Help:      "Bodies held by the engine by table",
			},
			[]string{"table"},
		),
		Frames: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Frames stepped by the engine",
		}),
		PairsTested: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pairs_tested_total",
			Help:      "Candidate pairs produced by the broad phase",
		}),
		Manifolds: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "manifolds_total",
			Help:      "Colliding pairs found by the narrow phase",
		}),
		Contacts: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "contacts_total",
			Help:      "Contact points resolved",
		}),
		FrameDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent in one engine update",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 10),
		}),
	}
}

// Observe records one frame. It has the signature of an engine stats hook.
func (m *PhysicsMetrics) Observe(stats physics.FrameStats) {
	m.Bodies.WithLabelValues("static").Set(float64(stats.StaticBodies))
	m.Bodies.WithLabelValues("moving").Set(float64(stats.MovingBodies))
	m.Frames.Inc()
	m.PairsTested.Add(float64(stats.PairsTested))
	m.Manifolds.Add(float64(stats.Manifolds))
	m.Contacts.Add(float64(stats.Contacts))
	m.FrameDuration.Observe(stats.Duration.Seconds())
}
