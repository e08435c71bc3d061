package monitoring

import (
	"greenpantry/internal/models"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector registers and records prometheus metrics for the engines.
type Collector struct {
	registry *prometheus.Registry

	savingsEvents  *prometheus.CounterVec
	savingsAmounts *prometheus.HistogramVec
	greenScore     *prometheus.GaugeVec
	pantryHealth   *prometheus.GaugeVec
	snapshotCalls  *prometheus.CounterVec
}

// NewCollector creates a collector with all engine metrics registered
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()

	savingsEvents := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "savings_events_total",
			Help: "Savings events emitted, by attribution type and outcome",
		},
		[]string{"type", "outcome"},
	)

	savingsAmounts := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "savings_amount_pesos",
			Help:    "Peso amounts of emitted savings events",
			Buckets: prometheus.LinearBuckets(0, 25, 8),
		},
		[]string{"type"},
	)

	greenScore := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "green_score",
			Help: "Latest computed green score",
		},
		[]string{"user"},
	)

	pantryHealth := prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pantry_health_score",
			Help: "Latest pantry health score",
		},
		[]string{"user"},
	)

	snapshotCalls := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "snapshot_computations_total",
			Help: "Snapshot recomputations, by snapshot kind",
		},
		[]string{"kind"},
	)

	collectors := []prometheus.Collector{
		savingsEvents, savingsAmounts, greenScore, pantryHealth, snapshotCalls,
	}
	for _, collector := range collectors {
		registry.MustRegister(collector)
	}

	return &Collector{
		registry:       registry,
		savingsEvents:  savingsEvents,
		savingsAmounts: savingsAmounts,
		greenScore:     greenScore,
		pantryHealth:   pantryHealth,
		snapshotCalls:  snapshotCalls,
	}
}

// Registry exposes the underlying registry for the metrics handler
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// RecordSavingsEvent records an emitted attribution
func (c *Collector) RecordSavingsEvent(event *models.SavingsEvent) {
	c.savingsEvents.WithLabelValues(string(event.Type), "emitted").Inc()
	c.savingsAmounts.WithLabelValues(string(event.Type)).Observe(event.Amount)
}

// RecordSkippedAttribution records an attribution call that emitted nothing
func (c *Collector) RecordSkippedAttribution(savingsType models.SavingsType) {
	c.savingsEvents.WithLabelValues(string(savingsType), "skipped").Inc()
}

// RecordGreenScore records the latest score for a user
func (c *Collector) RecordGreenScore(user string, snapshot models.GreenScoreSnapshot) {
	c.greenScore.WithLabelValues(user).Set(float64(snapshot.Score))
	c.snapshotCalls.WithLabelValues("score").Inc()
}

// RecordAnalytics records the latest analytics-derived gauges for a user
func (c *Collector) RecordAnalytics(user string, snapshot models.AnalyticsSnapshot) {
	c.pantryHealth.WithLabelValues(user).Set(float64(snapshot.Pantry.Score))
	c.snapshotCalls.WithLabelValues("analytics").Inc()
}
