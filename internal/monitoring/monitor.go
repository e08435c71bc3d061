package monitoring

import (
	"sync"
	"time"
)

// Monitor keeps lightweight in-process metrics about snapshot freshness,
// separate from the prometheus collectors, for the live dashboard feed.
type Monitor struct {
	metrics      map[string]interface{}
	metricsMutex sync.RWMutex
	startTime    time.Time
}

// NewMonitor creates a new monitoring instance
func NewMonitor() *Monitor {
	return &Monitor{
		metrics:   make(map[string]interface{}),
		startTime: time.Now(),
	}
}

// RecordMetric records a metric value
func (m *Monitor) RecordMetric(name string, value interface{}) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics[name] = value
}

// RecordSnapshot records when a snapshot kind was last computed for a user
// and how long it took.
func (m *Monitor) RecordSnapshot(user, kind string, duration time.Duration) {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()

	prefix := user + "_" + kind + "_"
	m.metrics[prefix+"duration_ms"] = duration.Milliseconds()
	m.metrics[prefix+"last_computed"] = time.Now().Format(time.RFC3339)
}

// GetMetric returns a specific metric value
func (m *Monitor) GetMetric(name string) (interface{}, bool) {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()
	value, exists := m.metrics[name]
	return value, exists
}

// GetMetrics returns all current metrics
func (m *Monitor) GetMetrics() map[string]interface{} {
	m.metricsMutex.RLock()
	defer m.metricsMutex.RUnlock()

	// Copy to avoid concurrent map access
	metrics := make(map[string]interface{}, len(m.metrics))
	for k, v := range m.metrics {
		metrics[k] = v
	}

	metrics["uptime_seconds"] = time.Since(m.startTime).Seconds()

	return metrics
}

// Reset clears all metrics
func (m *Monitor) Reset() {
	m.metricsMutex.Lock()
	defer m.metricsMutex.Unlock()
	m.metrics = make(map[string]interface{})
}
