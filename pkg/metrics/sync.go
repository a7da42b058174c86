package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// SyncMetrics records cart synchronization outcomes per direction
// ("in" for login restores, "out" for logout persists).
type SyncMetrics struct {
	duration *prometheus.HistogramVec
	success  *prometheus.CounterVec
	failure  *prometheus.CounterVec
}

// NewSyncMetrics registers the cart sync metrics on the provided registerer.
func NewSyncMetrics(reg prometheus.Registerer) *SyncMetrics {
	if reg == nil {
		return &SyncMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "cart_sync_duration_seconds",
		Help:    "Duration of cart sync operations in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"direction"})
	success := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_success",
		Help: "Successful cart sync operations.",
	}, []string{"direction"})
	failure := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "cart_sync_failure",
		Help: "Failed cart sync operations.",
	}, []string{"direction"})
	reg.MustRegister(duration, success, failure)
	return &SyncMetrics{
		duration: duration,
		success:  success,
		failure:  failure,
	}
}

// ObserveDuration records the duration for the named direction.
func (s *SyncMetrics) ObserveDuration(direction string, duration time.Duration) {
	if s == nil || s.duration == nil {
		return
	}
	s.duration.WithLabelValues(normalizeLabel(direction)).Observe(duration.Seconds())
}

// IncSuccess increments the success counter for the named direction.
func (s *SyncMetrics) IncSuccess(direction string) {
	if s == nil || s.success == nil {
		return
	}
	s.success.WithLabelValues(normalizeLabel(direction)).Inc()
}

// IncFailure increments the failure counter for the named direction.
func (s *SyncMetrics) IncFailure(direction string) {
	if s == nil || s.failure == nil {
		return
	}
	s.failure.WithLabelValues(normalizeLabel(direction)).Inc()
}

func normalizeLabel(direction string) string {
	if direction == "" {
		return "unknown"
	}
	return direction
}
