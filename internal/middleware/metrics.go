package middleware

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// MiddlewareMetrics holds Prometheus metrics for middleware operations.
type MiddlewareMetrics struct {
	rateLimitAllowed  *prometheus.CounterVec
	rateLimitRejected *prometheus.CounterVec
	panicsRecovered   prometheus.Counter
}

var (
	middlewareMetrics     *MiddlewareMetrics
	middlewareMetricsOnce sync.Once
)

// GetMiddlewareMetrics returns the singleton middleware metrics instance.
func GetMiddlewareMetrics() *MiddlewareMetrics {
	middlewareMetricsOnce.Do(func() {
		middlewareMetrics = &MiddlewareMetrics{
			rateLimitAllowed: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "avaprobe",
					Subsystem: "middleware",
					Name:      "rate_limit_allowed_total",
					Help: "Total number of requests " +
						"allowed by rate limiter",
				},
				[]string{"route"},
			),
			rateLimitRejected: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "avaprobe",
					Subsystem: "middleware",
					Name:      "rate_limit_rejected_total",
					Help: "Total number of requests " +
						"rejected by rate limiter",
				},
				[]string{"route"},
			),
			panicsRecovered: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "avaprobe",
					Subsystem: "middleware",
					Name:      "panics_recovered_total",
					Help:      "Total number of panics recovered",
				},
			),
		}
	})
	return middlewareMetrics
}

// MustRegister registers the collectors with a custom registry.
func (m *MiddlewareMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.rateLimitAllowed,
		m.rateLimitRejected,
		m.panicsRecovered,
	)
}
