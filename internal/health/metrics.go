package health

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HealthMetrics holds Prometheus metrics for probes.
type HealthMetrics struct {
	checksTotal         *prometheus.CounterVec
	checkDuration       *prometheus.HistogramVec
	checkStatus         *prometheus.GaugeVec
	unauthorizedReports prometheus.Counter
}

var (
	healthMetricsInstance *HealthMetrics
	healthMetricsOnce     sync.Once
)

// GetHealthMetrics returns the singleton health metrics instance.
func GetHealthMetrics() *HealthMetrics {
	healthMetricsOnce.Do(func() {
		healthMetricsInstance = &HealthMetrics{
			checksTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "avaprobe",
					Subsystem: "health",
					Name:      "checks_total",
					Help:      "Total number of probes performed",
				},
				[]string{"probe", "status"},
			),
			checkDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Namespace: "avaprobe",
					Subsystem: "health",
					Name:      "check_duration_seconds",
					Help:      "Probe duration in seconds",
					Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1, 5},
				},
				[]string{"probe"},
			),
			checkStatus: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Namespace: "avaprobe",
					Subsystem: "health",
					Name:      "check_status",
					Help: "Last probe status " +
						"(1=ok, 0.5=warning, 0=error)",
				},
				[]string{"probe"},
			),
			unauthorizedReports: promauto.NewCounter(
				prometheus.CounterOpts{
					Namespace: "avaprobe",
					Subsystem: "health",
					Name:      "report_unauthorized_total",
					Help:      "Total number of rejected report requests",
				},
			),
		}
	})
	return healthMetricsInstance
}

// MustRegister registers the collectors with a custom registry. promauto
// registers with the global registry while /metrics serves a custom one.
func (m *HealthMetrics) MustRegister(registry *prometheus.Registry) {
	registry.MustRegister(
		m.checksTotal,
		m.checkDuration,
		m.checkStatus,
		m.unauthorizedReports,
	)
}

// Init pre-initializes label combinations so series appear after startup.
// Idempotent.
func (m *HealthMetrics) Init() {
	for _, probe := range []string{ProbeDatabase, ProbeRedis, ProbeCache, ProbeDiskSpace} {
		for _, status := range []Status{StatusOK, StatusWarning, StatusError} {
			m.checksTotal.WithLabelValues(probe, string(status))
		}
		m.checkStatus.WithLabelValues(probe)
	}
}

func (m *HealthMetrics) observe(probe string, result ProbeResult, duration time.Duration) {
	m.checksTotal.WithLabelValues(probe, string(result.Status)).Inc()
	m.checkDuration.WithLabelValues(probe).Observe(duration.Seconds())
	m.checkStatus.WithLabelValues(probe).Set(statusValue(result.Status))
}

func statusValue(s Status) float64 {
	switch s {
	case StatusOK:
		return 1
	case StatusWarning:
		return 0.5
	default:
		return 0
	}
}
