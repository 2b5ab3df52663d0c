package observability

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "collectdin"

var (
	registerOnce sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total HTTP requests.",
		},
		[]string{"node", "method", "path", "status"},
	)
	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"node", "method", "path", "status"},
	)
	datagrams = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "datagrams_total",
			Help:      "Datagrams received, by decode outcome.",
		},
		[]string{"listener", "outcome"},
	)
	datagramBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "datagram_bytes",
			Help:      "Size of received datagrams in bytes.",
			Buckets:   prometheus.ExponentialBuckets(64, 2, 11),
		},
		[]string{"listener"},
	)
	records = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_total",
			Help:      "Records decoded from value parts.",
		},
		[]string{"listener"},
	)
	decodeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_errors_total",
			Help:      "Datagrams whose decode stopped early, by reason.",
		},
		[]string{"listener", "reason"},
	)
	forwardErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forward_errors_total",
			Help:      "Chunks the sink failed to accept.",
		},
		[]string{"listener"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequests,
			httpDuration,
			datagrams,
			datagramBytes,
			records,
			decodeErrors,
			forwardErrors,
		)
	})
}

func RecordHTTPRequest(node, method, path string, status int, duration time.Duration) {
	RegisterMetrics()
	statusLabel := strconv.Itoa(status)
	httpRequests.WithLabelValues(node, method, path, statusLabel).Inc()
	httpDuration.WithLabelValues(node, method, path, statusLabel).Observe(duration.Seconds())
}

// RecordDatagram counts one decoded datagram. reason is empty when the whole
// datagram decoded cleanly.
func RecordDatagram(listener string, size, decoded int, reason string) {
	RegisterMetrics()
	outcome := "ok"
	if reason != "" {
		outcome = "error"
		decodeErrors.WithLabelValues(listener, reason).Inc()
	}
	datagrams.WithLabelValues(listener, outcome).Inc()
	datagramBytes.WithLabelValues(listener).Observe(float64(size))
	if decoded > 0 {
		records.WithLabelValues(listener).Add(float64(decoded))
	}
}

func RecordForwardError(listener string) {
	RegisterMetrics()
	forwardErrors.WithLabelValues(listener).Inc()
}
