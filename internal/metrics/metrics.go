package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups all Prometheus instruments used by the scanner.
type Metrics struct {
	RecordsScanned *prometheus.CounterVec
	PIIRecords     prometheus.Counter
	RepairAttempts prometheus.Counter
	RawFallbacks   prometheus.Counter
	CacheLookups   *prometheus.CounterVec
	ScanDuration   prometheus.Histogram
	HTTPRequests   *prometheus.CounterVec
}

// New registers and returns the scanner's instruments under the given
// namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		RecordsScanned: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "records_scanned_total",
			Help:      "Records scanned by outcome source (structured, repaired, raw, none, error).",
		}, []string{"source"}),
		PIIRecords: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pii_records_total",
			Help:      "Records in which PII was detected and masked.",
		}),
		RepairAttempts: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "repair_attempts_total",
			Help:      "Payloads that decoded only after syntax repair.",
		}),
		RawFallbacks: promauto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "raw_fallbacks_total",
			Help:      "Payloads that never decoded and were scanned as raw text.",
		}),
		CacheLookups: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "Result cache lookups by outcome (hit, miss, error).",
		}, []string{"outcome"}),
		ScanDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "scan_duration_seconds",
			Help:      "Time spent scanning a single record.",
			Buckets:   []float64{.0001, .00025, .0005, .001, .0025, .005, .01, .025, .05, .1},
		}),
		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by path and status code.",
		}, []string{"path", "code"}),
	}
}

// ObserveScan records the duration of one record scan.
func (m *Metrics) ObserveScan(d time.Duration) {
	m.ScanDuration.Observe(d.Seconds())
}

// Handler returns the Prometheus scrape handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
