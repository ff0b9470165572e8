package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Ledger metrics
	TransactionsPosted   prometheus.Counter
	TransactionsRejected *prometheus.CounterVec
	TransactionLines     prometheus.Histogram
	PostDuration         prometheus.Histogram

	// Reporting metrics
	BalanceReports *prometheus.CounterVec

	// FX audit retention metrics
	TTLBatches       *prometheus.CounterVec
	TTLEventsRemoved *prometheus.CounterVec

	// API metrics
	HTTPRequests   *prometheus.CounterVec
	HTTPDuration   *prometheus.HistogramVec
	HTTPInFlight   prometheus.Gauge
	RateLimitHits  prometheus.Counter
	IdempotentHits prometheus.Counter
}

// New creates all metrics and registers them with reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		TransactionsPosted: factory.NewCounter(prometheus.CounterOpts{
			Name: "fxledger_transactions_posted_total",
			Help: "Total number of transactions posted",
		}),
		TransactionsRejected: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxledger_transactions_rejected_total",
				Help: "Total number of rejected postings by reason",
			},
			[]string{"reason"},
		),
		TransactionLines: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fxledger_transaction_lines",
			Help:    "Number of entry lines per posted transaction",
			Buckets: []float64{2, 3, 4, 6, 10, 20, 50},
		}),
		PostDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "fxledger_post_duration_seconds",
			Help:    "Duration of transaction posting",
			Buckets: prometheus.DefBuckets,
		}),

		BalanceReports: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxledger_balance_reports_total",
				Help: "Total trading balance reports by kind",
			},
			[]string{"kind"},
		),

		TTLBatches: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxledger_fx_ttl_batches_total",
				Help: "Total FX event retention batches applied",
			},
			[]string{"mode"},
		),
		TTLEventsRemoved: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxledger_fx_ttl_events_total",
				Help: "FX events touched by retention, by action",
			},
			[]string{"action"},
		),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fxledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "fxledger_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "fxledger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),
		RateLimitHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "fxledger_rate_limit_hits_total",
			Help: "Total requests rejected by the rate limiter",
		}),
		IdempotentHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "fxledger_idempotent_replays_total",
			Help: "Total responses replayed from the idempotency store",
		}),
	}
}

// TransactionPosted implements usecase.MetricsRecorder.
func (m *Metrics) TransactionPosted(lines int, elapsed time.Duration) {
	m.TransactionsPosted.Inc()
	m.TransactionLines.Observe(float64(lines))
	m.PostDuration.Observe(elapsed.Seconds())
}

// TransactionRejected implements usecase.MetricsRecorder.
func (m *Metrics) TransactionRejected(reason string) {
	m.TransactionsRejected.WithLabelValues(reason).Inc()
}

// BalanceReported implements usecase.MetricsRecorder.
func (m *Metrics) BalanceReported(kind string) {
	m.BalanceReports.WithLabelValues(kind).Inc()
}

// TTLBatchApplied implements usecase.MetricsRecorder.
func (m *Metrics) TTLBatchApplied(mode string, archived, deleted int) {
	m.TTLBatches.WithLabelValues(mode).Inc()
	m.TTLEventsRemoved.WithLabelValues("archived").Add(float64(archived))
	m.TTLEventsRemoved.WithLabelValues("deleted").Add(float64(deleted))
}

// ObserveHTTP records one finished request. path must be a route pattern,
// not the raw URL, to keep label cardinality bounded.
func (m *Metrics) ObserveHTTP(method, path string, status int, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
}
