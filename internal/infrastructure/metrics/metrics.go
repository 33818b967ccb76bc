package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Statement metrics
	StatementsCreated *prometheus.CounterVec
	StatementAmount   *prometheus.HistogramVec
	BalanceQueries    *prometheus.CounterVec

	// Transfer metrics
	TransfersCreated prometheus.Counter
	TransferDuration prometheus.Histogram
	TransferErrors   *prometheus.CounterVec

	// Ledger metrics
	UnbalancedTransfers prometheus.Gauge

	// API metrics
	HTTPRequests         *prometheus.CounterVec
	HTTPDuration         *prometheus.HistogramVec
	HTTPRequestsInFlight prometheus.Gauge

	// Idempotency metrics
	IdempotencyReplays prometheus.Counter

	// Outbox metrics
	OutboxEvents *prometheus.CounterVec

	// Authentication metrics
	AuthAttempts *prometheus.CounterVec
}

// New creates all metrics and registers them with the default registerer.
func New() *Metrics {
	return NewWithRegisterer(prometheus.DefaultRegisterer)
}

// NewWithRegisterer creates all metrics and registers them with reg.
func NewWithRegisterer(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		StatementsCreated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finledger_statements_created_total",
				Help: "Total number of statements created by type",
			},
			[]string{"type"},
		),
		StatementAmount: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finledger_statement_amount",
				Help:    "Statement amounts by type",
				Buckets: []float64{1, 10, 100, 1000, 10000, 100000, 1000000},
			},
			[]string{"type"},
		),
		BalanceQueries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finledger_balance_queries_total",
				Help: "Total balance queries",
			},
			[]string{"with_statements"},
		),

		TransfersCreated: factory.NewCounter(prometheus.CounterOpts{
			Name: "finledger_transfers_created_total",
			Help: "Total number of transfers committed",
		}),
		TransferDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "finledger_transfer_duration_seconds",
			Help:    "Duration of transfer operations",
			Buckets: prometheus.DefBuckets,
		}),
		TransferErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finledger_transfer_errors_total",
				Help: "Total number of failed transfers by failing step",
			},
			[]string{"leg"},
		),

		UnbalancedTransfers: factory.NewGauge(prometheus.GaugeOpts{
			Name: "finledger_unbalanced_transfers",
			Help: "Transfers found unbalanced by the last consistency check",
		}),

		HTTPRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finledger_http_requests_total",
				Help: "Total HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "finledger_http_duration_seconds",
				Help:    "HTTP request duration",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		HTTPRequestsInFlight: factory.NewGauge(prometheus.GaugeOpts{
			Name: "finledger_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		}),

		IdempotencyReplays: factory.NewCounter(prometheus.CounterOpts{
			Name: "finledger_idempotency_replays_total",
			Help: "Responses served from the idempotency store",
		}),

		OutboxEvents: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finledger_outbox_events_total",
				Help: "Outbox events processed by result",
			},
			[]string{"status"},
		),

		AuthAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "finledger_auth_attempts_total",
				Help: "Total authentication attempts",
			},
			[]string{"status"},
		),
	}
}
