package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds Prometheus metrics for the dunning engine.
type Metrics struct {
	// Reconciliation
	SyncRuns             *prometheus.CounterVec // status: ok, error
	InvoicesUpserted     prometheus.Counter
	InvoicesTerminalized *prometheus.CounterVec // status: paid, voided, completed
	RecoveredAmount      prometheus.Counter

	// Chasing
	ChasesSent  *prometheus.CounterVec // stage
	ChaseErrors prometheus.Counter

	// Token lifecycle
	TokenRefreshes *prometheus.CounterVec // outcome: ok, rejected, error

	// Webhooks
	WebhookReceived *prometheus.CounterVec // source, event
	WebhookFailed   *prometheus.CounterVec // source

	// Email delivery
	EmailSent   prometheus.Counter
	EmailFailed prometheus.Counter
	DigestsSent prometheus.Counter
}

// NewMetrics creates and registers all engine metrics. Pass a fresh
// prometheus.NewRegistry() in tests to avoid duplicate registration;
// nil registers on the default registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	namespace := "owed"
	factory := promauto.With(reg)

	return &Metrics{
		SyncRuns: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "sync_runs_total",
				Help:      "Total reconciliation passes per connection",
			},
			[]string{"status"},
		),
		InvoicesUpserted: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invoices_upserted_total",
				Help:      "Total invoices created or refreshed from the ledger",
			},
		),
		InvoicesTerminalized: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "invoices_terminalized_total",
				Help:      "Total invoices reaching a terminal status",
			},
			[]string{"status"},
		),
		RecoveredAmount: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "recovered_amount_total",
				Help:      "Total invoice value detected as paid while chasing",
			},
		),
		ChasesSent: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chases_sent_total",
				Help:      "Total chase emails sent",
			},
			[]string{"stage"},
		),
		ChaseErrors: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chase_errors_total",
				Help:      "Total chase dispatch failures",
			},
		),
		TokenRefreshes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "token_refreshes_total",
				Help:      "Total OAuth token refresh attempts",
			},
			[]string{"outcome"},
		),
		WebhookReceived: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_received_total",
				Help:      "Total webhook events received",
			},
			[]string{"source", "event"},
		),
		WebhookFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "webhook_failed_total",
				Help:      "Total webhook events that failed processing",
			},
			[]string{"source"},
		),
		EmailSent: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "email_sent_total",
				Help:      "Total emails accepted by the provider",
			},
		),
		EmailFailed: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "email_failed_total",
				Help:      "Total emails rejected or failed",
			},
		),
		DigestsSent: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "digests_sent_total",
				Help:      "Total weekly digest emails sent",
			},
		),
	}
}
