package routes

import (
	"net/http"

	"github.com/owedhq/owed/internal/handler"
	"github.com/owedhq/owed/internal/handler/webhook"
	"github.com/owedhq/owed/internal/router"
)

// Deps contains the handlers and middleware configuration for all routes.
type Deps struct {
	Invoices    *handler.InvoiceHandler
	Connections *handler.ConnectionHandler
	Cron        *handler.CronHandler
	Stats       *handler.StatsHandler
	Unsubscribe *handler.UnsubscribeHandler

	StripeWebhook *webhook.StripeHandler
	ResendWebhook *webhook.ResendHandler

	// CronSecret authenticates the external scheduler.
	CronSecret string

	// MetricsHandler serves the Prometheus scrape endpoint.
	MetricsHandler http.Handler
}

// Register wires every route onto the router.
func Register(r *router.Router, deps Deps) {
	// Liveness and scrape endpoints, no auth.
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		handler.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.MetricsHandler != nil {
		r.Handle(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	// Public marketing counter.
	r.Get("/api/stats", deps.Stats.Get)

	// Unsubscribe links from chase emails. POST is RFC 8058 one-click.
	r.Get("/unsubscribe/{token}", deps.Unsubscribe.Unsubscribe)
	r.Post("/unsubscribe/{token}", deps.Unsubscribe.Unsubscribe)

	// Provider webhooks authenticate themselves by signature.
	r.Post("/webhooks/stripe", deps.StripeWebhook.HandleWebhook)
	r.Post("/webhooks/resend", deps.ResendWebhook.HandleWebhook)

	// Scheduler entrypoints, shared-secret auth.
	cron := r.Group(router.CronAuth(deps.CronSecret))
	cron.Post("/api/cron/sync-invoices", deps.Cron.SyncInvoices)
	cron.Post("/api/cron/send-chases", deps.Cron.SendChases)
	cron.Post("/api/cron/weekly-digest", deps.Cron.WeeklyDigest)

	// Everything below carries the auth proxy's user header.
	api := r.Group(router.RequireUser())
	api.Get("/api/invoices", deps.Invoices.List)
	api.Get("/api/invoices/{id}", deps.Invoices.Get)
	api.Post("/api/invoices/{id}/pause", deps.Invoices.Pause)
	api.Post("/api/invoices/{id}/resume", deps.Invoices.Resume)
	api.Post("/api/invoices/{id}/replied", deps.Invoices.MarkReplied)
	api.Post("/api/invoices/{id}/paid", deps.Invoices.MarkPaid)
	api.Post("/api/invoices/{id}/calls", deps.Invoices.LogCall)

	api.Get("/api/connection", deps.Connections.Get)
	api.Post("/api/connection/disconnect", deps.Connections.Disconnect)
	api.Get("/connect/xero", deps.Connections.Connect)
	api.Get("/connect/xero/callback", deps.Connections.Callback)
}
