package webhook

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/stripe/stripe-go/v83"
	stripewebhook "github.com/stripe/stripe-go/v83/webhook"

	"github.com/owedhq/owed/internal/domain"
	"github.com/owedhq/owed/internal/handler"
	"github.com/owedhq/owed/internal/service"
	"github.com/owedhq/owed/internal/telemetry"
)

// StripeHandler mirrors billing state from Stripe webhook events. The
// user is identified by the user_id metadata stamped on the subscription
// at checkout time.
type StripeHandler struct {
	subscriptions *service.SubscriptionService
	metrics       *telemetry.Metrics
	logger        *slog.Logger
	webhookSecret string
}

// NewStripeHandler creates a new Stripe webhook handler.
func NewStripeHandler(subscriptions *service.SubscriptionService, metrics *telemetry.Metrics, logger *slog.Logger, webhookSecret string) *StripeHandler {
	return &StripeHandler{
		subscriptions: subscriptions,
		metrics:       metrics,
		logger:        logger,
		webhookSecret: webhookSecret,
	}
}

// HandleWebhook handles POST /webhooks/stripe
func (h *StripeHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "webhook.stripe", "Error reading request body"))
		return
	}

	event, err := stripewebhook.ConstructEvent(payload, r.Header.Get("Stripe-Signature"), h.webhookSecret)
	if err != nil {
		h.metrics.WebhookFailed.WithLabelValues("stripe").Inc()
		h.logger.Warn("stripe signature verification failed", "error", err)
		handler.ErrorResponse(w, r, domain.Errorf(domain.EUNAUTHORIZED, "webhook.stripe", "Invalid signature"))
		return
	}

	h.metrics.WebhookReceived.WithLabelValues("stripe", string(event.Type)).Inc()
	h.logger.Info("stripe event received", "type", event.Type, "id", event.ID)

	switch event.Type {
	case "customer.subscription.created", "customer.subscription.updated":
		h.handleSubscriptionChanged(r, event)

	case "customer.subscription.deleted":
		h.handleSubscriptionDeleted(r, event)

	case "invoice.payment_failed":
		h.handleInvoicePaymentFailed(r, event)

	default:
		h.logger.Debug("unhandled stripe event", "type", event.Type)
	}

	// Always acknowledge; Stripe retries on anything else.
	handler.JSON(w, http.StatusOK, map[string]bool{"received": true})
}

func (h *StripeHandler) handleSubscriptionChanged(r *http.Request, event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.logger.Error("failed to parse subscription event", "event_id", event.ID, "error", err)
		return
	}

	uid := sub.Metadata["user_id"]
	if uid == "" {
		h.logger.Warn("subscription event without user_id metadata", "subscription_id", sub.ID)
		return
	}

	customerID := ""
	if sub.Customer != nil {
		customerID = sub.Customer.ID
	}

	err := h.subscriptions.UpsertFromEvent(r.Context(), service.UpsertSubscriptionEvent{
		UserID:               uid,
		StripeCustomerID:     customerID,
		StripeSubscriptionID: sub.ID,
		Status:               string(sub.Status),
		TrialEndsAt:          unixTime(sub.TrialEnd),
		CurrentPeriodEnd:     currentPeriodEnd(&sub),
	})
	if err != nil {
		h.metrics.WebhookFailed.WithLabelValues("stripe").Inc()
		h.logger.Error("failed to mirror subscription", "subscription_id", sub.ID, "error", err)
	}
}

func (h *StripeHandler) handleSubscriptionDeleted(r *http.Request, event stripe.Event) {
	var sub stripe.Subscription
	if err := json.Unmarshal(event.Data.Raw, &sub); err != nil {
		h.logger.Error("failed to parse subscription event", "event_id", event.ID, "error", err)
		return
	}

	uid := sub.Metadata["user_id"]
	if uid == "" {
		h.logger.Warn("subscription event without user_id metadata", "subscription_id", sub.ID)
		return
	}

	if err := h.subscriptions.SetStatus(r.Context(), uid, service.SubscriptionStatusCanceled); err != nil {
		h.metrics.WebhookFailed.WithLabelValues("stripe").Inc()
		h.logger.Error("failed to cancel subscription", "subscription_id", sub.ID, "error", err)
	}
}

func (h *StripeHandler) handleInvoicePaymentFailed(r *http.Request, event stripe.Event) {
	var invoice stripe.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		h.logger.Error("failed to parse invoice event", "event_id", event.ID, "error", err)
		return
	}

	sub := subscriptionFromInvoice(&invoice)
	if sub == nil || sub.ID == "" {
		h.logger.Debug("payment failure not tied to a subscription", "invoice_id", invoice.ID)
		return
	}

	uid := sub.Metadata["user_id"]
	if uid == "" {
		h.logger.Warn("subscription without user_id metadata", "subscription_id", sub.ID)
		return
	}

	if err := h.subscriptions.SetStatus(r.Context(), uid, service.SubscriptionStatusPastDue); err != nil {
		h.metrics.WebhookFailed.WithLabelValues("stripe").Inc()
		h.logger.Error("failed to flag past_due", "subscription_id", sub.ID, "error", err)
	}
}

// subscriptionFromInvoice extracts the subscription an invoice bills for,
// or nil for one-off invoices.
func subscriptionFromInvoice(invoice *stripe.Invoice) *stripe.Subscription {
	if invoice.Parent == nil || invoice.Parent.SubscriptionDetails == nil {
		return nil
	}
	return invoice.Parent.SubscriptionDetails.Subscription
}

// currentPeriodEnd reads the billing period end, which lives on the
// subscription items in the current Stripe API.
func currentPeriodEnd(sub *stripe.Subscription) time.Time {
	if sub.Items == nil || len(sub.Items.Data) == 0 {
		return time.Time{}
	}
	return unixTime(sub.Items.Data[0].CurrentPeriodEnd)
}

func unixTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0)
}
