package webhook

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/owedhq/owed/internal/domain"
	"github.com/owedhq/owed/internal/handler"
	"github.com/owedhq/owed/internal/service"
	"github.com/owedhq/owed/internal/telemetry"
)

// resendEvent is the envelope Resend posts for email events.
type resendEvent struct {
	Type      string    `json:"type"`
	CreatedAt time.Time `json:"created_at"`
	Data      struct {
		EmailID string `json:"email_id"`
	} `json:"data"`
}

// ResendHandler consumes delivery events from the Resend email provider.
// Only email.opened feeds the product; everything else is acknowledged
// and dropped.
type ResendHandler struct {
	invoices *service.InvoiceService
	metrics  *telemetry.Metrics
	logger   *slog.Logger
}

// NewResendHandler creates a new Resend webhook handler.
func NewResendHandler(invoices *service.InvoiceService, metrics *telemetry.Metrics, logger *slog.Logger) *ResendHandler {
	return &ResendHandler{invoices: invoices, metrics: metrics, logger: logger}
}

// HandleWebhook handles POST /webhooks/resend
func (h *ResendHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	var event resendEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		h.metrics.WebhookFailed.WithLabelValues("resend").Inc()
		handler.ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "webhook.resend", "Invalid JSON"))
		return
	}

	h.metrics.WebhookReceived.WithLabelValues("resend", event.Type).Inc()

	if event.Type == "email.opened" {
		if err := h.invoices.RecordOpen(r.Context(), event.Data.EmailID, event.CreatedAt); err != nil {
			h.metrics.WebhookFailed.WithLabelValues("resend").Inc()
			h.logger.Error("failed to record open", "email_id", event.Data.EmailID, "error", err)
			// Acknowledge anyway; the open signal is best-effort and a
			// provider retry would hit the same row.
		}
	}

	handler.JSON(w, http.StatusOK, map[string]bool{"received": true})
}
