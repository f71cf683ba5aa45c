package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stripe/stripe-go/v83"

	"github.com/owedhq/owed/internal/repository"
	"github.com/owedhq/owed/internal/service"
	"github.com/owedhq/owed/internal/telemetry"
)

const testWebhookSecret = "whsec_test"

// stripeQuerier stubs just the repository methods the subscription
// service touches; anything else panics through the embedded nil.
type stripeQuerier struct {
	repository.Querier

	upserted []repository.UpsertSubscriptionParams
	statuses []repository.UpdateSubscriptionStatusParams
}

func (q *stripeQuerier) UpsertSubscription(ctx context.Context, arg repository.UpsertSubscriptionParams) (repository.Subscription, error) {
	q.upserted = append(q.upserted, arg)
	return repository.Subscription{}, nil
}

func (q *stripeQuerier) UpdateSubscriptionStatus(ctx context.Context, arg repository.UpdateSubscriptionStatusParams) error {
	q.statuses = append(q.statuses, arg)
	return nil
}

func newStripeHandler(repo repository.Querier) *StripeHandler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewStripeHandler(
		service.NewSubscriptionService(repo, logger),
		telemetry.NewMetrics(prometheus.NewRegistry()),
		logger,
		testWebhookSecret,
	)
}

// signStripePayload builds a valid Stripe-Signature header for payload.
func signStripePayload(payload string) string {
	ts := fmt.Sprintf("%d", time.Now().Unix())
	mac := hmac.New(sha256.New, []byte(testWebhookSecret))
	mac.Write([]byte(ts + "." + payload))
	return fmt.Sprintf("t=%s,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func stripeEventPayload(eventType, object string) string {
	return fmt.Sprintf(`{
		"id": "evt_1",
		"object": "event",
		"api_version": %q,
		"type": %q,
		"data": {"object": %s}
	}`, stripe.APIVersion, eventType, object)
}

func postStripeEvent(t *testing.T, h *StripeHandler, payload, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/webhooks/stripe", strings.NewReader(payload))
	req.Header.Set("Stripe-Signature", signature)
	rec := httptest.NewRecorder()
	h.HandleWebhook(rec, req)
	return rec
}

func TestStripeWebhookRejectsInvalidSignature(t *testing.T) {
	repo := &stripeQuerier{}
	h := newStripeHandler(repo)

	payload := stripeEventPayload("customer.subscription.deleted", `{"id": "sub_1"}`)
	rec := postStripeEvent(t, h, payload, "t=123,v1=deadbeef")

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
	if len(repo.statuses) != 0 {
		t.Error("unverified event must not touch the database")
	}
}

func TestStripeWebhookSubscriptionCreated(t *testing.T) {
	repo := &stripeQuerier{}
	h := newStripeHandler(repo)

	userID := "33333333-3333-3333-3333-333333333333"
	object := fmt.Sprintf(`{
		"id": "sub_1",
		"status": "trialing",
		"trial_end": %d,
		"customer": {"id": "cus_1"},
		"metadata": {"user_id": %q},
		"items": {"data": [{"id": "si_1", "current_period_end": %d}]}
	}`, time.Now().AddDate(0, 0, 14).Unix(), userID, time.Now().AddDate(0, 1, 0).Unix())

	payload := stripeEventPayload("customer.subscription.created", object)
	rec := postStripeEvent(t, h, payload, signStripePayload(payload))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(repo.upserted) != 1 {
		t.Fatalf("upserts = %d, want 1", len(repo.upserted))
	}

	got := repo.upserted[0]
	if got.Status != "trialing" {
		t.Errorf("status = %q", got.Status)
	}
	if got.StripeSubscriptionID.String != "sub_1" || got.StripeCustomerID.String != "cus_1" {
		t.Errorf("ids = %q / %q", got.StripeSubscriptionID.String, got.StripeCustomerID.String)
	}
	if !got.TrialEndsAt.Valid {
		t.Error("trial end was not mirrored")
	}
	if !got.CurrentPeriodEnd.Valid {
		t.Error("current period end was not mirrored from the subscription item")
	}
}

func TestStripeWebhookSubscriptionDeleted(t *testing.T) {
	repo := &stripeQuerier{}
	h := newStripeHandler(repo)

	object := `{"id": "sub_1", "status": "canceled", "metadata": {"user_id": "33333333-3333-3333-3333-333333333333"}}`
	payload := stripeEventPayload("customer.subscription.deleted", object)
	rec := postStripeEvent(t, h, payload, signStripePayload(payload))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(repo.statuses) != 1 || repo.statuses[0].Status != service.SubscriptionStatusCanceled {
		t.Errorf("status updates = %+v, want one canceled", repo.statuses)
	}
}

func TestStripeWebhookInvoicePaymentFailed(t *testing.T) {
	repo := &stripeQuerier{}
	h := newStripeHandler(repo)

	object := `{
		"id": "in_1",
		"parent": {"subscription_details": {"subscription": {
			"id": "sub_1",
			"metadata": {"user_id": "33333333-3333-3333-3333-333333333333"}
		}}}
	}`
	payload := stripeEventPayload("invoice.payment_failed", object)
	rec := postStripeEvent(t, h, payload, signStripePayload(payload))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(repo.statuses) != 1 || repo.statuses[0].Status != service.SubscriptionStatusPastDue {
		t.Errorf("status updates = %+v, want one past_due", repo.statuses)
	}
}

func TestStripeWebhookMissingUserMetadata(t *testing.T) {
	repo := &stripeQuerier{}
	h := newStripeHandler(repo)

	object := `{"id": "sub_1", "status": "active"}`
	payload := stripeEventPayload("customer.subscription.updated", object)
	rec := postStripeEvent(t, h, payload, signStripePayload(payload))

	// Still acknowledged so Stripe stops retrying; nothing is stored.
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(repo.upserted) != 0 {
		t.Error("event without user_id must not be mirrored")
	}
}

func TestStripeWebhookIgnoresUnhandledEvents(t *testing.T) {
	repo := &stripeQuerier{}
	h := newStripeHandler(repo)

	payload := stripeEventPayload("charge.succeeded", `{"id": "ch_1"}`)
	rec := postStripeEvent(t, h, payload, signStripePayload(payload))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}

	if len(repo.upserted) != 0 || len(repo.statuses) != 0 {
		t.Error("unhandled event must not touch the database")
	}
}
