package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/owedhq/owed/internal/domain"
	"github.com/owedhq/owed/internal/repository"
)

// Subscription statuses mirrored from the billing provider.
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusTrialing = "trialing"
	SubscriptionStatusPastDue  = "past_due"
	SubscriptionStatusCanceled = "canceled"
)

// SubscriptionService mirrors billing state from Stripe webhooks and
// answers entitlement questions. Chasing requires an active subscription
// or a live trial; losing entitlement never mutates chasing_enabled, the
// scheduler just stops considering the user.
type SubscriptionService struct {
	repo   repository.Querier
	logger *slog.Logger
}

// NewSubscriptionService creates a new SubscriptionService.
func NewSubscriptionService(repo repository.Querier, logger *slog.Logger) *SubscriptionService {
	return &SubscriptionService{repo: repo, logger: logger}
}

// UpsertFromEvent mirrors a subscription create/update from the billing
// provider.
type UpsertSubscriptionEvent struct {
	UserID               string
	StripeCustomerID     string
	StripeSubscriptionID string
	Status               string
	TrialEndsAt          time.Time
	CurrentPeriodEnd     time.Time
}

// UpsertFromEvent stores the provider's view of a user's subscription.
func (s *SubscriptionService) UpsertFromEvent(ctx context.Context, event UpsertSubscriptionEvent) error {
	uID, err := pgUUID(event.UserID)
	if err != nil {
		return err
	}

	_, err = s.repo.UpsertSubscription(ctx, repository.UpsertSubscriptionParams{
		UserID:               uID,
		StripeCustomerID:     pgText(event.StripeCustomerID),
		StripeSubscriptionID: pgText(event.StripeSubscriptionID),
		Status:               event.Status,
		TrialEndsAt:          pgTimestamptz(event.TrialEndsAt),
		CurrentPeriodEnd:     pgTimestamptz(event.CurrentPeriodEnd),
	})
	if err != nil {
		return fmt.Errorf("failed to upsert subscription: %w", err)
	}

	s.logger.Info("subscription mirrored",
		"user_id", event.UserID, "status", event.Status)
	return nil
}

// SetStatus updates just the subscription status, for events that carry
// no other useful fields (payment failed, deleted).
func (s *SubscriptionService) SetStatus(ctx context.Context, userID, status string) error {
	uID, err := pgUUID(userID)
	if err != nil {
		return err
	}

	if err := s.repo.UpdateSubscriptionStatus(ctx, repository.UpdateSubscriptionStatusParams{
		UserID: uID,
		Status: status,
	}); err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}

	s.logger.Info("subscription status updated", "user_id", userID, "status", status)
	return nil
}

// Get returns the user's subscription, if any.
func (s *SubscriptionService) Get(ctx context.Context, userID string) (repository.Subscription, error) {
	uID, err := pgUUID(userID)
	if err != nil {
		return repository.Subscription{}, err
	}

	sub, err := s.repo.GetSubscriptionByUser(ctx, uID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Subscription{}, ErrSubscriptionNotFound
		}
		return repository.Subscription{}, fmt.Errorf("failed to load subscription: %w", err)
	}
	return sub, nil
}

// Entitled reports whether the user may run automatic chasing: an active
// subscription, or a trial that has not yet ended.
func (s *SubscriptionService) Entitled(ctx context.Context, userID string) (bool, error) {
	sub, err := s.Get(ctx, userID)
	if err != nil {
		if domain.ErrorCode(err) == domain.ENOTFOUND {
			return false, nil
		}
		return false, err
	}

	switch sub.Status {
	case SubscriptionStatusActive:
		return true, nil
	case SubscriptionStatusTrialing:
		return !sub.TrialEndsAt.Valid || sub.TrialEndsAt.Time.After(time.Now()), nil
	default:
		return false, nil
	}
}
