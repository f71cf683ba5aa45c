package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/owedhq/owed/internal/domain"
	"github.com/owedhq/owed/internal/email"
	"github.com/owedhq/owed/internal/repository"
	"github.com/owedhq/owed/internal/telemetry"
)

// DigestService sends each user a weekly summary of what Owed recovered
// and did on their behalf. Users with nothing to report get no email.
type DigestService struct {
	repo     repository.Querier
	sender   email.Sender
	metrics  *telemetry.Metrics
	logger   *slog.Logger
	from     string
	fromName string
	now      func() time.Time
}

// NewDigestService creates a new DigestService.
func NewDigestService(repo repository.Querier, sender email.Sender, metrics *telemetry.Metrics, logger *slog.Logger, from, fromName string) *DigestService {
	return &DigestService{
		repo:     repo,
		sender:   sender,
		metrics:  metrics,
		logger:   logger,
		from:     from,
		fromName: fromName,
		now:      time.Now,
	}
}

// DigestSummary counts the work done by one digest pass.
type DigestSummary struct {
	Profiles int `json:"profiles"`
	Sent     int `json:"sent"`
	Skipped  int `json:"skipped"`
	Errors   int `json:"errors"`
}

// SendWeekly sends the digest to every profile with activity in the last
// seven days.
func (s *DigestService) SendWeekly(ctx context.Context) (DigestSummary, error) {
	profiles, err := s.repo.ListProfiles(ctx)
	if err != nil {
		return DigestSummary{}, fmt.Errorf("failed to list profiles: %w", err)
	}

	summary := DigestSummary{Profiles: len(profiles)}
	weekEnd := s.now()
	weekStart := weekEnd.AddDate(0, 0, -7)

	for _, profile := range profiles {
		sent, err := s.sendDigest(ctx, profile, weekStart, weekEnd)
		if err != nil {
			summary.Errors++
			s.logger.Error("digest failed", "user_id", profile.ID, "error", err)
			continue
		}
		if sent {
			summary.Sent++
		} else {
			summary.Skipped++
		}
	}

	s.logger.Info("digest pass complete",
		"profiles", summary.Profiles,
		"sent", summary.Sent,
		"skipped", summary.Skipped,
		"errors", summary.Errors,
	)
	return summary, nil
}

func (s *DigestService) sendDigest(ctx context.Context, profile repository.Profile, weekStart, weekEnd time.Time) (bool, error) {
	since := pgTimestamptz(weekStart)

	paid, err := s.repo.ListPaidActivitySince(ctx, repository.ListPaidActivitySinceParams{
		UserID: profile.ID,
		Since:  since,
	})
	if err != nil {
		return false, fmt.Errorf("failed to list paid activity: %w", err)
	}

	chases, err := s.repo.CountChaseEmailsSentSince(ctx, repository.CountChaseEmailsSentSinceParams{
		UserID: profile.ID,
		SentAt: since,
	})
	if err != nil {
		return false, fmt.Errorf("failed to count chases: %w", err)
	}

	// Quiet week: nothing recovered, nothing chased. Stay out of the inbox.
	if len(paid) == 0 && chases == 0 {
		return false, nil
	}

	open, err := s.repo.ListInvoicesByUserStatus(ctx, repository.ListInvoicesByUserStatusParams{
		UserID: profile.ID,
		Status: string(domain.InvoiceStatusOpen),
	})
	if err != nil {
		return false, fmt.Errorf("failed to list open invoices: %w", err)
	}

	total := decimal.Zero
	currency := ""
	lines := make([]email.DigestInvoice, len(paid))
	for i, row := range paid {
		amount := decimalFromNumeric(row.AmountDue)
		total = total.Add(amount)
		if currency == "" {
			currency = row.Currency
		}
		lines[i] = email.DigestInvoice{
			ContactName: row.ContactName,
			Amount:      amount,
			Currency:    row.Currency,
			PaidAt:      row.CreatedAt.Time,
		}
	}

	htmlBody, err := email.RenderDigest(email.DigestData{
		BusinessName:   profile.BusinessName.String,
		WeekStart:      weekStart,
		WeekEnd:        weekEnd,
		PaidInvoices:   lines,
		TotalRecovered: total,
		Currency:       currency,
		OpenCount:      len(open),
		ChasesSent:     int(chases),
	})
	if err != nil {
		return false, fmt.Errorf("failed to render digest: %w", err)
	}

	if _, err := s.sender.Send(ctx, &email.Email{
		To:       []string{profile.Email},
		From:     s.from,
		FromName: s.fromName,
		Subject:  "Your week with Owed",
		HTMLBody: htmlBody,
	}); err != nil {
		s.metrics.EmailFailed.Inc()
		return false, fmt.Errorf("failed to send digest: %w", err)
	}

	s.metrics.DigestsSent.Inc()
	return true, nil
}
