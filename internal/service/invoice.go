package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/owedhq/owed/internal/domain"
	"github.com/owedhq/owed/internal/repository"
)

// InvoiceTerminalizer moves an invoice to a terminal status with its
// paired side effects. Implemented by SyncService.
type InvoiceTerminalizer interface {
	Terminalize(ctx context.Context, inv repository.Invoice, status domain.InvoiceStatus, activityType, note string) (bool, error)
}

// InvoiceService implements the user-facing invoice actions: pause,
// resume, reply and call logging, manual mark-paid, unsubscribe, and the
// open-tracking signal.
type InvoiceService struct {
	repo   repository.Querier
	term   InvoiceTerminalizer
	logger *slog.Logger
}

// NewInvoiceService creates a new InvoiceService.
func NewInvoiceService(repo repository.Querier, term InvoiceTerminalizer, logger *slog.Logger) *InvoiceService {
	return &InvoiceService{repo: repo, term: term, logger: logger}
}

// InvoiceDetail is one invoice with its chase history.
type InvoiceDetail struct {
	Invoice     repository.Invoice
	ChaseEmails []repository.ChaseEmail
}

// Get returns one of the user's invoices with its chase history.
func (s *InvoiceService) Get(ctx context.Context, userID, invoiceID string) (*InvoiceDetail, error) {
	inv, err := s.getForUser(ctx, userID, invoiceID)
	if err != nil {
		return nil, err
	}

	chases, err := s.repo.ListChaseEmailsByInvoice(ctx, inv.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list chase emails: %w", err)
	}

	return &InvoiceDetail{Invoice: inv, ChaseEmails: chases}, nil
}

// List returns the user's invoices with the given status.
func (s *InvoiceService) List(ctx context.Context, userID, status string) ([]repository.Invoice, error) {
	uID, err := pgUUID(userID)
	if err != nil {
		return nil, err
	}
	if status == "" {
		status = string(domain.InvoiceStatusOpen)
	}

	invoices, err := s.repo.ListInvoicesByUserStatus(ctx, repository.ListInvoicesByUserStatusParams{
		UserID: uID,
		Status: status,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list invoices: %w", err)
	}
	return invoices, nil
}

// Pause disables chasing for an open invoice, keeping the reason so the
// UI can show why. Any still-scheduled chase is cancelled.
func (s *InvoiceService) Pause(ctx context.Context, userID, invoiceID, reason string) (repository.Invoice, error) {
	return s.setChasing(ctx, userID, invoiceID, false, reason)
}

// Resume re-enables chasing for an open invoice and clears the pause
// reason. The sequence picks up from the last sent stage.
func (s *InvoiceService) Resume(ctx context.Context, userID, invoiceID string) (repository.Invoice, error) {
	inv, err := s.getForUser(ctx, userID, invoiceID)
	if err != nil {
		return repository.Invoice{}, err
	}
	if !inv.ContactEmail.Valid {
		return repository.Invoice{}, ErrNoContactEmail
	}
	return s.setChasing(ctx, userID, invoiceID, true, "")
}

// MarkReplied records that the client replied and pauses chasing. Reply
// detection is manual; there is no inbound email parsing.
func (s *InvoiceService) MarkReplied(ctx context.Context, userID, invoiceID string) (repository.Invoice, error) {
	inv, err := s.setChasing(ctx, userID, invoiceID, false, domain.PauseReasonReplied)
	if err != nil {
		return repository.Invoice{}, err
	}

	if _, err := s.repo.CreateInvoiceActivity(ctx, repository.CreateInvoiceActivityParams{
		InvoiceID: inv.ID,
		UserID:    inv.UserID,
		Type:      domain.ActivityTypeReply,
		Note:      pgText("Client replied"),
	}); err != nil {
		s.logger.Error("failed to record reply activity", "invoice_id", inv.ID, "error", err)
	}
	return inv, nil
}

// LogCall appends a call note to the invoice's activity trail.
func (s *InvoiceService) LogCall(ctx context.Context, userID, invoiceID, note string) error {
	inv, err := s.getForUser(ctx, userID, invoiceID)
	if err != nil {
		return err
	}
	if note == "" {
		note = "Called client"
	}

	if _, err := s.repo.CreateInvoiceActivity(ctx, repository.CreateInvoiceActivityParams{
		InvoiceID: inv.ID,
		UserID:    inv.UserID,
		Type:      domain.ActivityTypeCall,
		Note:      pgText(note),
	}); err != nil {
		return fmt.Errorf("failed to record call: %w", err)
	}
	return nil
}

// MarkPaid closes an invoice the user knows has been paid outside the
// ledger sync. Runs the same transition as reconciliation, so the
// recovered stat fires at most once even if a later sync sees it paid.
func (s *InvoiceService) MarkPaid(ctx context.Context, userID, invoiceID string) (repository.Invoice, error) {
	inv, err := s.getForUser(ctx, userID, invoiceID)
	if err != nil {
		return repository.Invoice{}, err
	}

	transitioned, err := s.term.Terminalize(ctx, inv, domain.InvoiceStatusPaid, domain.ActivityTypePaid, "Marked as paid manually")
	if err != nil {
		return repository.Invoice{}, fmt.Errorf("failed to mark invoice paid: %w", err)
	}
	if !transitioned {
		return repository.Invoice{}, ErrInvoiceNotOpen
	}

	updated, err := s.repo.GetInvoice(ctx, inv.ID)
	if err != nil {
		return repository.Invoice{}, fmt.Errorf("failed to reload invoice: %w", err)
	}
	return updated, nil
}

// Unsubscribe handles the link in chase email footers. The token is the
// invoice id, base64url encoded; no auth beyond holding the link.
func (s *InvoiceService) Unsubscribe(ctx context.Context, token string) error {
	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return ErrInvalidUnsubToken
	}

	invID, err := pgUUID(string(raw))
	if err != nil {
		return ErrInvalidUnsubToken
	}

	inv, err := s.repo.GetInvoice(ctx, invID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrInvoiceNotFound
		}
		return fmt.Errorf("failed to load invoice: %w", err)
	}

	// Already terminal: nothing to stop, treat as success.
	if inv.Status != string(domain.InvoiceStatusOpen) {
		return nil
	}

	if _, err := s.repo.SetInvoiceChasing(ctx, repository.SetInvoiceChasingParams{
		ID:             inv.ID,
		UserID:         inv.UserID,
		ChasingEnabled: false,
		PauseReason:    pgText(domain.PauseReasonUnsubscribed),
	}); err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("failed to pause chasing: %w", err)
	}

	if err := s.repo.CancelScheduledChaseEmails(ctx, inv.ID); err != nil {
		s.logger.Error("failed to cancel scheduled chases", "invoice_id", inv.ID, "error", err)
	}
	return nil
}

// RecordOpen consumes the provider's asynchronous opened signal. The
// first signal wins; later duplicates match zero rows and are ignored.
func (s *InvoiceService) RecordOpen(ctx context.Context, providerMessageID string, openedAt time.Time) error {
	if providerMessageID == "" {
		return nil
	}
	if openedAt.IsZero() {
		openedAt = time.Now()
	}

	rows, err := s.repo.MarkChaseEmailOpened(ctx, repository.MarkChaseEmailOpenedParams{
		ProviderMessageID: pgText(providerMessageID),
		OpenedAt:          pgTimestamptz(openedAt),
	})
	if err != nil {
		return fmt.Errorf("failed to record open: %w", err)
	}
	if rows > 0 {
		s.logger.Info("chase email opened", "provider_message_id", providerMessageID)
	}
	return nil
}

func (s *InvoiceService) getForUser(ctx context.Context, userID, invoiceID string) (repository.Invoice, error) {
	uID, err := pgUUID(userID)
	if err != nil {
		return repository.Invoice{}, err
	}
	invID, err := pgUUID(invoiceID)
	if err != nil {
		return repository.Invoice{}, err
	}

	inv, err := s.repo.GetInvoiceForUser(ctx, repository.GetInvoiceForUserParams{
		ID:     invID,
		UserID: uID,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Invoice{}, ErrInvoiceNotFound
		}
		return repository.Invoice{}, fmt.Errorf("failed to load invoice: %w", err)
	}
	return inv, nil
}

func (s *InvoiceService) setChasing(ctx context.Context, userID, invoiceID string, enabled bool, reason string) (repository.Invoice, error) {
	inv, err := s.getForUser(ctx, userID, invoiceID)
	if err != nil {
		return repository.Invoice{}, err
	}

	updated, err := s.repo.SetInvoiceChasing(ctx, repository.SetInvoiceChasingParams{
		ID:             inv.ID,
		UserID:         inv.UserID,
		ChasingEnabled: enabled,
		PauseReason:    pgText(reason),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// The status = 'open' predicate matched nothing.
			return repository.Invoice{}, ErrInvoiceNotOpen
		}
		return repository.Invoice{}, fmt.Errorf("failed to update chasing: %w", err)
	}

	if !enabled {
		if err := s.repo.CancelScheduledChaseEmails(ctx, updated.ID); err != nil {
			s.logger.Error("failed to cancel scheduled chases", "invoice_id", updated.ID, "error", err)
		}
	}
	return updated, nil
}
