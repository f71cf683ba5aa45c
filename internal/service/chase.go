package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/owedhq/owed/internal/domain"
	"github.com/owedhq/owed/internal/email"
	"github.com/owedhq/owed/internal/repository"
	"github.com/owedhq/owed/internal/telemetry"
)

// chaseGaps is the minimum days since the previous stage's send, indexed
// by the stage about to fire. Stage 1 fires as soon as the invoice is
// eligible; there is no stage 0.
var chaseGaps = [domain.FinalChaseStage + 1]int{0, 0, 6, 7, 7}

// ChaseService advances eligible invoices through the reminder sequence.
// It holds no state between runs; everything it needs lives in the
// invoice and chase email mirror.
type ChaseService struct {
	repo     repository.Querier
	tx       TxRunner
	sender   email.Sender
	metrics  *telemetry.Metrics
	logger   *slog.Logger
	baseURL  string
	from     string
	fromName string
	now      func() time.Time
}

// ChaseServiceParams configures a ChaseService.
type ChaseServiceParams struct {
	Repo     repository.Querier
	Tx       TxRunner
	Sender   email.Sender
	Metrics  *telemetry.Metrics
	Logger   *slog.Logger
	BaseURL  string
	From     string
	FromName string
	Now      func() time.Time
}

// NewChaseService creates a new ChaseService.
func NewChaseService(p ChaseServiceParams) *ChaseService {
	now := p.Now
	if now == nil {
		now = time.Now
	}
	return &ChaseService{
		repo:     p.Repo,
		tx:       p.Tx,
		sender:   p.Sender,
		metrics:  p.Metrics,
		logger:   p.Logger,
		baseURL:  p.BaseURL,
		from:     p.From,
		fromName: p.FromName,
		now:      now,
	}
}

// ChaseSummary counts the work done by one scheduler pass.
type ChaseSummary struct {
	Eligible  int `json:"eligible"`
	Sent      int `json:"sent"`
	Skipped   int `json:"skipped"`
	Completed int `json:"completed"`
	Errors    int `json:"errors"`
}

type chaseOutcome int

const (
	outcomeSkipped chaseOutcome = iota
	outcomeSent
	outcomeCompleted
)

// SendDue runs one scheduler pass over every chaseable invoice belonging
// to an entitled user. Failures are isolated per invoice; the idempotency
// guard makes a retry on the next pass safe.
func (s *ChaseService) SendDue(ctx context.Context) (ChaseSummary, error) {
	userIDs, err := s.repo.ListEntitledUserIDs(ctx)
	if err != nil {
		return ChaseSummary{}, fmt.Errorf("failed to list entitled users: %w", err)
	}

	var summary ChaseSummary
	if len(userIDs) == 0 {
		return summary, nil
	}

	rows, err := s.repo.ListChaseableInvoices(ctx, userIDs)
	if err != nil {
		return summary, fmt.Errorf("failed to list chaseable invoices: %w", err)
	}
	summary.Eligible = len(rows)

	for _, row := range rows {
		outcome, err := s.processInvoice(ctx, row)
		if err != nil {
			summary.Errors++
			s.metrics.ChaseErrors.Inc()
			s.logger.Error("chase failed",
				"invoice_id", row.Invoice.ID, "error", err)
			telemetry.CaptureError(err, map[string]interface{}{
				"invoice_id": row.Invoice.ID,
			})
			continue
		}
		switch outcome {
		case outcomeSent:
			summary.Sent++
		case outcomeCompleted:
			summary.Completed++
		case outcomeSkipped:
			summary.Skipped++
		}
	}

	s.logger.Info("chase pass complete",
		"eligible", summary.Eligible,
		"sent", summary.Sent,
		"skipped", summary.Skipped,
		"completed", summary.Completed,
		"errors", summary.Errors,
	)
	return summary, nil
}

func (s *ChaseService) processInvoice(ctx context.Context, row repository.ListChaseableInvoicesRow) (chaseOutcome, error) {
	inv := row.Invoice

	lastStage := 0
	var lastSentAt time.Time
	last, err := s.repo.GetLastSentChaseEmail(ctx, inv.ID)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return outcomeSkipped, fmt.Errorf("failed to load chase history: %w", err)
		}
	} else {
		lastStage = int(last.Stage)
		lastSentAt = last.SentAt.Time
	}

	// Sequence exhausted: close the invoice out.
	if lastStage >= domain.FinalChaseStage {
		if err := s.completeInvoice(ctx, inv); err != nil {
			return outcomeSkipped, err
		}
		return outcomeCompleted, nil
	}

	nextStage := lastStage + 1
	if lastStage > 0 {
		daysSince := int(s.now().Sub(lastSentAt).Hours() / 24)
		if daysSince < chaseGaps[nextStage] {
			return outcomeSkipped, nil
		}
	}

	// Idempotency guard: advisory read; the partial unique index on
	// (invoice_id, stage) makes it robust against a concurrent pass.
	_, err = s.repo.GetActiveChaseEmail(ctx, repository.GetActiveChaseEmailParams{
		InvoiceID: inv.ID,
		Stage:     int16(nextStage),
	})
	if err == nil {
		return outcomeSkipped, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return outcomeSkipped, fmt.Errorf("failed to check chase history: %w", err)
	}

	// Re-read fresh state right before dispatch: reconciliation may have
	// terminalized or a user may have paused since the listing.
	fresh, err := s.repo.GetInvoice(ctx, inv.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return outcomeSkipped, nil
		}
		return outcomeSkipped, fmt.Errorf("failed to reload invoice: %w", err)
	}
	if fresh.Status != string(domain.InvoiceStatusOpen) || !fresh.ChasingEnabled || !fresh.ContactEmail.Valid {
		return outcomeSkipped, nil
	}

	return s.dispatch(ctx, fresh, row.OwnerEmail, row.BusinessName.String, int16(nextStage))
}

func (s *ChaseService) dispatch(ctx context.Context, inv repository.Invoice, ownerEmail, businessName string, stage int16) (chaseOutcome, error) {
	if businessName == "" {
		businessName = ownerEmail
	}

	daysOverdue := 0
	if inv.DueDate.Valid {
		if d := int(s.now().Sub(inv.DueDate.Time).Hours() / 24); d > 0 {
			daysOverdue = d
		}
	}

	unsubURL := s.unsubscribeURL(inv.ID)
	htmlBody, textBody, err := email.RenderChase(stage, email.ChaseData{
		ContactName:    inv.ContactName,
		BusinessName:   businessName,
		InvoiceNumber:  inv.InvoiceNumber.String,
		AmountDue:      decimalFromNumeric(inv.AmountDue),
		Currency:       inv.Currency,
		DueDate:        inv.DueDate.Time,
		DaysOverdue:    daysOverdue,
		UnsubscribeURL: unsubURL,
	})
	if err != nil {
		return outcomeSkipped, fmt.Errorf("failed to render chase: %w", err)
	}

	msg := &email.Email{
		To:       []string{inv.ContactEmail.String},
		From:     s.from,
		FromName: fmt.Sprintf("%s via %s", businessName, s.fromName),
		ReplyTo:  ownerEmail,
		Subject:  email.ChaseSubject(stage, inv.InvoiceNumber.String),
		HTMLBody: htmlBody,
		TextBody: textBody,
		Headers: map[string]string{
			"List-Unsubscribe":      fmt.Sprintf("<%s>", unsubURL),
			"List-Unsubscribe-Post": "List-Unsubscribe=One-Click",
		},
	}

	messageID, err := s.sender.Send(ctx, msg)
	if err != nil {
		// No row was written, so the next pass retries this stage safely.
		s.metrics.EmailFailed.Inc()
		return outcomeSkipped, fmt.Errorf("failed to dispatch stage %d: %w", stage, err)
	}
	s.metrics.EmailSent.Inc()

	_, err = s.repo.CreateSentChaseEmail(ctx, repository.CreateSentChaseEmailParams{
		InvoiceID:         inv.ID,
		UserID:            inv.UserID,
		Stage:             stage,
		ProviderMessageID: pgText(messageID),
	})
	if err != nil {
		if isUniqueViolation(err) {
			// A concurrent pass won the race for this stage.
			s.logger.Warn("lost chase race, duplicate suppressed",
				"invoice_id", inv.ID, "stage", stage)
			return outcomeSkipped, nil
		}
		return outcomeSkipped, fmt.Errorf("failed to record sent chase: %w", err)
	}

	s.metrics.ChasesSent.WithLabelValues(strconv.Itoa(int(stage))).Inc()
	s.logger.Info("chase sent",
		"invoice_id", inv.ID, "stage", stage, "message_id", messageID)
	return outcomeSent, nil
}

// completeInvoice terminalizes an invoice whose final stage has been sent.
// The cancel is paired in the same transaction so nothing stays scheduled
// against a completed invoice.
func (s *ChaseService) completeInvoice(ctx context.Context, inv repository.Invoice) error {
	transitioned := false
	err := s.tx.RunTx(ctx, func(q repository.Querier) error {
		updated, err := q.TerminalizeInvoice(ctx, repository.TerminalizeInvoiceParams{
			ID:     inv.ID,
			Status: string(domain.InvoiceStatusCompleted),
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil
			}
			return err
		}
		if err := q.CancelScheduledChaseEmails(ctx, updated.ID); err != nil {
			return err
		}
		transitioned = true
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to complete invoice: %w", err)
	}
	if transitioned {
		s.metrics.InvoicesTerminalized.WithLabelValues(string(domain.InvoiceStatusCompleted)).Inc()
		s.logger.Info("chase sequence exhausted, invoice completed", "invoice_id", inv.ID)
	}
	return nil
}

// unsubscribeURL builds the per-invoice unsubscribe reference embedded in
// every chase email. The token is just the invoice id, base64url encoded.
func (s *ChaseService) unsubscribeURL(invoiceID pgtype.UUID) string {
	token := base64.RawURLEncoding.EncodeToString([]byte(uuid.UUID(invoiceID.Bytes).String()))
	return fmt.Sprintf("%s/unsubscribe/%s", s.baseURL, token)
}
