package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/owedhq/owed/internal/domain"
	"github.com/owedhq/owed/internal/ledger"
	"github.com/owedhq/owed/internal/repository"
	"github.com/owedhq/owed/internal/telemetry"
)

// SyncService is the reconciliation engine. The ledger is authoritative
// for invoice existence, amounts, and terminal state; the local mirror is
// authoritative only for chasing preferences.
type SyncService struct {
	repo    repository.Querier
	tx      TxRunner
	tokens  *TokenService
	ledger  ledger.Client
	metrics *telemetry.Metrics
	logger  *slog.Logger
}

// NewSyncService creates a new SyncService.
func NewSyncService(repo repository.Querier, tx TxRunner, tokens *TokenService, lc ledger.Client, metrics *telemetry.Metrics, logger *slog.Logger) *SyncService {
	return &SyncService{
		repo:    repo,
		tx:      tx,
		tokens:  tokens,
		ledger:  lc,
		metrics: metrics,
		logger:  logger,
	}
}

// SyncSummary counts the work done by one reconciliation pass.
type SyncSummary struct {
	Connections  int `json:"connections"`
	Upserted     int `json:"upserted"`
	Terminalized int `json:"terminalized"`
	Errors       int `json:"errors"`
}

// SyncAll reconciles every active connection. A failure on one connection
// never aborts the others; it is counted and the connection is left in its
// previous mirrored state.
func (s *SyncService) SyncAll(ctx context.Context) (SyncSummary, error) {
	conns, err := s.repo.ListActiveConnections(ctx)
	if err != nil {
		return SyncSummary{}, fmt.Errorf("failed to list connections: %w", err)
	}

	summary := SyncSummary{Connections: len(conns)}
	for _, conn := range conns {
		upserted, terminalized, err := s.SyncConnection(ctx, conn)
		summary.Upserted += upserted
		summary.Terminalized += terminalized
		if err != nil {
			if errors.Is(err, ErrReconnectRequired) {
				// Surfaced to the user via the token_expired flag; not a
				// batch error.
				s.logger.Warn("connection needs reconnect, skipping sync",
					"connection_id", conn.ID, "user_id", conn.UserID)
				continue
			}
			summary.Errors++
			s.metrics.SyncRuns.WithLabelValues("error").Inc()
			s.logger.Error("connection sync failed",
				"connection_id", conn.ID, "error", err)
			telemetry.CaptureError(err, map[string]interface{}{
				"connection_id": conn.ID,
			})
			continue
		}
		s.metrics.SyncRuns.WithLabelValues("ok").Inc()
	}

	s.logger.Info("reconciliation pass complete",
		"connections", summary.Connections,
		"upserted", summary.Upserted,
		"terminalized", summary.Terminalized,
		"errors", summary.Errors,
	)
	return summary, nil
}

// SyncConnection reconciles one connection: mirrors the ledger's current
// overdue invoices, then terminalizes local invoices the ledger now
// reports as paid or voided.
func (s *SyncService) SyncConnection(ctx context.Context, conn repository.Connection) (upserted, terminalized int, err error) {
	token, err := s.tokens.EnsureFreshToken(ctx, conn)
	if err != nil {
		return 0, 0, err
	}

	now := time.Now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	// All pages must be traversed before we touch the mirror; ListInvoices
	// never returns a partial result with nil error.
	overdue, err := s.ledger.ListInvoices(ctx, ledger.ListInvoicesParams{
		AccessToken: token,
		TenantID:    conn.TenantID,
		Statuses:    []string{ledger.StatusAuthorised, ledger.StatusSubmitted},
		DueBefore:   today,
	})
	if err != nil {
		return 0, 0, fmt.Errorf("failed to fetch overdue invoices: %w", err)
	}

	for _, inv := range overdue {
		if err := s.upsertInvoice(ctx, conn, inv); err != nil {
			s.logger.Error("failed to upsert invoice",
				"connection_id", conn.ID, "external_id", inv.InvoiceID, "error", err)
			continue
		}
		upserted++
		s.metrics.InvoicesUpserted.Inc()
	}

	terminalized, err = s.reconcileTerminal(ctx, conn, token, today)
	if err != nil {
		return upserted, terminalized, err
	}

	return upserted, terminalized, nil
}

// upsertInvoice mirrors one ledger invoice, keyed by (connection_id,
// external_id). chasing_enabled is decided only on first insert; later
// syncs refresh ledger-owned fields without touching the user's choice.
func (s *SyncService) upsertInvoice(ctx context.Context, conn repository.Connection, inv ledger.Invoice) error {
	existing, err := s.repo.GetInvoiceByExternalID(ctx, repository.GetInvoiceByExternalIDParams{
		ConnectionID: conn.ID,
		ExternalID:   inv.InvoiceID,
	})
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("failed to look up invoice: %w", err)
		}

		_, err = s.repo.CreateInvoice(ctx, repository.CreateInvoiceParams{
			UserID:         conn.UserID,
			ConnectionID:   conn.ID,
			ExternalID:     inv.InvoiceID,
			InvoiceNumber:  pgText(inv.InvoiceNumber),
			ContactName:    inv.Contact.Name,
			ContactEmail:   pgText(inv.Contact.EmailAddress),
			ContactPhone:   pgText(inv.Contact.Phone),
			AmountDue:      numericFromDecimal(inv.AmountDue),
			Currency:       inv.CurrencyCode,
			DueDate:        pgDate(inv.DueDate),
			ChasingEnabled: inv.Contact.EmailAddress != "",
		})
		if err != nil {
			if isUniqueViolation(err) {
				// Concurrent sync created it first; it will be refreshed
				// next cycle.
				return nil
			}
			return fmt.Errorf("failed to create invoice: %w", err)
		}
		return nil
	}

	_, err = s.repo.UpdateInvoiceFromLedger(ctx, repository.UpdateInvoiceFromLedgerParams{
		ID:            existing.ID,
		InvoiceNumber: pgText(inv.InvoiceNumber),
		ContactName:   inv.Contact.Name,
		ContactEmail:  pgText(inv.Contact.EmailAddress),
		ContactPhone:  pgText(inv.Contact.Phone),
		AmountDue:     numericFromDecimal(inv.AmountDue),
		Currency:      inv.CurrencyCode,
		DueDate:       pgDate(inv.DueDate),
	})
	if err != nil {
		return fmt.Errorf("failed to refresh invoice: %w", err)
	}
	return nil
}

// reconcileTerminal fetches the ledger's current paid and voided sets and
// terminalizes any locally-open invoice that appears in them.
func (s *SyncService) reconcileTerminal(ctx context.Context, conn repository.Connection, token string, today time.Time) (int, error) {
	open, err := s.repo.ListOpenInvoicesByConnection(ctx, conn.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to list open invoices: %w", err)
	}
	if len(open) == 0 {
		return 0, nil
	}

	paidSet, err := s.fetchExternalIDs(ctx, conn, token, ledger.StatusPaid, today)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch paid invoices: %w", err)
	}
	voidedSet, err := s.fetchExternalIDs(ctx, conn, token, ledger.StatusVoided, today)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch voided invoices: %w", err)
	}

	terminalized := 0
	for _, inv := range open {
		var status domain.InvoiceStatus
		var activityType, note string
		switch {
		case paidSet[inv.ExternalID]:
			status = domain.InvoiceStatusPaid
			activityType = domain.ActivityTypePaid
			note = "Payment detected in ledger"
		case voidedSet[inv.ExternalID]:
			status = domain.InvoiceStatusVoided
			activityType = domain.ActivityTypeVoid
			note = "Invoice voided in ledger"
		default:
			continue
		}

		transitioned, err := s.Terminalize(ctx, inv, status, activityType, note)
		if err != nil {
			s.logger.Error("failed to terminalize invoice",
				"invoice_id", inv.ID, "status", status, "error", err)
			continue
		}
		if transitioned {
			terminalized++
		}
	}
	return terminalized, nil
}

func (s *SyncService) fetchExternalIDs(ctx context.Context, conn repository.Connection, token, status string, today time.Time) (map[string]bool, error) {
	invoices, err := s.ledger.ListInvoices(ctx, ledger.ListInvoicesParams{
		AccessToken: token,
		TenantID:    conn.TenantID,
		Statuses:    []string{status},
		DueBefore:   today,
	})
	if err != nil {
		return nil, err
	}

	set := make(map[string]bool, len(invoices))
	for _, inv := range invoices {
		set[inv.InvoiceID] = true
	}
	return set, nil
}

// Terminalize moves an invoice to a terminal status, cancelling any still
// scheduled chase emails in the same transaction so no chase is ever left
// scheduled against a closed invoice. Returns false when the invoice was
// already terminal; the recovered-amount stat fires only on a genuine
// open-to-terminal transition.
func (s *SyncService) Terminalize(ctx context.Context, inv repository.Invoice, status domain.InvoiceStatus, activityType, note string) (bool, error) {
	var updated repository.Invoice
	transitioned := false

	err := s.tx.RunTx(ctx, func(q repository.Querier) error {
		var err error
		updated, err = q.TerminalizeInvoice(ctx, repository.TerminalizeInvoiceParams{
			ID:     inv.ID,
			Status: string(status),
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				// Already terminal; nothing to do.
				return nil
			}
			return err
		}

		if err := q.CancelScheduledChaseEmails(ctx, updated.ID); err != nil {
			return err
		}

		if activityType != "" {
			if _, err := q.CreateInvoiceActivity(ctx, repository.CreateInvoiceActivityParams{
				InvoiceID: updated.ID,
				UserID:    updated.UserID,
				Type:      activityType,
				Note:      pgText(note),
			}); err != nil {
				return err
			}
		}

		transitioned = true
		return nil
	})
	if err != nil {
		return false, err
	}
	if !transitioned {
		return false, nil
	}

	s.metrics.InvoicesTerminalized.WithLabelValues(string(status)).Inc()

	if status == domain.InvoiceStatusPaid {
		// Best-effort: the stats row must not block or roll back the paid
		// transition.
		if err := s.repo.IncrementRecovered(ctx, updated.AmountDue); err != nil {
			s.logger.Error("failed to increment recovered stats",
				"invoice_id", updated.ID, "error", err)
		}
		amount, _ := decimalFromNumeric(updated.AmountDue).Float64()
		s.metrics.RecoveredAmount.Add(amount)
	}

	return true, nil
}
