package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/owedhq/owed/internal/ledger"
	"github.com/owedhq/owed/internal/repository"
)

func newSyncService(repo *mockQuerier, lc ledger.Client) *SyncService {
	tokens := NewTokenService(repo, lc, testMetrics(), testLogger())
	return NewSyncService(repo, &mockTxRunner{q: repo}, tokens, lc, testMetrics(), testLogger())
}

func ledgerInvoice(id, email string) ledger.Invoice {
	return ledger.Invoice{
		InvoiceID:     id,
		InvoiceNumber: "INV-" + id,
		Contact: ledger.Contact{
			Name:         "Jane Cooper",
			EmailAddress: email,
		},
		AmountDue:    decimal.RequireFromString("150.00"),
		CurrencyCode: "GBP",
		DueDate:      time.Now().AddDate(0, 0, -10),
		Status:       ledger.StatusAuthorised,
	}
}

func TestSyncConnectionCreatesNewInvoices(t *testing.T) {
	conn := testConnection(1, 2, time.Hour)

	var created []repository.CreateInvoiceParams
	repo := &mockQuerier{
		CreateInvoiceFunc: func(ctx context.Context, arg repository.CreateInvoiceParams) (repository.Invoice, error) {
			created = append(created, arg)
			return repository.Invoice{ID: testUUID(50)}, nil
		},
	}

	lc := ledger.NewMockClient()
	lc.InvoicesByStatus["AUTHORISED,SUBMITTED"] = []ledger.Invoice{
		ledgerInvoice("ext-1", "jane@example.com"),
		ledgerInvoice("ext-2", ""),
	}

	svc := newSyncService(repo, lc)
	upserted, _, err := svc.SyncConnection(context.Background(), conn)
	if err != nil {
		t.Fatalf("SyncConnection() error = %v", err)
	}
	if upserted != 2 {
		t.Errorf("upserted = %d, want 2", upserted)
	}
	if len(created) != 2 {
		t.Fatalf("created %d invoices, want 2", len(created))
	}
	if !created[0].ChasingEnabled {
		t.Error("invoice with contact email should default to chasing enabled")
	}
	if created[1].ChasingEnabled {
		t.Error("invoice without contact email should default to chasing disabled")
	}
}

func TestSyncConnectionRefreshPreservesChasingChoice(t *testing.T) {
	conn := testConnection(1, 2, time.Hour)

	existing := testOpenInvoice(10, 2)
	existing.ChasingEnabled = false // user paused it

	refreshed := false
	repo := &mockQuerier{
		GetInvoiceByExternalIDFunc: func(ctx context.Context, arg repository.GetInvoiceByExternalIDParams) (repository.Invoice, error) {
			return existing, nil
		},
		CreateInvoiceFunc: func(ctx context.Context, arg repository.CreateInvoiceParams) (repository.Invoice, error) {
			t.Error("existing invoice must be updated, not recreated")
			return repository.Invoice{}, nil
		},
		UpdateInvoiceFromLedgerFunc: func(ctx context.Context, arg repository.UpdateInvoiceFromLedgerParams) (repository.Invoice, error) {
			refreshed = true
			if arg.ID != existing.ID {
				t.Errorf("updated wrong invoice")
			}
			return existing, nil
		},
	}

	lc := ledger.NewMockClient()
	lc.InvoicesByStatus["AUTHORISED,SUBMITTED"] = []ledger.Invoice{
		ledgerInvoice("ext-1", "jane@example.com"),
	}

	svc := newSyncService(repo, lc)
	if _, _, err := svc.SyncConnection(context.Background(), conn); err != nil {
		t.Fatalf("SyncConnection() error = %v", err)
	}
	if !refreshed {
		t.Error("existing invoice was not refreshed")
	}
	// UpdateInvoiceFromLedgerParams has no chasing field at all; nothing
	// further to assert beyond the update being chosen over a create.
}

func TestSyncConnectionTerminalizesPaidInvoices(t *testing.T) {
	conn := testConnection(1, 2, time.Hour)
	open := testOpenInvoice(10, 2)

	var terminalized []string
	cancelled := false
	recovered := 0
	activities := []string{}

	repo := &mockQuerier{
		ListOpenInvoicesByConnectionFunc: func(ctx context.Context, connectionID pgtype.UUID) ([]repository.Invoice, error) {
			return []repository.Invoice{open}, nil
		},
		TerminalizeInvoiceFunc: func(ctx context.Context, arg repository.TerminalizeInvoiceParams) (repository.Invoice, error) {
			terminalized = append(terminalized, arg.Status)
			updated := open
			updated.Status = arg.Status
			return updated, nil
		},
		CancelScheduledChaseEmailsFunc: func(ctx context.Context, invoiceID pgtype.UUID) error {
			cancelled = true
			return nil
		},
		CreateInvoiceActivityFunc: func(ctx context.Context, arg repository.CreateInvoiceActivityParams) (repository.InvoiceActivity, error) {
			activities = append(activities, arg.Type)
			return repository.InvoiceActivity{}, nil
		},
		IncrementRecoveredFunc: func(ctx context.Context, amount pgtype.Numeric) error {
			recovered++
			return nil
		},
	}

	lc := ledger.NewMockClient()
	lc.InvoicesByStatus["PAID"] = []ledger.Invoice{{InvoiceID: "ext-1"}}

	svc := newSyncService(repo, lc)
	_, count, err := svc.SyncConnection(context.Background(), conn)
	if err != nil {
		t.Fatalf("SyncConnection() error = %v", err)
	}
	if count != 1 {
		t.Errorf("terminalized = %d, want 1", count)
	}
	if len(terminalized) != 1 || terminalized[0] != "paid" {
		t.Errorf("terminalize calls = %v, want [paid]", terminalized)
	}
	if !cancelled {
		t.Error("scheduled chases were not cancelled")
	}
	if len(activities) != 1 || activities[0] != "paid" {
		t.Errorf("activities = %v, want [paid]", activities)
	}
	if recovered != 1 {
		t.Errorf("recovered increments = %d, want 1", recovered)
	}
}

func TestSyncConnectionVoidedInvoiceDoesNotIncrementRecovered(t *testing.T) {
	conn := testConnection(1, 2, time.Hour)
	open := testOpenInvoice(10, 2)

	repo := &mockQuerier{
		ListOpenInvoicesByConnectionFunc: func(ctx context.Context, connectionID pgtype.UUID) ([]repository.Invoice, error) {
			return []repository.Invoice{open}, nil
		},
		TerminalizeInvoiceFunc: func(ctx context.Context, arg repository.TerminalizeInvoiceParams) (repository.Invoice, error) {
			if arg.Status != "voided" {
				t.Errorf("status = %s, want voided", arg.Status)
			}
			updated := open
			updated.Status = arg.Status
			return updated, nil
		},
		IncrementRecoveredFunc: func(ctx context.Context, amount pgtype.Numeric) error {
			t.Error("voided invoice must not count as recovered")
			return nil
		},
	}

	lc := ledger.NewMockClient()
	lc.InvoicesByStatus["VOIDED"] = []ledger.Invoice{{InvoiceID: "ext-1"}}

	svc := newSyncService(repo, lc)
	if _, _, err := svc.SyncConnection(context.Background(), conn); err != nil {
		t.Fatalf("SyncConnection() error = %v", err)
	}
}

func TestSyncConnectionAlreadyTerminalFiresNoSideEffects(t *testing.T) {
	conn := testConnection(1, 2, time.Hour)
	open := testOpenInvoice(10, 2)

	repo := &mockQuerier{
		ListOpenInvoicesByConnectionFunc: func(ctx context.Context, connectionID pgtype.UUID) ([]repository.Invoice, error) {
			return []repository.Invoice{open}, nil
		},
		TerminalizeInvoiceFunc: func(ctx context.Context, arg repository.TerminalizeInvoiceParams) (repository.Invoice, error) {
			// Another pass already closed it: zero rows matched.
			return repository.Invoice{}, pgx.ErrNoRows
		},
		IncrementRecoveredFunc: func(ctx context.Context, amount pgtype.Numeric) error {
			t.Error("recovered stat must fire only on a genuine transition")
			return nil
		},
		CreateInvoiceActivityFunc: func(ctx context.Context, arg repository.CreateInvoiceActivityParams) (repository.InvoiceActivity, error) {
			t.Error("no activity should be recorded without a transition")
			return repository.InvoiceActivity{}, nil
		},
	}

	lc := ledger.NewMockClient()
	lc.InvoicesByStatus["PAID"] = []ledger.Invoice{{InvoiceID: "ext-1"}}

	svc := newSyncService(repo, lc)
	_, count, err := svc.SyncConnection(context.Background(), conn)
	if err != nil {
		t.Fatalf("SyncConnection() error = %v", err)
	}
	if count != 0 {
		t.Errorf("terminalized = %d, want 0", count)
	}
}

func TestSyncAllIsolatesConnectionFailures(t *testing.T) {
	good := testConnection(1, 2, time.Hour)
	bad := testConnection(3, 4, time.Hour)
	bad.TenantID = "tenant-broken"

	repo := &mockQuerier{
		ListActiveConnectionsFunc: func(ctx context.Context) ([]repository.Connection, error) {
			return []repository.Connection{bad, good}, nil
		},
		CreateInvoiceFunc: func(ctx context.Context, arg repository.CreateInvoiceParams) (repository.Invoice, error) {
			return repository.Invoice{}, nil
		},
	}

	lc := ledger.NewMockClient()
	lc.ListInvoicesFunc = func(ctx context.Context, params ledger.ListInvoicesParams) ([]ledger.Invoice, error) {
		if params.TenantID == "tenant-broken" {
			return nil, errors.New("ledger unavailable")
		}
		if params.Statuses[0] == ledger.StatusAuthorised {
			return []ledger.Invoice{ledgerInvoice("ext-1", "jane@example.com")}, nil
		}
		return nil, nil
	}

	svc := newSyncService(repo, lc)
	summary, err := svc.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll() error = %v", err)
	}
	if summary.Errors != 1 {
		t.Errorf("errors = %d, want 1", summary.Errors)
	}
	if summary.Upserted != 1 {
		t.Errorf("upserted = %d, want 1 from the healthy connection", summary.Upserted)
	}
}

func TestSyncAllSkipsReconnectRequiredWithoutError(t *testing.T) {
	conn := testConnection(1, 2, time.Hour)
	conn.TokenExpired = true

	repo := &mockQuerier{
		ListActiveConnectionsFunc: func(ctx context.Context) ([]repository.Connection, error) {
			return []repository.Connection{conn}, nil
		},
	}

	svc := newSyncService(repo, ledger.NewMockClient())
	summary, err := svc.SyncAll(context.Background())
	if err != nil {
		t.Fatalf("SyncAll() error = %v", err)
	}
	if summary.Errors != 0 {
		t.Errorf("errors = %d, want 0 for a reconnect-required connection", summary.Errors)
	}
}
