package service

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/owedhq/owed/internal/repository"
)

// mockQuerier implements repository.Querier with per-method Func hooks.
// Methods without a hook return zero values; lookups return pgx.ErrNoRows.
type mockQuerier struct {
	CancelScheduledChaseEmailsFunc        func(ctx context.Context, invoiceID pgtype.UUID) error
	CancelScheduledChaseEmailsForUserFunc func(ctx context.Context, userID pgtype.UUID) error
	CountChaseEmailsSentSinceFunc         func(ctx context.Context, arg repository.CountChaseEmailsSentSinceParams) (int64, error)
	CreateInvoiceFunc                     func(ctx context.Context, arg repository.CreateInvoiceParams) (repository.Invoice, error)
	CreateInvoiceActivityFunc             func(ctx context.Context, arg repository.CreateInvoiceActivityParams) (repository.InvoiceActivity, error)
	CreateSentChaseEmailFunc              func(ctx context.Context, arg repository.CreateSentChaseEmailParams) (repository.ChaseEmail, error)
	DisableChasingForUserFunc             func(ctx context.Context, userID pgtype.UUID) error
	DisconnectConnectionFunc              func(ctx context.Context, id pgtype.UUID) error
	GetActiveChaseEmailFunc               func(ctx context.Context, arg repository.GetActiveChaseEmailParams) (repository.ChaseEmail, error)
	GetActiveConnectionByUserFunc         func(ctx context.Context, userID pgtype.UUID) (repository.Connection, error)
	GetConnectionFunc                     func(ctx context.Context, id pgtype.UUID) (repository.Connection, error)
	GetInvoiceFunc                        func(ctx context.Context, id pgtype.UUID) (repository.Invoice, error)
	GetInvoiceByExternalIDFunc            func(ctx context.Context, arg repository.GetInvoiceByExternalIDParams) (repository.Invoice, error)
	GetInvoiceForUserFunc                 func(ctx context.Context, arg repository.GetInvoiceForUserParams) (repository.Invoice, error)
	GetLastSentChaseEmailFunc             func(ctx context.Context, invoiceID pgtype.UUID) (repository.ChaseEmail, error)
	GetPlatformStatsFunc                  func(ctx context.Context) (repository.PlatformStat, error)
	GetProfileFunc                        func(ctx context.Context, id pgtype.UUID) (repository.Profile, error)
	GetSubscriptionByUserFunc             func(ctx context.Context, userID pgtype.UUID) (repository.Subscription, error)
	IncrementRecoveredFunc                func(ctx context.Context, amount pgtype.Numeric) error
	ListActiveConnectionsFunc             func(ctx context.Context) ([]repository.Connection, error)
	ListChaseEmailsByInvoiceFunc          func(ctx context.Context, invoiceID pgtype.UUID) ([]repository.ChaseEmail, error)
	ListChaseableInvoicesFunc             func(ctx context.Context, userIds []pgtype.UUID) ([]repository.ListChaseableInvoicesRow, error)
	ListEntitledUserIDsFunc               func(ctx context.Context) ([]pgtype.UUID, error)
	ListInvoicesByUserStatusFunc          func(ctx context.Context, arg repository.ListInvoicesByUserStatusParams) ([]repository.Invoice, error)
	ListOpenInvoicesByConnectionFunc      func(ctx context.Context, connectionID pgtype.UUID) ([]repository.Invoice, error)
	ListPaidActivitySinceFunc             func(ctx context.Context, arg repository.ListPaidActivitySinceParams) ([]repository.ListPaidActivitySinceRow, error)
	ListProfilesFunc                      func(ctx context.Context) ([]repository.Profile, error)
	MarkChaseEmailOpenedFunc              func(ctx context.Context, arg repository.MarkChaseEmailOpenedParams) (int64, error)
	MarkConnectionTokenExpiredFunc        func(ctx context.Context, id pgtype.UUID) error
	SetInvoiceChasingFunc                 func(ctx context.Context, arg repository.SetInvoiceChasingParams) (repository.Invoice, error)
	TerminalizeInvoiceFunc                func(ctx context.Context, arg repository.TerminalizeInvoiceParams) (repository.Invoice, error)
	UpdateConnectionTokensFunc            func(ctx context.Context, arg repository.UpdateConnectionTokensParams) (repository.Connection, error)
	UpdateInvoiceFromLedgerFunc           func(ctx context.Context, arg repository.UpdateInvoiceFromLedgerParams) (repository.Invoice, error)
	UpdateSubscriptionStatusFunc          func(ctx context.Context, arg repository.UpdateSubscriptionStatusParams) error
	UpsertConnectionFunc                  func(ctx context.Context, arg repository.UpsertConnectionParams) (repository.Connection, error)
	UpsertProfileFunc                     func(ctx context.Context, arg repository.UpsertProfileParams) (repository.Profile, error)
	UpsertSubscriptionFunc                func(ctx context.Context, arg repository.UpsertSubscriptionParams) (repository.Subscription, error)

	// CallLog tracks method calls for test assertions
	CallLog []string
}

var _ repository.Querier = (*mockQuerier)(nil)

func (m *mockQuerier) log(format string, args ...interface{}) {
	m.CallLog = append(m.CallLog, fmt.Sprintf(format, args...))
}

func (m *mockQuerier) CancelScheduledChaseEmails(ctx context.Context, invoiceID pgtype.UUID) error {
	m.log("CancelScheduledChaseEmails")
	if m.CancelScheduledChaseEmailsFunc != nil {
		return m.CancelScheduledChaseEmailsFunc(ctx, invoiceID)
	}
	return nil
}

func (m *mockQuerier) CancelScheduledChaseEmailsForUser(ctx context.Context, userID pgtype.UUID) error {
	m.log("CancelScheduledChaseEmailsForUser")
	if m.CancelScheduledChaseEmailsForUserFunc != nil {
		return m.CancelScheduledChaseEmailsForUserFunc(ctx, userID)
	}
	return nil
}

func (m *mockQuerier) CountChaseEmailsSentSince(ctx context.Context, arg repository.CountChaseEmailsSentSinceParams) (int64, error) {
	m.log("CountChaseEmailsSentSince")
	if m.CountChaseEmailsSentSinceFunc != nil {
		return m.CountChaseEmailsSentSinceFunc(ctx, arg)
	}
	return 0, nil
}

func (m *mockQuerier) CreateInvoice(ctx context.Context, arg repository.CreateInvoiceParams) (repository.Invoice, error) {
	m.log("CreateInvoice(%s)", arg.ExternalID)
	if m.CreateInvoiceFunc != nil {
		return m.CreateInvoiceFunc(ctx, arg)
	}
	return repository.Invoice{}, nil
}

func (m *mockQuerier) CreateInvoiceActivity(ctx context.Context, arg repository.CreateInvoiceActivityParams) (repository.InvoiceActivity, error) {
	m.log("CreateInvoiceActivity(%s)", arg.Type)
	if m.CreateInvoiceActivityFunc != nil {
		return m.CreateInvoiceActivityFunc(ctx, arg)
	}
	return repository.InvoiceActivity{}, nil
}

func (m *mockQuerier) CreateSentChaseEmail(ctx context.Context, arg repository.CreateSentChaseEmailParams) (repository.ChaseEmail, error) {
	m.log("CreateSentChaseEmail(stage=%d)", arg.Stage)
	if m.CreateSentChaseEmailFunc != nil {
		return m.CreateSentChaseEmailFunc(ctx, arg)
	}
	return repository.ChaseEmail{}, nil
}

func (m *mockQuerier) DisableChasingForUser(ctx context.Context, userID pgtype.UUID) error {
	m.log("DisableChasingForUser")
	if m.DisableChasingForUserFunc != nil {
		return m.DisableChasingForUserFunc(ctx, userID)
	}
	return nil
}

func (m *mockQuerier) DisconnectConnection(ctx context.Context, id pgtype.UUID) error {
	m.log("DisconnectConnection")
	if m.DisconnectConnectionFunc != nil {
		return m.DisconnectConnectionFunc(ctx, id)
	}
	return nil
}

func (m *mockQuerier) GetActiveChaseEmail(ctx context.Context, arg repository.GetActiveChaseEmailParams) (repository.ChaseEmail, error) {
	m.log("GetActiveChaseEmail(stage=%d)", arg.Stage)
	if m.GetActiveChaseEmailFunc != nil {
		return m.GetActiveChaseEmailFunc(ctx, arg)
	}
	return repository.ChaseEmail{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetActiveConnectionByUser(ctx context.Context, userID pgtype.UUID) (repository.Connection, error) {
	m.log("GetActiveConnectionByUser")
	if m.GetActiveConnectionByUserFunc != nil {
		return m.GetActiveConnectionByUserFunc(ctx, userID)
	}
	return repository.Connection{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetConnection(ctx context.Context, id pgtype.UUID) (repository.Connection, error) {
	m.log("GetConnection")
	if m.GetConnectionFunc != nil {
		return m.GetConnectionFunc(ctx, id)
	}
	return repository.Connection{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetInvoice(ctx context.Context, id pgtype.UUID) (repository.Invoice, error) {
	m.log("GetInvoice")
	if m.GetInvoiceFunc != nil {
		return m.GetInvoiceFunc(ctx, id)
	}
	return repository.Invoice{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetInvoiceByExternalID(ctx context.Context, arg repository.GetInvoiceByExternalIDParams) (repository.Invoice, error) {
	m.log("GetInvoiceByExternalID(%s)", arg.ExternalID)
	if m.GetInvoiceByExternalIDFunc != nil {
		return m.GetInvoiceByExternalIDFunc(ctx, arg)
	}
	return repository.Invoice{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetInvoiceForUser(ctx context.Context, arg repository.GetInvoiceForUserParams) (repository.Invoice, error) {
	m.log("GetInvoiceForUser")
	if m.GetInvoiceForUserFunc != nil {
		return m.GetInvoiceForUserFunc(ctx, arg)
	}
	return repository.Invoice{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetLastSentChaseEmail(ctx context.Context, invoiceID pgtype.UUID) (repository.ChaseEmail, error) {
	m.log("GetLastSentChaseEmail")
	if m.GetLastSentChaseEmailFunc != nil {
		return m.GetLastSentChaseEmailFunc(ctx, invoiceID)
	}
	return repository.ChaseEmail{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetPlatformStats(ctx context.Context) (repository.PlatformStat, error) {
	m.log("GetPlatformStats")
	if m.GetPlatformStatsFunc != nil {
		return m.GetPlatformStatsFunc(ctx)
	}
	return repository.PlatformStat{}, nil
}

func (m *mockQuerier) GetProfile(ctx context.Context, id pgtype.UUID) (repository.Profile, error) {
	m.log("GetProfile")
	if m.GetProfileFunc != nil {
		return m.GetProfileFunc(ctx, id)
	}
	return repository.Profile{}, pgx.ErrNoRows
}

func (m *mockQuerier) GetSubscriptionByUser(ctx context.Context, userID pgtype.UUID) (repository.Subscription, error) {
	m.log("GetSubscriptionByUser")
	if m.GetSubscriptionByUserFunc != nil {
		return m.GetSubscriptionByUserFunc(ctx, userID)
	}
	return repository.Subscription{}, pgx.ErrNoRows
}

func (m *mockQuerier) IncrementRecovered(ctx context.Context, amount pgtype.Numeric) error {
	m.log("IncrementRecovered")
	if m.IncrementRecoveredFunc != nil {
		return m.IncrementRecoveredFunc(ctx, amount)
	}
	return nil
}

func (m *mockQuerier) ListActiveConnections(ctx context.Context) ([]repository.Connection, error) {
	m.log("ListActiveConnections")
	if m.ListActiveConnectionsFunc != nil {
		return m.ListActiveConnectionsFunc(ctx)
	}
	return nil, nil
}

func (m *mockQuerier) ListChaseEmailsByInvoice(ctx context.Context, invoiceID pgtype.UUID) ([]repository.ChaseEmail, error) {
	m.log("ListChaseEmailsByInvoice")
	if m.ListChaseEmailsByInvoiceFunc != nil {
		return m.ListChaseEmailsByInvoiceFunc(ctx, invoiceID)
	}
	return nil, nil
}

func (m *mockQuerier) ListChaseableInvoices(ctx context.Context, userIds []pgtype.UUID) ([]repository.ListChaseableInvoicesRow, error) {
	m.log("ListChaseableInvoices")
	if m.ListChaseableInvoicesFunc != nil {
		return m.ListChaseableInvoicesFunc(ctx, userIds)
	}
	return nil, nil
}

func (m *mockQuerier) ListEntitledUserIDs(ctx context.Context) ([]pgtype.UUID, error) {
	m.log("ListEntitledUserIDs")
	if m.ListEntitledUserIDsFunc != nil {
		return m.ListEntitledUserIDsFunc(ctx)
	}
	return nil, nil
}

func (m *mockQuerier) ListInvoicesByUserStatus(ctx context.Context, arg repository.ListInvoicesByUserStatusParams) ([]repository.Invoice, error) {
	m.log("ListInvoicesByUserStatus(%s)", arg.Status)
	if m.ListInvoicesByUserStatusFunc != nil {
		return m.ListInvoicesByUserStatusFunc(ctx, arg)
	}
	return nil, nil
}

func (m *mockQuerier) ListOpenInvoicesByConnection(ctx context.Context, connectionID pgtype.UUID) ([]repository.Invoice, error) {
	m.log("ListOpenInvoicesByConnection")
	if m.ListOpenInvoicesByConnectionFunc != nil {
		return m.ListOpenInvoicesByConnectionFunc(ctx, connectionID)
	}
	return nil, nil
}

func (m *mockQuerier) ListPaidActivitySince(ctx context.Context, arg repository.ListPaidActivitySinceParams) ([]repository.ListPaidActivitySinceRow, error) {
	m.log("ListPaidActivitySince")
	if m.ListPaidActivitySinceFunc != nil {
		return m.ListPaidActivitySinceFunc(ctx, arg)
	}
	return nil, nil
}

func (m *mockQuerier) ListProfiles(ctx context.Context) ([]repository.Profile, error) {
	m.log("ListProfiles")
	if m.ListProfilesFunc != nil {
		return m.ListProfilesFunc(ctx)
	}
	return nil, nil
}

func (m *mockQuerier) MarkChaseEmailOpened(ctx context.Context, arg repository.MarkChaseEmailOpenedParams) (int64, error) {
	m.log("MarkChaseEmailOpened(%s)", arg.ProviderMessageID.String)
	if m.MarkChaseEmailOpenedFunc != nil {
		return m.MarkChaseEmailOpenedFunc(ctx, arg)
	}
	return 0, nil
}

func (m *mockQuerier) MarkConnectionTokenExpired(ctx context.Context, id pgtype.UUID) error {
	m.log("MarkConnectionTokenExpired")
	if m.MarkConnectionTokenExpiredFunc != nil {
		return m.MarkConnectionTokenExpiredFunc(ctx, id)
	}
	return nil
}

func (m *mockQuerier) SetInvoiceChasing(ctx context.Context, arg repository.SetInvoiceChasingParams) (repository.Invoice, error) {
	m.log("SetInvoiceChasing(enabled=%t)", arg.ChasingEnabled)
	if m.SetInvoiceChasingFunc != nil {
		return m.SetInvoiceChasingFunc(ctx, arg)
	}
	return repository.Invoice{}, pgx.ErrNoRows
}

func (m *mockQuerier) TerminalizeInvoice(ctx context.Context, arg repository.TerminalizeInvoiceParams) (repository.Invoice, error) {
	m.log("TerminalizeInvoice(%s)", arg.Status)
	if m.TerminalizeInvoiceFunc != nil {
		return m.TerminalizeInvoiceFunc(ctx, arg)
	}
	return repository.Invoice{}, pgx.ErrNoRows
}

func (m *mockQuerier) UpdateConnectionTokens(ctx context.Context, arg repository.UpdateConnectionTokensParams) (repository.Connection, error) {
	m.log("UpdateConnectionTokens")
	if m.UpdateConnectionTokensFunc != nil {
		return m.UpdateConnectionTokensFunc(ctx, arg)
	}
	return repository.Connection{}, nil
}

func (m *mockQuerier) UpdateInvoiceFromLedger(ctx context.Context, arg repository.UpdateInvoiceFromLedgerParams) (repository.Invoice, error) {
	m.log("UpdateInvoiceFromLedger")
	if m.UpdateInvoiceFromLedgerFunc != nil {
		return m.UpdateInvoiceFromLedgerFunc(ctx, arg)
	}
	return repository.Invoice{}, nil
}

func (m *mockQuerier) UpdateSubscriptionStatus(ctx context.Context, arg repository.UpdateSubscriptionStatusParams) error {
	m.log("UpdateSubscriptionStatus(%s)", arg.Status)
	if m.UpdateSubscriptionStatusFunc != nil {
		return m.UpdateSubscriptionStatusFunc(ctx, arg)
	}
	return nil
}

func (m *mockQuerier) UpsertConnection(ctx context.Context, arg repository.UpsertConnectionParams) (repository.Connection, error) {
	m.log("UpsertConnection(%s)", arg.TenantID)
	if m.UpsertConnectionFunc != nil {
		return m.UpsertConnectionFunc(ctx, arg)
	}
	return repository.Connection{}, nil
}

func (m *mockQuerier) UpsertProfile(ctx context.Context, arg repository.UpsertProfileParams) (repository.Profile, error) {
	m.log("UpsertProfile(%s)", arg.Email)
	if m.UpsertProfileFunc != nil {
		return m.UpsertProfileFunc(ctx, arg)
	}
	return repository.Profile{}, nil
}

func (m *mockQuerier) UpsertSubscription(ctx context.Context, arg repository.UpsertSubscriptionParams) (repository.Subscription, error) {
	m.log("UpsertSubscription(%s)", arg.Status)
	if m.UpsertSubscriptionFunc != nil {
		return m.UpsertSubscriptionFunc(ctx, arg)
	}
	return repository.Subscription{}, nil
}

// mockTxRunner runs the transaction body directly against the mock.
type mockTxRunner struct {
	q repository.Querier
}

func (r *mockTxRunner) RunTx(ctx context.Context, fn func(q repository.Querier) error) error {
	return fn(r.q)
}
