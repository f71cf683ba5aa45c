package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/owedhq/owed/internal/ledger"
	"github.com/owedhq/owed/internal/repository"
)

type fakeAuthorizer struct{}

func (fakeAuthorizer) AuthorizeURL(state string) string {
	return "https://login.example/authorize?state=" + state
}

func TestConnectStoresTokensAndRunsInitialSync(t *testing.T) {
	var stored repository.UpsertConnectionParams
	synced := false

	repo := &mockQuerier{
		UpsertConnectionFunc: func(ctx context.Context, arg repository.UpsertConnectionParams) (repository.Connection, error) {
			stored = arg
			return testConnection(1, 2, 30*time.Minute), nil
		},
	}

	lc := ledger.NewMockClient()
	lc.ListInvoicesFunc = func(ctx context.Context, params ledger.ListInvoicesParams) ([]ledger.Invoice, error) {
		synced = true
		return nil, nil
	}

	sync := newSyncService(repo, lc)
	svc := NewConnectionService(repo, lc, fakeAuthorizer{}, sync, testLogger())

	conn, err := svc.Connect(context.Background(), uuidStr(2), "auth-code")
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
	if conn.TenantID != "tenant-1" {
		t.Errorf("tenant = %q", conn.TenantID)
	}

	if stored.Provider != ledger.ProviderXero {
		t.Errorf("provider = %q, want xero", stored.Provider)
	}
	if stored.AccessToken != "access-auth-code" || stored.RefreshToken != "refresh-auth-code" {
		t.Errorf("stored tokens = %q / %q", stored.AccessToken, stored.RefreshToken)
	}
	if !stored.TokenExpiresAt.Valid || !stored.TokenExpiresAt.Time.After(time.Now()) {
		t.Errorf("token expiry not persisted: %+v", stored.TokenExpiresAt)
	}
	if !synced {
		t.Error("initial sync did not run")
	}
}

func TestConnectNoTenantsGranted(t *testing.T) {
	lc := ledger.NewMockClient()
	lc.ConnectionsFunc = func(ctx context.Context, accessToken string) ([]ledger.Tenant, error) {
		return nil, nil
	}

	repo := &mockQuerier{
		UpsertConnectionFunc: func(ctx context.Context, arg repository.UpsertConnectionParams) (repository.Connection, error) {
			t.Error("nothing should be stored without a granted organisation")
			return repository.Connection{}, nil
		},
	}

	svc := NewConnectionService(repo, lc, fakeAuthorizer{}, nil, testLogger())
	_, err := svc.Connect(context.Background(), uuidStr(2), "auth-code")
	if !errors.Is(err, ErrNoTenantsGranted) {
		t.Fatalf("error = %v, want ErrNoTenantsGranted", err)
	}
}

func TestConnectSurvivesFailedInitialSync(t *testing.T) {
	repo := &mockQuerier{
		UpsertConnectionFunc: func(ctx context.Context, arg repository.UpsertConnectionParams) (repository.Connection, error) {
			return testConnection(1, 2, 30*time.Minute), nil
		},
	}

	lc := ledger.NewMockClient()
	lc.ListInvoicesFunc = func(ctx context.Context, params ledger.ListInvoicesParams) ([]ledger.Invoice, error) {
		return nil, errors.New("ledger unavailable")
	}

	sync := newSyncService(repo, lc)
	svc := NewConnectionService(repo, lc, fakeAuthorizer{}, sync, testLogger())

	// The periodic sync covers the failure; connecting must still succeed.
	if _, err := svc.Connect(context.Background(), uuidStr(2), "auth-code"); err != nil {
		t.Fatalf("Connect() error = %v", err)
	}
}

func TestDisconnectStopsAllChasing(t *testing.T) {
	conn := testConnection(1, 2, time.Hour)

	disconnected := false
	disabled := false
	cancelled := false
	repo := &mockQuerier{
		GetActiveConnectionByUserFunc: func(ctx context.Context, userID pgtype.UUID) (repository.Connection, error) {
			return conn, nil
		},
		DisconnectConnectionFunc: func(ctx context.Context, id pgtype.UUID) error {
			disconnected = true
			return nil
		},
		DisableChasingForUserFunc: func(ctx context.Context, userID pgtype.UUID) error {
			disabled = true
			return nil
		},
		CancelScheduledChaseEmailsForUserFunc: func(ctx context.Context, userID pgtype.UUID) error {
			cancelled = true
			return nil
		},
	}

	svc := NewConnectionService(repo, ledger.NewMockClient(), fakeAuthorizer{}, nil, testLogger())
	if err := svc.Disconnect(context.Background(), uuidStr(2)); err != nil {
		t.Fatalf("Disconnect() error = %v", err)
	}
	if !disconnected || !disabled || !cancelled {
		t.Errorf("disconnected = %t, disabled = %t, cancelled = %t, want all", disconnected, disabled, cancelled)
	}
}

func TestDisconnectWithoutConnection(t *testing.T) {
	svc := NewConnectionService(&mockQuerier{}, ledger.NewMockClient(), fakeAuthorizer{}, nil, testLogger())
	if err := svc.Disconnect(context.Background(), uuidStr(2)); !errors.Is(err, ErrConnectionNotFound) {
		t.Fatalf("error = %v, want ErrConnectionNotFound", err)
	}
}
