package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"github.com/owedhq/owed/internal/ledger"
	"github.com/owedhq/owed/internal/repository"
)

// LedgerAuthorizer builds the provider's OAuth consent URL.
type LedgerAuthorizer interface {
	AuthorizeURL(state string) string
}

// ConnectionService owns the ledger connection lifecycle: OAuth connect,
// lookup, and soft disconnect.
type ConnectionService struct {
	repo   repository.Querier
	ledger ledger.Client
	auth   LedgerAuthorizer
	sync   *SyncService
	logger *slog.Logger
}

// NewConnectionService creates a new ConnectionService.
func NewConnectionService(repo repository.Querier, lc ledger.Client, auth LedgerAuthorizer, sync *SyncService, logger *slog.Logger) *ConnectionService {
	return &ConnectionService{
		repo:   repo,
		ledger: lc,
		auth:   auth,
		sync:   sync,
		logger: logger,
	}
}

// AuthorizeURL returns the consent URL to redirect the user to.
func (s *ConnectionService) AuthorizeURL(state string) string {
	return s.auth.AuthorizeURL(state)
}

// Connect completes the OAuth callback: exchanges the code, picks the
// granted organisation, stores the connection, and runs an initial sync
// so the user sees invoices straight away.
func (s *ConnectionService) Connect(ctx context.Context, userID, code string) (repository.Connection, error) {
	uID, err := pgUUID(userID)
	if err != nil {
		return repository.Connection{}, err
	}

	tokens, err := s.ledger.ExchangeCode(ctx, code)
	if err != nil {
		return repository.Connection{}, fmt.Errorf("failed to exchange code: %w", err)
	}

	tenants, err := s.ledger.Connections(ctx, tokens.AccessToken)
	if err != nil {
		return repository.Connection{}, fmt.Errorf("failed to list granted organisations: %w", err)
	}
	if len(tenants) == 0 {
		return repository.Connection{}, ErrNoTenantsGranted
	}

	// Single-connection model: one organisation per user. When the grant
	// covers several, the first is used.
	tenant := tenants[0]
	if len(tenants) > 1 {
		s.logger.Warn("authorization granted multiple organisations, using first",
			"user_id", userID, "tenant_id", tenant.TenantID, "granted", len(tenants))
	}

	conn, err := s.repo.UpsertConnection(ctx, repository.UpsertConnectionParams{
		UserID:         uID,
		Provider:       ledger.ProviderXero,
		TenantID:       tenant.TenantID,
		TenantName:     pgText(tenant.TenantName),
		AccessToken:    tokens.AccessToken,
		RefreshToken:   tokens.RefreshToken,
		TokenExpiresAt: pgTimestamptz(tokens.ExpiresAt()),
	})
	if err != nil {
		return repository.Connection{}, fmt.Errorf("failed to store connection: %w", err)
	}

	s.logger.Info("ledger connected",
		"user_id", userID, "tenant_id", tenant.TenantID, "tenant_name", tenant.TenantName)

	// Initial sync is best-effort; the periodic pass covers any failure.
	if s.sync != nil {
		if _, _, err := s.sync.SyncConnection(ctx, conn); err != nil {
			s.logger.Error("initial sync failed", "connection_id", conn.ID, "error", err)
		}
	}

	return conn, nil
}

// Get returns the user's active connection.
func (s *ConnectionService) Get(ctx context.Context, userID string) (repository.Connection, error) {
	uID, err := pgUUID(userID)
	if err != nil {
		return repository.Connection{}, err
	}

	conn, err := s.repo.GetActiveConnectionByUser(ctx, uID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repository.Connection{}, ErrConnectionNotFound
		}
		return repository.Connection{}, fmt.Errorf("failed to load connection: %w", err)
	}
	return conn, nil
}

// Disconnect soft-deletes the user's connection: tokens are cleared and
// disconnected_at is set, but the row survives so invoices keep their
// reference. Chasing stops for everything still open.
func (s *ConnectionService) Disconnect(ctx context.Context, userID string) error {
	uID, err := pgUUID(userID)
	if err != nil {
		return err
	}

	conn, err := s.repo.GetActiveConnectionByUser(ctx, uID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrConnectionNotFound
		}
		return fmt.Errorf("failed to load connection: %w", err)
	}

	if err := s.repo.DisconnectConnection(ctx, conn.ID); err != nil {
		return fmt.Errorf("failed to disconnect: %w", err)
	}

	if err := s.repo.DisableChasingForUser(ctx, uID); err != nil {
		return fmt.Errorf("failed to disable chasing: %w", err)
	}
	if err := s.repo.CancelScheduledChaseEmailsForUser(ctx, uID); err != nil {
		return fmt.Errorf("failed to cancel scheduled chases: %w", err)
	}

	s.logger.Info("ledger disconnected", "user_id", userID, "connection_id", conn.ID)
	return nil
}
