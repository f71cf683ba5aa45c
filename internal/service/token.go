package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/owedhq/owed/internal/ledger"
	"github.com/owedhq/owed/internal/repository"
	"github.com/owedhq/owed/internal/telemetry"
)

// tokenExpiryMargin is how close to expiry a token may get before we
// refresh it. Covers clock skew plus the time a sync pass may run for.
const tokenExpiryMargin = 5 * time.Minute

// TokenService keeps connection credentials usable. Refresh tokens are
// single-use, so refreshes for the same connection must be serialized:
// a second concurrent refresh would present an already-consumed token
// and permanently break the connection.
type TokenService struct {
	repo    repository.Querier
	ledger  ledger.Client
	metrics *telemetry.Metrics
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[pgtype.UUID]*sync.Mutex
}

// NewTokenService creates a new TokenService.
func NewTokenService(repo repository.Querier, lc ledger.Client, metrics *telemetry.Metrics, logger *slog.Logger) *TokenService {
	return &TokenService{
		repo:    repo,
		ledger:  lc,
		metrics: metrics,
		logger:  logger,
		locks:   make(map[pgtype.UUID]*sync.Mutex),
	}
}

// EnsureFreshToken returns an access token valid for at least the expiry
// margin, refreshing and persisting new credentials when needed. Returns
// ErrReconnectRequired when the stored refresh token has been rejected;
// callers must skip the connection and surface the reconnect state.
func (s *TokenService) EnsureFreshToken(ctx context.Context, conn repository.Connection) (string, error) {
	if conn.TokenExpired {
		return "", ErrReconnectRequired
	}

	if tokenUsable(conn) {
		return conn.AccessToken, nil
	}

	lock := s.lockFor(conn.ID)
	lock.Lock()
	defer lock.Unlock()

	// Another caller may have refreshed while we waited for the lock.
	fresh, err := s.repo.GetConnection(ctx, conn.ID)
	if err != nil {
		return "", fmt.Errorf("failed to reload connection: %w", err)
	}
	if fresh.TokenExpired {
		return "", ErrReconnectRequired
	}
	if tokenUsable(fresh) {
		return fresh.AccessToken, nil
	}

	tokens, err := s.ledger.RefreshToken(ctx, fresh.RefreshToken)
	if err != nil {
		if errors.Is(err, ledger.ErrRefreshRejected) {
			s.metrics.TokenRefreshes.WithLabelValues("rejected").Inc()
			s.logger.Warn("refresh token rejected, flagging connection",
				"connection_id", fresh.ID, "error", err)
			if markErr := s.repo.MarkConnectionTokenExpired(ctx, fresh.ID); markErr != nil {
				s.logger.Error("failed to flag connection as expired",
					"connection_id", fresh.ID, "error", markErr)
			}
			return "", ErrReconnectRequired
		}
		s.metrics.TokenRefreshes.WithLabelValues("error").Inc()
		return "", fmt.Errorf("failed to refresh token: %w", err)
	}

	updated, err := s.repo.UpdateConnectionTokens(ctx, repository.UpdateConnectionTokensParams{
		ID:             fresh.ID,
		AccessToken:    tokens.AccessToken,
		RefreshToken:   tokens.RefreshToken,
		TokenExpiresAt: pgTimestamptz(tokens.ExpiresAt()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to persist refreshed tokens: %w", err)
	}

	s.metrics.TokenRefreshes.WithLabelValues("ok").Inc()
	return updated.AccessToken, nil
}

// tokenUsable reports whether the stored access token has more than the
// expiry margin of life left.
func tokenUsable(conn repository.Connection) bool {
	return conn.TokenExpiresAt.Valid &&
		time.Until(conn.TokenExpiresAt.Time) > tokenExpiryMargin
}

func (s *TokenService) lockFor(id pgtype.UUID) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[id] = lock
	}
	return lock
}
