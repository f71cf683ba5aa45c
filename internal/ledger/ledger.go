// Package ledger provides typed access to the external accounting system
// that owns invoice truth. The rest of the application only ever sees the
// Client interface; the concrete implementation talks to Xero.
package ledger

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// Invoice statuses as the ledger reports them.
const (
	StatusAuthorised = "AUTHORISED"
	StatusSubmitted  = "SUBMITTED"
	StatusPaid       = "PAID"
	StatusVoided     = "VOIDED"
)

// TypeReceivable selects sales invoices (money owed to the user).
const TypeReceivable = "ACCREC"

// ProviderXero identifies Xero connections in the connections table.
const ProviderXero = "xero"

// ErrRefreshRejected is returned when the identity provider rejects a
// refresh token. Refresh tokens are single-use; a rejected one will never
// work again and the user must reconnect.
var ErrRefreshRejected = errors.New("ledger: refresh token rejected")

// TokenSet is the result of an OAuth code exchange or token refresh.
type TokenSet struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
}

// ExpiresAt converts the relative expiry to an absolute time from now.
func (t *TokenSet) ExpiresAt() time.Time {
	return time.Now().Add(time.Duration(t.ExpiresIn) * time.Second)
}

// Tenant is one organisation the credential grants access to.
type Tenant struct {
	TenantID   string `json:"tenantId"`
	TenantName string `json:"tenantName"`
}

// Contact is the invoice counterparty as mirrored from the ledger.
type Contact struct {
	Name         string
	EmailAddress string
	Phone        string
}

// Invoice is one sales invoice as reported by the ledger.
type Invoice struct {
	InvoiceID     string
	InvoiceNumber string
	Contact       Contact
	AmountDue     decimal.Decimal
	CurrencyCode  string
	DueDate       time.Time
	Status        string
}

// ListInvoicesParams filters an invoice listing. A zero DueBefore means no
// due-date filter.
type ListInvoicesParams struct {
	AccessToken string
	TenantID    string
	Statuses    []string
	DueBefore   time.Time
}

// Client is the boundary to the external accounting API. Implementations
// own no state beyond credentials for the identity endpoints.
type Client interface {
	// ExchangeCode trades an OAuth authorization code for tokens.
	ExchangeCode(ctx context.Context, code string) (*TokenSet, error)

	// RefreshToken trades a refresh token for a new token set. Returns an
	// error wrapping ErrRefreshRejected when the provider refuses the
	// token (already consumed, revoked); other errors are transient.
	RefreshToken(ctx context.Context, refreshToken string) (*TokenSet, error)

	// Connections lists the tenants the access token can read.
	Connections(ctx context.Context, accessToken string) ([]Tenant, error)

	// ListInvoices returns all matching invoices, traversing every page
	// before returning. A partial result is never returned with nil error.
	ListInvoices(ctx context.Context, params ListInvoicesParams) ([]Invoice, error)
}
