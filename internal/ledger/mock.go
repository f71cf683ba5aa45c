package ledger

import (
	"context"
	"fmt"
	"strings"
)

// MockClient is a mock ledger client for testing.
// Simulates the accounting API without network calls.
type MockClient struct {
	// ExchangeCodeFunc allows customizing code exchange behavior
	ExchangeCodeFunc func(ctx context.Context, code string) (*TokenSet, error)

	// RefreshTokenFunc allows customizing refresh behavior
	RefreshTokenFunc func(ctx context.Context, refreshToken string) (*TokenSet, error)

	// ConnectionsFunc allows customizing tenant listing behavior
	ConnectionsFunc func(ctx context.Context, accessToken string) ([]Tenant, error)

	// ListInvoicesFunc allows customizing invoice listing behavior
	ListInvoicesFunc func(ctx context.Context, params ListInvoicesParams) ([]Invoice, error)

	// InvoicesByStatus serves ListInvoices when ListInvoicesFunc is nil,
	// keyed by the comma-joined status filter.
	InvoicesByStatus map[string][]Invoice

	// CallLog tracks method calls for test assertions
	CallLog []string
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates a new mock ledger client.
func NewMockClient() *MockClient {
	return &MockClient{
		InvoicesByStatus: make(map[string][]Invoice),
		CallLog:          []string{},
	}
}

// ExchangeCode returns a static token set by default.
func (m *MockClient) ExchangeCode(ctx context.Context, code string) (*TokenSet, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("ExchangeCode(%s)", code))

	if m.ExchangeCodeFunc != nil {
		return m.ExchangeCodeFunc(ctx, code)
	}

	return &TokenSet{
		AccessToken:  "access-" + code,
		RefreshToken: "refresh-" + code,
		ExpiresIn:    1800,
	}, nil
}

// RefreshToken returns a rotated token set by default.
func (m *MockClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenSet, error) {
	m.CallLog = append(m.CallLog, fmt.Sprintf("RefreshToken(%s)", refreshToken))

	if m.RefreshTokenFunc != nil {
		return m.RefreshTokenFunc(ctx, refreshToken)
	}

	return &TokenSet{
		AccessToken:  "access-rotated",
		RefreshToken: refreshToken + "-rotated",
		ExpiresIn:    1800,
	}, nil
}

// Connections returns a single test tenant by default.
func (m *MockClient) Connections(ctx context.Context, accessToken string) ([]Tenant, error) {
	m.CallLog = append(m.CallLog, "Connections()")

	if m.ConnectionsFunc != nil {
		return m.ConnectionsFunc(ctx, accessToken)
	}

	return []Tenant{{TenantID: "tenant-1", TenantName: "Test Org"}}, nil
}

// ListInvoices serves from InvoicesByStatus by default.
func (m *MockClient) ListInvoices(ctx context.Context, params ListInvoicesParams) ([]Invoice, error) {
	key := strings.Join(params.Statuses, ",")
	m.CallLog = append(m.CallLog, fmt.Sprintf("ListInvoices(%s)", key))

	if m.ListInvoicesFunc != nil {
		return m.ListInvoicesFunc(ctx, params)
	}

	return m.InvoicesByStatus[key], nil
}
