package ledger

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"
)

const (
	defaultIdentityURL = "https://identity.xero.com"
	defaultAPIURL      = "https://api.xero.com"

	// Xero serves at most 100 invoices per page.
	invoicePageSize = 100
)

// XeroClient implements Client against the Xero accounting API.
type XeroClient struct {
	clientID     string
	clientSecret string
	redirectURI  string

	identityURL string
	apiURL      string

	httpClient *http.Client

	// Xero enforces 60 calls/min per tenant; the limiter keeps long
	// paginated syncs under it instead of burning the quota and erroring.
	limiter *rate.Limiter
}

// XeroOption customizes a XeroClient.
type XeroOption func(*XeroClient)

// WithBaseURLs overrides the identity and API base URLs (used in tests).
func WithBaseURLs(identityURL, apiURL string) XeroOption {
	return func(c *XeroClient) {
		c.identityURL = strings.TrimRight(identityURL, "/")
		c.apiURL = strings.TrimRight(apiURL, "/")
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) XeroOption {
	return func(c *XeroClient) {
		c.httpClient = hc
	}
}

// NewXeroClient creates a Xero API client.
func NewXeroClient(clientID, clientSecret, redirectURI string, opts ...XeroOption) *XeroClient {
	c := &XeroClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		identityURL:  defaultIdentityURL,
		apiURL:       defaultAPIURL,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		limiter:      rate.NewLimiter(rate.Every(time.Minute/60), 5),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AuthorizeURL builds the URL the user is redirected to for consent.
func (c *XeroClient) AuthorizeURL(state string) string {
	q := url.Values{}
	q.Set("response_type", "code")
	q.Set("client_id", c.clientID)
	q.Set("redirect_uri", c.redirectURI)
	q.Set("scope", "openid profile email accounting.transactions.read offline_access")
	q.Set("state", state)
	return "https://login.xero.com/identity/connect/authorize?" + q.Encode()
}

// ExchangeCode trades an OAuth authorization code for tokens.
func (c *XeroClient) ExchangeCode(ctx context.Context, code string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", c.redirectURI)

	tokens, _, err := c.tokenRequest(ctx, form)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}
	return tokens, nil
}

// RefreshToken trades a refresh token for a new token set.
func (c *XeroClient) RefreshToken(ctx context.Context, refreshToken string) (*TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	tokens, status, err := c.tokenRequest(ctx, form)
	if err != nil {
		// 400/401 means the provider refused the token itself; anything
		// else (network, 5xx) is transient and safe to retry next cycle.
		if status == http.StatusBadRequest || status == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %v", ErrRefreshRejected, err)
		}
		return nil, fmt.Errorf("token refresh failed: %w", err)
	}
	return tokens, nil
}

func (c *XeroClient) tokenRequest(ctx context.Context, form url.Values) (*TokenSet, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.identityURL+"/connect/token", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, resp.StatusCode, fmt.Errorf("identity API error (status %d): %s", resp.StatusCode, string(body))
	}

	var tokens TokenSet
	if err := json.Unmarshal(body, &tokens); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to parse token response: %w", err)
	}
	if tokens.AccessToken == "" {
		return nil, resp.StatusCode, fmt.Errorf("token response missing access_token")
	}

	return &tokens, resp.StatusCode, nil
}

// Connections lists the tenants the access token can read.
func (c *XeroClient) Connections(ctx context.Context, accessToken string) ([]Tenant, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/connections", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("connections API error (status %d): %s", resp.StatusCode, string(body))
	}

	var tenants []Tenant
	if err := json.Unmarshal(body, &tenants); err != nil {
		return nil, fmt.Errorf("failed to parse connections response: %w", err)
	}
	return tenants, nil
}

// xeroInvoicesResponse mirrors the Invoices endpoint payload.
type xeroInvoicesResponse struct {
	Invoices []xeroInvoice `json:"Invoices"`
}

type xeroInvoice struct {
	InvoiceID     string          `json:"InvoiceID"`
	InvoiceNumber string          `json:"InvoiceNumber"`
	Type          string          `json:"Type"`
	Status        string          `json:"Status"`
	AmountDue     json.Number     `json:"AmountDue"`
	CurrencyCode  string          `json:"CurrencyCode"`
	DueDate       xeroDate        `json:"DueDate"`
	Contact       xeroContactBody `json:"Contact"`
}

type xeroContactBody struct {
	Name         string      `json:"Name"`
	EmailAddress string      `json:"EmailAddress"`
	Phones       []xeroPhone `json:"Phones"`
}

type xeroPhone struct {
	PhoneType   string `json:"PhoneType"`
	PhoneNumber string `json:"PhoneNumber"`
}

// xeroDate accepts both the ISO 8601 form and the legacy .NET
// "/Date(ms+offset)/" form the API emits depending on endpoint version.
type xeroDate struct {
	time.Time
}

var dotNetDateRe = regexp.MustCompile(`^/Date\((\d+)([+-]\d{4})?\)/$`)

func (d *xeroDate) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	if m := dotNetDateRe.FindStringSubmatch(s); m != nil {
		ms, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid .NET date %q: %w", s, err)
		}
		d.Time = time.UnixMilli(ms).UTC()
		return nil
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return fmt.Errorf("unrecognized date %q", s)
	}
	d.Time = t
	return nil
}

// ListInvoices fetches all sales invoices matching the filter, walking
// every page before returning.
func (c *XeroClient) ListInvoices(ctx context.Context, params ListInvoicesParams) ([]Invoice, error) {
	var all []Invoice

	for page := 1; ; page++ {
		batch, err := c.listInvoicePage(ctx, params, page)
		if err != nil {
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) < invoicePageSize {
			return all, nil
		}
	}
}

func (c *XeroClient) listInvoicePage(ctx context.Context, params ListInvoicesParams, page int) ([]Invoice, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	q := url.Values{}
	q.Set("Type", TypeReceivable)
	q.Set("Statuses", strings.Join(params.Statuses, ","))
	q.Set("page", strconv.Itoa(page))
	if !params.DueBefore.IsZero() {
		q.Set("where", fmt.Sprintf("DueDate<DateTime(%s)", params.DueBefore.Format("2006,01,02")))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.apiURL+"/api.xro/2.0/Invoices?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+params.AccessToken)
	req.Header.Set("Xero-Tenant-Id", params.TenantID)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("invoices API error (status %d): %s", resp.StatusCode, string(body))
	}

	var parsed xeroInvoicesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse invoices response: %w", err)
	}

	invoices := make([]Invoice, 0, len(parsed.Invoices))
	for _, raw := range parsed.Invoices {
		inv, err := mapXeroInvoice(raw)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, inv)
	}
	return invoices, nil
}

func mapXeroInvoice(raw xeroInvoice) (Invoice, error) {
	amount := decimal.Zero
	if raw.AmountDue != "" {
		var err error
		amount, err = decimal.NewFromString(raw.AmountDue.String())
		if err != nil {
			return Invoice{}, fmt.Errorf("invoice %s: invalid AmountDue %q: %w", raw.InvoiceID, raw.AmountDue, err)
		}
	}

	contact := Contact{
		Name:         raw.Contact.Name,
		EmailAddress: raw.Contact.EmailAddress,
	}
	if contact.Name == "" {
		contact.Name = "Unknown"
	}
	for _, p := range raw.Contact.Phones {
		if p.PhoneNumber != "" {
			contact.Phone = p.PhoneNumber
			if p.PhoneType == "DEFAULT" {
				break
			}
		}
	}

	currency := raw.CurrencyCode
	if currency == "" {
		currency = "GBP"
	}

	return Invoice{
		InvoiceID:     raw.InvoiceID,
		InvoiceNumber: raw.InvoiceNumber,
		Contact:       contact,
		AmountDue:     amount,
		CurrencyCode:  currency,
		DueDate:       raw.DueDate.Time,
		Status:        raw.Status,
	}, nil
}
