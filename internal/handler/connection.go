package handler

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"

	"github.com/owedhq/owed/internal/domain"
	"github.com/owedhq/owed/internal/service"
)

const oauthStateCookie = "xero_oauth_state"

// ConnectionHandler owns the Xero OAuth flow and connection management.
// The callback runs in the user's browser session, so the auth proxy
// header is present throughout; the state cookie only guards against CSRF.
type ConnectionHandler struct {
	connections  *service.ConnectionService
	secureCookie bool
}

// NewConnectionHandler creates a new ConnectionHandler. secureCookie
// should be true everywhere except local development over plain HTTP.
func NewConnectionHandler(connections *service.ConnectionService, secureCookie bool) *ConnectionHandler {
	return &ConnectionHandler{connections: connections, secureCookie: secureCookie}
}

// Connect handles GET /connect/xero: sets the state cookie and redirects
// to the Xero consent screen.
func (h *ConnectionHandler) Connect(w http.ResponseWriter, r *http.Request) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		ErrorResponse(w, r, err)
		return
	}
	state := base64.RawURLEncoding.EncodeToString(buf)

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/connect/xero",
		MaxAge:   600,
		HttpOnly: true,
		Secure:   h.secureCookie,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, h.connections.AuthorizeURL(state), http.StatusFound)
}

// Callback handles GET /connect/xero/callback
func (h *ConnectionHandler) Callback(w http.ResponseWriter, r *http.Request) {
	if errParam := r.URL.Query().Get("error"); errParam != "" {
		// The user declined consent at Xero.
		ErrorResponse(w, r, domain.Errorf(domain.EUNAUTHORIZED, "connection.callback", "Authorization was declined"))
		return
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != r.URL.Query().Get("state") {
		ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "connection.callback", "State mismatch"))
		return
	}

	code := r.URL.Query().Get("code")
	if code == "" {
		ErrorResponse(w, r, domain.Errorf(domain.EINVALID, "connection.callback", "Missing authorization code"))
		return
	}

	// Clear the state cookie; it is single-use.
	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/connect/xero",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secureCookie,
	})

	conn, err := h.connections.Connect(r.Context(), userID(r), code)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"tenant_id":   conn.TenantID,
		"tenant_name": conn.TenantName,
		"connected":   true,
	})
}

// Get handles GET /api/connection
func (h *ConnectionHandler) Get(w http.ResponseWriter, r *http.Request) {
	conn, err := h.connections.Get(r.Context(), userID(r))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"tenant_id":     conn.TenantID,
		"tenant_name":   conn.TenantName,
		"token_expired": conn.TokenExpired,
		"connected_at":  conn.CreatedAt,
	})
}

// Disconnect handles POST /api/connection/disconnect
func (h *ConnectionHandler) Disconnect(w http.ResponseWriter, r *http.Request) {
	if err := h.connections.Disconnect(r.Context(), userID(r)); err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]bool{"disconnected": true})
}
