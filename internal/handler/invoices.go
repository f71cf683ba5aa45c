package handler

import (
	"encoding/json"
	"net/http"

	"github.com/owedhq/owed/internal/service"
)

// InvoiceHandler exposes the user-facing invoice actions. The user is
// identified by the X-User-ID header set by the auth proxy; RequireUser
// middleware guarantees it is present.
type InvoiceHandler struct {
	invoices *service.InvoiceService
}

// NewInvoiceHandler creates a new InvoiceHandler.
func NewInvoiceHandler(invoices *service.InvoiceService) *InvoiceHandler {
	return &InvoiceHandler{invoices: invoices}
}

func userID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// List handles GET /api/invoices?status=open
func (h *InvoiceHandler) List(w http.ResponseWriter, r *http.Request) {
	invoices, err := h.invoices.List(r.Context(), userID(r), r.URL.Query().Get("status"))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"invoices": invoices})
}

// Get handles GET /api/invoices/{id}
func (h *InvoiceHandler) Get(w http.ResponseWriter, r *http.Request) {
	detail, err := h.invoices.Get(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"invoice":      detail.Invoice,
		"chase_emails": detail.ChaseEmails,
	})
}

// Pause handles POST /api/invoices/{id}/pause
func (h *InvoiceHandler) Pause(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Reason string `json:"reason"`
	}
	// An empty body is fine; the reason is optional.
	_ = json.NewDecoder(r.Body).Decode(&body)

	inv, err := h.invoices.Pause(r.Context(), userID(r), r.PathValue("id"), body.Reason)
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"invoice": inv})
}

// Resume handles POST /api/invoices/{id}/resume
func (h *InvoiceHandler) Resume(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invoices.Resume(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"invoice": inv})
}

// MarkReplied handles POST /api/invoices/{id}/replied
func (h *InvoiceHandler) MarkReplied(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invoices.MarkReplied(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"invoice": inv})
}

// MarkPaid handles POST /api/invoices/{id}/paid
func (h *InvoiceHandler) MarkPaid(w http.ResponseWriter, r *http.Request) {
	inv, err := h.invoices.MarkPaid(r.Context(), userID(r), r.PathValue("id"))
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, map[string]any{"invoice": inv})
}

// LogCall handles POST /api/invoices/{id}/calls
func (h *InvoiceHandler) LogCall(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Note string `json:"note"`
	}
	_ = json.NewDecoder(r.Body).Decode(&body)

	if err := h.invoices.LogCall(r.Context(), userID(r), r.PathValue("id"), body.Note); err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusCreated, map[string]string{"status": "recorded"})
}
