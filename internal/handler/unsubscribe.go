package handler

import (
	"html/template"
	"net/http"

	"github.com/owedhq/owed/internal/domain"
	"github.com/owedhq/owed/internal/service"
)

var unsubscribePage = template.Must(template.New("unsubscribe").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Unsubscribed</title></head>
<body style="font-family: sans-serif; max-width: 480px; margin: 80px auto; text-align: center;">
  <h1 style="font-size: 20px;">{{.Heading}}</h1>
  <p style="color: #555;">{{.Body}}</p>
</body>
</html>`))

// UnsubscribeHandler serves the one-click unsubscribe link embedded in
// every chase email. GET renders a confirmation page; POST is the
// RFC 8058 one-click target used by mail clients.
type UnsubscribeHandler struct {
	invoices *service.InvoiceService
}

// NewUnsubscribeHandler creates a new UnsubscribeHandler.
func NewUnsubscribeHandler(invoices *service.InvoiceService) *UnsubscribeHandler {
	return &UnsubscribeHandler{invoices: invoices}
}

// Unsubscribe handles GET and POST /unsubscribe/{token}
func (h *UnsubscribeHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	err := h.invoices.Unsubscribe(r.Context(), r.PathValue("token"))

	if r.Method == http.MethodPost {
		// One-click clients only care about the status code.
		if err != nil {
			w.WriteHeader(ErrorCodeToHTTPStatus(domain.ErrorCode(err)))
			return
		}
		w.WriteHeader(http.StatusOK)
		return
	}

	data := struct {
		Heading string
		Body    string
	}{
		Heading: "You're unsubscribed",
		Body:    "You won't receive any more reminders about this invoice.",
	}
	status := http.StatusOK
	if err != nil {
		data.Heading = "Link not recognised"
		data.Body = "This unsubscribe link is invalid or has expired."
		status = ErrorCodeToHTTPStatus(domain.ErrorCode(err))
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_ = unsubscribePage.Execute(w, data)
}
