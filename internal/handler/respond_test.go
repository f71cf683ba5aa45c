package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/owedhq/owed/internal/domain"
)

func TestErrorCodeToHTTPStatus(t *testing.T) {
	tests := []struct {
		code     string
		expected int
	}{
		{domain.EINVALID, http.StatusBadRequest},
		{domain.EUNAUTHORIZED, http.StatusUnauthorized},
		{domain.EPAYMENT, http.StatusPaymentRequired},
		{domain.EFORBIDDEN, http.StatusForbidden},
		{domain.ENOTFOUND, http.StatusNotFound},
		{domain.ECONFLICT, http.StatusConflict},
		{domain.EGONE, http.StatusGone},
		{domain.EINTERNAL, http.StatusInternalServerError},
		{"unknown_code", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := ErrorCodeToHTTPStatus(tt.code); got != tt.expected {
				t.Errorf("ErrorCodeToHTTPStatus(%q) = %d, want %d", tt.code, got, tt.expected)
			}
		})
	}
}

func TestErrorResponse(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedCode   string
		expectedMsg    string
	}{
		{
			name:           "domain error surfaces its message",
			err:            domain.Errorf(domain.ENOTFOUND, "invoice.get", "Invoice not found"),
			expectedStatus: http.StatusNotFound,
			expectedCode:   domain.ENOTFOUND,
			expectedMsg:    "Invoice not found",
		},
		{
			name:           "validation error",
			err:            domain.Errorf(domain.EINVALID, "invoice.pause", "Invoice is not open"),
			expectedStatus: http.StatusBadRequest,
			expectedCode:   domain.EINVALID,
			expectedMsg:    "Invoice is not open",
		},
		{
			name:           "plain error hides details",
			err:            errors.New("pq: connection refused"),
			expectedStatus: http.StatusInternalServerError,
			expectedCode:   domain.EINTERNAL,
			expectedMsg:    "An internal error occurred. Please try again later.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/api/invoices", nil)

			ErrorResponse(rec, req, tt.err)

			if rec.Code != tt.expectedStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.expectedStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("content type = %q", ct)
			}

			var body map[string]string
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("invalid JSON body: %v", err)
			}
			if body["code"] != tt.expectedCode {
				t.Errorf("code = %q, want %q", body["code"], tt.expectedCode)
			}
			if body["error"] != tt.expectedMsg {
				t.Errorf("error = %q, want %q", body["error"], tt.expectedMsg)
			}
		})
	}
}
