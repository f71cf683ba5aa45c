package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/owedhq/owed/internal/domain"
	"github.com/owedhq/owed/internal/telemetry"
)

// JSON writes v as a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("failed to encode response", "error", err)
	}
}

// ErrorCodeToHTTPStatus maps application error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized
	case domain.EPAYMENT:
		return http.StatusPaymentRequired
	case domain.EFORBIDDEN:
		return http.StatusForbidden
	case domain.ENOTFOUND:
		return http.StatusNotFound
	case domain.ECONFLICT:
		return http.StatusConflict
	case domain.EGONE:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// ErrorResponse writes err as a JSON error body with the mapped status.
// Internal errors are reported to Sentry and their details hidden from the
// client.
func ErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	code := domain.ErrorCode(err)
	status := ErrorCodeToHTTPStatus(code)

	if status >= http.StatusInternalServerError {
		slog.Default().Error("request failed",
			"method", r.Method, "path", r.URL.Path, "error", err)
		telemetry.CaptureError(err, map[string]interface{}{
			"path": r.URL.Path,
		})
	}

	JSON(w, status, map[string]string{
		"error": domain.ErrorMessage(err),
		"code":  code,
	})
}
