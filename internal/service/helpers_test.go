package service

import (
	"io"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"github.com/owedhq/owed/internal/repository"
	"github.com/owedhq/owed/internal/telemetry"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testMetrics() *telemetry.Metrics {
	return telemetry.NewMetrics(prometheus.NewRegistry())
}

// testUUID builds a deterministic UUID from a single byte.
func testUUID(b byte) pgtype.UUID {
	var id pgtype.UUID
	id.Bytes[15] = b
	id.Bytes[0] = b
	id.Valid = true
	return id
}

func testConnection(id, userID byte, expiresIn time.Duration) repository.Connection {
	return repository.Connection{
		ID:             testUUID(id),
		UserID:         testUUID(userID),
		Provider:       "xero",
		TenantID:       "tenant-1",
		AccessToken:    "access-current",
		RefreshToken:   "refresh-current",
		TokenExpiresAt: pgtype.Timestamptz{Time: time.Now().Add(expiresIn), Valid: true},
	}
}

func testOpenInvoice(id, userID byte) repository.Invoice {
	return repository.Invoice{
		ID:             testUUID(id),
		UserID:         testUUID(userID),
		ConnectionID:   testUUID(200),
		ExternalID:     "ext-1",
		InvoiceNumber:  pgtype.Text{String: "INV-001", Valid: true},
		ContactName:    "Jane Cooper",
		ContactEmail:   pgtype.Text{String: "jane@example.com", Valid: true},
		AmountDue:      numericFromDecimal(decimal.RequireFromString("150.00")),
		Currency:       "GBP",
		DueDate:        pgtype.Date{Time: time.Now().AddDate(0, 0, -10), Valid: true},
		Status:         "open",
		ChasingEnabled: true,
	}
}
