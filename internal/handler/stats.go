package handler

import (
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/owedhq/owed/internal/repository"
)

// StatsHandler serves the public platform counter shown on the marketing
// site ("£X recovered so far"). No auth; the numbers are aggregate only.
type StatsHandler struct {
	repo repository.Querier
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(repo repository.Querier) *StatsHandler {
	return &StatsHandler{repo: repo}
}

// Get handles GET /api/stats
func (h *StatsHandler) Get(w http.ResponseWriter, r *http.Request) {
	stats, err := h.repo.GetPlatformStats(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}

	total := decimal.Zero
	if stats.TotalRecovered.Valid {
		total = decimal.NewFromBigInt(stats.TotalRecovered.Int, stats.TotalRecovered.Exp)
	}

	JSON(w, http.StatusOK, map[string]any{
		"total_recovered":     total,
		"total_invoices_paid": stats.TotalInvoicesPaid,
	})
}
