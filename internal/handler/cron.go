package handler

import (
	"net/http"

	"github.com/owedhq/owed/internal/service"
)

// CronHandler exposes the scheduler entrypoints. All three are triggered
// by an external cron runner and guarded by the CronAuth middleware; each
// pass is idempotent, so a duplicate trigger is harmless.
type CronHandler struct {
	sync   *service.SyncService
	chase  *service.ChaseService
	digest *service.DigestService
}

// NewCronHandler creates a new CronHandler.
func NewCronHandler(sync *service.SyncService, chase *service.ChaseService, digest *service.DigestService) *CronHandler {
	return &CronHandler{sync: sync, chase: chase, digest: digest}
}

// SyncInvoices handles POST /api/cron/sync-invoices
func (h *CronHandler) SyncInvoices(w http.ResponseWriter, r *http.Request) {
	summary, err := h.sync.SyncAll(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, summary)
}

// SendChases handles POST /api/cron/send-chases
func (h *CronHandler) SendChases(w http.ResponseWriter, r *http.Request) {
	summary, err := h.chase.SendDue(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, summary)
}

// WeeklyDigest handles POST /api/cron/weekly-digest
func (h *CronHandler) WeeklyDigest(w http.ResponseWriter, r *http.Request) {
	summary, err := h.digest.SendWeekly(r.Context())
	if err != nil {
		ErrorResponse(w, r, err)
		return
	}
	JSON(w, http.StatusOK, summary)
}
