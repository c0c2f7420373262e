package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nestlog/tracker-server-go/internal/recovery"
	"github.com/nestlog/tracker-server-go/internal/service"
)

// AdminHandler exposes startup diagnostics and the sign-out cleanup.
type AdminHandler struct {
	coordinator    *recovery.Coordinator
	sessionService *service.SessionService
}

func NewAdminHandler(coordinator *recovery.Coordinator, sessionService *service.SessionService) *AdminHandler {
	return &AdminHandler{
		coordinator:    coordinator,
		sessionService: sessionService,
	}
}

func (h *AdminHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/recovery/report", h.RecoveryReport)
	r.Post("/clear", h.ClearAll)

	return r
}

// GET /v1/admin/recovery/report
func (h *AdminHandler) RecoveryReport(w http.ResponseWriter, r *http.Request) {
	report := h.coordinator.LastReport()
	if report == nil {
		writeJSON(w, http.StatusOK, map[string]any{"ran": false})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// POST /v1/admin/clear removes every local session. Used on sign-out.
func (h *AdminHandler) ClearAll(w http.ResponseWriter, r *http.Request) {
	if err := h.sessionService.ClearAll(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}
