package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/nestlog/tracker-server-go/internal/service"
)

type ScheduleHandler struct {
	scheduleService *service.ScheduleService
}

func NewScheduleHandler(scheduleService *service.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{
		scheduleService: scheduleService,
	}
}

func (h *ScheduleHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/{babyID}/next-feeding", h.NextFeeding)

	return r
}

// GET /v1/schedule/{babyID}/next-feeding
func (h *ScheduleHandler) NextFeeding(w http.ResponseWriter, r *http.Request) {
	babyID := chi.URLParam(r, "babyID")

	result, err := h.scheduleService.NextFeeding(r.Context(), babyID)
	if err != nil {
		log.Error().Err(err).Str("babyId", babyID).Msg("failed to compute next feeding")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
