package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	apperrors "github.com/nestlog/tracker-server-go/internal/errors"
	"github.com/nestlog/tracker-server-go/internal/model"
	"github.com/nestlog/tracker-server-go/internal/service"
)

type SessionHandler struct {
	sessionService *service.SessionService
}

func NewSessionHandler(sessionService *service.SessionService) *SessionHandler {
	return &SessionHandler{
		sessionService: sessionService,
	}
}

func (h *SessionHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Route("/{babyID}", func(r chi.Router) {
		r.Post("/", h.Start)
		r.Get("/", h.Current)
		r.Patch("/", h.Update)
		r.Delete("/", h.Cancel)
		r.Post("/end", h.End)
		r.Get("/history", h.History)
	})

	return r
}

type startSessionRequest struct {
	Type  model.SessionType `json:"type"`
	Side  model.Side        `json:"side"`
	Notes string            `json:"notes"`
}

type updateSessionRequest struct {
	Side      *model.Side        `json:"side"`
	Durations map[model.Side]int `json:"durations"`
	Notes     *string            `json:"notes"`
}

type sessionResponse struct {
	Session *model.ActiveSession `json:"session"`
	Elapsed string               `json:"elapsed"`
}

// POST /v1/sessions/{babyID}
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	babyID := chi.URLParam(r, "babyID")

	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("body", "malformed JSON"))
		return
	}
	if req.Type == "" {
		req.Type = model.SessionTypeNursing
	}
	if req.Side == "" {
		req.Side = model.SideLeft
	}

	session, err := h.sessionService.Start(r.Context(), babyID, req.Type, req.Side, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, session)
}

// GET /v1/sessions/{babyID}
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	babyID := chi.URLParam(r, "babyID")

	session, err := h.sessionService.Get(babyID)
	if err != nil {
		writeError(w, err)
		return
	}
	elapsed, err := h.sessionService.ElapsedDisplay(babyID, time.Now())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{Session: session, Elapsed: elapsed})
}

// PATCH /v1/sessions/{babyID}
func (h *SessionHandler) Update(w http.ResponseWriter, r *http.Request) {
	babyID := chi.URLParam(r, "babyID")

	var req updateSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.InvalidInput("body", "malformed JSON"))
		return
	}

	session, err := h.sessionService.Update(r.Context(), babyID, model.UpdateSessionParams{
		Side:      req.Side,
		Durations: req.Durations,
		Notes:     req.Notes,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// POST /v1/sessions/{babyID}/end
func (h *SessionHandler) End(w http.ResponseWriter, r *http.Request) {
	babyID := chi.URLParam(r, "babyID")

	record, err := h.sessionService.End(r.Context(), babyID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, record)
}

// GET /v1/sessions/{babyID}/history
func (h *SessionHandler) History(w http.ResponseWriter, r *http.Request) {
	babyID := chi.URLParam(r, "babyID")

	limit := queryInt(r, "limit", 20)
	offset := queryInt(r, "offset", 0)

	records, err := h.sessionService.History(r.Context(), babyID, limit, offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, records)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}

// DELETE /v1/sessions/{babyID}
func (h *SessionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	babyID := chi.URLParam(r, "babyID")

	if err := h.sessionService.Cancel(r.Context(), babyID); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"cancelled": true})
}
