package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/tracker"
)

type SessionHandler struct {
	svc *tracker.Service
}

func NewSessionHandler(svc *tracker.Service) *SessionHandler {
	return &SessionHandler{svc: svc}
}

// Start handles POST /sessions/start
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.StartSession()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Stop handles POST /sessions/stop
func (h *SessionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.StopSession()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// RecordAttention handles POST /sessions/attention
func (h *SessionHandler) RecordAttention(w http.ResponseWriter, r *http.Request) {
	var req models.RecordAttentionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if err := h.svc.RecordAttention(req.Score); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Stats handles GET /sessions/{id}/stats
func (h *SessionHandler) Stats(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	stats, err := h.svc.SessionStats(id)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	if stats == nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}
