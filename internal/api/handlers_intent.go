package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/tracker"
)

type IntentHandler struct {
	svc *tracker.Service
}

func NewIntentHandler(svc *tracker.Service) *IntentHandler {
	return &IntentHandler{svc: svc}
}

// RecordPrediction handles POST /intent/predictions
func (h *IntentHandler) RecordPrediction(w http.ResponseWriter, r *http.Request) {
	var req models.RecordPredictionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	resp, err := h.svc.RecordPrediction(&req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Feedback handles POST /intent/predictions/{id}/feedback
func (h *IntentHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var req models.PredictionFeedbackRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	if err := h.svc.RecordPredictionFeedback(id, req.Correct); err != nil {
		writeDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Accuracy handles GET /intent/accuracy
func (h *IntentHandler) Accuracy(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.IntentAccuracy())
}
