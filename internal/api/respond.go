package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/concept"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/intent"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/schedule"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/session"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorResponse{Error: msg})
}

func decodeJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// writeDomainError maps engine errors onto status codes: validation
// failures to 400, missing entities to 404, lifecycle conflicts to 409.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, models.ErrEmptyConceptKey),
		errors.Is(err, models.ErrInvalidSource),
		errors.Is(err, models.ErrInvalidConfidence),
		errors.Is(err, models.ErrInvalidLabel),
		errors.Is(err, schedule.ErrInvalidQuality):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, concept.ErrConceptNotFound),
		errors.Is(err, intent.ErrPredictionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, session.ErrSessionAlreadyActive),
		errors.Is(err, session.ErrNoActiveSession):
		writeError(w, http.StatusConflict, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}
