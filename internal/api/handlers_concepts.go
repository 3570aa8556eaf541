package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/models"
	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/tracker"
)

type ConceptHandler struct {
	svc *tracker.Service
}

func NewConceptHandler(svc *tracker.Service) *ConceptHandler {
	return &ConceptHandler{svc: svc}
}

// AddEncounter handles POST /encounters
func (h *ConceptHandler) AddEncounter(w http.ResponseWriter, r *http.Request) {
	var req models.AddEncounterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Text == "" {
		writeError(w, http.StatusBadRequest, "text is required")
		return
	}

	resp, err := h.svc.AddEncounter(&req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, resp)
}

// SubmitReview handles POST /reviews
func (h *ConceptHandler) SubmitReview(w http.ResponseWriter, r *http.Request) {
	var req models.SubmitReviewRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.ConceptKey == "" {
		writeError(w, http.StatusBadRequest, "conceptKey is required")
		return
	}

	resp, err := h.svc.SubmitReview(&req)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Due handles GET /concepts/due?as_of=&limit=
func (h *ConceptHandler) Due(w http.ResponseWriter, r *http.Request) {
	var asOf time.Time
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "as_of must be RFC3339")
			return
		}
		asOf = parsed
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	writeJSON(w, http.StatusOK, h.svc.DueConcepts(asOf, limit))
}

// Get handles GET /concepts/{key}
func (h *ConceptHandler) Get(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "key")
	c, err := h.svc.GetConcept(key)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}
