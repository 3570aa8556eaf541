package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/tracker"
)

type SummaryHandler struct {
	svc *tracker.Service
}

func NewSummaryHandler(svc *tracker.Service) *SummaryHandler {
	return &SummaryHandler{svc: svc}
}

// Daily handles GET /summaries/daily?date=YYYY-MM-DD
func (h *SummaryHandler) Daily(w http.ResponseWriter, r *http.Request) {
	date := time.Now().UTC()
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		date = parsed
	}

	summary, err := h.svc.DailySummary(date)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// Weekly handles GET /summaries/weekly?days=
func (h *SummaryHandler) Weekly(w http.ResponseWriter, r *http.Request) {
	days, _ := strconv.Atoi(r.URL.Query().Get("days"))

	trend, err := h.svc.WeeklyTrend(days)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, trend)
}

// Export handles GET /export
func (h *SummaryHandler) Export(w http.ResponseWriter, r *http.Request) {
	snap, err := h.svc.Export()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
