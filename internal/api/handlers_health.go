package api

import (
	"net/http"

	"github.com/AyushDevadiga1/Forgotten-Knowledge-Tracker-sub000/internal/tracker"
)

type HealthHandler struct {
	svc *tracker.Service
}

func NewHealthHandler(svc *tracker.Service) *HealthHandler {
	return &HealthHandler{svc: svc}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := h.svc.Health()
	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
