package handlers

import (
	"net/http"

	"merocare/internal/service"
)

// HealthTipHandler serves general health advice
type HealthTipHandler struct {
	tipService *service.HealthTipService
}

// NewHealthTipHandler creates a new health tip handler
func NewHealthTipHandler(tipService *service.HealthTipService) *HealthTipHandler {
	return &HealthTipHandler{tipService: tipService}
}

// List returns every tip
func (h *HealthTipHandler) List(w http.ResponseWriter, r *http.Request) {
	tips, err := h.tipService.List(r.Context())
	if err != nil {
		respondWithServiceError(w, "Failed to list health tips", err)
		return
	}

	out := make([]healthTipResponse, len(tips))
	for i, tip := range tips {
		out[i] = healthTipResponse{ID: tip.ID, Title: tip.Title, Content: tip.Content}
	}
	writeJSON(w, http.StatusOK, out)
}
