package api

import (
	"net/http"
)

// synergyRequest mirrors the OpenAPI schema for PUT /synergy.
type synergyRequest struct {
	A     string `json:"a" validate:"required,max=64"`
	B     string `json:"b" validate:"required,max=64,nefield=A"`
	Value *int   `json:"value" validate:"required"`
}

// SynergyHandler handles synergy requests.
type SynergyHandler struct {
	deps SynergyDependencies
}

// NewSynergyHandler creates a new synergy handler.
func NewSynergyHandler(deps SynergyDependencies) *SynergyHandler {
	return &SynergyHandler{deps: deps}
}

// HandleList handles GET /synergy requests.
func (h *SynergyHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	entries, err := h.deps.ListSynergy(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

// HandleSet handles PUT /synergy requests. A value of zero clears the pair.
func (h *SynergyHandler) HandleSet(w http.ResponseWriter, r *http.Request) {
	var req synergyRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	entry, err := h.deps.SetSynergy(r.Context(), req.A, req.B, *req.Value)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entry)
}
