package api

import (
	"net/http"
)

// addPlayerRequest mirrors the OpenAPI schema for POST /players.
type addPlayerRequest struct {
	Name   string `json:"name" validate:"required,max=64"`
	Rating *int   `json:"rating"`
}

// updatePlayerRequest mirrors the OpenAPI schema for PUT /players/{name}.
type updatePlayerRequest struct {
	Rating *int `json:"rating" validate:"required"`
}

// PlayersHandler handles roster requests.
type PlayersHandler struct {
	deps PlayerDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayerDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

// HandleList handles GET /players requests.
func (h *PlayersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	players, err := h.deps.ListPlayers(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

// HandleAdd handles POST /players requests.
func (h *PlayersHandler) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req addPlayerRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	p, err := h.deps.AddPlayer(r.Context(), req.Name, req.Rating)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleUpdate handles PUT /players/{name} requests.
func (h *PlayersHandler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	var req updatePlayerRequest
	if err := decodeRequest(w, r, &req); err != nil {
		writeServiceError(w, err)
		return
	}
	p, err := h.deps.UpdatePlayer(r.Context(), r.PathValue("name"), *req.Rating)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleRemove handles DELETE /players/{name} requests.
func (h *PlayersHandler) HandleRemove(w http.ResponseWriter, r *http.Request) {
	if _, err := h.deps.RemovePlayer(r.Context(), r.PathValue("name")); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
