package api

import (
	"fmt"
	"net/http"
	"strconv"
)

// LineupsHandler handles generation and comparison requests.
type LineupsHandler struct {
	deps     LineupDependencies
	maxLimit int
}

// NewLineupsHandler creates a new lineups handler.
func NewLineupsHandler(deps LineupDependencies, maxLimit int) *LineupsHandler {
	return &LineupsHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGenerate handles POST /lineups?limit=N requests.
func (h *LineupsHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	limit, err := h.limit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	run, err := h.deps.Generate(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	status := http.StatusCreated
	if run.Cached {
		status = http.StatusOK
	}
	writeJSON(w, status, run)
}

// HandleListRuns handles GET /lineups requests.
func (h *LineupsHandler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.deps.Runs(r.Context()))
}

// HandleGetRun handles GET /lineups/{run}?limit=N requests.
func (h *LineupsHandler) HandleGetRun(w http.ResponseWriter, r *http.Request) {
	limit, err := h.limit(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}
	run, err := h.deps.Run(r.Context(), r.PathValue("run"), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}

// HandleCompare handles GET /lineups/{run}/compare?ref=R&candidate=C requests.
func (h *LineupsHandler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ref, err := strconv.Atoi(q.Get("ref"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: ref must be a rank", ErrBadRequest))
		return
	}
	candidate, err := strconv.Atoi(q.Get("candidate"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: candidate must be a rank", ErrBadRequest))
		return
	}
	cmp, err := h.deps.Compare(r.Context(), r.PathValue("run"), ref, candidate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cmp)
}

// limit parses the optional limit query parameter. Absent means every
// stored lineup.
func (h *LineupsHandler) limit(r *http.Request) (int, error) {
	limitStr := r.URL.Query().Get("limit")
	if limitStr == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(limitStr)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: limit must be a positive integer", ErrBadRequest)
	}
	if n > h.maxLimit {
		return 0, fmt.Errorf("%w: limit %d above %d", ErrLimitExceeded, n, h.maxLimit)
	}
	return n, nil
}
