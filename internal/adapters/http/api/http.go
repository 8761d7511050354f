// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/lineup/internal/adapters/repository"
	service "github.com/okian/lineup/internal/app"
	"github.com/okian/lineup/internal/domain/model"
	"github.com/okian/lineup/internal/engine"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	PlayerDependencies
	SynergyDependencies
	LineupDependencies
}

// PlayerDependencies defines the roster operations.
type PlayerDependencies interface {
	ListPlayers(ctx context.Context) ([]model.Participant, error)
	AddPlayer(ctx context.Context, name string, rating *int) (model.Participant, error)
	UpdatePlayer(ctx context.Context, name string, rating int) (model.Participant, error)
	RemovePlayer(ctx context.Context, name string) (model.Participant, error)
}

// SynergyDependencies defines the synergy operations.
type SynergyDependencies interface {
	SetSynergy(ctx context.Context, a, b string, value int) (service.SynergyEntry, error)
	ListSynergy(ctx context.Context) ([]service.SynergyEntry, error)
}

// LineupDependencies defines generation and comparison operations.
type LineupDependencies interface {
	Generate(ctx context.Context, limit int) (service.RunView, error)
	Run(ctx context.Context, id string, limit int) (service.RunView, error)
	Runs(ctx context.Context) []service.Run
	Compare(ctx context.Context, runID string, reference, candidate int) (service.Comparison, error)
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	playersHandler *PlayersHandler
	synergyHandler *SynergyHandler
	lineupsHandler *LineupsHandler
}

// NewServer creates a new API server with all handlers. maxLimit bounds the
// limit query parameter of lineup requests.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLimit int) *Server {
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(statsProvider),
		playersHandler: NewPlayersHandler(deps),
		synergyHandler: NewSynergyHandler(deps),
		lineupsHandler: NewLineupsHandler(deps, maxLimit),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("GET /players", MetricsMiddleware(s.playersHandler.HandleList, "players"))
	mux.HandleFunc("POST /players", MetricsMiddleware(s.playersHandler.HandleAdd, "players"))
	mux.HandleFunc("PUT /players/{name}", MetricsMiddleware(s.playersHandler.HandleUpdate, "player"))
	mux.HandleFunc("DELETE /players/{name}", MetricsMiddleware(s.playersHandler.HandleRemove, "player"))

	mux.HandleFunc("GET /synergy", MetricsMiddleware(s.synergyHandler.HandleList, "synergy"))
	mux.HandleFunc("PUT /synergy", MetricsMiddleware(s.synergyHandler.HandleSet, "synergy"))

	mux.HandleFunc("POST /lineups", MetricsMiddleware(s.lineupsHandler.HandleGenerate, "lineups"))
	mux.HandleFunc("GET /lineups", MetricsMiddleware(s.lineupsHandler.HandleListRuns, "lineups"))
	mux.HandleFunc("GET /lineups/{run}", MetricsMiddleware(s.lineupsHandler.HandleGetRun, "run"))
	mux.HandleFunc("GET /lineups/{run}/compare", MetricsMiddleware(s.lineupsHandler.HandleCompare, "compare"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates upstream errors to a status code and an
// error code.
func writeServiceError(w http.ResponseWriter, err error) {
	status, code := classify(err)
	writeError(w, status, code, err)
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, repository.ErrInvalidName),
		errors.Is(err, repository.ErrInvalidPair),
		errors.Is(err, service.ErrRankOutOfRange):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrNotFound),
		errors.Is(err, service.ErrRunNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, repository.ErrDuplicate):
		return http.StatusConflict, "conflict"
	case errors.Is(err, engine.ErrTooManyPartitions):
		return http.StatusUnprocessableEntity, "too_many_partitions"
	case errors.Is(err, service.ErrNotStarted):
		return http.StatusServiceUnavailable, "unavailable"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "cancelled"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
