// Package api exposes the scoring engine over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/okian/fairway/internal/adapters/http/swagger"
	service "github.com/okian/fairway/internal/app"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/settings"
	"github.com/okian/fairway/internal/domain/standings"
	"github.com/okian/fairway/pkg/logger"
)

// Engine is the slice of the scoring service the handlers call.
type Engine interface {
	GetAverageScore(ctx context.Context, playerID, seasonID uuid.UUID, uptoWeek int) (float64, error)
	GetHandicap(ctx context.Context, playerID, seasonID uuid.UUID, week int) (float64, error)
	GetAllHandicapsUpToWeek(ctx context.Context, seasonID uuid.UUID, week int) (map[uuid.UUID]float64, error)
	GetAllAveragesUpToWeek(ctx context.Context, seasonID uuid.UUID, week int) (map[uuid.UUID]float64, error)
	SetSessionBaseline(ctx context.Context, b model.SessionBaseline) error
	SetSessionBaselines(ctx context.Context, bs []model.SessionBaseline, overwrite bool) error
	ScoreMatchup(ctx context.Context, matchupID uuid.UUID, in service.ScoreInput) (model.MatchResult, error)
	RecalculateSeason(ctx context.Context, seasonID uuid.UUID) (map[uuid.UUID]float64, error)
	ScoresChanged(ctx context.Context, seasonID uuid.UUID, playerIDs ...uuid.UUID) error
	UpdateSettings(ctx context.Context, seasonID uuid.UUID, cfg settings.LeagueSettings) error
	SessionStandings(ctx context.Context, seasonID uuid.UUID, week int) (standings.Table, error)
}

// Server wires HTTP routes for the engine.
type Server struct {
	engine Engine
	stats  StatsProvider
	health *HealthHandler
	logger logger.Logger
}

// NewServer creates a server over engine.
func NewServer(engine Engine, opts ...Option) *Server {
	s := &Server{engine: engine}
	for _, opt := range opts {
		opt(s)
	}
	if s.health == nil {
		s.health = NewHealthHandler()
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("api")
	}
	return s
}

// Routes returns the router with every endpoint attached.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(Metrics)

	r.Get("/healthz", s.health.HandleHealth)
	swagger.Register(r)
	r.Handle("/metrics", MetricsHandler())
	if s.stats != nil {
		r.Get("/stats", NewStatsHandler(s.stats).HandleStats)
	}

	r.Route("/seasons/{seasonID}", func(r chi.Router) {
		r.Get("/players/{playerID}/average", s.handleAverage)
		r.Get("/players/{playerID}/handicap", s.handleHandicap)
		r.Get("/averages", s.handleAllAverages)
		r.Get("/handicaps", s.handleAllHandicaps)
		r.Get("/standings", s.handleStandings)
		r.Put("/baselines", s.handlePutBaseline)
		r.Post("/baselines/bulk", s.handleBulkBaselines)
		r.Post("/recalculate", s.handleRecalculate)
		r.Post("/scores-changed", s.handleScoresChanged)
		r.Put("/settings", s.handlePutSettings)
	})
	r.Post("/matchups/{matchupID}/score", s.handleScoreMatchup)
	return r
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

// writeError classifies err and logs server-side failures.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(r.Context(), "request failed",
			logger.String("path", r.URL.Path),
			logger.String("requestId", middleware.GetReqID(r.Context())),
			logger.Error(err))
	}
	writeJSON(w, status, errorResponse{Code: code, Message: err.Error()})
}

func pathUUID(r *http.Request, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: %s: %v", ErrBadRequest, name, err)
	}
	return id, nil
}

func queryWeek(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("week")
	if raw == "" {
		return 0, fmt.Errorf("%w: missing week", ErrBadRequest)
	}
	week, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: week %q", ErrBadRequest, raw)
	}
	return week, nil
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return nil
}

// byPlayer renders a player-keyed map with string keys.
func byPlayer(m map[uuid.UUID]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for id, v := range m {
		out[id.String()] = v
	}
	return out
}
