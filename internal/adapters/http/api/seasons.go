package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/okian/fairway/internal/domain/model"
	"github.com/okian/fairway/internal/domain/settings"
)

type bulkBaselinesRequest struct {
	Baselines []model.SessionBaseline `json:"baselines"`
	Overwrite bool                    `json:"overwrite"`
}

type scoresChangedRequest struct {
	PlayerIDs []uuid.UUID `json:"player_ids"`
}

func (s *Server) handleStandings(w http.ResponseWriter, r *http.Request) {
	seasonID, week, ok := s.seasonWeek(w, r)
	if !ok {
		return
	}
	table, err := s.engine.SessionStandings(r.Context(), seasonID, week)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, table)
}

// handlePutBaseline handles PUT /seasons/{seasonID}/baselines, overwriting
// any existing row.
func (s *Server) handlePutBaseline(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathUUID(r, "seasonID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var b model.SessionBaseline
	if err := decode(r, &b); err != nil {
		s.writeError(w, r, err)
		return
	}
	b.SeasonID = seasonID
	if err := s.engine.SetSessionBaseline(r.Context(), b); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleBulkBaselines handles POST /seasons/{seasonID}/baselines/bulk.
func (s *Server) handleBulkBaselines(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathUUID(r, "seasonID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req bulkBaselinesRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	for i := range req.Baselines {
		req.Baselines[i].SeasonID = seasonID
	}
	if err := s.engine.SetSessionBaselines(r.Context(), req.Baselines, req.Overwrite); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleRecalculate(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathUUID(r, "seasonID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	handicaps, err := s.engine.RecalculateSeason(r.Context(), seasonID)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bulkResponse{SeasonID: seasonID, Handicaps: byPlayer(handicaps)})
}

func (s *Server) handleScoresChanged(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathUUID(r, "seasonID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req scoresChangedRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.engine.ScoresChanged(r.Context(), seasonID, req.PlayerIDs...); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusAccepted)
}

// handlePutSettings decodes onto the defaults so omitted fields keep
// their default values.
func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	seasonID, err := pathUUID(r, "seasonID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	cfg := settings.Default()
	if err := decode(r, &cfg); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.engine.UpdateSettings(r.Context(), seasonID, cfg); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
