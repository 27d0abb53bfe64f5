package api

import (
	"net/http"

	"github.com/google/uuid"
)

type valueResponse struct {
	SeasonID uuid.UUID `json:"season_id"`
	PlayerID uuid.UUID `json:"player_id"`
	Week     int       `json:"week"`
	Average  *float64  `json:"average,omitempty"`
	Handicap *float64  `json:"handicap,omitempty"`
}

type bulkResponse struct {
	SeasonID  uuid.UUID          `json:"season_id"`
	Week      int                `json:"week,omitempty"`
	Averages  map[string]float64 `json:"averages,omitempty"`
	Handicaps map[string]float64 `json:"handicaps,omitempty"`
}

// playerWeek parses the season, player and week of a per-player query.
func playerWeek(r *http.Request) (seasonID, playerID uuid.UUID, week int, err error) {
	if seasonID, err = pathUUID(r, "seasonID"); err != nil {
		return
	}
	if playerID, err = pathUUID(r, "playerID"); err != nil {
		return
	}
	week, err = queryWeek(r)
	return
}

// handleAverage handles GET /seasons/{seasonID}/players/{playerID}/average?week=N.
func (s *Server) handleAverage(w http.ResponseWriter, r *http.Request) {
	seasonID, playerID, week, err := playerWeek(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.engine.GetAverageScore(r.Context(), playerID, seasonID, week)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, valueResponse{SeasonID: seasonID, PlayerID: playerID, Week: week, Average: &v})
}

// handleHandicap handles GET /seasons/{seasonID}/players/{playerID}/handicap?week=N.
func (s *Server) handleHandicap(w http.ResponseWriter, r *http.Request) {
	seasonID, playerID, week, err := playerWeek(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	v, err := s.engine.GetHandicap(r.Context(), playerID, seasonID, week)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, valueResponse{SeasonID: seasonID, PlayerID: playerID, Week: week, Handicap: &v})
}

func (s *Server) handleAllAverages(w http.ResponseWriter, r *http.Request) {
	seasonID, week, ok := s.seasonWeek(w, r)
	if !ok {
		return
	}
	all, err := s.engine.GetAllAveragesUpToWeek(r.Context(), seasonID, week)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bulkResponse{SeasonID: seasonID, Week: week, Averages: byPlayer(all)})
}

func (s *Server) handleAllHandicaps(w http.ResponseWriter, r *http.Request) {
	seasonID, week, ok := s.seasonWeek(w, r)
	if !ok {
		return
	}
	all, err := s.engine.GetAllHandicapsUpToWeek(r.Context(), seasonID, week)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, bulkResponse{SeasonID: seasonID, Week: week, Handicaps: byPlayer(all)})
}

// seasonWeek parses the season path and week query, writing the error
// response itself on failure.
func (s *Server) seasonWeek(w http.ResponseWriter, r *http.Request) (uuid.UUID, int, bool) {
	seasonID, err := pathUUID(r, "seasonID")
	if err == nil {
		var week int
		if week, err = queryWeek(r); err == nil {
			return seasonID, week, true
		}
	}
	s.writeError(w, r, err)
	return uuid.Nil, 0, false
}
