package api

import (
	"fmt"
	"net/http"

	service "github.com/okian/fairway/internal/app"
	"github.com/okian/fairway/internal/domain/model"
)

// holeRequest is one hole as a score keeper submits it. Par and the
// matchup come from the server.
type holeRequest struct {
	HoleNumber int  `json:"hole_number"`
	A          *int `json:"a,omitempty"`
	B          *int `json:"b,omitempty"`
}

type scoreRequest struct {
	Holes    []holeRequest `json:"holes"`
	OutcomeA string        `json:"outcome_a,omitempty"`
	OutcomeB string        `json:"outcome_b,omitempty"`
}

func (req scoreRequest) input() (service.ScoreInput, error) {
	in := service.ScoreInput{Holes: make([]model.HoleScore, len(req.Holes))}
	for i, h := range req.Holes {
		in.Holes[i] = model.HoleScore{HoleNumber: h.HoleNumber, A: h.A, B: h.B}
	}
	var err error
	if in.OutcomeA, err = parseOutcome(req.OutcomeA); err != nil {
		return in, err
	}
	in.OutcomeB, err = parseOutcome(req.OutcomeB)
	return in, err
}

// parseOutcome leaves an empty kind unset so the stored outcome applies.
func parseOutcome(kind string) (model.Outcome, error) {
	if kind == "" {
		return nil, nil
	}
	o, err := model.ParseOutcome(kind, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	return o, nil
}

// handleScoreMatchup handles POST /matchups/{matchupID}/score.
func (s *Server) handleScoreMatchup(w http.ResponseWriter, r *http.Request) {
	matchupID, err := pathUUID(r, "matchupID")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	var req scoreRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	in, err := req.input()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	res, err := s.engine.ScoreMatchup(r.Context(), matchupID, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
