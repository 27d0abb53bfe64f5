package service

import "errors"

var (
	// ErrNotSessionStart means a baseline targeted a week that does not open a session.
	ErrNotSessionStart = errors.New("week is not a session start")
	// ErrInvalidBaseline rejects negative, NaN or unknown-kind baseline input.
	ErrInvalidBaseline = errors.New("invalid baseline")
	// ErrUnknownWeek means the matchup's week is not part of its season.
	ErrUnknownWeek = errors.New("unknown week")
)
