package session

import "errors"

var (
	// ErrMissingBaseline means no session, season or global value exists.
	ErrMissingBaseline = errors.New("missing baseline")
	ErrInvalidWeek     = errors.New("invalid week")
)
