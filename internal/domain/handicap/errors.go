package handicap

import "errors"

var (
	// ErrOutOfRange means the average falls outside every lookup bracket.
	ErrOutOfRange   = errors.New("average outside lookup table")
	ErrInvalidTable = errors.New("invalid lookup table")
)
