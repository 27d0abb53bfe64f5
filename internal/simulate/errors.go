package simulate

import "errors"

// Sentinel errors for simulation runs.
var (
	ErrInvalidConfig = errors.New("invalid simulation config")
	ErrMismatch      = errors.New("engine results disagree")
)
