package settings

import "errors"

// ErrInvalidConfiguration marks an unknown method tag or an out-of-range parameter.
var ErrInvalidConfiguration = errors.New("invalid configuration")
