package course

import "errors"

// ErrConfiguration reports incomplete or corrupt course data. Computations
// never fall back to hole numbers when it is returned.
var ErrConfiguration = errors.New("course configuration error")
