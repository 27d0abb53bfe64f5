package cache

import "errors"

// ErrInvalidate means entries could not be dropped and may still be served.
var ErrInvalidate = errors.New("cache invalidation failed")
