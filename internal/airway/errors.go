package airway

import (
	"errors"
	"fmt"
)

// ErrSurfaceNotFound indicates a nil surface handle or a lookup key that
// matched nothing.
var ErrSurfaceNotFound = errors.New("airway: surface not found")

// SurfaceNotFoundError carries the lookup key that failed to resolve. Key
// is empty when a nil handle was supplied.
type SurfaceNotFoundError struct {
	Key string
}

func (e *SurfaceNotFoundError) Error() string {
	if e.Key == "" {
		return "airway: surface not found (nil handle)"
	}
	return fmt.Sprintf("airway: surface %q not found", e.Key)
}

func (e *SurfaceNotFoundError) Unwrap() error {
	return ErrSurfaceNotFound
}
