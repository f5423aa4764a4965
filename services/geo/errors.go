package geo

import (
	"errors"
	"fmt"
)

var (
	// ErrNoGeocodeResult is returned when the geocoder yields nothing usable.
	ErrNoGeocodeResult = errors.New("no geocode result for the given coordinates")
	// ErrInvalidCoordinates is returned for out-of-range coordinate pairs.
	ErrInvalidCoordinates = errors.New("invalid coordinates")
)

// GeocodeError wraps the cause of a failed lookup while matching ErrNoGeocodeResult.
type GeocodeError struct {
	Lat, Lng float64
	Err      error
}

func (e *GeocodeError) Error() string {
	return fmt.Sprintf("geocode %.6f,%.6f: %v", e.Lat, e.Lng, e.Err)
}

func (e *GeocodeError) Unwrap() error { return e.Err }

func (e *GeocodeError) Is(target error) bool { return target == ErrNoGeocodeResult }
