package pricing

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is what a Client returns for a 404 or empty lookup.
	ErrNotFound = errors.New("pricing not found")
	// ErrPricingNotFound means every cascade step came back empty.
	ErrPricingNotFound = errors.New("we are not serving at this location")
)

// TransportError is a non-404 failure that aborts the cascade.
type TransportError struct {
	Step string
	Key  string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("pricing %s lookup for %q failed: %v", e.Step, e.Key, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is an unexpected HTTP status from the pricing service.
type StatusError struct {
	Status int
	URL    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.Status, e.URL)
}
