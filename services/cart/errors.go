package cart

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity    = errors.New("quantity must be greater than 0")
	ErrItemNotFound       = errors.New("cart item not found")
	ErrLocationUnresolved = errors.New("location not resolved; cannot add to cart")
)

// MutationError is a failed write at the cart service. Local state is left
// as it was so the user can retry.
type MutationError struct {
	Op     string
	UserID string
	Err    error
}

func (e *MutationError) Error() string {
	return fmt.Sprintf("cart %s for user %s failed: %v", e.Op, e.UserID, e.Err)
}

func (e *MutationError) Unwrap() error { return e.Err }
