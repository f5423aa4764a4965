package cartRepo

import (
	"context"

	"coolie/models"
)

// CartSnapshotRepository persists the locally held cart state and the
// location fingerprint it was filled at.
type CartSnapshotRepository interface {
	// Get returns the snapshot for a user, or nil when none is stored.
	Get(ctx context.Context, userID string) (*models.CartSnapshot, error)
	// Save upserts the snapshot keyed by its user id.
	Save(ctx context.Context, snap *models.CartSnapshot) error
}
