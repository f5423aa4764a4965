package cart

import (
	"context"
	"sync"

	cartRepo "coolie/database/repository/cart"
	"coolie/models"

	"go.uber.org/zap"
)

// Invalidator clears a user's cart when the effective service location
// changes. Remote clear happens first; local state only follows on success.
type Invalidator struct {
	Client Client
	Repo   cartRepo.CartSnapshotRepository
	Logger *zap.Logger

	locks sync.Map // userID -> *sync.Mutex
}

func NewInvalidator(client Client, repo cartRepo.CartSnapshotRepository, logger *zap.Logger) *Invalidator {
	return &Invalidator{Client: client, Repo: repo, Logger: logger}
}

func (inv *Invalidator) lock(userID string) func() {
	m, _ := inv.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := m.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

// Check compares fingerprint with the stored one and clears the cart when they
// differ. It reports whether a clear happened. Repeating a call with the same
// fingerprint is a no-op.
func (inv *Invalidator) Check(ctx context.Context, userID, fingerprint string) (bool, error) {
	if userID == "" || fingerprint == "" {
		return false, nil
	}
	unlock := inv.lock(userID)
	defer unlock()

	snap, err := inv.Repo.Get(ctx, userID)
	if err != nil {
		return false, err
	}
	if snap == nil {
		snap = &models.CartSnapshot{UserID: userID, Items: []models.CartItem{}}
	}

	switch snap.LocationFingerprint {
	case fingerprint:
		return false, nil
	case "":
		snap.LocationFingerprint = fingerprint
		return false, inv.Repo.Save(ctx, snap)
	}

	if err := inv.Client.Clear(ctx, userID); err != nil {
		inv.Logger.Error("CartInvalidator: remote clear failed; keeping local cart",
			zap.String("userID", userID),
			zap.String("from", snap.LocationFingerprint),
			zap.String("to", fingerprint),
			zap.Error(err),
		)
		return false, &MutationError{Op: "clear", UserID: userID, Err: err}
	}

	prev := snap.LocationFingerprint
	snap.Items = []models.CartItem{}
	snap.QuantityOverrides = nil
	snap.LocationFingerprint = fingerprint
	if err := inv.Repo.Save(ctx, snap); err != nil {
		return true, err
	}
	inv.Logger.Info("CartInvalidator: cart cleared after location change",
		zap.String("userID", userID),
		zap.String("from", prev),
		zap.String("to", fingerprint),
	)
	return true, nil
}
