package cart

import (
	"context"

	cartRepo "coolie/database/repository/cart"
	"coolie/models"

	"go.uber.org/zap"
)

// Service owns cart reads and writes. Every successful remote mutation is
// followed by a re-fetch; the remote cart service is the source of truth.
type Service struct {
	Client      Client
	Repo        cartRepo.CartSnapshotRepository
	Invalidator *Invalidator
	Logger      *zap.Logger
}

func NewService(client Client, repo cartRepo.CartSnapshotRepository, inv *Invalidator, logger *zap.Logger) *Service {
	return &Service{Client: client, Repo: repo, Invalidator: inv, Logger: logger}
}

func (s *Service) load(ctx context.Context, userID string) (*models.CartSnapshot, error) {
	snap, err := s.Repo.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		snap = &models.CartSnapshot{UserID: userID, Items: []models.CartItem{}}
	}
	return snap, nil
}

// Fetch pulls the remote cart and stores it locally, keeping the fingerprint.
func (s *Service) Fetch(ctx context.Context, userID string) (models.CartSnapshot, error) {
	return s.refresh(ctx, userID)
}

// refresh re-fetches the remote cart and reconciles it with local knowledge.
// pending holds items just created, whose prices the remote may not echo.
func (s *Service) refresh(ctx context.Context, userID string, pending ...models.CartItem) (models.CartSnapshot, error) {
	items, err := s.Client.Fetch(ctx, userID)
	if err != nil {
		s.Logger.Error("CartService: fetch failed", zap.String("userID", userID), zap.Error(err))
		return models.CartSnapshot{}, err
	}
	snap, err := s.load(ctx, userID)
	if err != nil {
		return models.CartSnapshot{}, err
	}
	reconcile(snap, items, pending)
	if err := s.Repo.Save(ctx, snap); err != nil {
		return models.CartSnapshot{}, err
	}
	return *snap, nil
}

// reconcile replaces snap.Items with the remote list. Prices captured locally
// win over whatever the remote reports, matched by service id. Quantity
// overrides are reapplied by item id and dropped once the item is gone.
func reconcile(snap *models.CartSnapshot, remote []models.CartItem, pending []models.CartItem) {
	prices := make(map[string]float64, len(snap.Items)+len(pending))
	for _, it := range snap.Items {
		if it.PriceAtAdd > 0 {
			prices[it.ServiceID] = it.PriceAtAdd
		}
	}
	for _, it := range pending {
		if it.PriceAtAdd > 0 {
			prices[it.ServiceID] = it.PriceAtAdd
		}
	}

	var overrides map[string]int
	for i := range remote {
		if p, ok := prices[remote[i].ServiceID]; ok {
			remote[i].PriceAtAdd = p
		}
		if q, ok := snap.QuantityOverrides[remote[i].ID]; ok {
			remote[i].Quantity = q
			if overrides == nil {
				overrides = map[string]int{}
			}
			overrides[remote[i].ID] = q
		}
	}
	if remote == nil {
		remote = []models.CartItem{}
	}
	snap.Items = remote
	snap.QuantityOverrides = overrides
}

// Add puts a service in the cart. A cart filled at another location is
// cleared first; if that clear fails the add is refused.
func (s *Service) Add(ctx context.Context, userID, fingerprint string, item models.CartItem) (models.CartSnapshot, error) {
	if fingerprint == "" {
		return models.CartSnapshot{}, ErrLocationUnresolved
	}
	if item.Quantity == 0 {
		item.Quantity = 1
	}
	if item.Quantity < 0 {
		return models.CartSnapshot{}, ErrInvalidQuantity
	}

	if _, err := s.Invalidator.Check(ctx, userID, fingerprint); err != nil {
		return models.CartSnapshot{}, err
	}

	if err := s.Client.Create(ctx, userID, []models.CartItem{item}); err != nil {
		return models.CartSnapshot{}, &MutationError{Op: "add", UserID: userID, Err: err}
	}
	s.Logger.Info("CartService: item added", zap.String("userID", userID), zap.String("serviceID", item.ServiceID))
	return s.refresh(ctx, userID, item)
}

// Remove deletes one cart line remotely, then re-fetches.
func (s *Service) Remove(ctx context.Context, userID, itemID string) (models.CartSnapshot, error) {
	if err := s.Client.RemoveItem(ctx, userID, itemID); err != nil {
		return models.CartSnapshot{}, &MutationError{Op: "remove", UserID: userID, Err: err}
	}
	return s.Fetch(ctx, userID)
}

// UpdateQuantity changes a line quantity. The cart service has no endpoint
// for it, so the change is kept as a local override that survives re-fetches.
func (s *Service) UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (models.CartSnapshot, error) {
	if quantity <= 0 {
		return models.CartSnapshot{}, ErrInvalidQuantity
	}
	snap, err := s.load(ctx, userID)
	if err != nil {
		return models.CartSnapshot{}, err
	}
	found := false
	for i := range snap.Items {
		if snap.Items[i].ID == itemID {
			snap.Items[i].Quantity = quantity
			found = true
			if snap.QuantityOverrides == nil {
				snap.QuantityOverrides = map[string]int{}
			}
			snap.QuantityOverrides[itemID] = quantity
		}
	}
	if !found {
		return models.CartSnapshot{}, ErrItemNotFound
	}
	if err := s.Repo.Save(ctx, snap); err != nil {
		return models.CartSnapshot{}, err
	}
	return *snap, nil
}

// Clear empties the cart remotely, then locally.
func (s *Service) Clear(ctx context.Context, userID string) (models.CartSnapshot, error) {
	if err := s.Client.Clear(ctx, userID); err != nil {
		return models.CartSnapshot{}, &MutationError{Op: "clear", UserID: userID, Err: err}
	}
	snap, err := s.load(ctx, userID)
	if err != nil {
		return models.CartSnapshot{}, err
	}
	snap.Items = []models.CartItem{}
	snap.QuantityOverrides = nil
	if err := s.Repo.Save(ctx, snap); err != nil {
		return models.CartSnapshot{}, err
	}
	return *snap, nil
}
