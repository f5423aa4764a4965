package pricing

import (
	"context"

	"coolie/models"
)

// Strategy is one step of the fallback cascade: which address field to key on,
// which endpoint to ask and how to tag a hit.
type Strategy struct {
	Name   string
	Source models.TierSource
	Field  func(models.AddressHierarchy) string
	Fetch  func(ctx context.Context, c Client, key string) ([]models.PriceRecord, error)
}

func fetchCustom(ctx context.Context, c Client, key string) ([]models.PriceRecord, error) {
	return c.Custom(ctx, key)
}

func fetchDistrict(ctx context.Context, c Client, key string) ([]models.PriceRecord, error) {
	return c.District(ctx, key)
}

// DefaultStrategies is the cascade in priority order. The first non-empty
// step wins.
func DefaultStrategies() []Strategy {
	return []Strategy{
		{
			Name:   "postalCode",
			Source: models.TierCustom,
			Field:  func(h models.AddressHierarchy) string { return h.PostalCode },
			Fetch:  fetchCustom,
		},
		{
			Name:   "adminLevel3",
			Source: models.TierDistrict,
			Field:  func(h models.AddressHierarchy) string { return h.AdminLevel3 },
			Fetch:  fetchDistrict,
		},
		{
			Name:   "locality",
			Source: models.TierDistrict,
			Field:  func(h models.AddressHierarchy) string { return h.Locality },
			Fetch:  fetchDistrict,
		},
		{
			Name:   "adminLevel2",
			Source: models.TierState,
			Field:  func(h models.AddressHierarchy) string { return h.AdminLevel2 },
			Fetch:  fetchDistrict,
		},
		{
			Name:   "adminLevel1",
			Source: models.TierCountry,
			Field:  func(h models.AddressHierarchy) string { return h.AdminLevel1 },
			Fetch:  fetchDistrict,
		},
	}
}
