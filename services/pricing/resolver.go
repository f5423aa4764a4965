package pricing

import (
	"context"
	"errors"
	"time"

	"coolie/models"

	"go.uber.org/zap"
)

// TierResolver resolves the active price tier for an address hierarchy.
type TierResolver interface {
	Resolve(ctx context.Context, h models.AddressHierarchy) (models.PriceTier, error)
}

// Resolver walks Strategies in order, strictly sequentially, and stops at
// the first step returning records.
type Resolver struct {
	Client     Client
	Strategies []Strategy
	Logger     *zap.Logger
	Metrics    *Metrics
	now        func() time.Time
}

// NewResolver builds a resolver with the default cascade.
func NewResolver(client Client, logger *zap.Logger, metrics *Metrics) *Resolver {
	return &Resolver{
		Client:     client,
		Strategies: DefaultStrategies(),
		Logger:     logger,
		Metrics:    metrics,
		now:        time.Now,
	}
}

// Resolve returns the first non-empty tier. When every step is empty it
// returns a TierNone tier together with ErrPricingNotFound. A non-404 failure
// aborts the cascade with a *TransportError and a zero tier.
func (r *Resolver) Resolve(ctx context.Context, h models.AddressHierarchy) (models.PriceTier, error) {
	for _, s := range r.Strategies {
		key := s.Field(h)
		if !models.Present(key) {
			r.Metrics.step(s.Name, outcomeSkipped)
			continue
		}
		if err := ctx.Err(); err != nil {
			return models.PriceTier{}, err
		}

		records, err := s.Fetch(ctx, r.Client, key)
		switch {
		case errors.Is(err, ErrNotFound):
			r.Logger.Debug("PriceTierResolver: no pricing", zap.String("step", s.Name), zap.String("key", key))
			r.Metrics.step(s.Name, outcomeEmpty)
			continue
		case err != nil:
			r.Logger.Error("PriceTierResolver: lookup failed", zap.String("step", s.Name), zap.String("key", key), zap.Error(err))
			r.Metrics.step(s.Name, outcomeError)
			return models.PriceTier{}, &TransportError{Step: s.Name, Key: key, Err: err}
		case len(records) == 0:
			r.Logger.Debug("PriceTierResolver: empty pricing", zap.String("step", s.Name), zap.String("key", key))
			r.Metrics.step(s.Name, outcomeEmpty)
			continue
		}

		r.Metrics.step(s.Name, outcomeHit)
		r.Metrics.resolved(string(s.Source))
		r.Logger.Info("PriceTierResolver: tier resolved",
			zap.String("step", s.Name),
			zap.String("source", string(s.Source)),
			zap.String("key", key),
			zap.Int("records", len(records)),
		)
		return models.PriceTier{
			Source:     s.Source,
			Key:        key,
			Records:    records,
			ResolvedAt: r.now(),
		}, nil
	}

	r.Metrics.resolved(string(models.TierNone))
	r.Logger.Warn("PriceTierResolver: not serving this location", zap.Any("location", h))
	tier := models.NoTier()
	tier.ResolvedAt = r.now()
	return tier, ErrPricingNotFound
}
