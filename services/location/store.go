// Package location owns per-session location and pricing state: the resolved
// address hierarchy, the active price tier and the selection derived from them.
package location

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"coolie/models"
	"coolie/services/geo"
	"coolie/services/pricing"

	"go.uber.org/zap"
)

// Listener is notified after every committed snapshot, in commit order.
type Listener func(models.LocationSnapshot)

// Store is the single source of truth for one session's location state.
// Resolves may overlap; only the most recently issued one commits.
type Store struct {
	SessionID string

	geo     geo.Resolver
	tiers   pricing.TierResolver
	persist Persister
	logger  *zap.Logger
	now     func() time.Time

	// notifyMu serializes commit and delivery so listeners see snapshots in
	// commit order. It is always taken before mu, and mu is never held while
	// listeners run.
	notifyMu sync.Mutex

	mu        sync.Mutex
	issued    uint64
	snap      models.LocationSnapshot
	listeners map[int]Listener
	nextID    int
}

func NewStore(sessionID string, g geo.Resolver, tiers pricing.TierResolver, persist Persister, logger *zap.Logger) *Store {
	return &Store{
		SessionID: sessionID,
		geo:       g,
		tiers:     tiers,
		persist:   persist,
		logger:    logger,
		now:       time.Now,
		snap:      models.LocationSnapshot{Tier: models.NoTier()},
		listeners: make(map[int]Listener),
	}
}

// Snapshot returns the last committed state.
func (s *Store) Snapshot() models.LocationSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Subscribe registers fn and returns a function that removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

// restore installs a persisted snapshot without notifying listeners.
func (s *Store) restore(snap models.LocationSnapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
	if snap.Seq > s.issued {
		s.issued = snap.Seq
	}
}

// ResolveLocation geocodes the coordinates and resolves the price tier. When
// no tier serves the location the none tier is committed and returned along
// with pricing.ErrPricingNotFound. Any other failure leaves state untouched.
func (s *Store) ResolveLocation(ctx context.Context, lat, lng float64) (models.LocationSnapshot, error) {
	return s.resolve(ctx, lat, lng, "")
}

// SetCity records a manually chosen city. With coordinates it also resolves
// pricing there, keeping the chosen name as the selected city.
func (s *Store) SetCity(ctx context.Context, name string, coords *models.Coordinates) (models.LocationSnapshot, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return s.Snapshot(), ErrEmptyCity
	}
	if coords != nil {
		return s.resolve(ctx, coords.Latitude, coords.Longitude, name)
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	s.issued++
	next := s.snap
	next.SelectedCity = name
	next.Seq = s.issued
	next.UpdatedAt = s.now()
	s.snap = next
	listeners := s.listenerList()
	s.mu.Unlock()

	s.publish(ctx, next, listeners)
	return next, nil
}

func (s *Store) resolve(ctx context.Context, lat, lng float64, city string) (models.LocationSnapshot, error) {
	s.mu.Lock()
	s.issued++
	seq := s.issued
	s.mu.Unlock()

	hierarchy, err := s.geo.Resolve(ctx, lat, lng)
	if err != nil {
		s.logger.Warn("LocationStore: geocode failed", zap.String("session", s.SessionID), zap.Error(err))
		return s.Snapshot(), err
	}

	tier, tierErr := s.tiers.Resolve(ctx, hierarchy)
	if tierErr != nil && !errors.Is(tierErr, pricing.ErrPricingNotFound) {
		return s.Snapshot(), tierErr
	}
	if tierErr != nil {
		tier = models.NoTier()
	}

	if city == "" && models.Present(hierarchy.Locality) {
		city = hierarchy.Locality
	}

	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	s.mu.Lock()
	if seq != s.issued {
		current := s.snap
		s.mu.Unlock()
		s.logger.Debug("LocationStore: dropping stale resolve",
			zap.String("session", s.SessionID), zap.Uint64("seq", seq))
		return current, ErrSuperseded
	}
	if city == "" {
		city = s.snap.SelectedCity
	}
	next := models.LocationSnapshot{
		Hierarchy:    hierarchy,
		Coordinates:  &models.Coordinates{Latitude: lat, Longitude: lng},
		Tier:         tier,
		Fingerprint:  hierarchy.Fingerprint(),
		SelectedCity: city,
		Serving:      tier.Serving(),
		Seq:          seq,
		UpdatedAt:    s.now(),
	}
	s.snap = next
	listeners := s.listenerList()
	s.mu.Unlock()

	s.publish(ctx, next, listeners)
	return next, tierErr
}

// listenerList must be called with mu held.
func (s *Store) listenerList() []Listener {
	out := make([]Listener, 0, len(s.listeners))
	for _, fn := range s.listeners {
		out = append(out, fn)
	}
	return out
}

// publish persists and fans out a committed snapshot. Caller holds notifyMu
// but not mu.
func (s *Store) publish(ctx context.Context, snap models.LocationSnapshot, listeners []Listener) {
	if s.persist != nil {
		if err := s.persist.Save(ctx, s.SessionID, snap); err != nil {
			s.logger.Error("LocationStore: failed to persist snapshot",
				zap.String("session", s.SessionID), zap.Error(err))
		}
	}
	for _, fn := range listeners {
		fn(snap)
	}
}
