package location

import (
	"context"
	"sync"
	"time"

	"coolie/models"
	"coolie/services/geo"
	"coolie/services/pricing"

	"go.uber.org/zap"
)

// SessionHook runs once for every session the registry creates.
type SessionHook func(*Session)

type registryEntry struct {
	session  *Session
	lastSeen time.Time
}

// Registry maps session ids to live sessions, reloading persisted state on
// first access.
type Registry struct {
	geo      geo.Resolver
	tiers    pricing.TierResolver
	persist  Persister
	catalogs CatalogSource
	logger   *zap.Logger
	hooks    []SessionHook
	now      func() time.Time

	mu       sync.Mutex
	sessions map[string]*registryEntry
}

func NewRegistry(g geo.Resolver, tiers pricing.TierResolver, persist Persister, catalogs CatalogSource, logger *zap.Logger, hooks ...SessionHook) *Registry {
	return &Registry{
		geo:      g,
		tiers:    tiers,
		persist:  persist,
		catalogs: catalogs,
		logger:   logger,
		hooks:    hooks,
		now:      time.Now,
		sessions: make(map[string]*registryEntry),
	}
}

// Get returns the session for id, creating it if needed.
func (r *Registry) Get(ctx context.Context, id string) *Session {
	r.mu.Lock()
	if e, ok := r.sessions[id]; ok {
		e.lastSeen = r.now()
		r.mu.Unlock()
		return e.session
	}
	r.mu.Unlock()

	var saved *models.LocationSnapshot
	if r.persist != nil {
		snap, err := r.persist.Load(ctx, id)
		if err != nil {
			r.logger.Warn("SessionRegistry: failed to load persisted location",
				zap.String("session", id), zap.Error(err))
		}
		saved = snap
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.sessions[id]; ok {
		e.lastSeen = r.now()
		return e.session
	}

	store := NewStore(id, r.geo, r.tiers, r.persist, r.logger)
	if saved != nil {
		store.restore(*saved)
	}
	session := newSession(id, store, r.catalogs)
	store.Subscribe(func(models.LocationSnapshot) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := session.Catalog(ctx); err != nil {
			r.logger.Warn("SessionRegistry: selection refresh failed",
				zap.String("session", id), zap.Error(err))
		}
	})
	for _, hook := range r.hooks {
		hook(session)
	}
	r.sessions[id] = &registryEntry{session: session, lastSeen: r.now()}
	return session
}

// Sweep drops sessions idle for longer than idle and returns how many were
// removed. Persisted state is left to expire on its own TTL.
func (r *Registry) Sweep(idle time.Duration) int {
	cutoff := r.now().Add(-idle)
	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, e := range r.sessions {
		if e.lastSeen.Before(cutoff) {
			delete(r.sessions, id)
			removed++
		}
	}
	return removed
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}
