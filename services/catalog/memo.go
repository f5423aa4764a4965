package catalog

import (
	"sync"
	"time"

	"coolie/models"
)

// MemoMatcher caches the last Match result keyed by catalog version and tier
// identity. It recomputes when either input changes.
type MemoMatcher struct {
	mu          sync.Mutex
	version     uint64
	tierKey     string
	tierSource  models.TierSource
	tierAt      time.Time
	result      models.LocationFilteredCatalog
	initialized bool
}

// Match returns the filtered catalog for (catalog@version, tier).
func (m *MemoMatcher) Match(version uint64, catalog models.Catalog, tier models.PriceTier) models.LocationFilteredCatalog {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.initialized && m.version == version && m.tierKey == tier.Key &&
		m.tierSource == tier.Source && m.tierAt.Equal(tier.ResolvedAt) {
		return m.result
	}
	m.result = Match(catalog, tier)
	m.version = version
	m.tierKey = tier.Key
	m.tierSource = tier.Source
	m.tierAt = tier.ResolvedAt
	m.initialized = true
	return m.result
}
