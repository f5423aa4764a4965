package catalog

import (
	"context"
	"encoding/json"
	"hash/fnv"
	"sync"

	"coolie/models"

	"go.uber.org/zap"
)

// Service loads the raw catalog (cache first, upstream on miss) and keeps the
// last good copy in memory together with a content version.
type Service struct {
	Client Client
	Cache  Cache
	Logger *zap.Logger

	mu      sync.RWMutex
	current models.Catalog
	version uint64
	loaded  bool
}

func NewService(client Client, cache Cache, logger *zap.Logger) *Service {
	return &Service{Client: client, Cache: cache, Logger: logger}
}

// Current returns the catalog and its version, loading it on first use.
func (s *Service) Current(ctx context.Context) (models.Catalog, uint64, error) {
	s.mu.RLock()
	if s.loaded {
		cat, v := s.current, s.version
		s.mu.RUnlock()
		return cat, v, nil
	}
	s.mu.RUnlock()

	if s.Cache != nil {
		cached, err := s.Cache.Get(ctx)
		if err != nil {
			s.Logger.Warn("CatalogService: cache read failed", zap.Error(err))
		}
		if cached != nil && !cached.Empty() {
			s.store(*cached)
			return s.snapshot()
		}
	}

	if _, err := s.Refresh(ctx); err != nil {
		return models.Catalog{}, 0, err
	}
	return s.snapshot()
}

// Refresh reloads the three catalog lists from upstream and writes them to
// the cache. On failure the previous catalog is kept.
func (s *Service) Refresh(ctx context.Context) (models.Catalog, error) {
	cats, err := s.Client.Categories(ctx)
	if err != nil {
		return models.Catalog{}, err
	}
	subs, err := s.Client.SubCategories(ctx)
	if err != nil {
		return models.Catalog{}, err
	}
	svcs, err := s.Client.Services(ctx)
	if err != nil {
		return models.Catalog{}, err
	}

	cat := models.Catalog{Categories: cats, SubCategories: subs, Services: svcs}
	s.store(cat)

	if s.Cache != nil {
		if err := s.Cache.Set(ctx, cat); err != nil {
			s.Logger.Warn("CatalogService: cache write failed", zap.Error(err))
		}
	}
	s.Logger.Info("CatalogService: catalog refreshed",
		zap.Int("categories", len(cats)),
		zap.Int("subCategories", len(subs)),
		zap.Int("services", len(svcs)),
	)
	return cat, nil
}

// ServicesFiltered asks upstream for the services of one category and
// subcategory pair. The result is not cached.
func (s *Service) ServicesFiltered(ctx context.Context, categoryID, subCategoryID string) ([]models.Service, error) {
	svcs, err := s.Client.ServicesFiltered(ctx, categoryID, subCategoryID)
	if err != nil {
		s.Logger.Warn("CatalogService: filtered services fetch failed",
			zap.String("categoryID", categoryID),
			zap.String("subCategoryID", subCategoryID),
			zap.Error(err),
		)
		return nil, err
	}
	return svcs, nil
}

func (s *Service) store(cat models.Catalog) {
	v := contentVersion(cat)
	s.mu.Lock()
	s.current = cat
	s.version = v
	s.loaded = true
	s.mu.Unlock()
}

func (s *Service) snapshot() (models.Catalog, uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, s.version, nil
}

func contentVersion(cat models.Catalog) uint64 {
	data, err := json.Marshal(cat)
	if err != nil {
		return 0
	}
	h := fnv.New64a()
	_, _ = h.Write(data)
	return h.Sum64()
}
