package location

import (
	"context"
	"sync"

	"coolie/models"
	"coolie/services/catalog"
	"coolie/services/selection"
)

// CatalogSource yields the full catalog and its content version.
type CatalogSource interface {
	Current(ctx context.Context) (models.Catalog, uint64, error)
}

// ServiceFilter is implemented by catalog sources that can list the services
// of a single category and subcategory pair upstream.
type ServiceFilter interface {
	ServicesFiltered(ctx context.Context, categoryID, subCategoryID string) ([]models.Service, error)
}

// Session couples a session's location store with its browse selection.
type Session struct {
	ID    string
	Store *Store

	catalogs CatalogSource
	memo     catalog.MemoMatcher

	mu        sync.Mutex
	selection *selection.State
	userID    string
}

func newSession(id string, store *Store, catalogs CatalogSource) *Session {
	return &Session{
		ID:        id,
		Store:     store,
		catalogs:  catalogs,
		selection: selection.New(),
	}
}

// BindUser associates an authenticated user with the session so location
// changes can invalidate that user's cart.
func (s *Session) BindUser(userID string) {
	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()
}

func (s *Session) UserID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userID
}

// Catalog returns the catalog filtered to the session's current tier and
// re-derives the selection against it.
func (s *Session) Catalog(ctx context.Context) (models.LocationFilteredCatalog, error) {
	cat, version, err := s.catalogs.Current(ctx)
	if err != nil {
		return models.LocationFilteredCatalog{}, err
	}
	fc := s.memo.Match(version, cat, s.Store.Snapshot().Tier)

	s.mu.Lock()
	s.selection.Apply(fc)
	s.mu.Unlock()
	return fc, nil
}

func (s *Session) Selection(ctx context.Context) (models.Selection, error) {
	if _, err := s.Catalog(ctx); err != nil {
		return models.Selection{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Snapshot(), nil
}

// UpdateSelection applies category, variant and subcategory in that order;
// each step validates against the state left by the previous one.
func (s *Session) UpdateSelection(ctx context.Context, in models.SelectionInput) (models.Selection, error) {
	if _, err := s.Catalog(ctx); err != nil {
		return models.Selection{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if in.CategoryID != nil {
		if err := s.selection.SelectCategory(*in.CategoryID); err != nil {
			return s.selection.Snapshot(), err
		}
	}
	if in.Variant != nil {
		if err := s.selection.SelectVariant(*in.Variant); err != nil {
			return s.selection.Snapshot(), err
		}
	}
	if in.SubCategoryID != nil {
		if err := s.selection.SelectSubCategory(*in.SubCategoryID); err != nil {
			return s.selection.Snapshot(), err
		}
	}
	return s.selection.Snapshot(), nil
}

// Services lists the filtered services under the current selection.
func (s *Session) Services(ctx context.Context) (models.Selection, []models.Service, error) {
	fc, err := s.Catalog(ctx)
	if err != nil {
		return models.Selection{}, nil, err
	}
	s.mu.Lock()
	sel := s.selection.Snapshot()
	s.mu.Unlock()

	if f, ok := s.catalogs.(ServiceFilter); ok && sel.CategoryID != "" && sel.SubCategoryID != "" {
		svcs, err := f.ServicesFiltered(ctx, sel.CategoryID, sel.SubCategoryID)
		if err == nil {
			return sel, catalog.Match(models.Catalog{Services: svcs}, s.Store.Snapshot().Tier).Services, nil
		}
		// Fall through to the cached full catalog.
	}
	return sel, catalog.ServicesFor(fc, sel.CategoryID, sel.SubCategoryID), nil
}
