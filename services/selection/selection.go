// Package selection tracks the user's category/variant/subcategory position
// within the location-filtered catalog.
package selection

import (
	"errors"
	"strings"

	"coolie/models"
)

var (
	ErrUnknownCategory    = errors.New("category not offered at this location")
	ErrUnknownSubCategory = errors.New("subcategory not offered for the selected category")
	ErrUnknownVariant     = errors.New("variant not offered for the selected category")
	ErrNoCategorySelected = errors.New("no category selected")
)

// State is not safe for concurrent use; the owning store serializes access.
type State struct {
	catalog       models.LocationFilteredCatalog
	categoryID    string
	variant       string
	subCategoryID string
}

func New() *State {
	return &State{}
}

// Apply installs a new filtered catalog. A missing or removed category is
// replaced by the first available one; subcategory and variant are kept when
// still valid.
func (s *State) Apply(fc models.LocationFilteredCatalog) {
	s.catalog = fc
	if len(fc.Categories) == 0 {
		s.categoryID, s.variant, s.subCategoryID = "", "", ""
		return
	}
	if _, ok := s.category(s.categoryID); !ok {
		s.selectCategory(fc.Categories[0].ID)
		return
	}
	if !containsFold(s.variants(), s.variant) {
		s.variant = firstOrEmpty(s.variants())
	}
	if _, ok := s.subCategory(s.subCategoryID); !ok {
		s.subCategoryID = firstSubCategoryID(s.subCategories())
	}
}

// SelectCategory switches category and auto-selects its first variant and
// first subcategory.
func (s *State) SelectCategory(id string) error {
	if _, ok := s.category(id); !ok {
		return ErrUnknownCategory
	}
	s.selectCategory(id)
	return nil
}

// SelectVariant narrows subcategories to a UI variant of the current category.
func (s *State) SelectVariant(name string) error {
	if s.categoryID == "" {
		return ErrNoCategorySelected
	}
	if name != "" && !containsFold(s.variants(), name) {
		return ErrUnknownVariant
	}
	s.variant = name
	s.subCategoryID = firstSubCategoryID(s.subCategories())
	return nil
}

func (s *State) SelectSubCategory(id string) error {
	if s.categoryID == "" {
		return ErrNoCategorySelected
	}
	if _, ok := s.subCategory(id); !ok {
		return ErrUnknownSubCategory
	}
	s.subCategoryID = id
	return nil
}

// Snapshot returns the current selection with the options valid for it.
func (s *State) Snapshot() models.Selection {
	sel := models.Selection{
		Status:        s.status(),
		CategoryID:    s.categoryID,
		SubCategoryID: s.subCategoryID,
		Variant:       s.variant,
	}
	if s.categoryID != "" {
		sel.Variants = s.variants()
		sel.SubCategories = s.subCategories()
	}
	return sel
}

func (s *State) status() models.SelectionStatus {
	switch {
	case s.categoryID == "":
		return models.NoCategory
	case s.subCategoryID == "":
		return models.CategorySelected
	default:
		return models.SubCategorySelected
	}
}

func (s *State) selectCategory(id string) {
	s.categoryID = id
	s.variant = firstOrEmpty(s.variants())
	s.subCategoryID = firstSubCategoryID(s.subCategories())
}

func (s *State) category(id string) (models.Category, bool) {
	if id == "" {
		return models.Category{}, false
	}
	for _, c := range s.catalog.Categories {
		if c.ID == id {
			return c, true
		}
	}
	return models.Category{}, false
}

func (s *State) subCategory(id string) (models.SubCategory, bool) {
	if id == "" {
		return models.SubCategory{}, false
	}
	for _, sc := range s.subCategories() {
		if sc.ID == id {
			return sc, true
		}
	}
	return models.SubCategory{}, false
}

// variants lists the category's UI variants, skipping the "none" placeholder.
func (s *State) variants() []string {
	c, ok := s.category(s.categoryID)
	if !ok {
		return nil
	}
	out := []string{}
	for _, v := range c.UIVariant {
		if v == "" || strings.EqualFold(v, "none") {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (s *State) subCategories() []models.SubCategory {
	out := []models.SubCategory{}
	for _, sc := range s.catalog.SubCategories {
		if sc.CategoryID != s.categoryID {
			continue
		}
		if s.variant != "" && !strings.EqualFold(sc.VariantName, s.variant) {
			continue
		}
		out = append(out, sc)
	}
	return out
}

func firstOrEmpty(vs []string) string {
	if len(vs) == 0 {
		return ""
	}
	return vs[0]
}

func firstSubCategoryID(subs []models.SubCategory) string {
	if len(subs) == 0 {
		return ""
	}
	return subs[0].ID
}

func containsFold(vs []string, v string) bool {
	if v == "" {
		return true
	}
	for _, x := range vs {
		if strings.EqualFold(x, v) {
			return true
		}
	}
	return false
}
