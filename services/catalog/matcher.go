package catalog

import (
	"coolie/models"
)

// Matching is by display name, as the pricing service only exposes names.
// Two catalog entries sharing a name both match the same record.

type serviceKey struct {
	serviceName string
	subCategory string
}

type tierIndex struct {
	categories    map[string]struct{}
	subCategories map[string]struct{}
	services      map[serviceKey]struct{}
}

func indexTier(tier models.PriceTier) tierIndex {
	idx := tierIndex{
		categories:    make(map[string]struct{}, len(tier.Records)),
		subCategories: make(map[string]struct{}, len(tier.Records)),
		services:      make(map[serviceKey]struct{}, len(tier.Records)),
	}
	for _, r := range tier.Records {
		idx.categories[r.Category] = struct{}{}
		idx.subCategories[r.SubCategory] = struct{}{}
		idx.services[serviceKey{r.ServiceName, r.SubCategory}] = struct{}{}
	}
	return idx
}

// Match returns the subset of catalog priced by tier. It is pure: the same
// inputs always produce an equal result. Entries are de-duplicated by id and
// keep catalog order.
func Match(catalog models.Catalog, tier models.PriceTier) models.LocationFilteredCatalog {
	out := models.LocationFilteredCatalog{
		Source:        tier.Source,
		Categories:    []models.Category{},
		SubCategories: []models.SubCategory{},
		Services:      []models.Service{},
	}
	if tier.Source == models.TierNone || tier.Source == "" || len(tier.Records) == 0 {
		return out
	}

	idx := indexTier(tier)

	seen := make(map[string]struct{})
	for _, c := range catalog.Categories {
		if _, ok := idx.categories[c.Name]; !ok {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}
		out.Categories = append(out.Categories, c)
	}

	seen = make(map[string]struct{})
	for _, sc := range catalog.SubCategories {
		if _, ok := idx.subCategories[sc.Name]; !ok {
			continue
		}
		if _, dup := seen[sc.ID]; dup {
			continue
		}
		seen[sc.ID] = struct{}{}
		out.SubCategories = append(out.SubCategories, sc)
	}

	seen = make(map[string]struct{})
	for _, s := range catalog.Services {
		if _, ok := idx.services[serviceKey{s.Name, s.SubCategory.Name}]; !ok {
			continue
		}
		if _, dup := seen[s.ID]; dup {
			continue
		}
		seen[s.ID] = struct{}{}
		out.Services = append(out.Services, s)
	}
	return out
}

// ServicesFor narrows a filtered catalog to one category/subcategory pair.
func ServicesFor(fc models.LocationFilteredCatalog, categoryID, subCategoryID string) []models.Service {
	out := []models.Service{}
	for _, s := range fc.Services {
		if categoryID != "" && s.Category.ID != categoryID {
			continue
		}
		if subCategoryID != "" && s.SubCategory.ID != subCategoryID {
			continue
		}
		out = append(out, s)
	}
	return out
}

// PriceFor returns the tier price for a service, falling back to the first
// catalog variant price.
func PriceFor(tier models.PriceTier, s models.Service) float64 {
	for _, r := range tier.Records {
		if r.ServiceName == s.Name && r.SubCategory == s.SubCategory.Name && r.Price > 0 {
			return r.Price
		}
	}
	if len(s.Variants) > 0 {
		return s.Variants[0].Price
	}
	return 0
}
