package models

// Category is a top-level service grouping from the catalog service.
type Category struct {
	ID        string   `json:"_id" bson:"_id"`
	Name      string   `json:"name" bson:"name"`
	Image     string   `json:"imageKey,omitempty" bson:"imageKey,omitempty"`
	UIVariant []string `json:"uiVariant,omitempty" bson:"uiVariant,omitempty"`
}

// SubCategory belongs to a category and optionally to one of its UI variants.
type SubCategory struct {
	ID          string `json:"_id" bson:"_id"`
	Name        string `json:"name" bson:"name"`
	CategoryID  string `json:"categoryId" bson:"categoryId"`
	VariantName string `json:"variantName,omitempty" bson:"variantName,omitempty"`
	Image       string `json:"imageKey,omitempty" bson:"imageKey,omitempty"`
}

// EntryRef is the populated reference the catalog service embeds in services.
type EntryRef struct {
	ID   string `json:"_id" bson:"_id"`
	Name string `json:"name" bson:"name"`
}

// ServiceVariant is one price/duration option of a service.
type ServiceVariant struct {
	Name        string  `json:"variantName,omitempty" bson:"variantName,omitempty"`
	Price       float64 `json:"price" bson:"price"`
	ServiceTime string  `json:"serviceTime,omitempty" bson:"serviceTime,omitempty"`
}

type Service struct {
	ID          string           `json:"_id" bson:"_id"`
	Name        string           `json:"name" bson:"name"`
	Description string           `json:"description,omitempty" bson:"description,omitempty"`
	Image       string           `json:"image,omitempty" bson:"image,omitempty"`
	Category    EntryRef         `json:"categoryId" bson:"categoryId"`
	SubCategory EntryRef         `json:"subCategoryId" bson:"subCategoryId"`
	Variants    []ServiceVariant `json:"serviceVariants,omitempty" bson:"serviceVariants,omitempty"`
}

// Catalog is the raw, location-independent catalog.
type Catalog struct {
	Categories    []Category    `json:"categories"`
	SubCategories []SubCategory `json:"subCategories"`
	Services      []Service     `json:"services"`
}

// Empty reports whether no catalog data has been loaded.
func (c Catalog) Empty() bool {
	return len(c.Categories) == 0 && len(c.SubCategories) == 0 && len(c.Services) == 0
}

// LocationFilteredCatalog is the catalog subset priced at the active tier.
type LocationFilteredCatalog struct {
	Source        TierSource    `json:"source"`
	Categories    []Category    `json:"categories"`
	SubCategories []SubCategory `json:"subCategories"`
	Services      []Service     `json:"services"`
}

// Empty reports whether nothing is offered at the location.
func (c LocationFilteredCatalog) Empty() bool {
	return len(c.Categories) == 0 && len(c.SubCategories) == 0 && len(c.Services) == 0
}
