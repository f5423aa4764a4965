package models

// SelectionStatus is the position in the category selection state machine.
type SelectionStatus string

const (
	NoCategory          SelectionStatus = "NoCategory"
	CategorySelected    SelectionStatus = "CategorySelected"
	SubCategorySelected SelectionStatus = "SubCategorySelected"
)

// Selection is the user's current browse position in the filtered catalog.
type Selection struct {
	Status        SelectionStatus `json:"status"`
	CategoryID    string          `json:"selectedCategoryId,omitempty"`
	SubCategoryID string          `json:"selectedSubCategoryId,omitempty"`
	Variant       string          `json:"selectedVariant,omitempty"`
	Variants      []string        `json:"variants,omitempty"`
	SubCategories []SubCategory   `json:"subCategories,omitempty"`
}

// SelectionInput carries a partial selection change from the client.
type SelectionInput struct {
	CategoryID    *string `json:"categoryId"`
	Variant       *string `json:"variant"`
	SubCategoryID *string `json:"subCategoryId"`
}
