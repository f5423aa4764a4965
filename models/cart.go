package models

import "time"

// CartItem is one line of a user's cart.
type CartItem struct {
	ID            string  `json:"_id" bson:"id"`
	ServiceID     string  `json:"serviceId" bson:"serviceId"`
	CategoryID    string  `json:"categoryId,omitempty" bson:"categoryId,omitempty"`
	SubCategoryID string  `json:"subCategoryId,omitempty" bson:"subCategoryId,omitempty"`
	Quantity      int     `json:"quantity" bson:"quantity"`
	PriceAtAdd    float64 `json:"priceAtAdd" bson:"priceAtAdd"`
}

// CartSnapshot is the locally held cart plus the location it was filled at.
type CartSnapshot struct {
	UserID              string     `json:"userId" bson:"userId"`
	Items               []CartItem `json:"items" bson:"items"`
	LocationFingerprint string     `json:"locationFingerprint" bson:"locationFingerprint"`

	// QuantityOverrides holds quantities changed locally, keyed by item id.
	// The cart service has no quantity update, so they are reapplied after
	// every fetch.
	QuantityOverrides map[string]int `json:"quantityOverrides,omitempty" bson:"quantityOverrides,omitempty"`
	UpdatedAt         time.Time      `json:"updatedAt" bson:"updatedAt"`
}

// TotalPrice sums price times quantity over all lines.
func (c CartSnapshot) TotalPrice() float64 {
	total := 0.0
	for _, it := range c.Items {
		total += it.PriceAtAdd * float64(it.Quantity)
	}
	return total
}

// TotalItems counts cart lines.
func (c CartSnapshot) TotalItems() int {
	return len(c.Items)
}

// AddToCartInput is the body accepted when adding a service to the cart.
type AddToCartInput struct {
	ServiceID     string `json:"serviceId" binding:"required"`
	CategoryID    string `json:"categoryId"`
	SubCategoryID string `json:"subCategoryId"`
	Quantity      int    `json:"quantity"`
}

// CartResponse is the cart view returned to clients.
type CartResponse struct {
	CartSnapshot
	TotalPrice float64 `json:"totalPrice"`
	TotalItems int     `json:"totalItems"`
}

// NewCartResponse builds a response with derived totals.
func NewCartResponse(s CartSnapshot) CartResponse {
	if s.Items == nil {
		s.Items = []CartItem{}
	}
	return CartResponse{CartSnapshot: s, TotalPrice: s.TotalPrice(), TotalItems: s.TotalItems()}
}
