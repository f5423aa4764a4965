package handlers

import (
	"coolie/services/location"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Location endpoints
	ResolveLocationHandler gin.HandlerFunc
	GetLocationHandler     gin.HandlerFunc
	SetCityHandler         gin.HandlerFunc

	// Catalog endpoints
	GetCatalogHandler      gin.HandlerFunc
	GetServicesHandler     gin.HandlerFunc
	GetSelectionHandler    gin.HandlerFunc
	UpdateSelectionHandler gin.HandlerFunc

	// Cart endpoints
	GetCartHandler        gin.HandlerFunc
	AddCartItemHandler    gin.HandlerFunc
	RemoveCartItemHandler gin.HandlerFunc
	UpdateCartItemHandler gin.HandlerFunc
	ClearCartHandler      gin.HandlerFunc

	HealthHandler gin.HandlerFunc
}

// NewHandlerBundle wires the handlers over shared session state.
func NewHandlerBundle(sessions *location.Registry, carts CartService, invalidator location.FingerprintChecker, logger *zap.Logger) *HandlerBundle {
	loc := &LocationHandler{Sessions: sessions, Logger: logger}
	cat := &CatalogHandler{Sessions: sessions, Logger: logger}
	crt := &CartHandler{Carts: carts, Invalidator: invalidator, Sessions: sessions, Logger: logger}

	return &HandlerBundle{
		ResolveLocationHandler: loc.ResolveLocation,
		GetLocationHandler:     loc.GetLocation,
		SetCityHandler:         loc.SetCity,

		GetCatalogHandler:      cat.GetCatalog,
		GetServicesHandler:     cat.GetServices,
		GetSelectionHandler:    cat.GetSelection,
		UpdateSelectionHandler: cat.UpdateSelection,

		GetCartHandler:        crt.GetCart,
		AddCartItemHandler:    crt.AddItem,
		RemoveCartItemHandler: crt.RemoveItem,
		UpdateCartItemHandler: crt.UpdateItem,
		ClearCartHandler:      crt.ClearCart,

		HealthHandler: Health,
	}
}
