package handlers

import (
	"context"
	"errors"
	"net/http"

	"coolie/models"
	"coolie/services/cart"
	"coolie/services/catalog"
	"coolie/services/location"
	"coolie/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CartService is the cart behaviour the handlers depend on.
type CartService interface {
	Fetch(ctx context.Context, userID string) (models.CartSnapshot, error)
	Add(ctx context.Context, userID, fingerprint string, item models.CartItem) (models.CartSnapshot, error)
	Remove(ctx context.Context, userID, itemID string) (models.CartSnapshot, error)
	UpdateQuantity(ctx context.Context, userID, itemID string, quantity int) (models.CartSnapshot, error)
	Clear(ctx context.Context, userID string) (models.CartSnapshot, error)
}

// CartHandler serves the authenticated user's cart.
type CartHandler struct {
	Carts       CartService
	Invalidator location.FingerprintChecker
	Sessions    *location.Registry
	Logger      *zap.Logger
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// bind links the user to the browse session and returns both.
func (h *CartHandler) bind(c *gin.Context) (string, *location.Session) {
	session := currentSession(c, h.Sessions)
	if session == nil {
		return "", nil
	}
	userID := c.GetString(utils.ContextUserID)
	session.BindUser(userID)
	return userID, session
}

// GetCart handles GET /api/cart. A cart filled at a different location than
// the session's current one is cleared before it is returned.
func (h *CartHandler) GetCart(c *gin.Context) {
	userID, session := h.bind(c)
	if session == nil {
		return
	}
	ctx := c.Request.Context()

	if fp := session.Store.Snapshot().Fingerprint; fp != "" {
		if _, err := h.Invalidator.Check(ctx, userID, fp); err != nil {
			h.fail(c, err)
			return
		}
	}
	snap, err := h.Carts.Fetch(ctx, userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewCartResponse(snap))
}

// AddItem handles POST /api/cart/items. Only services offered at the
// session's location can be added.
func (h *CartHandler) AddItem(c *gin.Context) {
	var body models.AddToCartInput
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body", err)
		return
	}
	userID, session := h.bind(c)
	if session == nil {
		return
	}
	ctx := c.Request.Context()

	fc, err := session.Catalog(ctx)
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "CATALOG_UNAVAILABLE", "failed to load catalog", err)
		return
	}
	var svc *models.Service
	for i := range fc.Services {
		if fc.Services[i].ID == body.ServiceID {
			svc = &fc.Services[i]
			break
		}
	}
	if svc == nil {
		utils.JSONError(c, http.StatusUnprocessableEntity, "SERVICE_UNAVAILABLE", "service is not available at this location", nil)
		return
	}

	loc := session.Store.Snapshot()
	item := models.CartItem{
		ServiceID:     svc.ID,
		CategoryID:    svc.Category.ID,
		SubCategoryID: svc.SubCategory.ID,
		Quantity:      body.Quantity,
		PriceAtAdd:    catalog.PriceFor(loc.Tier, *svc),
	}
	snap, err := h.Carts.Add(ctx, userID, loc.Fingerprint, item)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.NewCartResponse(snap))
}

// RemoveItem handles DELETE /api/cart/items/:itemId.
func (h *CartHandler) RemoveItem(c *gin.Context) {
	userID, session := h.bind(c)
	if session == nil {
		return
	}
	snap, err := h.Carts.Remove(c.Request.Context(), userID, c.Param("itemId"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewCartResponse(snap))
}

// UpdateItem handles PATCH /api/cart/items/:itemId.
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var body updateQuantityRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body", err)
		return
	}
	userID, session := h.bind(c)
	if session == nil {
		return
	}
	snap, err := h.Carts.UpdateQuantity(c.Request.Context(), userID, c.Param("itemId"), body.Quantity)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewCartResponse(snap))
}

// ClearCart handles DELETE /api/cart.
func (h *CartHandler) ClearCart(c *gin.Context) {
	userID, session := h.bind(c)
	if session == nil {
		return
	}
	snap, err := h.Carts.Clear(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, models.NewCartResponse(snap))
}

func (h *CartHandler) fail(c *gin.Context, err error) {
	var mutation *cart.MutationError
	switch {
	case errors.Is(err, cart.ErrInvalidQuantity):
		utils.JSONError(c, http.StatusBadRequest, "INVALID_QUANTITY", err.Error(), nil)
	case errors.Is(err, cart.ErrItemNotFound):
		utils.JSONError(c, http.StatusNotFound, "ITEM_NOT_FOUND", err.Error(), nil)
	case errors.Is(err, cart.ErrLocationUnresolved):
		utils.JSONError(c, http.StatusConflict, "LOCATION_UNRESOLVED", err.Error(), nil)
	case errors.As(err, &mutation):
		utils.JSONError(c, http.StatusBadGateway, "CART_UPDATE_FAILED", "cart service rejected the change", err)
	default:
		h.Logger.Error("CartHandler: request failed", zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, "CART_UNAVAILABLE", "cart service unavailable", err)
	}
}
