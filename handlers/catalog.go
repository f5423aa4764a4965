package handlers

import (
	"errors"
	"net/http"

	"coolie/models"
	"coolie/services/location"
	"coolie/services/selection"
	"coolie/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NotServingMessage is shown when nothing in the catalog is priced at the
// session's location.
const NotServingMessage = "We are not providing services at this location."

const CatalogUnavailableMessage = "No services available right now. Please try again."

// CatalogHandler serves the location-filtered catalog and the browse selection.
type CatalogHandler struct {
	Sessions *location.Registry
	Logger   *zap.Logger
}

type catalogResponse struct {
	models.LocationFilteredCatalog
	Message string `json:"message,omitempty"`
}

type servicesResponse struct {
	Selection models.Selection `json:"selection"`
	Services  []models.Service `json:"services"`
}

// GetCatalog handles GET /api/catalog.
func (h *CatalogHandler) GetCatalog(c *gin.Context) {
	session := currentSession(c, h.Sessions)
	if session == nil {
		return
	}
	fc, err := session.Catalog(c.Request.Context())
	if err != nil {
		// A failed fetch degrades to an empty catalog.
		h.Logger.Warn("CatalogHandler: catalog fetch failed", zap.String("session", session.ID), zap.Error(err))
		c.JSON(http.StatusOK, catalogResponse{
			LocationFilteredCatalog: models.LocationFilteredCatalog{
				Source:        session.Store.Snapshot().Tier.Source,
				Categories:    []models.Category{},
				SubCategories: []models.SubCategory{},
				Services:      []models.Service{},
			},
			Message: CatalogUnavailableMessage,
		})
		return
	}
	resp := catalogResponse{LocationFilteredCatalog: fc}
	if fc.Empty() {
		resp.Message = NotServingMessage
	}
	c.JSON(http.StatusOK, resp)
}

// GetServices handles GET /api/catalog/services.
func (h *CatalogHandler) GetServices(c *gin.Context) {
	session := currentSession(c, h.Sessions)
	if session == nil {
		return
	}
	sel, services, err := session.Services(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "CATALOG_UNAVAILABLE", "failed to load catalog", err)
		return
	}
	c.JSON(http.StatusOK, servicesResponse{Selection: sel, Services: services})
}

// GetSelection handles GET /api/selection.
func (h *CatalogHandler) GetSelection(c *gin.Context) {
	session := currentSession(c, h.Sessions)
	if session == nil {
		return
	}
	sel, err := session.Selection(c.Request.Context())
	if err != nil {
		utils.JSONError(c, http.StatusBadGateway, "CATALOG_UNAVAILABLE", "failed to load catalog", err)
		return
	}
	c.JSON(http.StatusOK, sel)
}

// UpdateSelection handles PUT /api/selection.
func (h *CatalogHandler) UpdateSelection(c *gin.Context) {
	var body models.SelectionInput
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body", err)
		return
	}
	session := currentSession(c, h.Sessions)
	if session == nil {
		return
	}

	sel, err := session.UpdateSelection(c.Request.Context(), body)
	switch {
	case err == nil:
		c.JSON(http.StatusOK, sel)
	case errors.Is(err, selection.ErrUnknownCategory),
		errors.Is(err, selection.ErrUnknownSubCategory),
		errors.Is(err, selection.ErrUnknownVariant),
		errors.Is(err, selection.ErrNoCategorySelected):
		utils.JSONError(c, http.StatusUnprocessableEntity, "INVALID_SELECTION", err.Error(), nil)
	default:
		utils.JSONError(c, http.StatusBadGateway, "CATALOG_UNAVAILABLE", "failed to load catalog", err)
	}
}
