package handlers

import (
	"errors"
	"net/http"

	"coolie/models"
	"coolie/services/geo"
	"coolie/services/location"
	"coolie/services/pricing"
	"coolie/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LocationHandler serves the session's resolved location and price tier.
type LocationHandler struct {
	Sessions *location.Registry
	Logger   *zap.Logger
}

type locationResponse struct {
	models.LocationSnapshot
	Message string `json:"message,omitempty"`
}

type setCityRequest struct {
	City      string   `json:"city" binding:"required"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// ResolveLocation handles POST /api/location/resolve.
func (h *LocationHandler) ResolveLocation(c *gin.Context) {
	var body models.Coordinates
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body", err)
		return
	}
	session := currentSession(c, h.Sessions)
	if session == nil {
		return
	}

	snap, err := session.Store.ResolveLocation(c.Request.Context(), body.Latitude, body.Longitude)
	h.respond(c, snap, err)
}

// GetLocation handles GET /api/location.
func (h *LocationHandler) GetLocation(c *gin.Context) {
	session := currentSession(c, h.Sessions)
	if session == nil {
		return
	}
	c.JSON(http.StatusOK, locationResponse{LocationSnapshot: session.Store.Snapshot()})
}

// SetCity handles PUT /api/location/city. Coordinates, when sent, re-resolve
// pricing at the chosen city.
func (h *LocationHandler) SetCity(c *gin.Context) {
	var body setCityRequest
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "INVALID_BODY", "invalid request body", err)
		return
	}
	if (body.Latitude == nil) != (body.Longitude == nil) {
		utils.JSONError(c, http.StatusBadRequest, "INVALID_BODY", "latitude and longitude must be sent together", nil)
		return
	}
	session := currentSession(c, h.Sessions)
	if session == nil {
		return
	}

	var coords *models.Coordinates
	if body.Latitude != nil {
		coords = &models.Coordinates{Latitude: *body.Latitude, Longitude: *body.Longitude}
	}
	snap, err := session.Store.SetCity(c.Request.Context(), body.City, coords)
	h.respond(c, snap, err)
}

func (h *LocationHandler) respond(c *gin.Context, snap models.LocationSnapshot, err error) {
	var transport *pricing.TransportError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, locationResponse{LocationSnapshot: snap})
	case errors.Is(err, pricing.ErrPricingNotFound):
		c.JSON(http.StatusOK, locationResponse{LocationSnapshot: snap, Message: err.Error()})
	case errors.Is(err, location.ErrEmptyCity):
		utils.JSONError(c, http.StatusBadRequest, "INVALID_CITY", err.Error(), nil)
	case errors.Is(err, geo.ErrInvalidCoordinates):
		utils.JSONError(c, http.StatusBadRequest, "INVALID_COORDINATES", "invalid coordinates", err)
	case errors.Is(err, geo.ErrNoGeocodeResult):
		utils.JSONError(c, http.StatusUnprocessableEntity, "NO_GEOCODE_RESULT", "could not determine your location", err)
	case errors.Is(err, location.ErrSuperseded):
		utils.JSONError(c, http.StatusConflict, "SUPERSEDED", "a newer location request replaced this one", err)
	case errors.As(err, &transport):
		utils.JSONError(c, http.StatusBadGateway, "PRICING_UNAVAILABLE", "pricing service unavailable", err)
	default:
		h.Logger.Error("LocationHandler: resolve failed", zap.Error(err))
		utils.JSONError(c, http.StatusBadGateway, "LOCATION_FAILED", "failed to resolve location", err)
	}
}
