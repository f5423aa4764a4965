package handlers

import (
	"net/http"

	"coolie/services/location"
	"coolie/utils"

	"github.com/gin-gonic/gin"
)

// currentSession resolves the browse session set by SessionMiddleware. It
// writes a 400 and returns nil when none is present.
func currentSession(c *gin.Context, sessions *location.Registry) *location.Session {
	id := c.GetString(utils.ContextSessionID)
	if id == "" {
		utils.JSONError(c, http.StatusBadRequest, "SESSION_REQUIRED", "missing session", nil)
		return nil
	}
	return sessions.Get(c.Request.Context(), id)
}
