package handlers

import (
	"net/http"

	"coolie/utils"

	"github.com/gin-gonic/gin"
)

// Health handles GET /health. It reports 503 once a dependency probe fails.
func Health(c *gin.Context) {
	status := utils.GetHealthStatus()
	code := http.StatusOK
	state := "ok"
	if !status.CheckedAt.IsZero() && !status.Healthy() {
		code = http.StatusServiceUnavailable
		state = "degraded"
	}
	c.JSON(code, gin.H{"status": state, "message": "Hi, I'm Coolie", "dependencies": status})
}
