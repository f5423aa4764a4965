package routes

import (
	"time"

	"coolie/handlers"
	"coolie/middleware"
	"coolie/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterLocationRoutes registers location resolution endpoints.
func RegisterLocationRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	loc := api.Group("/location")
	{
		loc.GET("", hb.GetLocationHandler)
		loc.POST("/resolve", hb.ResolveLocationHandler)
		loc.PUT("/city", hb.SetCityHandler)
	}
}

// RegisterCatalogRoutes registers the filtered catalog and selection endpoints.
func RegisterCatalogRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	api.GET("/catalog", hb.GetCatalogHandler)
	api.GET("/catalog/services", hb.GetServicesHandler)
	api.GET("/selection", hb.GetSelectionHandler)
	api.PUT("/selection", hb.UpdateSelectionHandler)
}

// RegisterCartRoutes registers cart endpoints. All require a user token.
func RegisterCartRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	cart := api.Group("/cart")
	{
		cart.Use(middleware.JWTAuthUserMiddleware())
		cart.GET("", hb.GetCartHandler)
		cart.DELETE("", hb.ClearCartHandler)
		cart.POST("/items", hb.AddCartItemHandler)
		cart.PATCH("/items/:itemId", hb.UpdateCartItemHandler)
		cart.DELETE("/items/:itemId", hb.RemoveCartItemHandler)
	}
}

// RegisterHealthRoute registers health and metrics endpoints.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle, gatherer prometheus.Gatherer) {
	r.GET("/health", hb.HealthHandler)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, gatherer prometheus.Gatherer, limiter *middleware.RateLimiter) {
	r.Use(utils.ErrorHandler())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", utils.SessionHeader},
		ExposeHeaders:    []string{"Content-Length", utils.SessionHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r, hb, gatherer)

	api := r.Group("/api")
	api.Use(limiter.Middleware(), middleware.SessionMiddleware())
	RegisterLocationRoutes(api, hb)
	RegisterCatalogRoutes(api, hb)
	RegisterCartRoutes(api, hb)
}
