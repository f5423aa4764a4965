package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"coolie/config"
	"coolie/cron"
	"coolie/database"
	cartRepo "coolie/database/repository/cart"
	"coolie/handlers"
	"coolie/middleware"
	"coolie/routes"
	"coolie/services/cart"
	"coolie/services/catalog"
	"coolie/services/geo"
	"coolie/services/location"
	"coolie/services/pricing"
	"coolie/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()
	if err := config.Validate(); err != nil {
		logger.Sugar().Fatalf("main: invalid configuration: %v", err)
	}

	database.InitDB()
	utils.InitRedis()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	httpClient := &http.Client{Timeout: config.AppConfig.HTTPTimeout}

	// upstream clients.
	geoResolver := geo.NewGoogleResolver(config.AppConfig.GeocodeURL, config.AppConfig.GoogleAPIKey, httpClient, logger)
	pricingClient := pricing.NewHTTPClient(config.AppConfig.CoreAPIURL, httpClient)
	catalogClient := catalog.NewHTTPClient(config.AppConfig.CoreAPIURL, httpClient)
	cartClient := cart.NewHTTPClient(config.AppConfig.CartAPIURL, httpClient)

	// services.
	tierResolver := pricing.NewResolver(pricingClient, logger, pricing.NewMetrics(registry))
	catalogService := catalog.NewService(catalogClient,
		catalog.NewRedisCache(utils.GetCacheClient(), config.AppConfig.CatalogCacheTTL), logger)

	carts := cartRepo.NewMongoCartRepo(database.DB())
	invalidator := cart.NewInvalidator(cartClient, carts, logger)
	cartService := cart.NewService(cartClient, carts, invalidator, logger)

	sessions := location.NewRegistry(
		geoResolver,
		tierResolver,
		location.NewRedisPersister(utils.GetSessionClient(), config.AppConfig.SessionTTL),
		catalogService,
		logger,
		location.CartInvalidationHook(invalidator, config.AppConfig.HTTPTimeout, logger),
	)

	location.RegisterMetrics(registry, sessions)

	// Warm the catalog so the first request does not pay for it.
	warmCtx, warmCancel := context.WithTimeout(context.Background(), config.AppConfig.HTTPTimeout)
	if _, _, err := catalogService.Current(warmCtx); err != nil {
		logger.Warn("main: initial catalog load failed", zap.Error(err))
	}
	warmCancel()

	limiter := middleware.NewRateLimiter(config.AppConfig.MaxRequestsPerMin)

	worker, err := cron.InitCatalogWorker(catalogService, logger, sessions, limiter)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to start background worker: %v", err)
	}

	healthCtx, stopHealth := context.WithCancel(context.Background())
	utils.StartHealthMonitor(healthCtx, []*redis.Client{utils.GetCacheClient(), utils.GetSessionClient()}, database.MongoClient)

	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(gin.Logger())

	handlerBundle := handlers.NewHandlerBundle(sessions, cartService, invalidator, logger)
	routes.RegisterRoutes(router, handlerBundle, registry, limiter)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	worker.Shutdown()
	stopHealth()
	if err := database.Close(ctx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
