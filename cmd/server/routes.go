package main

import (
	"net/http"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dealinefunnel/countdown-service/internal/cache"
	"github.com/dealinefunnel/countdown-service/internal/config"
	"github.com/dealinefunnel/countdown-service/internal/database"
	"github.com/dealinefunnel/countdown-service/internal/endpoint"
	"github.com/dealinefunnel/countdown-service/internal/metrics"
	"github.com/dealinefunnel/countdown-service/internal/middleware"
	"github.com/dealinefunnel/countdown-service/internal/repository"
	"github.com/dealinefunnel/countdown-service/internal/service"
	"github.com/dealinefunnel/countdown-service/internal/transport"
)

// Routes assembles the full HTTP surface: Postgres repositories wrapped in
// cache and instrumentation, services wrapped in logging and metrics
// middleware, go-kit endpoints, and the outer HTTP middleware chain. The
// returned cleanup closes the database and stops background monitors.
func Routes(log kitlog.Logger) (http.Handler, func(), error) {
	cfg := config.AppConfigInstance

	db, closeDB, err := database.Initialize(cfg.DatabaseConfig, cfg.DatabaseConfig.MigrationsPath)
	if err != nil {
		return nil, nil, err
	}

	m := metrics.NewPrometheusMetrics()

	campaignRepo := repository.NewPostgresCampaignRepository(db)
	visitorRepo := repository.NewPostgresVisitorRepository(db)

	cacheConfig := config.GetCacheConfig()
	hybridCache, err := cache.NewHybridCache(cacheConfig)
	if err != nil {
		// Cache is an optimization; serve straight from Postgres without it
		log.Log("msg", "cache unavailable, reading campaigns directly", "error", err)
	} else {
		campaignRepo = cache.NewCachedCampaignRepository(campaignRepo, hybridCache, cacheConfig.DefaultTTL)
	}

	campaignRepo = repository.NewInstrumentedCampaignRepository(campaignRepo, m)
	visitorRepo = repository.NewInstrumentedVisitorRepository(visitorRepo, m)

	var deadlineSvc service.VisitorDeadlineService = service.NewDeadlineService(campaignRepo, visitorRepo)
	deadlineSvc = middleware.NewLoggingMiddleware(log)(deadlineSvc)
	deadlineSvc = middleware.NewServiceMetricsMiddleware(m)(deadlineSvc)

	campaignSvc := service.NewCampaignService(campaignRepo)

	visitorEndpoints := endpoint.MakeVisitorEndpoints(deadlineSvc)
	campaignEndpoints := endpoint.MakeCampaignEndpoints(campaignSvc)

	handler := transport.NewHTTPHandler(visitorEndpoints, campaignEndpoints, log)

	// Outer chain runs top-down: request id, metrics, CORS, router
	chained := middleware.NewCORSMiddleware(cfg.GeneralConfig.AllowedOrigin).Middleware(handler)
	chained = middleware.NewMetricsMiddleware(m).Middleware(chained)
	chained = middleware.NewRequestIDMiddleware().Middleware(chained)

	root := http.NewServeMux()
	root.Handle("/metrics", promhttp.Handler())
	root.Handle("/", chained)

	stopMonitor := startHealthMonitor(db, m)
	cleanup := func() {
		stopMonitor()
		if hybridCache != nil {
			hybridCache.Close()
		}
		closeDB()
	}

	return root, cleanup, nil
}

// startHealthMonitor keeps the database health gauge fresh
func startHealthMonitor(db *database.DB, m *metrics.Metrics) func() {
	done := make(chan struct{})
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				m.SetHealthCheckStatus("database", db.HealthCheck() == nil)
			case <-done:
				return
			}
		}
	}()
	return func() { close(done) }
}
