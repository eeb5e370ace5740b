package app

import (
	"context"
	"fmt"
	"fxcache/internal/platform/db"
	httpserver "fxcache/internal/platform/http"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"fxcache/internal/adapters/cache"
	"fxcache/internal/adapters/httpclient"
	"fxcache/internal/adapters/postgres"
	"fxcache/internal/api"
	"fxcache/internal/config"
	"fxcache/internal/rate"
	"fxcache/internal/rate/handler"

	"github.com/sirupsen/logrus"
)

// Run wires the application components, starts HTTP server and the
// background refresh scheduler
func Run() error {
	appCfg, err := config.Init()
	if err != nil {
		return err
	}
	// Logger
	logrus.SetOutput(os.Stdout)
	cfgLevel := appCfg.Logging.Level
	if parsedLvl, parseErr := logrus.ParseLevel(cfgLevel); parseErr != nil {
		logrus.SetLevel(logrus.InfoLevel)
	} else {
		logrus.SetLevel(parsedLvl)
	}
	logrus.Info("✅ Config initialization successful")

	// Root context bound to OS signals for graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Bounded context for startup operations (DB connect, schema bootstrap)
	startupCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	// Schema bootstrap
	if err = db.Migrate(startupCtx, appCfg.DbServer); err != nil {
		logrus.WithError(err).Error("Error bootstrapping schema")
		return err
	}
	logrus.Info("✅ Schema bootstrap successful")

	// DB pool
	pool, err := db.CreatePoolAndPing(startupCtx, appCfg.DbServer)
	if err != nil {
		logrus.WithError(err).Error("Error connecting to db")
		return err
	}
	defer pool.Close()
	logrus.Info("✅ Postgres connection successful")

	// Base HTTP client (configurable timeout)
	httpTimeout := time.Duration(appCfg.HTTPClient.TimeoutSeconds) * time.Second
	if httpTimeout <= 0 {
		httpTimeout = 10 * time.Second
	}
	baseHTTPClient := &http.Client{Timeout: httpTimeout}

	// External client
	ratesAPIBaseURL := strings.TrimSuffix(appCfg.RatesAPI.BaseURL, "/")
	if ratesAPIBaseURL == "" {
		return fmt.Errorf("rates api base url is required")
	}
	rateClient := httpclient.NewExchangeRateClient(baseHTTPClient, ratesAPIBaseURL)

	// Repositories and cache
	rateRepo := postgres.NewRateRepository(pool)
	ratesCache, err := cache.NewRatesCache(appCfg.Cache.MaxItems)
	if err != nil {
		logrus.WithError(err).Error("Failed to create rates cache")
		return err
	}
	defer ratesCache.Close()

	// Service
	freshnessWindow := time.Duration(appCfg.Cache.FreshnessMinutes) * time.Minute
	rateService := rate.NewService(rateRepo, rateClient, ratesCache, freshnessWindow)

	// Background refresh for configured bases
	if len(appCfg.Refresh.Bases) > 0 {
		refreshInterval := time.Duration(appCfg.Refresh.IntervalSeconds) * time.Second
		scheduler := rate.NewRefreshScheduler(rateService, appCfg.Refresh.Bases, refreshInterval)
		// Ensure scheduler stops before DB pool closes
		defer func() {
			if shutDownErr := scheduler.Shutdown(); shutDownErr != nil {
				logrus.Errorf("Scheduler shutdown error: %v", shutDownErr)
			}
		}()
		// Start scheduler tied to root context
		if startErr := scheduler.Start(ctx); startErr != nil {
			logrus.WithError(startErr).Error("Failed to start scheduler")
			return startErr
		}
		logrus.Info("✅ Scheduler activation successful")
	}

	// Handlers and router
	rateHandler := handler.NewRateHandler(rateService)
	router := api.NewRouter(rateHandler)

	logrus.Info("Starting http server")
	// Block until context is canceled, then perform graceful shutdown.
	if serverErr := httpserver.Start(ctx, appCfg.HTTPServer, router); serverErr != nil {
		// Cancel the root context to stop scheduler and other in-flight work
		stop()
		logrus.Errorf("HTTP server error: %v", serverErr)
		return serverErr
	}
	return nil
}
