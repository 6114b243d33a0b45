// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hvaldivia/repuestos-analytics/internal/api"
	"github.com/hvaldivia/repuestos-analytics/internal/auth"
	"github.com/hvaldivia/repuestos-analytics/internal/cache"
	"github.com/hvaldivia/repuestos-analytics/internal/config"
	"github.com/hvaldivia/repuestos-analytics/internal/loader"
	"github.com/hvaldivia/repuestos-analytics/internal/repository"
	"github.com/hvaldivia/repuestos-analytics/internal/repository/postgres"
	"github.com/hvaldivia/repuestos-analytics/internal/service"
	"github.com/hvaldivia/repuestos-analytics/pkg/logger"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Wire the data source and user store
	source, users, cleanup, err := buildDataSource(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize data source: %v", err)
	}
	defer cleanup()

	// Initialize forecast cache
	forecastCache, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("Falling back to no-op forecast cache")
		forecastCache = cache.NewNoopForecastCache()
	}

	// Initialize services
	authService, err := auth.NewService(users, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize auth service: %v", err)
	}
	analyticsService := service.NewAnalyticsService(source, forecastCache, cfg.Forecast)

	router := api.NewRouter(&api.Services{
		Analytics: analyticsService,
		Auth:      authService,
	}, cfg.Server.AllowedOrigins)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Str("source", cfg.Source.Kind).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}

// buildDataSource wires either the Postgres repositories or the in-memory CSV
// source, depending on configuration.
func buildDataSource(cfg *config.Config) (repository.DataSource, repository.UserRepository, func(), error) {
	switch cfg.Source.Kind {
	case "csv":
		source, err := loader.Open(cfg.Source.SalesPath, cfg.Source.StockPath, cfg.Source.CatalogPath)
		if err != nil {
			return nil, nil, nil, err
		}
		users, err := loader.OpenUsers(cfg.Source.UsersPath)
		if err != nil {
			return nil, nil, nil, err
		}
		return source, users, func() {}, nil
	default:
		db, err := postgres.NewDB(&cfg.Database)
		if err != nil {
			return nil, nil, nil, err
		}
		source := postgres.NewAnalyticsRepository(db.DB)
		users := postgres.NewUserRepository(db.DB)
		return source, users, func() { db.Close() }, nil
	}
}
