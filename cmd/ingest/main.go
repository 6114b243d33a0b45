// cmd/ingest/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"github.com/hvaldivia/repuestos-analytics/internal/cache"
	"github.com/hvaldivia/repuestos-analytics/internal/config"
	"github.com/hvaldivia/repuestos-analytics/internal/ingest"
	"github.com/hvaldivia/repuestos-analytics/internal/repository/postgres"
	"github.com/hvaldivia/repuestos-analytics/internal/storage"
)

func main() {
	// Load environment variables from .env file if it exists
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Fresh sales make cached forecasts stale, so the ingest server gets the
	// same cache the API serves from. A disabled cache is a harmless noop.
	forecasts, err := cache.NewForecastCache(cfg.Cache)
	if err != nil {
		log.Printf("Forecast cache unavailable, continuing without invalidation: %v", err)
		forecasts = cache.NewNoopForecastCache()
	}

	// Raw-file archival is optional
	var archive storage.ObjectStorage
	if cfg.Storage.Enabled {
		client, err := storage.NewMinioClient(cfg.Storage)
		if err != nil {
			log.Fatalf("Failed to initialize object storage: %v", err)
		}
		if err := client.EnsureBucket(context.Background()); err != nil {
			log.Fatalf("Failed to prepare archive bucket: %v", err)
		}
		archive = client
	}

	ingestCfg := ingest.DefaultConfig()
	ingestCfg.SpoolDir = cfg.App.UploadDir

	r := mux.NewRouter()

	handler := ingest.NewHandler(ingestCfg, db.DB.DB, archive, forecasts)
	handler.RegisterRoutes(r)

	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET")

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Ingest server starting on %s\n", addr)
	log.Fatal(http.ListenAndServe(addr, r))
}
