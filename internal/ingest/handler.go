package ingest

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/hvaldivia/repuestos-analytics/internal/cache"
	"github.com/hvaldivia/repuestos-analytics/internal/storage"
)

const maxUploadBytes = 64 << 20 // 64 MiB

// Handler exposes the upload API over HTTP.
type Handler struct {
	config    Config
	db        *sql.DB
	repo      *RunRepository
	archive   storage.ObjectStorage
	forecasts cache.ForecastCache
}

// NewHandler creates an upload handler. archive may be nil when raw-file
// archival is disabled; forecasts may be nil when no forecast cache is
// configured.
func NewHandler(config Config, db *sql.DB, archive storage.ObjectStorage, forecasts cache.ForecastCache) *Handler {
	return &Handler{
		config:    config,
		db:        db,
		repo:      NewRunRepository(db),
		archive:   archive,
		forecasts: forecasts,
	}
}

func (h *Handler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/ingest/{dataset}", h.Upload).Methods("POST")
	router.HandleFunc("/api/ingest/runs", h.ListRuns).Methods("GET")
	router.HandleFunc("/api/ingest/runs/{id}", h.GetRun).Methods("GET")
}

// Upload accepts one or more CSV files as multipart form data and processes
// them into the database for the dataset named in the URL.
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	kind, ok := ParseKind(mux.Vars(r)["dataset"])
	if !ok {
		http.Error(w, "unknown dataset", http.StatusNotFound)
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		http.Error(w, "invalid multipart upload", http.StatusBadRequest)
		return
	}

	uploads := r.MultipartForm.File["file"]
	if len(uploads) == 0 {
		http.Error(w, "file field is required", http.StatusBadRequest)
		return
	}

	spoolDir := filepath.Join(h.config.SpoolDir, string(kind))
	if err := os.MkdirAll(spoolDir, 0o755); err != nil {
		http.Error(w, "failed to prepare spool directory", http.StatusInternalServerError)
		return
	}

	var files []string
	for _, header := range uploads {
		path, err := h.spoolUpload(r, header, spoolDir, kind)
		if err != nil {
			log.Printf("Failed to spool upload %s: %v", header.Filename, err)
			http.Error(w, fmt.Sprintf("failed to store %s", header.Filename), http.StatusInternalServerError)
			return
		}
		files = append(files, path)
	}

	worker := NewWorker(kind, h.config, h.db)
	run, err := worker.ProcessBatch(r.Context(), files)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]interface{}{
			"error": err.Error(),
			"run":   run,
		})
		return
	}

	h.invalidateForecasts(r.Context(), kind)

	writeJSON(w, http.StatusOK, run)
}

// invalidateForecasts drops cached forecast results after a sales batch
// lands; stale predictions would otherwise survive until their TTL. Other
// datasets do not feed the model.
func (h *Handler) invalidateForecasts(ctx context.Context, kind Kind) {
	if h.forecasts == nil || kind != KindSales {
		return
	}
	if err := h.forecasts.InvalidateAll(ctx); err != nil {
		log.Printf("Failed to invalidate forecast cache: %v", err)
	}
}

// spoolUpload writes one uploaded file to the spool directory and, when an
// archive is configured, keeps a timestamped copy in object storage.
func (h *Handler) spoolUpload(r *http.Request, header *multipart.FileHeader, spoolDir string, kind Kind) (string, error) {
	src, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open upload: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxUploadBytes+1))
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	if len(data) > maxUploadBytes {
		return "", fmt.Errorf("upload exceeds %d bytes", maxUploadBytes)
	}

	name := filepath.Base(header.Filename)
	destPath := filepath.Join(spoolDir, name)
	if err := os.WriteFile(destPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write spool file: %w", err)
	}

	if h.archive != nil {
		key := fmt.Sprintf("%s/%s/%s", kind, time.Now().Format("2006-01-02"), name)
		if err := h.archive.UploadObject(r.Context(), key, bytes.NewReader(data), int64(len(data))); err != nil {
			// Archival is best effort, ingestion proceeds from the spool copy.
			log.Printf("Failed to archive %s: %v", key, err)
		}
	}

	return destPath, nil
}

func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	runs, err := h.repo.RecentRuns(r.Context(), limit)
	if err != nil {
		http.Error(w, "failed to list runs", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"runs": runs})
}

func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		http.Error(w, "invalid run id", http.StatusBadRequest)
		return
	}

	run, err := h.repo.GetRun(r.Context(), id)
	if err != nil {
		if err == sql.ErrNoRows {
			http.Error(w, "run not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to fetch run", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}
