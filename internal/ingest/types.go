package ingest

import "time"

// Kind identifies which dataset an uploaded file belongs to.
type Kind string

const (
	KindSales   Kind = "sales"
	KindStock   Kind = "stock"
	KindCatalog Kind = "catalog"
	KindUsers   Kind = "users"
)

// ParseKind validates a dataset name coming from the upload URL.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindSales, KindStock, KindCatalog, KindUsers:
		return Kind(s), true
	}
	return "", false
}

// Run statuses
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// File job statuses
const (
	FileStatusQueued     = "queued"
	FileStatusProcessing = "processing"
	FileStatusCompleted  = "completed"
	FileStatusFailed     = "failed"
)

// Run tracks one ingest batch for a dataset.
type Run struct {
	ID             int64      `json:"id"`
	Dataset        string     `json:"dataset"`
	Status         string     `json:"status"`
	TotalFiles     int        `json:"total_files"`
	ProcessedFiles int        `json:"processed_files"`
	TotalRows      int        `json:"total_rows"`
	StartedAt      time.Time  `json:"started_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	ErrorMessage   string     `json:"error_message,omitempty"`
}

// FileJob tracks one uploaded file within a run.
type FileJob struct {
	ID           int64      `json:"id"`
	RunID        int64      `json:"run_id"`
	FilePath     string     `json:"file_path"`
	Status       string     `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	ProcessedAt  *time.Time `json:"processed_at,omitempty"`
	RetryCount   int        `json:"retry_count"`
}

// Config controls batch processing.
type Config struct {
	WorkerCount   int
	RetryAttempts int
	SpoolDir      string
}

// DefaultConfig returns sensible batch settings.
func DefaultConfig() Config {
	return Config{
		WorkerCount:   4,
		RetryAttempts: 3,
		SpoolDir:      "data/incoming",
	}
}
