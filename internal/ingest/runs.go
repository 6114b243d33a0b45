package ingest

import (
	"context"
	"database/sql"
)

// RunRepository handles database operations for ingest run tracking.
type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// CreateRun creates a new ingest run record.
func (r *RunRepository) CreateRun(ctx context.Context, run *Run) error {
	query := `
		INSERT INTO ingest_runs (
			dataset, status, total_files, processed_files, total_rows, started_at
		) VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx, query,
		run.Dataset, run.Status, run.TotalFiles,
		run.ProcessedFiles, run.TotalRows, run.StartedAt,
	).Scan(&run.ID)

	return err
}

// UpdateRun updates an existing ingest run.
func (r *RunRepository) UpdateRun(ctx context.Context, run *Run) error {
	query := `
		UPDATE ingest_runs
		SET status = $1, processed_files = $2, total_rows = $3,
		    completed_at = $4, error_message = $5
		WHERE id = $6
	`

	_, err := r.db.ExecContext(
		ctx, query,
		run.Status, run.ProcessedFiles, run.TotalRows,
		run.CompletedAt, run.ErrorMessage, run.ID,
	)

	return err
}

// GetRun retrieves an ingest run by ID.
func (r *RunRepository) GetRun(ctx context.Context, id int64) (*Run, error) {
	query := `
		SELECT id, dataset, status, total_files, processed_files,
		       total_rows, started_at, completed_at, error_message
		FROM ingest_runs
		WHERE id = $1
	`

	run := &Run{}
	var errMsg sql.NullString
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&run.ID, &run.Dataset, &run.Status, &run.TotalFiles,
		&run.ProcessedFiles, &run.TotalRows, &run.StartedAt,
		&run.CompletedAt, &errMsg,
	)
	if err != nil {
		return nil, err
	}
	run.ErrorMessage = errMsg.String

	return run, nil
}

// RecentRuns retrieves the most recent ingest runs, newest first.
func (r *RunRepository) RecentRuns(ctx context.Context, limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, dataset, status, total_files, processed_files,
		       total_rows, started_at, completed_at, error_message
		FROM ingest_runs
		ORDER BY started_at DESC
		LIMIT $1
	`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run := &Run{}
		var errMsg sql.NullString
		err := rows.Scan(
			&run.ID, &run.Dataset, &run.Status, &run.TotalFiles,
			&run.ProcessedFiles, &run.TotalRows, &run.StartedAt,
			&run.CompletedAt, &errMsg,
		)
		if err != nil {
			return nil, err
		}
		run.ErrorMessage = errMsg.String
		runs = append(runs, run)
	}

	return runs, rows.Err()
}

// CreateFileJob creates a new file job record.
func (r *RunRepository) CreateFileJob(ctx context.Context, job *FileJob) error {
	query := `
		INSERT INTO ingest_file_jobs (
			run_id, file_path, status, error_message
		) VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.db.QueryRowContext(
		ctx, query,
		job.RunID, job.FilePath, job.Status, job.ErrorMessage,
	).Scan(&job.ID)

	return err
}

// UpdateFileJob updates an existing file job.
func (r *RunRepository) UpdateFileJob(ctx context.Context, job *FileJob) error {
	query := `
		UPDATE ingest_file_jobs
		SET status = $1, error_message = $2, processed_at = $3, retry_count = $4
		WHERE id = $5
	`

	_, err := r.db.ExecContext(
		ctx, query,
		job.Status, job.ErrorMessage, job.ProcessedAt, job.RetryCount, job.ID,
	)

	return err
}

// IncrementProcessedFiles atomically increments the processed file count.
func (r *RunRepository) IncrementProcessedFiles(ctx context.Context, runID int64) error {
	query := `
		UPDATE ingest_runs
		SET processed_files = processed_files + 1
		WHERE id = $1
	`

	_, err := r.db.ExecContext(ctx, query, runID)
	return err
}

// AddRowCount atomically adds to the total row count.
func (r *RunRepository) AddRowCount(ctx context.Context, runID int64, count int) error {
	query := `
		UPDATE ingest_runs
		SET total_rows = total_rows + $1
		WHERE id = $2
	`

	_, err := r.db.ExecContext(ctx, query, count, runID)
	return err
}
