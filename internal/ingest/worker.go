package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"
)

// Worker processes batches of uploaded files for one dataset.
type Worker struct {
	kind      Kind
	config    Config
	repo      *RunRepository
	processor *Processor
}

// NewWorker creates a new ingest worker.
func NewWorker(kind Kind, config Config, db *sql.DB) *Worker {
	return &Worker{
		kind:      kind,
		config:    config,
		repo:      NewRunRepository(db),
		processor: NewProcessor(db),
	}
}

// ProcessBatch runs the given files through the processor, tracking progress
// in the ingest_runs and ingest_file_jobs tables.
func (w *Worker) ProcessBatch(ctx context.Context, files []string) (*Run, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to process")
	}

	log.Printf("[%s] Starting batch processing: %d files", w.kind, len(files))

	run := &Run{
		Dataset:    string(w.kind),
		Status:     StatusPending,
		TotalFiles: len(files),
		StartedAt:  time.Now(),
	}
	if err := w.repo.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to create ingest run: %w", err)
	}

	jobs := make([]*FileJob, len(files))
	for i, file := range files {
		job := &FileJob{
			RunID:    run.ID,
			FilePath: file,
			Status:   FileStatusQueued,
		}
		if err := w.repo.CreateFileJob(ctx, job); err != nil {
			return nil, fmt.Errorf("failed to create file job: %w", err)
		}
		jobs[i] = job
	}

	run.Status = StatusProcessing
	if err := w.repo.UpdateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("failed to update ingest run: %w", err)
	}

	if err := w.processFilesParallel(ctx, run, jobs); err != nil {
		run.Status = StatusFailed
		run.ErrorMessage = err.Error()
		now := time.Now()
		run.CompletedAt = &now
		w.repo.UpdateRun(ctx, run)
		return run, err
	}

	run.Status = StatusCompleted
	now := time.Now()
	run.CompletedAt = &now
	if err := w.repo.UpdateRun(ctx, run); err != nil {
		return run, fmt.Errorf("failed to complete ingest run: %w", err)
	}

	final, err := w.repo.GetRun(ctx, run.ID)
	if err != nil {
		return run, nil
	}

	log.Printf("[%s] Batch processing completed: %d files, %d rows",
		w.kind, final.ProcessedFiles, final.TotalRows)

	return final, nil
}

// processFilesParallel processes files using a worker pool.
func (w *Worker) processFilesParallel(ctx context.Context, run *Run, jobs []*FileJob) error {
	workerCount := w.config.WorkerCount
	if workerCount < 1 {
		workerCount = 1
	}

	jobChan := make(chan *FileJob, len(jobs))
	errChan := make(chan error, workerCount)
	var wg sync.WaitGroup

	for i := 0; i < workerCount; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for job := range jobChan {
				if err := w.processFile(ctx, run, job); err != nil {
					log.Printf("[%s] Worker %d failed to process %s: %v",
						w.kind, workerID, job.FilePath, err)
					select {
					case errChan <- err:
					default:
					}
				}
			}
		}(i)
	}

	for _, job := range jobs {
		select {
		case <-ctx.Done():
			close(jobChan)
			return ctx.Err()
		case jobChan <- job:
		}
	}
	close(jobChan)

	wg.Wait()
	close(errChan)

	if err := <-errChan; err != nil {
		return err
	}

	return nil
}

func (w *Worker) processFile(ctx context.Context, run *Run, job *FileJob) error {
	startTime := time.Now()

	job.Status = FileStatusProcessing
	if err := w.repo.UpdateFileJob(ctx, job); err != nil {
		return err
	}

	rows, err := w.processor.ProcessFile(ctx, w.kind, job.FilePath)
	if err != nil {
		return w.markJobFailed(ctx, job, err)
	}

	job.Status = FileStatusCompleted
	now := time.Now()
	job.ProcessedAt = &now
	if err := w.repo.UpdateFileJob(ctx, job); err != nil {
		return err
	}

	if err := w.repo.IncrementProcessedFiles(ctx, run.ID); err != nil {
		log.Printf("[%s] Warning: failed to increment processed files: %v", w.kind, err)
	}
	if err := w.repo.AddRowCount(ctx, run.ID, rows); err != nil {
		log.Printf("[%s] Warning: failed to add row count: %v", w.kind, err)
	}

	log.Printf("[%s] Completed %s in %v (%d rows)",
		w.kind, job.FilePath, time.Since(startTime), rows)

	return nil
}

func (w *Worker) markJobFailed(ctx context.Context, job *FileJob, err error) error {
	job.Status = FileStatusFailed
	job.ErrorMessage = err.Error()
	job.RetryCount++

	if updateErr := w.repo.UpdateFileJob(ctx, job); updateErr != nil {
		log.Printf("[%s] Failed to update job status: %v", w.kind, updateErr)
	}

	return err
}
