package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/urfave/cli/v2"

	"github.com/hvaldivia/repuestos-analytics/internal/ingest"
)

func newSeedCommand() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Load local CSV files into Postgres",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "db-url",
				Usage:    "Database connection string",
				Required: true,
				EnvVars:  []string{"DATABASE_URL"},
			},
			&cli.StringFlag{
				Name:  "dataset",
				Usage: "Dataset to load: sales, stock, catalog or users",
			},
			&cli.StringFlag{
				Name:  "dir",
				Usage: "Directory containing the CSV files for the dataset",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of concurrent file workers",
				Value: 4,
			},
		},
		Action: runSeed,
	}
}

func runSeed(c *cli.Context) error {
	kind, ok := ingest.ParseKind(c.String("dataset"))
	if !ok {
		return fmt.Errorf("unknown dataset %q (expected sales, stock, catalog or users)", c.String("dataset"))
	}

	dir := c.String("dir")
	if dir == "" {
		return fmt.Errorf("--dir is required")
	}

	files, err := listCSVFiles(dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no CSV files found in %s", dir)
	}

	db, err := sql.Open("pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	cfg := ingest.DefaultConfig()
	cfg.WorkerCount = c.Int("workers")

	worker := ingest.NewWorker(kind, cfg, db)
	run, err := worker.ProcessBatch(c.Context, files)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}

	log.Printf("Seeded %d files (%d rows) for dataset %s", run.ProcessedFiles, run.TotalRows, kind)
	return nil
}

func listCSVFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)

	return files, nil
}
