package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/hvaldivia/repuestos-analytics/internal/analytics"
	"github.com/hvaldivia/repuestos-analytics/internal/domain"
	"github.com/hvaldivia/repuestos-analytics/internal/forecast"
	"github.com/hvaldivia/repuestos-analytics/internal/loader"
)

func newForecastCommand() *cli.Command {
	flags := []cli.Flag{
		newSalesFlag(),
		newOutDirFlag(),
		newStoreFlag(),
		&cli.StringFlag{
			Name:  "model",
			Usage: "Model family: gradient_boosted or random_forest",
			Value: string(forecast.GradientBoosted),
		},
		&cli.IntFlag{
			Name:  "estimators",
			Usage: "Number of trees in the ensemble",
			Value: 100,
		},
		&cli.Int64Flag{
			Name:  "seed",
			Usage: "Random seed for the train/holdout split",
			Value: 42,
		},
		&cli.BoolFlag{
			Name:  "no-lag",
			Usage: "Train without lag and rolling-mean features",
		},
	}
	flags = append(flags, newWindowFlags()...)

	return &cli.Command{
		Name:   "forecast",
		Usage:  "Train a demand model and predict next-month quantities",
		Flags:  flags,
		Action: runForecast,
	}
}

func runForecast(c *cli.Context) error {
	filter, err := parseFilterFlags(c)
	if err != nil {
		return err
	}

	sales, err := loader.LoadSales(c.String("sales"))
	if err != nil {
		return fmt.Errorf("failed to load sales: %w", err)
	}

	cfg := forecast.DefaultConfig()
	cfg.ModelKind = forecast.ModelKind(c.String("model"))
	cfg.NEstimators = c.Int("estimators")
	cfg.Seed = c.Int64("seed")
	cfg.UseLagFeatures = !c.Bool("no-lag")

	set := analytics.BuildFeatures(sales, filter)
	if len(set.Rows) == 0 {
		return errors.New("no sales history in the requested window")
	}

	train, holdout := forecast.Split(set.Rows, cfg)
	model, err := forecast.Train(train, cfg)
	if err != nil {
		return fmt.Errorf("training failed: %w", err)
	}

	metrics := forecast.Evaluate(model, holdout)
	log.Printf("Holdout metrics: MAE=%.4f RMSE=%.4f R2=%.4f", metrics.MAE, metrics.RMSE, metrics.R2)

	predictions, err := forecast.PredictNextMonth(model, set.Rows, set.Encoding)
	if err != nil {
		return fmt.Errorf("prediction failed: %w", err)
	}
	forecast.SortPredictions(predictions)

	outDir := c.String("out-dir")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	path := filepath.Join(outDir, "prediccion_demanda.csv")
	if err := writePredictionsCSV(path, predictions); err != nil {
		return err
	}

	log.Printf("Wrote %d predictions to %s", len(predictions), path)
	return nil
}

func writePredictionsCSV(path string, predictions []domain.Prediction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"part_id", "target_month", "predicted_quantity"}); err != nil {
		return err
	}
	for _, p := range predictions {
		record := []string{
			p.PartID,
			strconv.Itoa(p.TargetMonth),
			strconv.FormatFloat(p.PredictedQuantity, 'f', 2, 64),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return w.Error()
}
