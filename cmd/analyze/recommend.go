package main

import (
	"encoding/csv"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/hvaldivia/repuestos-analytics/internal/analytics"
	"github.com/hvaldivia/repuestos-analytics/internal/domain"
	"github.com/hvaldivia/repuestos-analytics/internal/loader"
)

func newRecommendCommand() *cli.Command {
	flags := []cli.Flag{
		newSalesFlag(),
		newStockFlag(),
		newCatalogFlag(),
		newOutDirFlag(),
		newStoreFlag(),
	}
	flags = append(flags, newWindowFlags()...)

	return &cli.Command{
		Name:   "recommend",
		Usage:  "Classify stock rotation and detect stockout opportunities",
		Flags:  flags,
		Action: runRecommend,
	}
}

func parseFilterFlags(c *cli.Context) (domain.QueryFilter, error) {
	filter := domain.QueryFilter{StoreID: c.Int64("store")}

	if raw := c.String("from"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, fmt.Errorf("invalid --from date %q: %w", raw, err)
		}
		filter.From = t
	}
	if raw := c.String("to"); raw != "" {
		t, err := time.Parse("2006-01-02", raw)
		if err != nil {
			return filter, fmt.Errorf("invalid --to date %q: %w", raw, err)
		}
		filter.To = t
	}

	return filter, nil
}

func runRecommend(c *cli.Context) error {
	filter, err := parseFilterFlags(c)
	if err != nil {
		return err
	}

	sales, err := loader.LoadSales(c.String("sales"))
	if err != nil {
		return fmt.Errorf("failed to load sales: %w", err)
	}
	stock, err := loader.LoadStock(c.String("stock"))
	if err != nil {
		return fmt.Errorf("failed to load stock: %w", err)
	}
	catalog, err := loader.LoadCatalog(c.String("catalog"))
	if err != nil {
		return fmt.Errorf("failed to load brand catalog: %w", err)
	}

	rows := analytics.Aggregate(sales, stock, filter)
	opportunities := analytics.DetectOpportunities(analytics.FilterSales(sales, filter))
	brandSales := analytics.SalesByBrand(sales, catalog, filter)

	if len(rows) == 0 {
		log.Printf("No inventory rows in the window, writing empty results (%d stockout parts)", len(opportunities))
	} else {
		high, low := analytics.RotationCutoffs(rows)
		log.Printf("Classified %d rows (cutoffs: high=%.4f low=%.4f), %d stockout parts",
			len(rows), high, low, len(opportunities))
	}

	outDir := c.String("out-dir")
	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	if err := writeRecommendationsCSV(filepath.Join(outDir, "recomendaciones.csv"), rows); err != nil {
		return err
	}
	if err := writeOpportunitiesCSV(filepath.Join(outDir, "oportunidades.csv"), opportunities); err != nil {
		return err
	}
	if err := writeBrandSalesCSV(filepath.Join(outDir, "ventas_por_marca.csv"), brandSales); err != nil {
		return err
	}

	log.Printf("Results written to %s", outDir)
	return nil
}

func writeRecommendationsCSV(path string, rows []domain.InventoryRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"store_id", "part_id", "stock", "sold", "rotation", "recommendation"}); err != nil {
		return err
	}
	for _, row := range rows {
		record := []string{
			strconv.FormatInt(row.StoreID, 10),
			row.PartID,
			strconv.Itoa(row.StockQuantity),
			strconv.Itoa(row.SoldQuantity),
			strconv.FormatFloat(row.Rotation, 'f', 6, 64),
			string(row.Recommendation),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}

	return w.Error()
}

func writeOpportunitiesCSV(path string, opportunities []domain.StockoutOpportunity) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"part_id", "failed_attempts"}); err != nil {
		return err
	}
	for _, op := range opportunities {
		if err := w.Write([]string{op.PartID, strconv.Itoa(op.FailedAttempts)}); err != nil {
			return err
		}
	}

	return w.Error()
}

func writeBrandSalesCSV(path string, rows []domain.BrandSales) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write([]string{"brand", "quantity"}); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write([]string{row.Brand, strconv.Itoa(row.Quantity)}); err != nil {
			return err
		}
	}

	return w.Error()
}
