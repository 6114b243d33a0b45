// internal/ingest/processor.go
package ingest

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/hvaldivia/repuestos-analytics/internal/loader"
)

// Processor loads uploaded CSV files into Postgres.
type Processor struct {
	db *sql.DB
}

func NewProcessor(db *sql.DB) *Processor {
	return &Processor{db: db}
}

// ProcessFile parses the file for the given dataset and upserts its rows in a
// single transaction. It returns the number of rows written.
func (p *Processor) ProcessFile(ctx context.Context, kind Kind, filePath string) (int, error) {
	log.Printf("Processing %s file: %s", kind, filePath)

	switch kind {
	case KindSales:
		return p.processSalesFile(ctx, filePath)
	case KindStock:
		return p.processStockFile(ctx, filePath)
	case KindCatalog:
		return p.processCatalogFile(ctx, filePath)
	case KindUsers:
		return p.processUsersFile(ctx, filePath)
	default:
		return 0, fmt.Errorf("unknown dataset: %s", kind)
	}
}

func (p *Processor) processSalesFile(ctx context.Context, filePath string) (int, error) {
	records, err := loader.LoadSales(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to parse sales file: %w", err)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO sales (receipt_id, store_id, part_id, quantity, sale_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (receipt_id, store_id, part_id, sale_date)
		DO UPDATE SET quantity = EXCLUDED.quantity
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx, rec.ReceiptID, rec.StoreID, rec.PartID, rec.Quantity, rec.SaleDate)
		if err != nil {
			return 0, fmt.Errorf("failed to insert sale record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Successfully processed %d sales records from %s", len(records), filePath)
	return len(records), nil
}

func (p *Processor) processStockFile(ctx context.Context, filePath string) (int, error) {
	records, err := loader.LoadStock(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to parse stock file: %w", err)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO inventory (store_id, part_id, stock_quantity, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (store_id, part_id)
		DO UPDATE SET stock_quantity = EXCLUDED.stock_quantity, updated_at = NOW()
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, rec := range records {
		_, err := stmt.ExecContext(ctx, rec.StoreID, rec.PartID, rec.StockQuantity)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert inventory record: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Successfully processed %d inventory records from %s", len(records), filePath)
	return len(records), nil
}

func (p *Processor) processCatalogFile(ctx context.Context, filePath string) (int, error) {
	entries, err := loader.LoadCatalog(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO brand_catalog (letter_prefix, brand_name)
		VALUES ($1, $2)
		ON CONFLICT (letter_prefix)
		DO UPDATE SET brand_name = EXCLUDED.brand_name
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, entry := range entries {
		if _, err := stmt.ExecContext(ctx, entry.LetterPrefix, entry.BrandName); err != nil {
			return 0, fmt.Errorf("failed to upsert catalog entry: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Successfully processed %d catalog entries from %s", len(entries), filePath)
	return len(entries), nil
}

func (p *Processor) processUsersFile(ctx context.Context, filePath string) (int, error) {
	users, err := loader.LoadUsers(filePath)
	if err != nil {
		return 0, fmt.Errorf("failed to parse users file: %w", err)
	}

	tx, err := p.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `
		INSERT INTO users (username, password_hash, created_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (username)
		DO UPDATE SET password_hash = EXCLUDED.password_hash
	`

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, u := range users {
		if _, err := stmt.ExecContext(ctx, u.Username, u.PasswordHash); err != nil {
			return 0, fmt.Errorf("failed to upsert user: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.Printf("Successfully processed %d users from %s", len(users), filePath)
	return len(users), nil
}
