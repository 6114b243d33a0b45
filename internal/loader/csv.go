// Package loader reads the dashboard's semicolon-separated source files:
// historical sales, the inventory snapshot, the brand catalog, and the users
// table. The analytics core never parses files itself; it consumes the
// already-typed records produced here.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hvaldivia/repuestos-analytics/internal/domain"
)

// saleDateFormats are tried in order when parsing sale dates. Exports from
// the POS system have drifted between layouts over the years.
var saleDateFormats = []string{
	"2006-01-02",
	"02-01-2006",
	"2/1/2006",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// LoadSales reads a headerless semicolon CSV of sale transactions with
// columns receipt;store;part;quantity;date. Unparseable rows are skipped with
// an error count rather than aborting the whole load; the caller decides
// whether a partial table is acceptable.
func LoadSales(path string) ([]domain.SaleRecord, error) {
	records, err := readSemicolonCSV(path, 5)
	if err != nil {
		return nil, fmt.Errorf("load sales %s: %w", path, err)
	}

	sales := make([]domain.SaleRecord, 0, len(records))
	for _, rec := range records {
		storeID, err := strconv.ParseInt(strings.TrimSpace(rec[1]), 10, 64)
		if err != nil {
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(rec[3]))
		if err != nil {
			continue
		}
		saleDate, ok := parseSaleDate(rec[4])
		if !ok {
			continue
		}

		sales = append(sales, domain.SaleRecord{
			ReceiptID: strings.TrimSpace(rec[0]),
			StoreID:   storeID,
			PartID:    strings.TrimSpace(rec[2]),
			Quantity:  qty,
			SaleDate:  saleDate,
		})
	}

	return sales, nil
}

// LoadStock reads a headerless semicolon CSV with columns store;part;stock.
// Raw stock values are passed through as-is; the aggregator clamps negatives.
func LoadStock(path string) ([]domain.StockRecord, error) {
	records, err := readSemicolonCSV(path, 3)
	if err != nil {
		return nil, fmt.Errorf("load stock %s: %w", path, err)
	}

	stock := make([]domain.StockRecord, 0, len(records))
	for _, rec := range records {
		storeID, err := strconv.ParseInt(strings.TrimSpace(rec[0]), 10, 64)
		if err != nil {
			continue
		}
		qty, err := strconv.Atoi(strings.TrimSpace(rec[2]))
		if err != nil {
			continue
		}

		stock = append(stock, domain.StockRecord{
			StoreID:       storeID,
			PartID:        strings.TrimSpace(rec[1]),
			StockQuantity: qty,
		})
	}

	return stock, nil
}

// LoadCatalog reads the brand lookup, a headerless semicolon CSV with
// columns letter;brand.
func LoadCatalog(path string) ([]domain.BrandCatalogEntry, error) {
	records, err := readSemicolonCSV(path, 2)
	if err != nil {
		return nil, fmt.Errorf("load catalog %s: %w", path, err)
	}

	catalog := make([]domain.BrandCatalogEntry, 0, len(records))
	for _, rec := range records {
		prefix := strings.TrimSpace(rec[0])
		if prefix == "" {
			continue
		}
		catalog = append(catalog, domain.BrandCatalogEntry{
			LetterPrefix: prefix,
			BrandName:    strings.TrimSpace(rec[1]),
		})
	}

	return catalog, nil
}

// LoadUsers reads the users table, a comma CSV with a
// username,password_hash header.
func LoadUsers(path string) ([]domain.User, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("load users %s: %w", path, err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("load users %s: read header: %w", path, err)
	}

	userIdx, hashIdx := -1, -1
	for i, h := range header {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "username", "user":
			userIdx = i
		case "password_hash", "password":
			hashIdx = i
		}
	}
	if userIdx == -1 || hashIdx == -1 {
		return nil, fmt.Errorf("load users %s: missing username or password_hash column", path)
	}

	var users []domain.User
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("load users %s: %w", path, err)
		}
		if userIdx >= len(rec) || hashIdx >= len(rec) {
			continue
		}

		username := strings.TrimSpace(rec[userIdx])
		if username == "" {
			continue
		}
		users = append(users, domain.User{
			Username:     username,
			PasswordHash: strings.TrimSpace(rec[hashIdx]),
		})
	}

	return users, nil
}

func readSemicolonCSV(path string, minFields int) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.Comma = ';'
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	var records [][]string
	for {
		rec, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(rec) < minFields {
			continue
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseSaleDate(value string) (time.Time, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, false
	}
	for _, format := range saleDateFormats {
		if t, err := time.Parse(format, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
