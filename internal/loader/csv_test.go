package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hvaldivia/repuestos-analytics/internal/domain"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSales(t *testing.T) {
	path := writeFile(t, "ventas.csv",
		"R001;1;A100;2;2025-03-10\n"+
			"R002;1;B200;-1;2025-03-11\n"+
			"R003;2;A100;5;15-03-2025\n")

	sales, err := LoadSales(path)
	require.NoError(t, err)
	require.Len(t, sales, 3)

	assert.Equal(t, "R001", sales[0].ReceiptID)
	assert.Equal(t, int64(1), sales[0].StoreID)
	assert.Equal(t, "A100", sales[0].PartID)
	assert.Equal(t, 2, sales[0].Quantity)
	assert.Equal(t, 2025, sales[0].SaleDate.Year())

	// Negative quantities survive loading; they carry the stockout signal.
	assert.Equal(t, -1, sales[1].Quantity)

	// Day-first exports parse too.
	assert.Equal(t, time.March, sales[2].SaleDate.Month())
	assert.Equal(t, 15, sales[2].SaleDate.Day())
}

func TestLoadSalesSkipsBadRows(t *testing.T) {
	path := writeFile(t, "ventas.csv",
		"R001;not-a-store;A100;2;2025-03-10\n"+
			"R002;1;A100;two;2025-03-10\n"+
			"R003;1;A100;2;not-a-date\n"+
			"R004;1;A100;2;2025-03-10\n")

	sales, err := LoadSales(path)
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "R004", sales[0].ReceiptID)
}

func TestLoadStockKeepsNegativeValues(t *testing.T) {
	path := writeFile(t, "stock.csv",
		"1;A100;3\n"+
			"1;B200;-4\n")

	stock, err := LoadStock(path)
	require.NoError(t, err)
	require.Len(t, stock, 2)

	// Raw values pass through; clamping happens at aggregation.
	assert.Equal(t, -4, stock[1].StockQuantity)
}

func TestLoadCatalog(t *testing.T) {
	path := writeFile(t, "marcas.csv",
		"A;Acme\n"+
			"B;Bosch\n"+
			";Ignored\n")

	catalog, err := LoadCatalog(path)
	require.NoError(t, err)
	require.Len(t, catalog, 2)
	assert.Equal(t, domain.BrandCatalogEntry{LetterPrefix: "A", BrandName: "Acme"}, catalog[0])
}

func TestLoadUsers(t *testing.T) {
	path := writeFile(t, "usuarios.csv",
		"username,password_hash\n"+
			"hvaldivia,$2a$10$abcdefghijklmnopqrstuv\n"+
			",missing-name\n")

	users, err := LoadUsers(path)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "hvaldivia", users[0].Username)
}

func TestLoadUsersMissingColumns(t *testing.T) {
	path := writeFile(t, "usuarios.csv", "name,secret\nbob,x\n")
	_, err := LoadUsers(path)
	assert.Error(t, err)
}

func TestLoadSalesMissingFile(t *testing.T) {
	_, err := LoadSales(filepath.Join(t.TempDir(), "nope.csv"))
	assert.Error(t, err)
}

func TestSourceServesFilteredTables(t *testing.T) {
	dir := t.TempDir()
	salesPath := filepath.Join(dir, "ventas.csv")
	stockPath := filepath.Join(dir, "stock.csv")
	catalogPath := filepath.Join(dir, "marcas.csv")

	require.NoError(t, os.WriteFile(salesPath, []byte(
		"R001;1;A100;2;2025-03-10\n"+
			"R002;2;B200;1;2025-03-11\n"), 0o644))
	require.NoError(t, os.WriteFile(stockPath, []byte(
		"1;A100;3\n"+
			"2;B200;1\n"), 0o644))
	require.NoError(t, os.WriteFile(catalogPath, []byte("A;Acme\n"), 0o644))

	source, err := Open(salesPath, stockPath, catalogPath)
	require.NoError(t, err)

	ctx := context.Background()

	sales, err := source.Sales(ctx, domain.QueryFilter{StoreID: 1})
	require.NoError(t, err)
	require.Len(t, sales, 1)
	assert.Equal(t, "A100", sales[0].PartID)

	stock, err := source.Stock(ctx, 2)
	require.NoError(t, err)
	require.Len(t, stock, 1)
	assert.Equal(t, "B200", stock[0].PartID)

	ids, err := source.StoreIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2}, ids)

	min, max, err := source.SaleDateBounds(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", min.Format("2006-01-02"))
	assert.Equal(t, min, max)

	min, max, err = source.SaleDateBounds(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, "2025-03-10", min.Format("2006-01-02"))
	assert.Equal(t, "2025-03-11", max.Format("2006-01-02"))

	min, max, err = source.SaleDateBounds(ctx, 99)
	require.NoError(t, err)
	assert.True(t, min.IsZero())
	assert.True(t, max.IsZero())
}

func TestUserStoreLookup(t *testing.T) {
	store := NewUserStore([]domain.User{{Username: "ana", PasswordHash: "h"}})

	u, err := store.GetByUsername(context.Background(), "ana")
	require.NoError(t, err)
	assert.Equal(t, "ana", u.Username)

	_, err = store.GetByUsername(context.Background(), "nadie")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
