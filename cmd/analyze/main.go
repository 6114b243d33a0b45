// cmd/analyze/main.go
package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
)

func newSalesFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "sales",
		Usage:   "Path to the sales CSV (receipt;store;part;qty;date)",
		Value:   "./data/ventas.csv",
		EnvVars: []string{"SOURCE_SALES_PATH"},
	}
}

func newStockFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "stock",
		Usage:   "Path to the stock CSV (store;part;stock)",
		Value:   "./data/stock.csv",
		EnvVars: []string{"SOURCE_STOCK_PATH"},
	}
}

func newCatalogFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "catalog",
		Usage:   "Path to the brand catalog CSV (letter;brand)",
		Value:   "./data/marcas.csv",
		EnvVars: []string{"SOURCE_CATALOG_PATH"},
	}
}

func newOutDirFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "out-dir",
		Usage:   "Directory for result CSVs",
		Value:   "./data/output",
		EnvVars: []string{"APP_DATA_DIR"},
	}
}

func newStoreFlag() *cli.Int64Flag {
	return &cli.Int64Flag{
		Name:  "store",
		Usage: "Restrict the analysis to one store ID (0 means all stores)",
	}
}

func newWindowFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "from",
			Usage: "Start of the sale date window (YYYY-MM-DD, inclusive)",
		},
		&cli.StringFlag{
			Name:  "to",
			Usage: "End of the sale date window (YYYY-MM-DD, inclusive)",
		},
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("warning: could not load .env file: %v", err)
	}

	app := &cli.App{
		Name:  "analyze",
		Usage: "Run parts analytics over local CSV files",
		Commands: []*cli.Command{
			newRecommendCommand(),
			newForecastCommand(),
			newSeedCommand(),
			newHashPasswordCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
