// internal/config/config.go
package config

import (
	"log"
	"os"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Source   SourceConfig
	Cache    CacheConfig
	Auth     AuthConfig
	Forecast ForecastConfig
	Storage  StorageConfig
}

type ServerConfig struct {
	Port           string
	Mode           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type AppConfig struct {
	UploadDir string
	DataDir   string
}

// SourceConfig selects where analytics data is read from. Kind is either
// "postgres" or "csv"; the paths only apply to the csv backend.
type SourceConfig struct {
	Kind        string
	SalesPath   string
	StockPath   string
	CatalogPath string
	UsersPath   string
}

type CacheConfig struct {
	Enabled            bool
	RedisURL           string
	RedisHost          string
	RedisPort          string
	RedisPassword      string
	RedisDB            int
	ForecastTTLSeconds int
}

type AuthConfig struct {
	JWTSecret       string
	TokenTTLMinutes int
}

// ForecastConfig exposes the model tuning as configuration; holdout fraction
// and seed are deliberately not hardcoded so runs stay reproducible.
type ForecastConfig struct {
	ModelKind       string
	NEstimators     int
	LearningRate    float64
	MaxDepth        int
	HoldoutFraction float64
	Seed            int64
	UseLagFeatures  bool
}

type StorageConfig struct {
	Enabled   bool
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

var (
	once     sync.Once
	instance *Config
)

func Load() *Config {
	once.Do(func() {
		// Load .env file if it exists
		_ = godotenv.Load()

		// Set default values
		viper.SetDefault("SERVER_PORT", "8080")
		viper.SetDefault("SERVER_MODE", "debug")
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "repuestos")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("APP_UPLOAD_DIR", "./data/uploads")
		viper.SetDefault("APP_DATA_DIR", "./data/output")
		viper.SetDefault("SOURCE_KIND", "postgres")
		viper.SetDefault("SOURCE_SALES_PATH", "./data/ventas.csv")
		viper.SetDefault("SOURCE_STOCK_PATH", "./data/stock.csv")
		viper.SetDefault("SOURCE_CATALOG_PATH", "./data/marcas.csv")
		viper.SetDefault("SOURCE_USERS_PATH", "./data/usuarios.csv")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_FORECAST_TTL_SECONDS", 300)
		viper.SetDefault("AUTH_JWT_SECRET", "")
		viper.SetDefault("AUTH_TOKEN_TTL_MINUTES", 480)
		viper.SetDefault("FORECAST_MODEL_KIND", "gradient_boosted")
		viper.SetDefault("FORECAST_N_ESTIMATORS", 100)
		viper.SetDefault("FORECAST_LEARNING_RATE", 0.1)
		viper.SetDefault("FORECAST_MAX_DEPTH", 3)
		viper.SetDefault("FORECAST_HOLDOUT_FRACTION", 0.2)
		viper.SetDefault("FORECAST_SEED", 42)
		viper.SetDefault("FORECAST_USE_LAG_FEATURES", true)
		viper.SetDefault("STORAGE_ENABLED", false)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "repuestos-raw")
		viper.SetDefault("STORAGE_USE_SSL", true)

		// Read from environment variables
		viper.AutomaticEnv()

		// Ensure upload and data directories exist
		ensureDir(viper.GetString("APP_UPLOAD_DIR"))
		ensureDir(viper.GetString("APP_DATA_DIR"))

		instance = &Config{
			Server: ServerConfig{
				Port:           viper.GetString("SERVER_PORT"),
				Mode:           viper.GetString("SERVER_MODE"),
				ReadTimeout:    viper.GetInt("SERVER_READ_TIMEOUT"),
				WriteTimeout:   viper.GetInt("SERVER_WRITE_TIMEOUT"),
				AllowedOrigins: viper.GetStringSlice("SERVER_ALLOWED_ORIGINS"),
			},
			Database: DatabaseConfig{
				Host:     viper.GetString("DB_HOST"),
				Port:     viper.GetString("DB_PORT"),
				User:     viper.GetString("DB_USER"),
				Password: viper.GetString("DB_PASSWORD"),
				DBName:   viper.GetString("DB_NAME"),
				SSLMode:  viper.GetString("DB_SSLMODE"),
			},
			App: AppConfig{
				UploadDir: viper.GetString("APP_UPLOAD_DIR"),
				DataDir:   viper.GetString("APP_DATA_DIR"),
			},
			Source: SourceConfig{
				Kind:        viper.GetString("SOURCE_KIND"),
				SalesPath:   viper.GetString("SOURCE_SALES_PATH"),
				StockPath:   viper.GetString("SOURCE_STOCK_PATH"),
				CatalogPath: viper.GetString("SOURCE_CATALOG_PATH"),
				UsersPath:   viper.GetString("SOURCE_USERS_PATH"),
			},
			Cache: CacheConfig{
				Enabled:            viper.GetBool("CACHE_ENABLED"),
				RedisURL:           viper.GetString("REDIS_URL"),
				RedisHost:          viper.GetString("REDIS_HOST"),
				RedisPort:          viper.GetString("REDIS_PORT"),
				RedisPassword:      viper.GetString("REDIS_PASSWORD"),
				RedisDB:            viper.GetInt("REDIS_DB"),
				ForecastTTLSeconds: viper.GetInt("CACHE_FORECAST_TTL_SECONDS"),
			},
			Auth: AuthConfig{
				JWTSecret:       viper.GetString("AUTH_JWT_SECRET"),
				TokenTTLMinutes: viper.GetInt("AUTH_TOKEN_TTL_MINUTES"),
			},
			Forecast: ForecastConfig{
				ModelKind:       viper.GetString("FORECAST_MODEL_KIND"),
				NEstimators:     viper.GetInt("FORECAST_N_ESTIMATORS"),
				LearningRate:    viper.GetFloat64("FORECAST_LEARNING_RATE"),
				MaxDepth:        viper.GetInt("FORECAST_MAX_DEPTH"),
				HoldoutFraction: viper.GetFloat64("FORECAST_HOLDOUT_FRACTION"),
				Seed:            viper.GetInt64("FORECAST_SEED"),
				UseLagFeatures:  viper.GetBool("FORECAST_USE_LAG_FEATURES"),
			},
			Storage: StorageConfig{
				Enabled:   viper.GetBool("STORAGE_ENABLED"),
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
			},
		}
	})

	return instance
}

func ensureDir(dir string) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0755); err != nil {
			log.Fatalf("Failed to create directory %s: %v", dir, err)
		}
	}
}
