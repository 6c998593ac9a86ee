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
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Storage   StorageConfig
	App       AppConfig
	Analytics AnalyticsConfig
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

type CacheConfig struct {
	Enabled           bool
	RedisURL          string
	RedisHost         string
	RedisPort         string
	RedisPassword     string
	RedisDB           int
	InsightTTLSeconds int
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	Prefix    string
}

type AppConfig struct {
	UploadDir string
	DataDir   string
}

// AnalyticsConfig carries the business thresholds used by the batch engine.
type AnalyticsConfig struct {
	FocalBrand             string  // supplier substring that marks own-brand items
	PromoMinDiscount       float64 // minimum discount depth to qualify as promo
	PromoMinRunDays        int     // minimum consecutive calendar days of discount
	ExtremePriceDeviation  float64 // |unit_price - rrp| / rrp above this is extreme
	StoreExtremeRatio      float64 // pricing-inconsistent threshold for stores
	SupplierExtremeRatio   float64 // pricing-inconsistent threshold for suppliers
	ZeroQuantityThreshold  int     // suspicious-zeros absolute count threshold
	WorkerCount            int     // promo detection worker pool size
	DistributionMinStores  int     // limited-distribution store floor
	DistributionMinTxns    int     // limited-distribution transaction floor
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
		viper.SetDefault("SERVER_READ_TIMEOUT", 15)
		viper.SetDefault("SERVER_WRITE_TIMEOUT", 15)
		viper.SetDefault("SERVER_ALLOWED_ORIGINS", []string{"*"})
		viper.SetDefault("DB_HOST", "localhost")
		viper.SetDefault("DB_PORT", "5432")
		viper.SetDefault("DB_USER", "postgres")
		viper.SetDefault("DB_PASSWORD", "postgres")
		viper.SetDefault("DB_NAME", "ducklens")
		viper.SetDefault("DB_SSLMODE", "disable")
		viper.SetDefault("CACHE_ENABLED", false)
		viper.SetDefault("REDIS_URL", "")
		viper.SetDefault("REDIS_HOST", "127.0.0.1")
		viper.SetDefault("REDIS_PORT", "6379")
		viper.SetDefault("REDIS_PASSWORD", "")
		viper.SetDefault("REDIS_DB", 0)
		viper.SetDefault("CACHE_INSIGHT_TTL_SECONDS", 60)
		viper.SetDefault("STORAGE_ENDPOINT", "")
		viper.SetDefault("STORAGE_ACCESS_KEY", "")
		viper.SetDefault("STORAGE_SECRET_KEY", "")
		viper.SetDefault("STORAGE_BUCKET", "ducklens-raw")
		viper.SetDefault("STORAGE_REGION", "us-east-1")
		viper.SetDefault("STORAGE_USE_SSL", true)
		viper.SetDefault("STORAGE_PREFIX", "sales/")
		viper.SetDefault("APP_UPLOAD_DIR", "./data/uploads")
		viper.SetDefault("APP_DATA_DIR", "./data/output")
		viper.SetDefault("ANALYTICS_FOCAL_BRAND", "bidco")
		viper.SetDefault("ANALYTICS_PROMO_MIN_DISCOUNT", 0.10)
		viper.SetDefault("ANALYTICS_PROMO_MIN_RUN_DAYS", 2)
		viper.SetDefault("ANALYTICS_EXTREME_PRICE_DEVIATION", 0.5)
		viper.SetDefault("ANALYTICS_STORE_EXTREME_RATIO", 0.05)
		viper.SetDefault("ANALYTICS_SUPPLIER_EXTREME_RATIO", 0.10)
		viper.SetDefault("ANALYTICS_ZERO_QUANTITY_THRESHOLD", 10)
		viper.SetDefault("ANALYTICS_WORKER_COUNT", 4)
		viper.SetDefault("ANALYTICS_DISTRIBUTION_MIN_STORES", 3)
		viper.SetDefault("ANALYTICS_DISTRIBUTION_MIN_TXNS", 100)

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
			Cache: CacheConfig{
				Enabled:           viper.GetBool("CACHE_ENABLED"),
				RedisURL:          viper.GetString("REDIS_URL"),
				RedisHost:         viper.GetString("REDIS_HOST"),
				RedisPort:         viper.GetString("REDIS_PORT"),
				RedisPassword:     viper.GetString("REDIS_PASSWORD"),
				RedisDB:           viper.GetInt("REDIS_DB"),
				InsightTTLSeconds: viper.GetInt("CACHE_INSIGHT_TTL_SECONDS"),
			},
			Storage: StorageConfig{
				Endpoint:  viper.GetString("STORAGE_ENDPOINT"),
				AccessKey: viper.GetString("STORAGE_ACCESS_KEY"),
				SecretKey: viper.GetString("STORAGE_SECRET_KEY"),
				Bucket:    viper.GetString("STORAGE_BUCKET"),
				Region:    viper.GetString("STORAGE_REGION"),
				UseSSL:    viper.GetBool("STORAGE_USE_SSL"),
				Prefix:    viper.GetString("STORAGE_PREFIX"),
			},
			App: AppConfig{
				UploadDir: viper.GetString("APP_UPLOAD_DIR"),
				DataDir:   viper.GetString("APP_DATA_DIR"),
			},
			Analytics: AnalyticsConfig{
				FocalBrand:            viper.GetString("ANALYTICS_FOCAL_BRAND"),
				PromoMinDiscount:      viper.GetFloat64("ANALYTICS_PROMO_MIN_DISCOUNT"),
				PromoMinRunDays:       viper.GetInt("ANALYTICS_PROMO_MIN_RUN_DAYS"),
				ExtremePriceDeviation: viper.GetFloat64("ANALYTICS_EXTREME_PRICE_DEVIATION"),
				StoreExtremeRatio:     viper.GetFloat64("ANALYTICS_STORE_EXTREME_RATIO"),
				SupplierExtremeRatio:  viper.GetFloat64("ANALYTICS_SUPPLIER_EXTREME_RATIO"),
				ZeroQuantityThreshold: viper.GetInt("ANALYTICS_ZERO_QUANTITY_THRESHOLD"),
				WorkerCount:           viper.GetInt("ANALYTICS_WORKER_COUNT"),
				DistributionMinStores: viper.GetInt("ANALYTICS_DISTRIBUTION_MIN_STORES"),
				DistributionMinTxns:   viper.GetInt("ANALYTICS_DISTRIBUTION_MIN_TXNS"),
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
