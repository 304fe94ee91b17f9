package config

import (
	"log"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Storage   StorageConfig
	Sales     SalesConfig
	Store     StoreConfig
	Printer   PrinterConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type StorageConfig struct {
	Path string
}

// SalesConfig tunes the sale pipeline.
type SalesConfig struct {
	TaxRate        float64
	ReceiptWidth   int
	LockTimeout    time.Duration
	IdempotencyTTL time.Duration
}

// StoreConfig is the store identity block printed on receipts.
type StoreConfig struct {
	Name    string
	Tagline string
	Address string
}

type PrinterConfig struct {
	Type    string // usb, network or none
	USBPath string
	Address string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	// Set defaults
	viper.SetDefault("APP_NAME", "pos-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("STORAGE_PATH", "./storage")
	viper.SetDefault("TAX_RATE", 0.16)
	viper.SetDefault("RECEIPT_WIDTH", 32)
	viper.SetDefault("LEDGER_LOCK_TIMEOUT_MS", 5000)
	viper.SetDefault("IDEMPOTENCY_TTL_HOURS", 24)
	viper.SetDefault("STORE_NAME", "HT TECH")
	viper.SetDefault("STORE_TAGLINE", "Computer & Electronics")
	viper.SetDefault("STORE_ADDRESS", "Karachi, Pakistan")
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_USB_PATH", "")
	viper.SetDefault("PRINTER_ADDRESS", "")
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Storage: StorageConfig{
			Path: viper.GetString("STORAGE_PATH"),
		},
		Sales: SalesConfig{
			TaxRate:        viper.GetFloat64("TAX_RATE"),
			ReceiptWidth:   viper.GetInt("RECEIPT_WIDTH"),
			LockTimeout:    time.Duration(viper.GetInt("LEDGER_LOCK_TIMEOUT_MS")) * time.Millisecond,
			IdempotencyTTL: time.Duration(viper.GetInt("IDEMPOTENCY_TTL_HOURS")) * time.Hour,
		},
		Store: StoreConfig{
			Name:    viper.GetString("STORE_NAME"),
			Tagline: viper.GetString("STORE_TAGLINE"),
			Address: viper.GetString("STORE_ADDRESS"),
		},
		Printer: PrinterConfig{
			Type:    viper.GetString("PRINTER_TYPE"),
			USBPath: viper.GetString("PRINTER_USB_PATH"),
			Address: viper.GetString("PRINTER_ADDRESS"),
		},
		CORS: CORSConfig{
			AllowedOrigins: viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods: viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders: viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
		},
		RateLimit: RateLimitConfig{
			Requests: viper.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: viper.GetInt("RATE_LIMIT_DURATION"),
		},
	}
}

// ProductsPath is the catalog CSV location under the storage root.
func (c *StorageConfig) ProductsPath() string {
	return filepath.Join(c.Path, "products.csv")
}

// SalesPath is the sale header store location.
func (c *StorageConfig) SalesPath() string {
	return filepath.Join(c.Path, "sales.csv")
}

// SaleItemsPath is the sale item store location.
func (c *StorageConfig) SaleItemsPath() string {
	return filepath.Join(c.Path, "sales_items.csv")
}

// ReceiptsDir is where per-invoice receipt text files are written.
func (c *StorageConfig) ReceiptsDir() string {
	return filepath.Join(c.Path, "receipts")
}

// ExportsDir is where sales export artifacts are written.
func (c *StorageConfig) ExportsDir() string {
	return filepath.Join(c.Path, "exports")
}
