package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Log       LogConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Printer   PrinterConfig
	Billing   BillingConfig
}

type AppConfig struct {
	Name  string
	Env   string
	Port  string
	Debug bool
}

type LogConfig struct {
	Level  string
	Format string
}

type DatabaseConfig struct {
	Driver     string // postgres or sqlite
	Host       string
	Port       string
	Name       string
	User       string
	Password   string
	SSLMode    string
	Timezone   string
	SQLitePath string
}

type JWTConfig struct {
	Secret string
	Issuer string
	Expiry time.Duration
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

type PrinterConfig struct {
	Type      string // usb, network or none
	USBPath   string
	Address   string
	Width     int
	StoreName string
}

// BillingConfig tunes the bill ledger.
type BillingConfig struct {
	// DefaultDueHours sets a due time on new bills when none is given; 0 disables it.
	DefaultDueHours   int
	OverdueSweepEvery time.Duration
	MaxSaveRetries    int
	IdempotencyKeyTTL time.Duration
}

func Load() *Config {
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables: %v", err)
	}

	viper.SetDefault("APP_NAME", "venue-pos-api")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("APP_PORT", "8080")
	viper.SetDefault("APP_DEBUG", true)
	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("LOG_FORMAT", "text")
	viper.SetDefault("DB_DRIVER", "postgres")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_NAME", "venue_pos")
	viper.SetDefault("DB_USER", "postgres")
	viper.SetDefault("DB_PASSWORD", "postgres")
	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_TIMEZONE", "UTC")
	viper.SetDefault("DB_SQLITE_PATH", "./data/venue.db")
	viper.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	viper.SetDefault("JWT_ISSUER", "venue-identity")
	viper.SetDefault("JWT_EXPIRY_HOURS", 12)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	viper.SetDefault("CORS_ALLOWED_HEADERS", []string{})
	viper.SetDefault("RATE_LIMIT_REQUESTS", 100)
	viper.SetDefault("RATE_LIMIT_DURATION", 60)
	viper.SetDefault("PRINTER_TYPE", "none")
	viper.SetDefault("PRINTER_WIDTH", 32)
	viper.SetDefault("PRINTER_STORE_NAME", "Venue")
	viper.SetDefault("BILL_DEFAULT_DUE_HOURS", 0)
	viper.SetDefault("BILL_OVERDUE_SWEEP_SECONDS", 300)
	viper.SetDefault("BILL_MAX_SAVE_RETRIES", 3)
	viper.SetDefault("IDEMPOTENCY_KEY_TTL_HOURS", 24)

	return &Config{
		App: AppConfig{
			Name:  viper.GetString("APP_NAME"),
			Env:   viper.GetString("APP_ENV"),
			Port:  viper.GetString("APP_PORT"),
			Debug: viper.GetBool("APP_DEBUG"),
		},
		Log: LogConfig{
			Level:  viper.GetString("LOG_LEVEL"),
			Format: viper.GetString("LOG_FORMAT"),
		},
		Database: DatabaseConfig{
			Driver:     viper.GetString("DB_DRIVER"),
			Host:       viper.GetString("DB_HOST"),
			Port:       viper.GetString("DB_PORT"),
			Name:       viper.GetString("DB_NAME"),
			User:       viper.GetString("DB_USER"),
			Password:   viper.GetString("DB_PASSWORD"),
			SSLMode:    viper.GetString("DB_SSL_MODE"),
			Timezone:   viper.GetString("DB_TIMEZONE"),
			SQLitePath: viper.GetString("DB_SQLITE_PATH"),
		},
		JWT: JWTConfig{
			Secret: viper.GetString("JWT_SECRET"),
			Issuer: viper.GetString("JWT_ISSUER"),
			Expiry: time.Duration(viper.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
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
		Printer: PrinterConfig{
			Type:      viper.GetString("PRINTER_TYPE"),
			USBPath:   viper.GetString("PRINTER_USB_PATH"),
			Address:   viper.GetString("PRINTER_ADDRESS"),
			Width:     viper.GetInt("PRINTER_WIDTH"),
			StoreName: viper.GetString("PRINTER_STORE_NAME"),
		},
		Billing: BillingConfig{
			DefaultDueHours:   viper.GetInt("BILL_DEFAULT_DUE_HOURS"),
			OverdueSweepEvery: time.Duration(viper.GetInt("BILL_OVERDUE_SWEEP_SECONDS")) * time.Second,
			MaxSaveRetries:    viper.GetInt("BILL_MAX_SAVE_RETRIES"),
			IdempotencyKeyTTL: time.Duration(viper.GetInt("IDEMPOTENCY_KEY_TTL_HOURS")) * time.Hour,
		},
	}
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// PrinterTarget returns the device path or network address for the configured type.
func (c *PrinterConfig) PrinterTarget() string {
	if c.Type == "network" {
		return c.Address
	}
	return c.USBPath
}
