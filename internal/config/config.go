package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string
	HTTPAddr    string

	// Customer-facing links embed this base URL.
	BaseURL string
	// Region segment of report reference numbers (LR-<region>-...).
	ReferenceRegion string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	Pricing   PricingConfig
	Payment   PaymentConfig
	Cache     CacheConfig
	Artifact  ArtifactConfig
	Security  SecurityConfig
	Retention RetentionConfig
	Notify    NotifyConfig
}

// PricingConfig carries the price table in minor currency units (paise).
type PricingConfig struct {
	FullPricePaise       int
	DiscountedPricePaise int
}

type PaymentConfig struct {
	ExpiryMinutes int
}

type CacheConfig struct {
	TTLDays int
}

type ArtifactConfig struct {
	Dir     string
	TTLDays int
}

type SecurityConfig struct {
	// MaxRequestsPerMinute <= 0 disables rate limiting.
	MaxRequestsPerMinute int
}

type RetentionConfig struct {
	// Personally identifying order fields are blanked after this horizon.
	DataRetentionDays int
	SweepIntervalMin  int
}

type NotifyConfig struct {
	WhatsAppEnabled bool
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "landrisk"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		LogLevel:    getenv("LOG_LEVEL", "info"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		BaseURL:         strings.TrimRight(getenv("LINKS_BASE_URL", "http://localhost:8080"), "/"),
		ReferenceRegion: strings.ToUpper(getenv("REFERENCE_REGION", "BR")),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "landrisk"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 3600),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 600),

		Pricing: PricingConfig{
			FullPricePaise:       getenvInt("ORDER_AMOUNT_PAISE", 2500),
			DiscountedPricePaise: getenvInt("ORDER_DISCOUNTED_PAISE", 500),
		},
		Payment: PaymentConfig{
			ExpiryMinutes: getenvInt("PAYMENT_TIMEOUT_MINUTES", 15),
		},
		Cache: CacheConfig{
			TTLDays: getenvInt("SEARCH_CACHE_TTL_DAYS", 7),
		},
		Artifact: ArtifactConfig{
			Dir:     getenv("REPORT_ARTIFACT_DIR", "data/reports"),
			TTLDays: getenvInt("REPORT_LINK_TTL_DAYS", 7),
		},
		Security: SecurityConfig{
			MaxRequestsPerMinute: getenvInt("MAX_REQUESTS_PER_MINUTE", 60),
		},
		Retention: RetentionConfig{
			DataRetentionDays: getenvInt("DATA_RETENTION_DAYS", 90),
			SweepIntervalMin:  getenvInt("SWEEP_INTERVAL_MINUTES", 60),
		},
		Notify: NotifyConfig{
			WhatsAppEnabled: getenvBool("ENABLE_WHATSAPP_DELIVERY", false),
		},
	}
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}
