package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	SiteURL     string
	HTTPAddr    string

	DBType     string
	DBHost     string
	DBPort     string
	DBName     string
	DBUser     string
	DBPassword string
	DBSSLMode  string

	StripeAPIKey        string
	StripeWebhookSecret string

	CoinbaseAPIKey        string
	CoinbaseWebhookSecret string

	// AdminUserID, when set, is the fixed owner for projects created by
	// payment fulfilment. Empty means "first ADMIN user".
	AdminUserID string

	AuthCookieSecure bool

	RedisAddr     string
	RedisPassword string

	Email EmailConfig

	UploadDir string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	NotifyTo     string
}

var Module = fx.Provide(Load)

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	environment := getenv("ENVIRONMENT", "development")
	authCookieSecure := environment == "production"
	if !authCookieSecure {
		authCookieSecure = getenvBool("AUTH_COOKIE_SECURE", false)
	}

	return Config{
		AppName:     getenv("APP_SERVICE", "sds"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: environment,
		SiteURL:     strings.TrimRight(getenv("SITE_URL", "http://localhost:8080"), "/"),
		HTTPAddr:    getenv("HTTP_ADDR", ":8080"),

		DBType:     getenv("DATABASE_TYPE", "postgres"),
		DBHost:     getenv("DATABASE_HOST", "localhost"),
		DBPort:     getenv("DATABASE_PORT", "5432"),
		DBName:     getenv("DATABASE_NAME", "sds"),
		DBUser:     getenv("DATABASE_USER", "postgres"),
		DBPassword: getenv("DATABASE_PASSWORD", ""),
		DBSSLMode:  getenv("DATABASE_SSLMODE", "disable"),

		StripeAPIKey:        strings.TrimSpace(getenv("STRIPE_API_KEY", "")),
		StripeWebhookSecret: strings.TrimSpace(getenv("STRIPE_WEBHOOK_SECRET", "")),

		CoinbaseAPIKey:        strings.TrimSpace(getenv("COINBASE_COMMERCE_API_KEY", "")),
		CoinbaseWebhookSecret: strings.TrimSpace(getenv("COINBASE_COMMERCE_WEBHOOK_SECRET", "")),

		AdminUserID: strings.TrimSpace(getenv("ADMIN_USER_ID", "")),

		AuthCookieSecure: authCookieSecure,

		RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
		RedisPassword: getenv("REDIS_PASSWORD", ""),

		Email: EmailConfig{
			SMTPHost:     getenv("SMTP_HOST", ""),
			SMTPPort:     getenvInt("SMTP_PORT", 587),
			SMTPUsername: getenv("SMTP_USERNAME", ""),
			SMTPPassword: getenv("SMTP_PASSWORD", ""),
			SMTPFrom:     getenv("SMTP_FROM", "no-reply@sds.studio"),
			NotifyTo:     getenv("CONTACT_NOTIFY_TO", ""),
		},

		UploadDir: getenv("UPLOAD_DIR", "public/uploads"),
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
