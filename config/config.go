package config

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

// Config holds application configuration
type Config struct {
	ServiceName string
	LogLevel    string
	Port        string
	AppURL      string

	DBDriver     string // postgres, mysql or sqlite
	DBHost       string
	DBPort       string
	DBUser       string
	DBPassword   string
	DBName       string
	DBSqlitePath string

	JWTKey      string
	JWTTTLHours int
	SaltRound   int

	SendGridAPIKey  string
	EmailSender     string
	EmailSenderName string

	PaymentApiURL        string
	PaymentApiKey        string
	PaymentWebhookSecret string
	Currency             string
	PlatformFeePercent   int

	GeocodeApiURL string
	GeocodeApiKey string

	UploadDir   string
	MaxUploadMB int

	RateLimitMax           int
	RateLimitWindowSeconds int

	CronTimezone string
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		ServiceName: cast.ToString(getEnv("SERVICE_NAME", "paddock")),
		LogLevel:    cast.ToString(getEnv("LOG_LEVEL", "info")),
		Port:        cast.ToString(getEnv("PORT", "3000")),
		AppURL:      cast.ToString(getEnv("APP_URL", "http://localhost:3000")),

		DBDriver:     cast.ToString(getEnv("DB_DRIVER", "postgres")),
		DBHost:       cast.ToString(getEnv("DB_HOST", "localhost")),
		DBPort:       cast.ToString(getEnv("DB_PORT", "5432")),
		DBUser:       cast.ToString(getEnv("DB_USER", "postgres")),
		DBPassword:   cast.ToString(getEnv("DB_PASSWORD", "")),
		DBName:       cast.ToString(getEnv("DB_NAME", "paddock")),
		DBSqlitePath: cast.ToString(getEnv("DB_SQLITE_PATH", "paddock.db")),

		JWTKey:      cast.ToString(getEnv("JWT_SECRET_KEY", "defaultSecret")),
		JWTTTLHours: cast.ToInt(getEnv("JWT_TTL_HOURS", 24)),
		SaltRound:   cast.ToInt(getEnv("SALT_ROUND", 10)),

		SendGridAPIKey:  cast.ToString(getEnv("SENDGRID_API_KEY", "")),
		EmailSender:     cast.ToString(getEnv("EMAIL_SENDER", "no-reply@paddock.local")),
		EmailSenderName: cast.ToString(getEnv("EMAIL_SENDER_NAME", "Paddock")),

		PaymentApiURL:        cast.ToString(getEnv("PAYMENT_API_URL", "")),
		PaymentApiKey:        cast.ToString(getEnv("PAYMENT_API_KEY", "")),
		PaymentWebhookSecret: cast.ToString(getEnv("PAYMENT_WEBHOOK_SECRET", "")),
		Currency:             cast.ToString(getEnv("CURRENCY", "usd")),
		PlatformFeePercent:   cast.ToInt(getEnv("PLATFORM_FEE_PERCENT", 10)),

		GeocodeApiURL: cast.ToString(getEnv("GEOCODE_API_URL", "")),
		GeocodeApiKey: cast.ToString(getEnv("GEOCODE_API_KEY", "")),

		UploadDir:   cast.ToString(getEnv("UPLOAD_DIR", "./uploads")),
		MaxUploadMB: cast.ToInt(getEnv("MAX_UPLOAD_MB", 5)),

		RateLimitMax:           cast.ToInt(getEnv("RATE_LIMIT_MAX", 30)),
		RateLimitWindowSeconds: cast.ToInt(getEnv("RATE_LIMIT_WINDOW_SECONDS", 60)),

		CronTimezone: cast.ToString(getEnv("CRON_TIMEZONE", "UTC")),
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
	if AppConfig.SaltRound < 4 {
		AppConfig.SaltRound = 10
	}
	if AppConfig.PlatformFeePercent < 0 {
		AppConfig.PlatformFeePercent = 0
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
