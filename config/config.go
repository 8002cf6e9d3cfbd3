package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Bucket          string
	Prefix          string
}

// Enabled reports whether display images should be served from object storage
// instead of inline data URLs.
func (r R2Config) Enabled() bool {
	return r.AccountID != "" && r.AccessKeyID != "" && r.AccessKeySecret != "" && r.Bucket != ""
}

type DBConfig struct {
	Username string
	Password string
	Host     string
	Port     string
	Name     string
}

func (d DBConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", d.Username, d.Password, d.Host, d.Port, d.Name)
}

type Config struct {
	Env                   string
	Port                  string
	JWTSecret             string
	GoogleAPIKey          string
	GeminiImageModel      string
	SentryDSN             string
	SessionIdle           time.Duration
	GarmentCatalogBaseURL string
	WhitenModelBackground bool
	UsageLedger           bool
	R2                    R2Config
	DB                    DBConfig
}

// LoadConfig loads environment variables from .env file, then falls back to
// the process environment and defaults.
func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using default values or system environment variables")
	}

	idleMinutes, err := strconv.Atoi(getEnv("SESSION_IDLE_MINUTES", "60"))
	if err != nil || idleMinutes <= 0 {
		log.Printf("Invalid SESSION_IDLE_MINUTES, using 60: %v", err)
		idleMinutes = 60
	}

	return &Config{
		Env:                   getEnv("ENV", "dev"),
		Port:                  getEnv("PORT", "8080"),
		JWTSecret:             os.Getenv("JWT_SECRET"),
		GoogleAPIKey:          os.Getenv("GOOGLE_API_KEY"),
		GeminiImageModel:      getEnv("GEMINI_IMAGE_MODEL", "gemini-2.5-flash-image-preview"),
		SentryDSN:             os.Getenv("SENTRY_DSN"),
		SessionIdle:           time.Duration(idleMinutes) * time.Minute,
		GarmentCatalogBaseURL: os.Getenv("GARMENT_CATALOG_BASE_URL"),
		WhitenModelBackground: getBool("WHITEN_MODEL_BACKGROUND", false),
		UsageLedger:           getBool("USAGE_LEDGER", false),
		R2: R2Config{
			AccountID:       os.Getenv("R2_ACCOUNT_ID"),
			AccessKeyID:     os.Getenv("R2_ACCESS_KEY_ID"),
			AccessKeySecret: os.Getenv("R2_ACCESS_KEY_SECRET"),
			Bucket:          os.Getenv("R2_BUCKET"),
			Prefix:          getEnv("R2_PREFIX", "studio"),
		},
		DB: DBConfig{
			Username: os.Getenv("DB_USERNAME"),
			Password: os.Getenv("DB_PASSWORD"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			Name:     os.Getenv("DB_NAME"),
		},
	}
}

func (c *Config) IsProduction() bool {
	return c.Env == "prod" || c.Env == "production"
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if len(value) == 0 {
		return fallback
	}
	return value
}

func getBool(key string, fallback bool) bool {
	value, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return value
}
