package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type GeneralConfig struct {
	Env           string
	LogLevel      string
	Port          int
	AllowedOrigin string
}

type DatabaseConfig struct {
	// URL, when set, wins over the discrete fields below. This is the only
	// fallback chain: DATABASE_URL > DB_* vars.
	URL             string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int
	ConnMaxIdleTime int
	MigrationsPath  string
}

type WidgetConfig struct {
	CookieTTL     time.Duration
	RetryAttempts int
	RetryBaseWait time.Duration
}

type appConfig struct {
	GeneralConfig  GeneralConfig
	DatabaseConfig DatabaseConfig
	WidgetConfig   WidgetConfig
}

var AppConfigInstance appConfig

// LoadConfigs loads the configurations from the environment variables
func LoadConfigs() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Error loading .env files: %v", err)
	}

	loadGeneralConfigs()
	loadDatabaseConfigs()
	loadWidgetConfigs()
}

func loadGeneralConfigs() {
	AppConfigInstance.GeneralConfig.Env = getEnv("APP_ENV", "dev")
	AppConfigInstance.GeneralConfig.LogLevel = getEnv("LOG_LEVEL", "info")
	AppConfigInstance.GeneralConfig.Port = getEnvInt("PORT", 8080)
	AppConfigInstance.GeneralConfig.AllowedOrigin = getEnv("CORS_ALLOWED_ORIGIN", "*")
}

func loadDatabaseConfigs() {
	AppConfigInstance.DatabaseConfig.URL = getEnv("DATABASE_URL", "")
	AppConfigInstance.DatabaseConfig.Host = getEnv("DB_HOST", "localhost")
	AppConfigInstance.DatabaseConfig.Port = getEnvInt("DB_PORT", 5432)
	AppConfigInstance.DatabaseConfig.User = getEnv("DB_USER", "countdown_dev_user")
	AppConfigInstance.DatabaseConfig.Password = getEnv("DB_PASSWORD", "countdown1234")
	AppConfigInstance.DatabaseConfig.DBName = getEnv("DB_NAME", "countdown")
	AppConfigInstance.DatabaseConfig.SSLMode = getEnv("DB_SSLMODE", "disable")
	AppConfigInstance.DatabaseConfig.MaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 25)
	AppConfigInstance.DatabaseConfig.MaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 5)
	AppConfigInstance.DatabaseConfig.ConnMaxLifetime = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	AppConfigInstance.DatabaseConfig.ConnMaxIdleTime = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 5)
	AppConfigInstance.DatabaseConfig.MigrationsPath = getEnv("DB_MIGRATIONS_PATH", "./migrations")
}

func loadWidgetConfigs() {
	AppConfigInstance.WidgetConfig.CookieTTL = getEnvDuration("WIDGET_COOKIE_TTL", 30*24*time.Hour)
	AppConfigInstance.WidgetConfig.RetryAttempts = getEnvInt("WIDGET_RETRY_ATTEMPTS", 3)
	AppConfigInstance.WidgetConfig.RetryBaseWait = getEnvDuration("WIDGET_RETRY_BASE_WAIT", time.Second)
}

// getEnv returns the environment variable value if it exists, otherwise returns the fallback value
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns the environment variable value as int if it exists, otherwise returns the fallback value
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvDuration returns the environment variable value as duration if it exists, otherwise returns the fallback value
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
