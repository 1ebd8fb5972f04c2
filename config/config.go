package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	App struct {
		Env         string `env:"APP_ENV" envDefault:"development"`
		Port        string `env:"PORT"    envDefault:"8088"`
		FrontendURL string `env:"FRONTEND_URL" envDefault:"http://localhost:3000"`
	}
	DB struct {
		Driver   string `env:"DB_DRIVER"   envDefault:"postgres"`
		Host     string `env:"DB_HOST"     envDefault:"localhost"`
		Port     string `env:"DB_PORT"     envDefault:"5432"`
		User     string `env:"DB_USER"     envDefault:"postgres"`
		Password string `env:"DB_PASSWORD" envDefault:"password"`
		Name     string `env:"DB_NAME"     envDefault:"clubhub"`
		SSLMode  string `env:"DB_SSLMODE"  envDefault:"disable"`
		TimeZone string `env:"DB_TIMEZONE" envDefault:"UTC"`
	}
	JWT struct {
		AccessTokenSecret        string `env:"JWT_ACCESS_TOKEN_SECRET"  envDefault:"supersecret"`
		AccessTokenExpiryMinutes int    `env:"JWT_ACCESS_TOKEN_EXPIRY_MINUTES" envDefault:"60"`
	}
	Session struct {
		RoleRetryAttempts int           `env:"SESSION_ROLE_RETRY_ATTEMPTS" envDefault:"5"`
		RoleRetryDelay    time.Duration `env:"SESSION_ROLE_RETRY_DELAY"    envDefault:"3s"`
	}
	Push struct {
		QueueSize int `env:"PUSH_QUEUE_SIZE" envDefault:"256"`
	}
	Mail struct {
		ResendAPIKey               string `env:"RESEND_API_KEY"`
		From                       string `env:"MAIL_FROM" envDefault:"ClubHub <noreply@clubhub.local>"`
		PasswordResetURL           string `env:"PASSWORD_RESET_URL"`
		PasswordResetExpiryMinutes int    `env:"PASSWORD_RESET_EXPIRY_MINUTES" envDefault:"30"`
	}
}

// LoadConfig loads configuration from environment variables into the Config struct.
func LoadConfig() (*Config, error) {
	// Load .env file. It's okay if it doesn't exist, especially in production
	// where env vars are set directly.
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found or error loading, relying on system environment variables.")
	}

	cfg := &Config{}

	// --- App Configuration ---
	cfg.App.Env = getEnv("APP_ENV", "development")
	cfg.App.Port = getEnv("PORT", "8088")
	cfg.App.FrontendURL = getEnv("FRONTEND_URL", "http://localhost:3000")

	// --- Database Configuration ---
	cfg.DB.Driver = getEnv("DB_DRIVER", DriverPostgres)
	cfg.DB.Host = getEnv("DB_HOST", "localhost")
	cfg.DB.Port = getEnv("DB_PORT", "5432")
	cfg.DB.User = getEnv("DB_USER", "postgres")
	cfg.DB.Password = getEnv("DB_PASSWORD", "password")
	cfg.DB.Name = getEnv("DB_NAME", "clubhub")
	cfg.DB.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.DB.TimeZone = getEnv("DB_TIMEZONE", "UTC")
	if cfg.DB.Driver != DriverPostgres && cfg.DB.Driver != DriverMemory {
		return nil, fmt.Errorf("invalid DB_DRIVER %q: expected %q or %q", cfg.DB.Driver, DriverPostgres, DriverMemory)
	}

	// --- JWT Configuration ---
	cfg.JWT.AccessTokenSecret = getEnv("JWT_ACCESS_TOKEN_SECRET", "your-very-strong-access-secret")

	var err error
	cfg.JWT.AccessTokenExpiryMinutes, err = getEnvAsInt("JWT_ACCESS_TOKEN_EXPIRY_MINUTES", 60)
	if err != nil {
		return nil, fmt.Errorf("invalid JWT_ACCESS_TOKEN_EXPIRY_MINUTES: %w", err)
	}

	// --- Session Configuration ---
	cfg.Session.RoleRetryAttempts, err = getEnvAsInt("SESSION_ROLE_RETRY_ATTEMPTS", 5)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_ROLE_RETRY_ATTEMPTS: %w", err)
	}
	if cfg.Session.RoleRetryAttempts < 1 {
		return nil, fmt.Errorf("invalid SESSION_ROLE_RETRY_ATTEMPTS: must be at least 1")
	}
	cfg.Session.RoleRetryDelay, err = getEnvAsDuration("SESSION_ROLE_RETRY_DELAY", 3*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid SESSION_ROLE_RETRY_DELAY: %w", err)
	}

	// --- Push Configuration ---
	cfg.Push.QueueSize, err = getEnvAsInt("PUSH_QUEUE_SIZE", 256)
	if err != nil {
		return nil, fmt.Errorf("invalid PUSH_QUEUE_SIZE: %w", err)
	}

	// --- Mail Configuration ---
	cfg.Mail.ResendAPIKey = getEnv("RESEND_API_KEY", "")
	cfg.Mail.From = getEnv("MAIL_FROM", "ClubHub <noreply@clubhub.local>")
	cfg.Mail.PasswordResetURL = getEnv("PASSWORD_RESET_URL", cfg.App.FrontendURL+"/reset-password")
	cfg.Mail.PasswordResetExpiryMinutes, err = getEnvAsInt("PASSWORD_RESET_EXPIRY_MINUTES", 30)
	if err != nil {
		return nil, fmt.Errorf("invalid PASSWORD_RESET_EXPIRY_MINUTES: %w", err)
	}

	// Basic validation for critical secrets
	if cfg.JWT.AccessTokenSecret == "your-very-strong-access-secret" {
		log.Println("WARNING: Using default JWT secret. Please set JWT_ACCESS_TOKEN_SECRET for production.")
	}
	if cfg.DB.Password == "password" && cfg.App.Env == "production" {
		log.Println("WARNING: Using default DB password in production. Please set DB_PASSWORD environment variable.")
	}
	if cfg.Mail.ResendAPIKey == "" && cfg.App.Env == "production" {
		log.Println("WARNING: RESEND_API_KEY is not set. Password reset emails will only be logged.")
	}

	return cfg, nil
}

// DSN builds the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=%s",
		c.DB.Host,
		c.DB.User,
		c.DB.Password,
		c.DB.Name,
		c.DB.Port,
		c.DB.SSLMode,
		c.DB.TimeZone,
	)
}

// ConnectDB establishes a connection to the database using the provided configuration.
func ConnectDB(cfg *Config) (*gorm.DB, error) {
	gormConfig := &gorm.Config{}
	if cfg.App.Env == "development" {
		gormConfig.Logger = logger.Default.LogMode(logger.Info) // Log SQL queries in development
	} else {
		gormConfig.Logger = logger.Default.LogMode(logger.Silent) // Less verbose in production
	}

	gormDB, err := gorm.Open(postgres.Open(cfg.DSN()), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Successfully connected to database!")
	return gormDB, nil
}

// Helper function to get an environment variable or return a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Helper function to get an environment variable as an integer or return a default value.
func getEnvAsInt(key string, fallback int) (int, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return fallback, fmt.Errorf("env var %s: expected integer, got '%s'", key, valueStr)
	}
	return value, nil
}

// getEnvAsDuration accepts Go durations ("3s", "500ms").
func getEnvAsDuration(key string, fallback time.Duration) (time.Duration, error) {
	valueStr := getEnv(key, "")
	if valueStr == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return fallback, fmt.Errorf("env var %s: expected duration, got '%s'", key, valueStr)
	}
	return value, nil
}
