package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Storage backend identifiers accepted in STORAGE_BACKEND.
const (
	BackendPgsql  = "pgsql"
	BackendSqlite = "sqlite"
	BackendFile   = "file"
)

// Config holds application configuration for the snapshot server and the
// CLI client.
type Config struct {
	Port         string `validate:"required"`
	IsProduction bool

	// Snapshot persistence
	StorageBackend string `validate:"oneof=pgsql sqlite file"`
	DatabaseURL    string `validate:"required_if=StorageBackend pgsql"`  // pgsql backend
	SQLitePath     string `validate:"required_if=StorageBackend sqlite"` // sqlite backend
	DataFile       string `validate:"required_if=StorageBackend file"`   // file backend, the db.json equivalent

	// Auth (single configured user)
	JWTSecret         string `validate:"required"`
	JWTExpiryDuration time.Duration
	JWTIssuer         string
	AuthUsername      string `validate:"required"`
	AuthPasswordHash  string // bcrypt
	LoginRateLimit    string // ulule/limiter formatted rate, e.g. "5-M"

	CORSAllowOrigins []string

	// Client side (huchactl)
	ServerURL   string
	ClientToken string
}

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("STORAGE_BACKEND", BackendFile)
	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("SQLITE_PATH", "hucha.db")
	viper.SetDefault("DATA_FILE", "data/db.json")
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_EXPIRY_DURATION", "12h")
	viper.SetDefault("JWT_ISSUER", "hucha-backend")
	viper.SetDefault("AUTH_USERNAME", "admin")
	viper.SetDefault("AUTH_PASSWORD_HASH", "")
	viper.SetDefault("LOGIN_RATE_LIMIT", "5-M")
	viper.SetDefault("CORS_ALLOW_ORIGINS", "*")
	viper.SetDefault("SERVER_URL", "http://localhost:8080")
	viper.SetDefault("CLIENT_TOKEN", "")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")

	cfg.StorageBackend = strings.ToLower(viper.GetString("STORAGE_BACKEND"))
	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	cfg.SQLitePath = viper.GetString("SQLITE_PATH")
	cfg.DataFile = viper.GetString("DATA_FILE")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}

	jwtExpiryStr := viper.GetString("JWT_EXPIRY_DURATION")
	jwtExpiryDuration, err := time.ParseDuration(jwtExpiryStr)
	if err != nil {
		jwtExpiryDuration = 12 * time.Hour
		log.Printf("Warning: Invalid value for JWT_EXPIRY_DURATION (%q). Defaulting to %s.\n", jwtExpiryStr, jwtExpiryDuration)
	}
	cfg.JWTExpiryDuration = jwtExpiryDuration
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	cfg.AuthUsername = viper.GetString("AUTH_USERNAME")
	cfg.AuthPasswordHash = viper.GetString("AUTH_PASSWORD_HASH")
	if cfg.AuthPasswordHash == "" {
		log.Println("Warning: AUTH_PASSWORD_HASH not set. Logins will be rejected until it is configured.")
	}
	cfg.LoginRateLimit = viper.GetString("LOGIN_RATE_LIMIT")

	cfg.CORSAllowOrigins = strings.Split(viper.GetString("CORS_ALLOW_ORIGINS"), ",")

	cfg.ServerURL = strings.TrimRight(viper.GetString("SERVER_URL"), "/")
	cfg.ClientToken = viper.GetString("CLIENT_TOKEN")

	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}
