package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	JWT        JWTConfig
	GoogleMaps GoogleMapsConfig
	Uber       UberConfig
	Ola        OlaConfig
	Rapido     RapidoConfig
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port           string
	Environment    string
	ServiceName    string
	ReadTimeout    int // seconds
	WriteTimeout   int // seconds
	RequestTimeout int // seconds, applied to every inbound request and outbound call
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// DSN builds a PostgreSQL connection string
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode)
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
}

// Addr returns the host:port address of the Redis server
func (c *RedisConfig) Addr() string {
	return c.Host + ":" + c.Port
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret     string
	Expiration int // in hours
}

// GoogleMapsConfig holds Google Maps Platform configuration. The geocoding
// and distance-matrix clients fall back to synthetic results when APIKey is
// empty.
type GoogleMapsConfig struct {
	APIKey  string
	BaseURL string
}

// Configured reports whether live Google Maps calls are possible.
func (c *GoogleMapsConfig) Configured() bool {
	return c.APIKey != ""
}

// UberConfig holds Uber OAuth application credentials
type UberConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
	APIBaseURL   string
	AuthURL      string
	TokenURL     string
}

// Configured reports whether the OAuth application is fully configured.
func (c *UberConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURI != ""
}

// OlaConfig holds Ola API credentials
type OlaConfig struct {
	APIKey   string
	UserID   string
	Password string
	BaseURL  string
}

// Configured reports whether live Ola calls are possible.
func (c *OlaConfig) Configured() bool {
	return c.APIKey != "" && c.UserID != "" && c.Password != ""
}

// RapidoConfig holds Rapido API credentials
type RapidoConfig struct {
	APIKey    string
	APISecret string
	BaseURL   string
}

// Configured reports whether live Rapido calls are possible.
func (c *RapidoConfig) Configured() bool {
	return c.APIKey != "" && c.APISecret != ""
}

// Load loads configuration from environment variables
func Load(serviceName string) (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			Environment:    getEnv("ENVIRONMENT", "development"),
			ServiceName:    serviceName,
			ReadTimeout:    getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout:   getEnvAsInt("WRITE_TIMEOUT", 10),
			RequestTimeout: getEnvAsInt("REQUEST_TIMEOUT", 15),
		},
		Database: DatabaseConfig{
			Enabled:  getEnvAsBool("DB_ENABLED", false),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "farecompare"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:     getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
			Expiration: getEnvAsInt("JWT_EXPIRATION", 24),
		},
		GoogleMaps: GoogleMapsConfig{
			APIKey:  getEnv("GOOGLE_MAPS_API_KEY", ""),
			BaseURL: getEnv("GOOGLE_MAPS_BASE_URL", "https://maps.googleapis.com/maps/api"),
		},
		Uber: UberConfig{
			ClientID:     getEnv("UBER_CLIENT_ID", ""),
			ClientSecret: getEnv("UBER_CLIENT_SECRET", ""),
			RedirectURI:  getEnv("UBER_REDIRECT_URI", ""),
			APIBaseURL:   getEnv("UBER_API_BASE_URL", "https://api.uber.com/v1.2"),
			AuthURL:      getEnv("UBER_AUTH_URL", "https://auth.uber.com/oauth/v2/authorize"),
			TokenURL:     getEnv("UBER_TOKEN_URL", "https://auth.uber.com/oauth/v2/token"),
		},
		Ola: OlaConfig{
			APIKey:   getEnv("OLA_API_KEY", ""),
			UserID:   getEnv("OLA_USER_ID", ""),
			Password: getEnv("OLA_PASSWORD", ""),
			BaseURL:  getEnv("OLA_API_BASE_URL", "https://devapi.olacabs.com/v1"),
		},
		Rapido: RapidoConfig{
			APIKey:    getEnv("RAPIDO_API_KEY", ""),
			APISecret: getEnv("RAPIDO_API_SECRET", ""),
			BaseURL:   getEnv("RAPIDO_API_BASE_URL", "https://rapidoapi.com/api/v1"),
		},
	}

	return cfg, nil
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer or returns a default value
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as a boolean or returns a default value
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseBool(valueStr); err == nil {
		return value
	}
	return defaultValue
}
