package config

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hogent/event-ticket-manager/auth"
	"github.com/joho/godotenv"
)

// MaxJWTLeeway bounds the clock skew tolerated when verifying tokens.
const MaxJWTLeeway = 30 * time.Second

// Config represents the complete application configuration.
// It is built once at startup and passed by pointer into constructors.
type Config struct {
	Server      ServerConfig
	Database    DatabaseConfig
	CORS        CORSConfig
	Log         LogConfig
	Auth        AuthConfig
	Environment string
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL database configuration.
// When ConnectionString (from DATABASE_URL) is set, it takes precedence over individual fields.
type DatabaseConfig struct {
	ConnectionString string // From DATABASE_URL when set
	Host             string
	Port             int
	User             string
	Password         string
	Database         string
	SSLMode          string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
}

// CORSConfig holds the allowed origins for browser clients
type CORSConfig struct {
	AllowedOrigins []string
	MaxAge         int
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level    string
	Format   string // json or console
	Disabled bool
}

// AuthConfig holds everything the authentication subsystem needs.
type AuthConfig struct {
	// MaxDelay is the minimum wall-clock time of every login attempt.
	MaxDelay time.Duration

	HashLength      uint32
	HashTimeCost    uint32
	HashMemoryCost  uint32 // KiB
	HashParallelism uint8
	HashSaltLength  uint32

	JWTSecret             string
	JWTAudience           string
	JWTIssuer             string
	JWTExpirationInterval time.Duration
	JWTLeeway             time.Duration

	// AdminBypassOwnership exempts ADMIN principals from ownership checks.
	AdminBypassOwnership bool
}

// New creates a new Config instance by loading environment variables
func New(ctx context.Context) (*Config, error) {
	// .env is optional
	_ = godotenv.Load(".env")

	authCfg, err := loadAuthConfig()
	if err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "0.0.0.0"),
			Port:            getPort(),
			ReadTimeout:     getEnvAsDuration("SERVER_READ_TIMEOUT", 30*time.Second),
			WriteTimeout:    getEnvAsDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
			RequestTimeout:  getEnvAsDuration("SERVER_REQUEST_TIMEOUT", 60*time.Second),
			ShutdownTimeout: getEnvAsDuration("SERVER_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: loadDatabaseConfig(),
		CORS: CORSConfig{
			AllowedOrigins: getEnvAsList("CORS_ORIGINS", []string{"http://localhost:5173"}),
			MaxAge:         getEnvAsInt("CORS_MAX_AGE", 3*60*60),
		},
		Log: LogConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			Format:   getEnv("LOG_FORMAT", "json"),
			Disabled: getEnvAsBool("LOG_DISABLED", false),
		},
		Auth: authCfg,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate checks if all required configuration fields are set
func (c *Config) Validate() error {
	// Database validation (DATABASE_URL or DB_* vars)
	if c.Database.ConnectionString == "" && c.Database.Host == "" {
		return fmt.Errorf("database configuration required: set DATABASE_URL or DB_HOST")
	}
	if c.Database.ConnectionString == "" {
		if c.Database.User == "" {
			return fmt.Errorf("database user is required")
		}
		if c.Database.Database == "" {
			return fmt.Errorf("database name is required")
		}
	}

	if c.Log.Level == "" {
		return fmt.Errorf("log level is required")
	}
	if c.Log.Format != "json" && c.Log.Format != "console" {
		return fmt.Errorf("log format must be json or console, got %q", c.Log.Format)
	}

	if err := c.Auth.validate(c.IsProduction()); err != nil {
		return err
	}

	// the login throttle must finish its wait before the request is cut off
	if c.Server.RequestTimeout > 0 && c.Auth.MaxDelay >= c.Server.RequestTimeout {
		return fmt.Errorf("auth max delay (%s) must be below the request timeout (%s)", c.Auth.MaxDelay, c.Server.RequestTimeout)
	}
	if c.Server.WriteTimeout > 0 && c.Auth.MaxDelay >= c.Server.WriteTimeout {
		return fmt.Errorf("auth max delay (%s) must be below the write timeout (%s)", c.Auth.MaxDelay, c.Server.WriteTimeout)
	}
	return nil
}

func (a *AuthConfig) validate(production bool) error {
	if a.JWTSecret == "" {
		return fmt.Errorf("AUTH_JWT_SECRET is required")
	}
	if production && len(a.JWTSecret) < 32 {
		return fmt.Errorf("AUTH_JWT_SECRET must be at least 32 bytes in production")
	}
	if a.JWTAudience == "" || a.JWTIssuer == "" {
		return fmt.Errorf("jwt audience and issuer are required")
	}
	if a.JWTExpirationInterval <= 0 {
		return fmt.Errorf("jwt expiration interval must be positive")
	}
	if a.JWTLeeway < 0 || a.JWTLeeway > MaxJWTLeeway {
		return fmt.Errorf("jwt leeway must be between 0 and %s", MaxJWTLeeway)
	}
	if a.MaxDelay < 0 {
		return fmt.Errorf("auth max delay must not be negative")
	}
	if a.HashLength < 16 {
		return fmt.Errorf("hash length must be at least 16 bytes")
	}
	if a.HashSaltLength < 16 {
		return fmt.Errorf("hash salt length must be at least 16 bytes")
	}
	if a.HashTimeCost < 1 {
		return fmt.Errorf("hash time cost must be at least 1")
	}
	if a.HashMemoryCost < 8*1024 {
		return fmt.Errorf("hash memory cost must be at least 8192 KiB")
	}
	if a.HashParallelism < 1 {
		return fmt.Errorf("hash parallelism must be at least 1")
	}
	if a.HashTimeCost > auth.MaxHashTimeCost {
		return fmt.Errorf("hash time cost must be at most %d", auth.MaxHashTimeCost)
	}
	if a.HashMemoryCost > auth.MaxHashMemoryKiB {
		return fmt.Errorf("hash memory cost must be at most %d KiB", auth.MaxHashMemoryKiB)
	}
	if a.HashLength > auth.MaxHashKeyLength {
		return fmt.Errorf("hash length must be at most %d bytes", auth.MaxHashKeyLength)
	}
	if a.HashSaltLength > auth.MaxHashSaltLength {
		return fmt.Errorf("hash salt length must be at most %d bytes", auth.MaxHashSaltLength)
	}
	return nil
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Environment == "production" || c.Environment == "prod"
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Environment == "development" || c.Environment == "dev"
}

// DSN returns the PostgreSQL connection string.
// Uses ConnectionString (from DATABASE_URL) when set; otherwise builds from individual fields.
func (c *DatabaseConfig) DSN() string {
	if c.ConnectionString != "" {
		return c.ConnectionString
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// LogString returns a safe string for logging (no password).
func (c *DatabaseConfig) LogString() string {
	if c.ConnectionString != "" {
		u, err := url.Parse(c.ConnectionString)
		if err == nil {
			port := u.Port()
			if port == "" {
				port = "5432"
			}
			return fmt.Sprintf("host=%s port=%s database=%s", u.Hostname(), port, strings.TrimPrefix(u.Path, "/"))
		}
		return "host=<from DATABASE_URL>"
	}
	return fmt.Sprintf("host=%s port=%d database=%s", c.Host, c.Port, c.Database)
}

// Address returns the HTTP server address
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func loadDatabaseConfig() DatabaseConfig {
	dbURL := getEnv("DATABASE_URL", "")
	if dbURL != "" {
		return DatabaseConfig{
			ConnectionString: dbURL,
			MaxOpenConns:     getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:     getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		}
	}
	return DatabaseConfig{
		Host:            getEnv("DB_HOST", "localhost"),
		Port:            getEnvAsInt("DB_PORT", 5432),
		User:            getEnv("DB_USER", "dev"),
		Password:        getEnv("DB_PASSWORD", ""),
		Database:        getEnv("DB_NAME", "tickets"),
		SSLMode:         getEnv("DB_SSLMODE", "disable"),
		MaxOpenConns:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime: getEnvAsDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
	}
}

func loadAuthConfig() (AuthConfig, error) {
	cfg := AuthConfig{
		MaxDelay:              getEnvAsMillis("AUTH_MAX_DELAY", 5*time.Second),
		JWTSecret:             getEnv("AUTH_JWT_SECRET", ""),
		JWTAudience:           getEnv("AUTH_JWT_AUDIENCE", "event-ticket-manager.hogent.be"),
		JWTIssuer:             getEnv("AUTH_JWT_ISSUER", "event-ticket-manager.hogent.be"),
		JWTExpirationInterval: getEnvAsSeconds("AUTH_JWT_EXPIRATION_INTERVAL", time.Hour),
		JWTLeeway:             getEnvAsDuration("AUTH_JWT_LEEWAY", 5*time.Second),
		AdminBypassOwnership:  getEnvAsBool("AUTH_ADMIN_BYPASS_OWNERSHIP", true),
	}

	var err error
	if cfg.HashLength, err = getEnvAsUint32("AUTH_HASH_LENGTH", 32); err != nil {
		return AuthConfig{}, err
	}
	if cfg.HashTimeCost, err = getEnvAsUint32("AUTH_HASH_TIME_COST", 6); err != nil {
		return AuthConfig{}, err
	}
	if cfg.HashMemoryCost, err = getEnvAsUint32("AUTH_HASH_MEMORY_COST", 65536); err != nil {
		return AuthConfig{}, err
	}
	if cfg.HashSaltLength, err = getEnvAsUint32("AUTH_HASH_SALT_LENGTH", 16); err != nil {
		return AuthConfig{}, err
	}
	parallelism, err := getEnvAsUint("AUTH_HASH_PARALLELISM", 1, 8)
	if err != nil {
		return AuthConfig{}, err
	}
	cfg.HashParallelism = uint8(parallelism)

	return cfg, nil
}

// Helper functions

// getPort returns the server port from PORT or SERVER_PORT env vars (default: 9000)
func getPort() int {
	if value := os.Getenv("PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	if value := os.Getenv("SERVER_PORT"); value != "" {
		if p, err := strconv.Atoi(value); err == nil {
			return p
		}
	}
	return 9000
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsUint parses an unsigned integer that must fit in bits. It fails
// instead of falling back to the default.
func getEnvAsUint(key string, defaultValue uint64, bits int) (uint64, error) {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue, nil
	}
	value, err := strconv.ParseUint(strings.TrimSpace(valueStr), 10, bits)
	if err != nil {
		return 0, fmt.Errorf("%s must be an unsigned integer below 2^%d, got %q", key, bits, valueStr)
	}
	return value, nil
}

func getEnvAsUint32(key string, defaultValue uint32) (uint32, error) {
	value, err := getEnvAsUint(key, uint64(defaultValue), 32)
	return uint32(value), err
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

// getEnvAsMillis accepts either a bare number of milliseconds or a Go duration string.
func getEnvAsMillis(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if ms, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(ms) * time.Millisecond
	}
	return getEnvAsDuration(key, defaultValue)
}

// getEnvAsSeconds accepts either a bare number of seconds or a Go duration string.
func getEnvAsSeconds(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	if s, err := strconv.Atoi(valueStr); err == nil {
		return time.Duration(s) * time.Second
	}
	return getEnvAsDuration(key, defaultValue)
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
