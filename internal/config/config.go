package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	minJWTSecretLength = 32
	minAdminKeyLength  = 8
)

type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	HTTPPort    string
	Timezone    string

	AuthJWTSecret string
	AuthJWTTTL    time.Duration
	AuthJWTIssuer string

	// AdminKey is the shared administrative credential accepted in the
	// X-Admin-Key header. AdminActorID is the identity recorded as approver
	// when a request authenticates with it.
	AdminKey     string
	AdminActorID string

	FrontendURL string

	// TrustedProxies lists the proxy CIDRs or IPs whose X-Forwarded-For is
	// honoured. Empty means the socket address is the client IP.
	TrustedProxies []string

	LogLevel  string
	LogFormat string

	OtelEnabled       bool
	OTLPEndpoint      string
	OTLPProtocol      string
	OtelSamplingRatio float64

	DBType            string
	DBURL             string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBPath            string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	RateLimit RateLimitConfig
	Bootstrap BootstrapConfig

	DashboardConfigFile string
}

type RateLimitConfig struct {
	Enabled       bool
	Rate          float64
	Burst         int
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

type BootstrapConfig struct {
	AdminEmail    string
	AdminPassword string
	AdminName     string
}

func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		AppName:     getenv("APP_NAME", "referralhub"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),
		HTTPPort:    getenv("PORT", "3001"),
		Timezone:    getenv("APP_TIMEZONE", "America/Sao_Paulo"),

		AuthJWTSecret: strings.TrimSpace(getenv("JWT_SECRET", "")),
		AuthJWTTTL:    getenvDuration("JWT_EXPIRES_IN", 24*time.Hour),
		AuthJWTIssuer: getenv("JWT_ISSUER", "referralhub"),

		AdminKey:     strings.TrimSpace(getenv("ADMIN_KEY", "")),
		AdminActorID: strings.TrimSpace(getenv("ADMIN_ACTOR_ID", "admin-key")),

		FrontendURL:    strings.TrimRight(getenv("FRONTEND_URL", "http://localhost:3000"), "/"),
		TrustedProxies: getenvList("TRUSTED_PROXIES"),

		LogLevel:  strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(getenv("LOG_FORMAT", "json")),

		OtelEnabled:       getenvBool("OTEL_ENABLED", false),
		OTLPEndpoint:      getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
		OTLPProtocol:      strings.ToLower(getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc")),
		OtelSamplingRatio: getenvFloat("OTEL_SAMPLING_RATIO", 0.1),

		DBType:            strings.ToLower(getenv("DB_TYPE", "postgres")),
		DBURL:             strings.TrimSpace(getenv("DATABASE_URL", "")),
		DBHost:            getenv("DB_HOST", "localhost"),
		DBPort:            getenv("DB_PORT", "5432"),
		DBName:            getenv("DB_NAME", "referralhub"),
		DBUser:            getenv("DB_USER", "postgres"),
		DBPassword:        getenv("DB_PASSWORD", ""),
		DBSSLMode:         getenv("DB_SSLMODE", "disable"),
		DBPath:            getenv("DB_PATH", "referralhub.db"),
		DBMaxIdleConn:     getenvInt("DB_MAX_IDLE_CONNS", 5),
		DBMaxOpenConn:     getenvInt("DB_MAX_OPEN_CONNS", 20),
		DBConnMaxLifetime: getenvInt("DB_CONN_MAX_LIFETIME", 300),
		DBConnMaxIdleTime: getenvInt("DB_CONN_MAX_IDLE_TIME", 60),

		RateLimit: RateLimitConfig{
			Enabled:       getenvBool("RATE_LIMIT_ENABLED", true),
			Rate:          getenvFloat("RATE_LIMIT_RATE", 1),
			Burst:         getenvInt("RATE_LIMIT_BURST", 10),
			RedisAddr:     strings.TrimSpace(getenv("REDIS_ADDR", "")),
			RedisPassword: strings.TrimSpace(getenv("REDIS_PASSWORD", "")),
			RedisDB:       getenvInt("REDIS_DB", 0),
		},
		Bootstrap: BootstrapConfig{
			AdminEmail:    strings.ToLower(strings.TrimSpace(getenv("BOOTSTRAP_ADMIN_EMAIL", ""))),
			AdminPassword: getenv("BOOTSTRAP_ADMIN_PASSWORD", ""),
			AdminName:     getenv("BOOTSTRAP_ADMIN_NAME", "Administrador"),
		},

		DashboardConfigFile: strings.TrimSpace(getenv("DASHBOARD_CONFIG_FILE", "")),
	}

	return cfg
}

// Validate rejects configurations the service must not start with.
func (c Config) Validate() error {
	var errs []error
	if len(c.AuthJWTSecret) < minJWTSecretLength {
		errs = append(errs, fmt.Errorf("JWT_SECRET must be at least %d characters", minJWTSecretLength))
	}
	if len(c.AdminKey) < minAdminKeyLength {
		errs = append(errs, fmt.Errorf("ADMIN_KEY must be at least %d characters", minAdminKeyLength))
	}
	if c.AdminActorID == "" {
		errs = append(errs, errors.New("ADMIN_ACTOR_ID cannot be empty"))
	}
	if c.AuthJWTTTL <= 0 {
		errs = append(errs, errors.New("JWT_EXPIRES_IN must be positive"))
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		errs = append(errs, fmt.Errorf("APP_TIMEZONE: %w", err))
	}
	if c.RateLimit.Enabled && (c.RateLimit.Rate <= 0 || c.RateLimit.Burst <= 0) {
		errs = append(errs, errors.New("rate limit rate and burst must be positive"))
	}
	return errors.Join(errs...)
}

// Location returns the calendar used for month boundaries. Validate
// guarantees the zone loads; UTC is the fallback for unvalidated configs.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvList(key string) []string {
	var out []string
	for _, item := range strings.Split(os.Getenv(key), ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
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

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}

// getenvDuration accepts Go durations ("90m") and the day suffix used by
// older deployments ("7d").
func getenvDuration(key string, def time.Duration) time.Duration {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	if strings.HasSuffix(value, "d") {
		days, err := strconv.Atoi(strings.TrimSuffix(value, "d"))
		if err != nil {
			return def
		}
		return time.Duration(days) * 24 * time.Hour
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return def
	}
	return parsed
}
