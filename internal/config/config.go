package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration loaded from environment variables.
type Config struct {
	AppPort string
	AppEnv  string

	AuthServiceURL     string
	AuthServiceTimeout time.Duration
	OTPTTL             time.Duration

	SessionBackend      string // "dynamo" | "memory"
	SessionTTL          time.Duration
	SessionCookieName   string
	SessionCookieSecure bool

	AWSRegion      string
	AWSEndpointURL string // empty in prod, set to LocalStack URL in dev
	AWSAccessKeyID string
	AWSSecretKey   string
	DynamoTables   DynamoTables

	JWTPrivateKeyPath string
	JWTPublicKeyPath  string

	AllowedOrigins     []string // CORS allowed origins
	LoginRatePerSecond float64
	LoginRateBurst     int
	TrustProxyHeaders  bool // key rate limits on X-Forwarded-For; only behind a trusted proxy
	DashboardPath      string
}

// DynamoTables holds the DynamoDB table name for each entity.
type DynamoTables struct {
	AdminSessions string
}

// Load reads all configuration from environment variables.
func Load() *Config {
	return &Config{
		AppPort: getEnv("APP_PORT", "3000"),
		AppEnv:  getEnv("APP_ENV", "development"),

		AuthServiceURL:     strings.TrimRight(getEnv("AUTH_SERVICE_URL", "http://localhost:5000"), "/"),
		AuthServiceTimeout: getEnvDuration("AUTH_SERVICE_TIMEOUT", 10*time.Second),
		OTPTTL:             time.Duration(getEnvInt("OTP_TTL_SECONDS", 60)) * time.Second,

		SessionBackend:      getEnv("SESSION_BACKEND", "dynamo"),
		SessionTTL:          time.Duration(getEnvInt("SESSION_TTL_HOURS", 7*24)) * time.Hour,
		SessionCookieName:   getEnv("SESSION_COOKIE_NAME", "admin_session"),
		SessionCookieSecure: getEnv("SESSION_COOKIE_SECURE", "false") == "true",

		AWSRegion:      getEnv("AWS_REGION", "us-east-1"),
		AWSEndpointURL: getEnv("AWS_ENDPOINT_URL", ""),
		AWSAccessKeyID: getEnv("AWS_ACCESS_KEY_ID", ""),
		AWSSecretKey:   getEnv("AWS_SECRET_ACCESS_KEY", ""),
		DynamoTables: DynamoTables{
			AdminSessions: getEnv("DYNAMO_TABLE_ADMIN_SESSIONS", "admin_sessions"),
		},

		JWTPrivateKeyPath: getEnv("JWT_PRIVATE_KEY_PATH", "./private_key.pem"),
		JWTPublicKeyPath:  getEnv("JWT_PUBLIC_KEY_PATH", "./public_key.pem"),

		AllowedOrigins:     strings.Split(getEnv("ALLOWED_ORIGINS", "http://localhost:5173"), ","),
		LoginRatePerSecond: getEnvFloat("LOGIN_RATE_PER_SECOND", 5),
		LoginRateBurst:     getEnvInt("LOGIN_RATE_BURST", 10),
		TrustProxyHeaders:  getEnv("TRUST_PROXY_HEADERS", "false") == "true",
		DashboardPath:      getEnv("ADMIN_DASHBOARD_PATH", "/admin/dashboard"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

// getEnvDuration accepts Go duration strings ("10s", "1m30s").
func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
