package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Database
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string

	// JWT
	JWTSecret        string
	JWTAccessExpiry  time.Duration
	JWTRefreshExpiry time.Duration

	// One-time codes
	VerificationCodeTTL time.Duration
	ResetCodeTTL        time.Duration

	// Admin bootstrap
	AdminEmails  string
	AdminUserIDs string

	// Server
	Port                   string
	CORSOrigins            string
	BodyLimitMB            int
	RateLimitPerMinute     int
	AuthRateLimitPerMinute int

	// Object storage
	StorageDir       string
	StoragePublicURL string
	MaxFileSizeMB    int

	// Mail
	MailHost     string
	MailPort     int
	MailUsername string
	MailPassword string
	MailFrom     string
	MailFromName string
	FrontendURL  string

	// NattyPad content provider
	NattyPadBaseURL      string
	NattyPadClientID     string
	NattyPadClientSecret string
	NattyPadTokenTTL     time.Duration

	// Logging
	LogFormat        string
	LogLevel         string
	LogRetentionDays int
}

// Load reads configuration from the environment. A .env file in the working
// directory is loaded first when present; real environment variables win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("failed to read .env file", "error", err)
	}

	return &Config{
		DatabaseURL: getEnv("DATABASE_URL", ""),
		DBHost:      getEnv("DB_HOST", "localhost"),
		DBPort:      getEnv("DB_PORT", "5432"),
		DBUser:      getEnv("DB_USER", "postgres"),
		DBPassword:  getEnv("DB_PASSWORD", ""),
		DBName:      getEnv("DB_NAME", "applibry"),
		DBSSLMode:   getEnv("DB_SSLMODE", "disable"),

		JWTSecret:        getEnv("JWT_SECRET", ""),
		JWTAccessExpiry:  parseDuration(getEnv("JWT_ACCESS_EXPIRY", "30m"), 30*time.Minute),
		JWTRefreshExpiry: parseDuration(getEnv("JWT_REFRESH_EXPIRY", "168h"), 168*time.Hour),

		VerificationCodeTTL: parseDuration(getEnv("VERIFICATION_CODE_TTL", "24h"), 24*time.Hour),
		ResetCodeTTL:        parseDuration(getEnv("RESET_CODE_TTL", "30m"), 30*time.Minute),

		AdminEmails:  getEnv("ADMIN_EMAILS", ""),
		AdminUserIDs: getEnv("ADMIN_USER_IDS", ""),

		Port:                   getEnv("PORT", "8080"),
		CORSOrigins:            getEnv("CORS_ORIGINS", "*"),
		BodyLimitMB:            parseInt(getEnv("BODY_LIMIT_MB", "4"), 4),
		RateLimitPerMinute:     parseInt(getEnv("RATE_LIMIT_PER_MINUTE", "60"), 60),
		AuthRateLimitPerMinute: parseInt(getEnv("AUTH_RATE_LIMIT_PER_MINUTE", "10"), 10),

		StorageDir:       getEnv("STORAGE_DIR", "uploads"),
		StoragePublicURL: getEnv("STORAGE_PUBLIC_URL", "/uploads"),
		MaxFileSizeMB:    parseInt(getEnv("MAX_FILE_SIZE_MB", "2"), 2),

		MailHost:     getEnv("MAIL_HOST", ""),
		MailPort:     parseInt(getEnv("MAIL_PORT", "587"), 587),
		MailUsername: getEnv("MAIL_USERNAME", ""),
		MailPassword: getEnv("MAIL_PASSWORD", ""),
		MailFrom:     getEnv("MAIL_FROM", ""),
		MailFromName: getEnv("MAIL_FROM_NAME", "Applibry"),
		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:3000"),

		NattyPadBaseURL:      getEnv("NATTYPAD_BASE_URL", ""),
		NattyPadClientID:     getEnv("NATTYPAD_CLIENT_ID", ""),
		NattyPadClientSecret: getEnv("NATTYPAD_CLIENT_SECRET", ""),
		NattyPadTokenTTL:     parseDuration(getEnv("NATTYPAD_TOKEN_TTL", "1h"), time.Hour),

		LogFormat:        getEnv("LOG_FORMAT", "json"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogRetentionDays: parseInt(getEnv("LOG_RETENTION_DAYS", "30"), 30),
	}
}

func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return "host=" + c.DBHost +
		" user=" + c.DBUser +
		" password=" + c.DBPassword +
		" dbname=" + c.DBName +
		" port=" + c.DBPort +
		" sslmode=" + c.DBSSLMode +
		" TimeZone=UTC"
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseDuration(s string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
