package app

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DatabaseFile string // Optional: path to SQLite database file (default: ./inventorypro.db)
	PepperFile   string // Optional: path to file containing pepper for password hashing (default: ./pepper)

	Env       string // Environment (dev, staging, prod) (default: dev)
	LogLevel  string // Log level (debug, info, warn, error) (default: info)
	LogFormat string // Log format (json, text) (default: json)
	Port      int    // HTTP server port (default: 8080)

	SessionTTL     time.Duration // Session lifetime (default: 168h)
	CookieName     string        // Session cookie name (default: ip_session)
	CookieDomain   string        // Optional: cookie domain attribute
	CookieSecure   bool          // Cookie Secure attribute (default: true outside dev)
	CookieSameSite string        // Cookie SameSite attribute (lax, strict, none) (default: lax)

	OTPDigits      int           // One-time code length (default: 6)
	OTPTTL         time.Duration // Challenge lifetime (default: 5m)
	OTPMaxAttempts int           // Wrong codes before the challenge is voided (default: 5)

	IdentityProviderURL  string        // Optional: base URL of the external identity service
	IdentityProviderName string        // Provider tag on sessions and grants (default: external)
	IdentityTimeout      time.Duration // Provider request timeout (default: 10s)

	ShutdownGracePeriod  time.Duration // Graceful shutdown timeout (default: 10s)
	HousekeepingInterval time.Duration // Housekeeping interval (default: 1h)
}

func LoadConfig() Config {
	// Missing .env is fine; the environment may be set by the process manager.
	_ = godotenv.Load()

	env := getEnvOrDefault("ENV", "dev")

	return Config{
		DatabaseFile: getEnvOrDefault("DATABASE_FILE", "inventorypro.db"),
		PepperFile:   getEnvOrDefault("PEPPER_FILE", "pepper"),

		Env:       env,
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "json"),
		Port:      getEnvIntOrDefault("PORT", 8080),

		SessionTTL:     getEnvDurationOrDefault("SESSION_TTL", 7*24*time.Hour),
		CookieName:     getEnvOrDefault("COOKIE_NAME", "ip_session"),
		CookieDomain:   os.Getenv("COOKIE_DOMAIN"),
		CookieSecure:   getEnvBoolOrDefault("COOKIE_SECURE", env != "dev"),
		CookieSameSite: getEnvOrDefault("COOKIE_SAMESITE", "lax"),

		OTPDigits:      getEnvIntOrDefault("OTP_DIGITS", 6),
		OTPTTL:         getEnvDurationOrDefault("OTP_TTL", 5*time.Minute),
		OTPMaxAttempts: getEnvIntOrDefault("OTP_MAX_ATTEMPTS", 5),

		IdentityProviderURL:  os.Getenv("IDENTITY_PROVIDER_URL"),
		IdentityProviderName: getEnvOrDefault("IDENTITY_PROVIDER_NAME", "external"),
		IdentityTimeout:      getEnvDurationOrDefault("IDENTITY_TIMEOUT", 10*time.Second),

		ShutdownGracePeriod:  getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),
		HousekeepingInterval: getEnvDurationOrDefault("HOUSEKEEPING_INTERVAL", 1*time.Hour),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if boolValue, err := strconv.ParseBool(value); err == nil {
		return boolValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "1h", "30m", "90s")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Try parsing as integer minutes
	if minutes, err := strconv.Atoi(value); err == nil {
		return time.Duration(minutes) * time.Minute
	}

	return defaultValue
}
