package config

import (
	"fmt"
	"os"
	"strings"
	"time"
)

const (
	StoreMongo  = "mongo"
	StoreMemory = "memory"
)

type Config struct {
	Port           string
	Environment    string   // ENV: production, development, etc.
	AllowedOrigins []string // CORS: from ALLOWED_ORIGINS or FRONTEND_URL(s)

	// StoreDriver selects the persistence backend: "mongo" (MongoDB for
	// documents, PostgreSQL for profiles, Redis for cache/locks/feed) or
	// "memory" for local development without any services.
	StoreDriver string
	MongoURI    string
	PostgresURI string
	RedisURI    string // empty disables Redis; "none" and "off" mean the same

	JWTSecret   string
	JWTIssuer   string
	JWTAudience string

	OpenAIKey   string
	OpenAIModel string

	CloudinaryName      string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string
	CloudinaryFolder    string

	// Timezone used for "today", the countdown and the weekly job.
	Timezone        string
	SweepInterval   time.Duration
	ProfileCacheTTL time.Duration

	// Write routes allow WriteRateLimit requests per WriteRateWindow per IP.
	WriteRateLimit  int
	WriteRateWindow time.Duration

	LogLevel  string
	LogFormat string
}

func Load() *Config {
	env := strings.ToLower(strings.TrimSpace(getEnv("ENV", "development")))

	allowedOrigins := parseOrigins(getEnv("ALLOWED_ORIGINS", ""))
	if len(allowedOrigins) == 0 {
		for _, u := range []string{getEnv("FRONTEND_URL", "http://localhost:5173"), getEnv("FRONTEND_URL_2", "")} {
			u = strings.TrimSpace(u)
			if u != "" && !containsOrigin(allowedOrigins, u) {
				allowedOrigins = append(allowedOrigins, u)
			}
		}
	}

	logFormat := getEnv("LOG_FORMAT", "")
	if logFormat == "" {
		logFormat = "text"
		if env == "production" {
			logFormat = "json"
		}
	}

	return &Config{
		Port:                getEnv("PORT", "5000"),
		Environment:         env,
		AllowedOrigins:      allowedOrigins,
		StoreDriver:         strings.ToLower(getEnv("STORE_DRIVER", StoreMongo)),
		MongoURI:            getEnv("MONGODB_URI", getEnv("MONGO_URI", "mongodb://localhost:27017/hostel_survival_kit")),
		PostgresURI:         getEnv("POSTGRES_URI", "postgres://localhost:5432/hostel_survival_kit?sslmode=disable"),
		RedisURI:            optionalURI(os.Getenv("REDIS_URI")),
		JWTSecret:           getEnv("JWT_SECRET", ""),
		JWTIssuer:           getEnv("JWT_ISSUER", ""),
		JWTAudience:         getEnv("JWT_AUDIENCE", ""),
		OpenAIKey:           getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:         getEnv("OPENAI_MODEL", "gpt-4o"),
		CloudinaryName:      getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		CloudinaryFolder:    getEnv("CLOUDINARY_FOLDER", "hostel-calendars"),
		Timezone:            getEnv("APP_TIMEZONE", "Asia/Kolkata"),
		SweepInterval:       getDuration("SWEEP_INTERVAL", time.Hour),
		ProfileCacheTTL:     getDuration("PROFILE_CACHE_TTL", 10*time.Minute),
		WriteRateLimit:      getInt("WRITE_RATE_LIMIT", 30),
		WriteRateWindow:     getDuration("WRITE_RATE_WINDOW", time.Minute),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		LogFormat:           logFormat,
	}
}

// Validate reports the first setting the server can't start with.
func (c *Config) Validate() error {
	if c.StoreDriver != StoreMongo && c.StoreDriver != StoreMemory {
		return fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreMongo, StoreMemory, c.StoreDriver)
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.IsProduction() && len(c.JWTSecret) < 32 {
		return fmt.Errorf("JWT_SECRET must be at least 32 characters in production")
	}
	if _, err := c.Location(); err != nil {
		return fmt.Errorf("APP_TIMEZONE: %w", err)
	}
	if c.SweepInterval <= 0 {
		return fmt.Errorf("SWEEP_INTERVAL must be positive")
	}
	return nil
}

// Location resolves Timezone.
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// IsProduction returns true when ENV is set to "production".
func (c *Config) IsProduction() bool {
	return strings.ToLower(strings.TrimSpace(c.Environment)) == "production"
}

func (c *Config) OpenAIConfigured() bool {
	return c.OpenAIKey != "" && c.OpenAIKey != "none"
}

func (c *Config) CloudinaryConfigured() bool {
	return c.CloudinaryName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != ""
}

func parseOrigins(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func containsOrigin(list []string, o string) bool {
	o = strings.TrimSpace(strings.ToLower(o))
	for _, v := range list {
		if strings.TrimSpace(strings.ToLower(v)) == o {
			return true
		}
	}
	return false
}

// optionalURI normalizes the switch-off spellings of an optional backend to "".
func optionalURI(value string) string {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "none", "off", "disabled":
		return ""
	}
	return value
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getDuration reads a Go duration ("90m", "1h"). Unparsable values yield
// zero so Validate can reject them.
func getDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func getInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var n int
	if _, err := fmt.Sscanf(value, "%d", &n); err != nil {
		return defaultValue
	}
	return n
}
