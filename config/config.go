package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// DefaultPlatformBaseURL is the video REST API root.
const DefaultPlatformBaseURL = "https://video.twilio.com"

// Config holds application configuration loaded from environment.
type Config struct {
	Server   ServerConfig
	Platform PlatformConfig
	Token    TokenConfig
	Redis    RedisConfig
	AWS      AWSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port               string
	ReadTimeout        int
	WriteTimeout       int
	CORSAllowedOrigins string // comma-separated, or "*" for all (e.g. http://localhost:3000,http://localhost:3001)
}

// PlatformConfig holds video platform credentials and callback settings.
type PlatformConfig struct {
	AccountSID   string
	APIKeySID    string
	APIKeySecret string
	AuthToken    string // verifies callback signatures; empty disables verification
	BaseURL      string
	HTTPTimeout  int
	PublicBase   string // externally reachable origin for status callbacks
}

// TokenConfig holds participant access token settings.
type TokenConfig struct {
	TTLMinutes int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AWSConfig holds AWS credentials and the composition archive bucket.
type AWSConfig struct {
	Region               string
	AccessKeyID          string
	SecretAccessKey      string
	CompositionsBucket   string
	PresignExpireMinutes int
}

// Validate reports missing platform credentials.
func (c PlatformConfig) Validate() error {
	var errs []error
	if c.AccountSID == "" {
		errs = append(errs, errors.New("PLATFORM_ACCOUNT_SID is required"))
	}
	if c.APIKeySID == "" {
		errs = append(errs, errors.New("PLATFORM_API_KEY_SID is required"))
	}
	if c.APIKeySecret == "" {
		errs = append(errs, errors.New("PLATFORM_API_KEY_SECRET is required"))
	}
	return errors.Join(errs...)
}

// StatusCallbackURL is where the platform posts room and composition events. Empty when no public base is set.
func (c PlatformConfig) StatusCallbackURL() string {
	if c.PublicBase == "" {
		return ""
	}
	return strings.TrimRight(c.PublicBase, "/") + "/callbacks"
}

// Timeout returns the platform HTTP timeout.
func (c PlatformConfig) Timeout() time.Duration {
	return time.Duration(c.HTTPTimeout) * time.Second
}

// TTL returns the access token lifetime.
func (c TokenConfig) TTL() time.Duration {
	return time.Duration(c.TTLMinutes) * time.Minute
}

// Load reads configuration from environment, with optional .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()      // .env
	_ = godotenv.Load("env") // env (no leading dot)

	cfg := &Config{
		Server: ServerConfig{
			Port:               getEnv("PORT", "8080"),
			ReadTimeout:        getEnvInt("READ_TIMEOUT_SEC", 30),
			WriteTimeout:       getEnvInt("WRITE_TIMEOUT_SEC", 30),
			CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:3001"),
		},
		Platform: PlatformConfig{
			AccountSID:   getEnv("PLATFORM_ACCOUNT_SID", ""),
			APIKeySID:    getEnv("PLATFORM_API_KEY_SID", ""),
			APIKeySecret: getEnv("PLATFORM_API_KEY_SECRET", ""),
			AuthToken:    getEnv("PLATFORM_AUTH_TOKEN", ""),
			BaseURL:      getEnv("PLATFORM_BASE_URL", DefaultPlatformBaseURL),
			HTTPTimeout:  getEnvInt("PLATFORM_HTTP_TIMEOUT_SEC", 30),
			PublicBase:   getEnv("PUBLIC_BASE_URL", ""),
		},
		Token: TokenConfig{
			TTLMinutes: getEnvInt("ACCESS_TOKEN_TTL_MINUTES", 60),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		AWS: AWSConfig{
			Region:               getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:          getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey:      getEnv("AWS_SECRET_ACCESS_KEY", ""),
			CompositionsBucket:   getEnv("AWS_S3_COMPOSITIONS_BUCKET", ""),
			PresignExpireMinutes: getEnvInt("AWS_PRESIGN_EXPIRE_MINUTES", 15),
		},
	}
	return cfg, nil
}

// AllowedOrigins splits CORS_ALLOWED_ORIGINS.
func (c ServerConfig) AllowedOrigins() []string {
	return splitTrim(c.CORSAllowedOrigins, ",")
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func splitTrim(s, sep string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, v := range strings.Split(s, sep) {
		if t := strings.TrimSpace(v); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
