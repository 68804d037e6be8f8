// Package config provides application configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultSessionSecret = "innercircle-dev-session-secret-change-me"

// Files backends.
const (
	FilesBackendLocal = "local"
	FilesBackendS3    = "s3"
)

// Config holds application configuration values loaded from file or environment variables.
type Config struct {
	Port    string `mapstructure:"PORT"`
	Env     string `mapstructure:"APP_ENV"`
	BaseURL string `mapstructure:"BASE_URL"`

	DBHost                   string `mapstructure:"DB_HOST"`
	DBPort                   string `mapstructure:"DB_PORT"`
	DBUser                   string `mapstructure:"DB_USER"`
	DBPassword               string `mapstructure:"DB_PASSWORD"`
	DBName                   string `mapstructure:"DB_NAME"`
	DBSSLMode                string `mapstructure:"DB_SSLMODE"`
	DBReadHost               string `mapstructure:"DB_READ_HOST"`
	DBReadPort               string `mapstructure:"DB_READ_PORT"`
	DBReadUser               string `mapstructure:"DB_READ_USER"`
	DBReadPassword           string `mapstructure:"DB_READ_PASSWORD"`
	DBMaxOpenConns           int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns           int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifetimeMinutes int    `mapstructure:"DB_CONN_MAX_LIFETIME_MINUTES"`
	DBSchemaMode             string `mapstructure:"DB_SCHEMA_MODE"`

	RedisURL        string `mapstructure:"REDIS_URL"`
	SessionSecret   string `mapstructure:"SESSION_SECRET"`
	SessionTTLHours int    `mapstructure:"SESSION_TTL_HOURS"`
	AllowedOrigins  string `mapstructure:"ALLOWED_ORIGINS"`
	FeatureFlags    string `mapstructure:"FEATURE_FLAGS"`
	StaticDir       string `mapstructure:"STATIC_DIR"`

	FilesBackend      string `mapstructure:"FILES_BACKEND"`
	AssetsDir         string `mapstructure:"ASSETS_DIR"`
	S3Bucket          string `mapstructure:"S3_BUCKET"`
	S3Region          string `mapstructure:"S3_REGION"`
	S3Endpoint        string `mapstructure:"S3_ENDPOINT"`
	S3ForcePathStyle  bool   `mapstructure:"S3_FORCE_PATH_STYLE"`
	S3AccessKeyID     string `mapstructure:"S3_ACCESS_KEY_ID"`
	S3SecretAccessKey string `mapstructure:"S3_SECRET_ACCESS_KEY"`
	S3URLTTLHours     int    `mapstructure:"S3_URL_TTL_HOURS"`

	GoogleClientID     string `mapstructure:"GOOGLE_CLIENT_ID"`
	GoogleClientSecret string `mapstructure:"GOOGLE_CLIENT_SECRET"`
	OAuthRedirectPath  string `mapstructure:"OAUTH_REDIRECT_PATH"`
	DevTrustLogin      bool   `mapstructure:"DEV_TRUST_LOGIN"`

	TracingEnabled     bool    `mapstructure:"TRACING_ENABLED"`
	TracingExporter    string  `mapstructure:"TRACING_EXPORTER"`
	OTLPEndpoint       string  `mapstructure:"OTLP_ENDPOINT"`
	TracingSampleRatio float64 `mapstructure:"TRACING_SAMPLE_RATIO"`
}

// LoadConfig loads application configuration from file and environment variables.
func LoadConfig() (*Config, error) {
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")
	viper.AddConfigPath("../..")
	viper.SetConfigName("config")
	viper.SetConfigType("yml")
	viper.AutomaticEnv()

	// The base file is optional; environment variables may carry everything.
	_ = viper.ReadInConfig()

	env := viper.GetString("APP_ENV")
	if env == "" {
		env = "development"
	}

	if env != "development" && env != "test" {
		viper.SetConfigName("config." + env)
		if err := viper.MergeInConfig(); err != nil {
			return nil, fmt.Errorf("required profile-specific config 'config.%s.yml' not found: %w", env, err)
		}
		log.Printf("Loaded profile-specific configuration: config.%s.yml", env)
	}

	setDefaults()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}
	config.normalize()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("BASE_URL", "http://localhost:8080")
	viper.SetDefault("DB_HOST", "localhost")
	viper.SetDefault("DB_PORT", "5432")
	viper.SetDefault("DB_USER", "innercircle")
	viper.SetDefault("DB_PASSWORD", "password")
	viper.SetDefault("DB_NAME", "innercircle")
	viper.SetDefault("DB_SSLMODE", "disable")
	viper.SetDefault("DB_READ_HOST", "")
	viper.SetDefault("DB_READ_PORT", "5432")
	viper.SetDefault("DB_READ_USER", "innercircle")
	viper.SetDefault("DB_READ_PASSWORD", "password")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_MINUTES", 5)
	viper.SetDefault("DB_SCHEMA_MODE", "hybrid")
	viper.SetDefault("REDIS_URL", "localhost:6379")
	viper.SetDefault("SESSION_SECRET", defaultSessionSecret)
	viper.SetDefault("SESSION_TTL_HOURS", 14*24)
	viper.SetDefault("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173")
	viper.SetDefault("FEATURE_FLAGS", "post_authoring=on")
	viper.SetDefault("STATIC_DIR", "")
	viper.SetDefault("FILES_BACKEND", FilesBackendLocal)
	viper.SetDefault("ASSETS_DIR", "./assets")
	viper.SetDefault("S3_BUCKET", "")
	viper.SetDefault("S3_REGION", "us-east-1")
	viper.SetDefault("S3_ENDPOINT", "")
	viper.SetDefault("S3_FORCE_PATH_STYLE", false)
	viper.SetDefault("S3_ACCESS_KEY_ID", "")
	viper.SetDefault("S3_SECRET_ACCESS_KEY", "")
	viper.SetDefault("S3_URL_TTL_HOURS", 24)
	viper.SetDefault("GOOGLE_CLIENT_ID", "")
	viper.SetDefault("GOOGLE_CLIENT_SECRET", "")
	viper.SetDefault("OAUTH_REDIRECT_PATH", "/login/google/callback")
	viper.SetDefault("DEV_TRUST_LOGIN", false)
	viper.SetDefault("TRACING_ENABLED", false)
	viper.SetDefault("TRACING_EXPORTER", "stdout")
	viper.SetDefault("OTLP_ENDPOINT", "localhost:4318")
	viper.SetDefault("TRACING_SAMPLE_RATIO", 1.0)
}

func (c *Config) normalize() {
	c.DBSSLMode = strings.ToLower(strings.TrimSpace(c.DBSSLMode))
	c.DBSchemaMode = strings.ToLower(strings.TrimSpace(c.DBSchemaMode))
	c.FilesBackend = strings.ToLower(strings.TrimSpace(c.FilesBackend))
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
}

// IsProduction reports whether the production profile is active.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// SessionTTL is the lifetime of an issued session.
func (c *Config) SessionTTL() time.Duration {
	if c.SessionTTLHours <= 0 {
		return 14 * 24 * time.Hour
	}
	return time.Duration(c.SessionTTLHours) * time.Hour
}

// S3URLTTL is the lifetime of a presigned media URL.
func (c *Config) S3URLTTL() time.Duration {
	if c.S3URLTTLHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.S3URLTTLHours) * time.Hour
}

// GoogleLoginEnabled reports whether Google credentials are configured.
func (c *Config) GoogleLoginEnabled() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// Validate ensures that required configuration values are present and meet security standards.
func (c *Config) Validate() error {
	if c.Port == "" {
		return errors.New("PORT is required")
	}
	if c.SessionSecret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if c.DBConnMaxLifetimeMinutes < 0 {
		return errors.New("DB_CONN_MAX_LIFETIME_MINUTES must not be negative")
	}

	switch c.FilesBackend {
	case FilesBackendLocal:
		if c.AssetsDir == "" {
			return errors.New("ASSETS_DIR is required for the local files backend")
		}
	case FilesBackendS3:
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for the s3 files backend")
		}
	default:
		return fmt.Errorf("unknown FILES_BACKEND %q", c.FilesBackend)
	}

	switch c.DBSchemaMode {
	case "", "hybrid", "sql", "auto":
	default:
		return fmt.Errorf("unknown DB_SCHEMA_MODE %q", c.DBSchemaMode)
	}

	// Strict checks for production
	if c.IsProduction() {
		if c.SessionSecret == defaultSessionSecret {
			return errors.New("SESSION_SECRET must be changed from the default value in production")
		}
		if len(c.SessionSecret) < 32 {
			return errors.New("SESSION_SECRET must be at least 32 characters in production")
		}
		if c.DBPassword == "password" || c.DBPassword == "" {
			return errors.New("a strong DB_PASSWORD is required in production")
		}
		if c.DBSSLMode == "disable" || c.DBSSLMode == "" {
			return errors.New("DB_SSLMODE must enable SSL in production")
		}
		if c.DevTrustLogin {
			return errors.New("DEV_TRUST_LOGIN must not be enabled in production")
		}
		if c.AllowedOrigins == "*" {
			log.Println("WARNING: ALLOWED_ORIGINS is set to '*' in production. This is insecure.")
		}
	} else {
		if len(c.SessionSecret) < 32 {
			log.Println("WARNING: SESSION_SECRET is shorter than 32 characters. Consider using a stronger secret for production.")
		}
	}

	return nil
}
