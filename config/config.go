package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
)

/* Config is read from an optional .env file (TOML syntax) in the working
 * directory and overridden by environment variables of the same name.
 */

type Config struct {
	Host string `mapstructure:"HOST"`
	Port int    `mapstructure:"PORT"`

	DatabaseURL          string `mapstructure:"DATABASE_URL"`
	DBMaxOpenConns       int    `mapstructure:"DB_MAX_OPEN_CONNS"`
	DBMaxIdleConns       int    `mapstructure:"DB_MAX_IDLE_CONNS"`
	DBConnMaxLifeMinutes int    `mapstructure:"DB_CONN_MAX_LIFE_MINUTES"`

	RedisAddr         string `mapstructure:"REDIS_ADDR"`
	RedisPassword     string `mapstructure:"REDIS_PASSWORD"`
	RedisDB           int    `mapstructure:"REDIS_DB"`
	CaptureFeedMaxLen int64  `mapstructure:"CAPTURE_FEED_MAX_LEN"`

	GeminiAPIKey  string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel   string        `mapstructure:"GEMINI_MODEL"`
	GeminiTimeout time.Duration `mapstructure:"GEMINI_TIMEOUT"`

	CaptureMaxBodyBytes int64 `mapstructure:"CAPTURE_MAX_BODY_BYTES"`
	TrustProxy          bool  `mapstructure:"TRUST_PROXY"`

	LogLevel string `mapstructure:"LOG_LEVEL"`
	LogJSON  bool   `mapstructure:"LOG_JSON"`
}

var defaults = map[string]any{
	"HOST":                     "0.0.0.0",
	"PORT":                     3333,
	"DATABASE_URL":             "",
	"DB_MAX_OPEN_CONNS":        25,
	"DB_MAX_IDLE_CONNS":        5,
	"DB_CONN_MAX_LIFE_MINUTES": 5,
	"REDIS_ADDR":               "",
	"REDIS_PASSWORD":           "",
	"REDIS_DB":                 0,
	"CAPTURE_FEED_MAX_LEN":     10000,
	"GEMINI_API_KEY":           "",
	"GEMINI_MODEL":             "gemini-2.5-flash",
	"GEMINI_TIMEOUT":           60 * time.Second,
	"CAPTURE_MAX_BODY_BYTES":   10 << 20,
	"TRUST_PROXY":              false,
	"LOG_LEVEL":                "info",
	"LOG_JSON":                 true,
}

// GetConfig loads the configuration from ./.env and the environment.
func GetConfig() (*Config, error) {
	return Load(".")
}

// Load reads .env from the given directories (first match wins). A missing
// file is not an error: every key can come from the environment.
func Load(paths ...string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(".env")
	v.SetConfigType("toml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.AutomaticEnv()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	err := v.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}
	var config Config
	err = v.Unmarshal(&config)
	if err != nil {
		return nil, fmt.Errorf("parsing config data: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return &config, nil
}

// Validate checks the settings every binary depends on.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535 (got %d)", c.Port)
	}
	if c.CaptureMaxBodyBytes <= 0 {
		return fmt.Errorf("CAPTURE_MAX_BODY_BYTES must be positive (got %d)", c.CaptureMaxBodyBytes)
	}
	return nil
}

// Addr is the host:port pair the API listens on.
func (c *Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// GenerationEnabled reports whether an API key for the text-generation
// service was supplied.
func (c *Config) GenerationEnabled() bool {
	return strings.TrimSpace(c.GeminiAPIKey) != ""
}

// CaptureFeedEnabled reports whether captured requests are published to Redis.
func (c *Config) CaptureFeedEnabled() bool {
	return c.RedisAddr != ""
}
