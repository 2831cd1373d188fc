package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server" envconfig:"SERVER"`
	Security SecurityConfig `yaml:"security" envconfig:"SECURITY"`
	Logging  LoggingConfig  `yaml:"logging" envconfig:"LOGGING"`
	Ledger   LedgerConfig   `yaml:"ledger" envconfig:"LEDGER"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// LedgerConfig describes the sales ledger input and the map rendering
// parameters derived from it.
type LedgerConfig struct {
	// Path points at the CSV or XLSX sales ledger.
	Path string `yaml:"path" envconfig:"PATH"`
	// MarkerScale divides sqrt(total sales) into a map marker size.
	MarkerScale float64 `yaml:"marker_scale" envconfig:"MARKER_SCALE"`
	// Reference is the fixed spatial-context marker shown on the map.
	// Its coordinates are deployment-specific, not ledger data.
	Reference ReferenceConfig `yaml:"reference" envconfig:"REFERENCE"`
}

// ReferenceConfig is the configurable map reference point.
type ReferenceConfig struct {
	Enabled    bool    `yaml:"enabled" envconfig:"ENABLED"`
	Label      string  `yaml:"label" envconfig:"LABEL"`
	Latitude   float64 `yaml:"latitude" envconfig:"LATITUDE"`
	Longitude  float64 `yaml:"longitude" envconfig:"LONGITUDE"`
	MarkerSize float64 `yaml:"marker_size" envconfig:"MARKER_SIZE"`
}

// Load loads configuration in three layers: built-in defaults, an
// optional YAML file, then SALESDASH_* environment variables.
func Load() (*Config, error) {
	cfg := Default()

	if path := configFilePath(); path != "" {
		if err := overlayFile(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	if err := envconfig.Process("SALESDASH", cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// overlayFile unmarshals the YAML file over the current values.
func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}
	if c.Ledger.Path == "" {
		return fmt.Errorf("ledger path must be configured")
	}
	if c.Ledger.MarkerScale <= 0 {
		return fmt.Errorf("ledger marker scale must be positive")
	}
	if ref := c.Ledger.Reference; ref.Enabled {
		if ref.Latitude < -90 || ref.Latitude > 90 {
			return fmt.Errorf("reference latitude out of range: %f", ref.Latitude)
		}
		if ref.Longitude < -180 || ref.Longitude > 180 {
			return fmt.Errorf("reference longitude out of range: %f", ref.Longitude)
		}
	}
	return nil
}

// configFilePath returns the path to the config file
func configFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return "" // No config file found, use defaults and env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     100,
				Burst:   50,
			},
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "stdout",
			FilePath: "logs/app.log",
		},
		Ledger: LedgerConfig{
			Path:        "data/sales.csv",
			MarkerScale: 100,
			Reference: ReferenceConfig{
				Enabled:    false,
				MarkerSize: 10,
			},
		},
	}
}
