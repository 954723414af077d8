package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete application configuration. It is
// loaded once at process start and treated as immutable afterwards;
// components receive the parts they need explicitly.
type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Security   SecurityConfig   `yaml:"security" envconfig:"SECURITY"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Conversion ConversionConfig `yaml:"conversion" envconfig:"CONVERSION"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"30s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	MaxBodyBytes    int64         `yaml:"max_body_bytes" envconfig:"MAX_BODY_BYTES" default:"10485760"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT" default:"60s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"*"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS" default:"true"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED" default:"true"`
	RPS     float64 `yaml:"rps" envconfig:"RPS" default:"100"`
	Burst   int     `yaml:"burst" envconfig:"BURST" default:"50"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" default:"info"`
	Format   string `yaml:"format" envconfig:"FORMAT" default:"json"`
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"stdout"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// ConversionConfig holds the pipeline settings: where records live in
// the XML, how field roles are recognized, and how the pivot behaves.
type ConversionConfig struct {
	RecordElement   string `yaml:"record_element" envconfig:"RECORD_ELEMENT" default:"TN_DT"`
	CategoryPattern string `yaml:"category_pattern" envconfig:"CATEGORY_PATTERN" default:"CODE"`
	PeriodPattern   string `yaml:"period_pattern" envconfig:"PERIOD_PATTERN" default:"PERIOD"`
	ValuePattern    string `yaml:"value_pattern" envconfig:"VALUE_PATTERN" default:"DTVAL"`
	MinRecords      int    `yaml:"min_records" envconfig:"MIN_RECORDS" default:"2"`
	CollisionPolicy string `yaml:"collision_policy" envconfig:"COLLISION_POLICY" default:"last"`
	MaxRows         int    `yaml:"max_rows" envconfig:"MAX_ROWS" default:"1048576"`
	MaxColumns      int    `yaml:"max_columns" envconfig:"MAX_COLUMNS" default:"16384"`
}

// Load loads configuration from environment variables and, when one of
// the known config files exists, merges it underneath the environment.
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("XMLSHEET", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if configFile := findConfigFile(); configFile != "" {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = merge(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from a YAML file
func loadFromFile(filePath string) (*Config, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// merge overlays env config on top of file config; the environment wins
// wherever it set a non-zero value.
func merge(fileConfig, envConfig Config) Config {
	out := envConfig
	if out.Server.Port == 0 {
		out.Server.Port = fileConfig.Server.Port
	}
	if out.Server.MaxBodyBytes == 0 {
		out.Server.MaxBodyBytes = fileConfig.Server.MaxBodyBytes
	}
	if len(out.Security.AllowedOrigins) == 0 {
		out.Security.AllowedOrigins = fileConfig.Security.AllowedOrigins
	}
	if out.Logging.Level == "" {
		out.Logging.Level = fileConfig.Logging.Level
	}
	if out.Conversion.RecordElement == "" {
		out.Conversion.RecordElement = fileConfig.Conversion.RecordElement
	}
	if out.Conversion.CategoryPattern == "" {
		out.Conversion.CategoryPattern = fileConfig.Conversion.CategoryPattern
	}
	if out.Conversion.PeriodPattern == "" {
		out.Conversion.PeriodPattern = fileConfig.Conversion.PeriodPattern
	}
	if out.Conversion.ValuePattern == "" {
		out.Conversion.ValuePattern = fileConfig.Conversion.ValuePattern
	}
	if out.Conversion.CollisionPolicy == "" {
		out.Conversion.CollisionPolicy = fileConfig.Conversion.CollisionPolicy
	}
	return out
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
	if c.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive")
	}

	switch c.Conversion.CollisionPolicy {
	case "last", "first", "sum", "mean":
	default:
		return fmt.Errorf("invalid collision policy: %q", c.Conversion.CollisionPolicy)
	}
	if c.Conversion.RecordElement == "" {
		return fmt.Errorf("record element must not be empty")
	}
	if c.Conversion.MinRecords < 1 {
		return fmt.Errorf("min records must be at least 1")
	}
	if c.Conversion.MaxRows < 2 || c.Conversion.MaxColumns < 1 {
		return fmt.Errorf("sheet bounds too small: %dx%d", c.Conversion.MaxRows, c.Conversion.MaxColumns)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		c.Logging.Format = "json"
	}
	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// findConfigFile returns the first config file found in the common
// locations, or "" to run on env vars and defaults alone.
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}
	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}
	return ""
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20,
			MaxBodyBytes:    10 << 20,
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  60 * time.Second,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"*"},
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
		Conversion: ConversionConfig{
			RecordElement:   "TN_DT",
			CategoryPattern: "CODE",
			PeriodPattern:   "PERIOD",
			ValuePattern:    "DTVAL",
			MinRecords:      2,
			CollisionPolicy: "last",
			MaxRows:         1048576,
			MaxColumns:      16384,
		},
	}
}
