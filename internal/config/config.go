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
	Paths    PathsConfig    `yaml:"paths" envconfig:"PATHS"`
	Ingest   IngestConfig   `yaml:"ingest" envconfig:"INGEST"`
	Upload   UploadConfig   `yaml:"upload" envconfig:"UPLOAD"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"15s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"15s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES" default:"1048576"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"30s"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS" default:"http://localhost:8080"`
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
	Output   string `yaml:"output" envconfig:"OUTPUT" default:"console"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH" default:"logs/app.log"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR" default:"data"`
	ChartsDir string `yaml:"charts_dir" envconfig:"CHARTS_DIR" default:"charts"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" default:"logs"`
	WebDir    string `yaml:"web_dir" envconfig:"WEB_DIR" default:"web"`
}

// IngestConfig controls the tolerant dataset ingestion routine.
// Renames extends the built-in header synonym table; keys are compared
// after trimming and lower-casing.
type IngestConfig struct {
	DatasetPath string            `yaml:"dataset_path" envconfig:"DATASET_PATH" default:"data/superstore.csv"`
	Renames     map[string]string `yaml:"renames"`
	DateFormats []string          `yaml:"date_formats"`
}

// UploadConfig contains the optional object-storage export configuration.
// Upload stays disabled until a bucket is configured or supplied per request.
type UploadConfig struct {
	Enabled         bool   `yaml:"enabled" envconfig:"ENABLED" default:"false"`
	Bucket          string `yaml:"bucket" envconfig:"BUCKET"`
	CredentialsFile string `yaml:"credentials_file" envconfig:"CREDENTIALS_FILE"`
}

// Load loads configuration from environment variables and config file
func Load() (*Config, error) {
	var cfg Config

	if err := envconfig.Process("RETAILPULSE", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	configFile := getConfigFilePath()
	if _, err := os.Stat(configFile); err == nil {
		fileConfig, err := loadFromFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
		cfg = mergeConfigs(*fileConfig, cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// loadFromFile loads configuration from YAML file
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

// mergeConfigs merges file config with env config. An explicitly set env
// var wins over the file; otherwise the file value wins over the envconfig
// default. Fields never defaulted by envconfig merge on their zero value.
func mergeConfigs(fileConfig, envConfig Config) Config {
	if !envSet("SERVER_PORT") && fileConfig.Server.Port != 0 {
		envConfig.Server.Port = fileConfig.Server.Port
	}
	if !envSet("SERVER_READ_TIMEOUT") && fileConfig.Server.ReadTimeout != 0 {
		envConfig.Server.ReadTimeout = fileConfig.Server.ReadTimeout
	}
	if !envSet("SERVER_WRITE_TIMEOUT") && fileConfig.Server.WriteTimeout != 0 {
		envConfig.Server.WriteTimeout = fileConfig.Server.WriteTimeout
	}
	if !envSet("LOGGING_LEVEL") && fileConfig.Logging.Level != "" {
		envConfig.Logging.Level = fileConfig.Logging.Level
	}
	if !envSet("INGEST_DATASET_PATH") && fileConfig.Ingest.DatasetPath != "" {
		envConfig.Ingest.DatasetPath = fileConfig.Ingest.DatasetPath
	}
	// Header renames and date formats are file-only; env vars cannot
	// express maps cleanly with envconfig.
	envConfig.Ingest.Renames = fileConfig.Ingest.Renames
	if len(fileConfig.Ingest.DateFormats) > 0 {
		envConfig.Ingest.DateFormats = fileConfig.Ingest.DateFormats
	}
	if envConfig.Upload.Bucket == "" {
		envConfig.Upload.Bucket = fileConfig.Upload.Bucket
	}
	if envConfig.Upload.CredentialsFile == "" {
		envConfig.Upload.CredentialsFile = fileConfig.Upload.CredentialsFile
	}
	if fileConfig.Upload.Enabled {
		envConfig.Upload.Enabled = true
	}

	return envConfig
}

func envSet(suffix string) bool {
	_, ok := os.LookupEnv("RETAILPULSE_" + suffix)
	return ok
}

// validate performs basic sanity checks on the configuration
func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Ingest.DatasetPath == "" {
		return fmt.Errorf("ingest dataset path must not be empty")
	}
	if c.Security.RateLimit.Enabled && c.Security.RateLimit.RPS <= 0 {
		return fmt.Errorf("rate limit rps must be positive, got %f", c.Security.RateLimit.RPS)
	}
	return nil
}

// getConfigFilePath returns the config file location, honoring the
// RETAILPULSE_CONFIG override.
func getConfigFilePath() string {
	if path := os.Getenv("RETAILPULSE_CONFIG"); path != "" {
		return path
	}
	return "config.yaml"
}
