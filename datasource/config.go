package datasource

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	// Forecast point
	Location struct {
		Name      string  `yaml:"name"`
		Latitude  float64 `yaml:"latitude"`
		Longitude float64 `yaml:"longitude"`
	} `yaml:"location"`

	// Upstream page settings
	Source struct {
		BaseURL        string        `yaml:"base_url"`
		UserAgent      string        `yaml:"user_agent"`
		Timeout        time.Duration `yaml:"timeout"`
		RateLimitRPS   float64       `yaml:"rate_limit_rps"`
		RateLimitBurst int           `yaml:"rate_limit_burst"`
		CacheTTL       time.Duration `yaml:"cache_ttl"`
	} `yaml:"source"`

	// Spreadsheet output
	Output struct {
		Path  string `yaml:"path"`
		Sheet string `yaml:"sheet"`
	} `yaml:"output"`

	// Run archive
	History struct {
		Enabled   bool          `yaml:"enabled"`
		DBPath    string        `yaml:"db_path"`
		Retention time.Duration `yaml:"retention"`
	} `yaml:"history"`

	// Cron spec for repeated runs, empty for a single run
	Schedule string `yaml:"schedule"`

	Server struct {
		Port           int      `yaml:"port"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`

	LogLevel string `yaml:"log_level"`
}

// DefaultConfig creates a default configuration
func DefaultConfig() *Config {
	config := &Config{}
	config.Location.Name = "San Francisco, CA"
	config.Location.Latitude = 37.7772
	config.Location.Longitude = -122.4168
	config.Source.BaseURL = DefaultBaseURL
	config.Source.UserAgent = "forecast-scraper/1.0"
	config.Source.Timeout = 30 * time.Second
	config.Source.RateLimitRPS = 0.2
	config.Source.RateLimitBurst = 1
	config.Source.CacheTTL = 5 * time.Minute
	config.Output.Path = "weatherreport.xlsx"
	config.Output.Sheet = "weather"
	config.History.Enabled = false
	config.History.DBPath = "forecast-history.db"
	config.History.Retention = 30 * 24 * time.Hour
	config.Server.Port = 8080
	config.Server.AllowedOrigins = []string{"http://localhost:3000"}
	config.LogLevel = "info"
	return config
}

// LoadConfig loads configuration from a YAML file on top of the defaults
func LoadConfig(filename string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// ApplyEnv overrides configuration values from environment variables
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("FORECAST_LATITUDE"); v != "" {
		lat, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid FORECAST_LATITUDE: %w", err)
		}
		c.Location.Latitude = lat
	}
	if v := os.Getenv("FORECAST_LONGITUDE"); v != "" {
		lon, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid FORECAST_LONGITUDE: %w", err)
		}
		c.Location.Longitude = lon
	}
	if v := os.Getenv("FORECAST_LOCATION"); v != "" {
		c.Location.Name = v
	}
	if v := os.Getenv("FORECAST_OUTPUT"); v != "" {
		c.Output.Path = v
	}
	if v := os.Getenv("FORECAST_DB_PATH"); v != "" {
		c.History.DBPath = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %v", c.Location.Latitude)
	}
	if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got %v", c.Location.Longitude)
	}
	if c.Source.BaseURL == "" {
		return errors.New("source.base_url is required")
	}
	if c.Source.Timeout <= 0 {
		return errors.New("source.timeout must be positive")
	}
	if c.Source.RateLimitRPS <= 0 || c.Source.RateLimitBurst < 1 {
		return errors.New("source.rate_limit_rps must be positive and source.rate_limit_burst at least 1")
	}
	if c.Output.Path == "" || c.Output.Sheet == "" {
		return errors.New("output.path and output.sheet are required")
	}
	if c.History.Enabled && c.History.DBPath == "" {
		return errors.New("history.db_path is required when history is enabled")
	}
	if c.Schedule != "" {
		if _, err := cron.ParseStandard(c.Schedule); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", c.Schedule, err)
		}
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log_level %q", c.LogLevel)
	}
	return nil
}
