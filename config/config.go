package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	Forecast   ForecastConfig   `yaml:"forecast"`
	Validation ValidationConfig `yaml:"validation"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	Driver                 string `yaml:"driver"` // sqlite or postgres
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// ForecastConfig holds the defaults applied to forecast requests.
// TargetASASeconds and ZSafety are pointers so an explicit 0 survives
// ApplyDefaults.
type ForecastConfig struct {
	SlotMinutes      int      `yaml:"slot_minutes"`
	Method           string   `yaml:"method"`
	TargetASASeconds *float64 `yaml:"target_asa_seconds"`
	ZSafety          *float64 `yaml:"z_safety"`
	HistoryDays      int      `yaml:"history_days"`
	HorizonDays      int      `yaml:"horizon_days"`
	SmoothingWeight  float64  `yaml:"smoothing_weight"`
	MaxAgents        int      `yaml:"max_agents"`
	Activity         string   `yaml:"activity"`
	MaxHorizonDays   int      `yaml:"max_horizon_days"`
	MaxHistoryDays   int      `yaml:"max_history_days"`
}

// ValidationConfig holds the schedule validation settings.
type ValidationConfig struct {
	// SlotMinutes must match the granularity forecasts were generated at.
	SlotMinutes             int           `yaml:"slot_minutes"`
	Timezone                string        `yaml:"timezone"`
	CalendarFile            string        `yaml:"calendar_file"`
	CalendarCacheTTLSeconds int           `yaml:"calendar_cache_ttl_seconds"`
	CalendarCacheTTL        time.Duration `yaml:"-"`
	CalendarConcurrency     int           `yaml:"calendar_concurrency"`
}

// LogConfig holds the logging configuration.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.ApplyDefaults()
	return &cfg
}

// ApplyDefaults fills every unset field.
func (cfg *Config) ApplyDefaults() {
	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}

	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}
	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:workforce.db"
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 2
	}
	if cfg.Database.ConnMaxLifetimeMinutes <= 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}

	f := &cfg.Forecast
	if f.SlotMinutes <= 0 {
		f.SlotMinutes = 15
	}
	if f.Method == "" {
		f.Method = "erlang"
	}
	if f.TargetASASeconds == nil {
		f.TargetASASeconds = float64Ptr(20)
	}
	if f.ZSafety == nil {
		f.ZSafety = float64Ptr(1.0)
	}
	if f.HistoryDays <= 0 {
		f.HistoryDays = 56
	}
	if f.HorizonDays <= 0 {
		f.HorizonDays = 7
	}
	if f.SmoothingWeight <= 0 || f.SmoothingWeight > 1 {
		f.SmoothingWeight = 0.2
	}
	if f.MaxAgents <= 0 {
		f.MaxAgents = 200
	}
	if f.Activity == "" {
		f.Activity = "general"
	}
	if f.MaxHorizonDays <= 0 {
		f.MaxHorizonDays = 92
	}
	if f.MaxHistoryDays <= 0 {
		f.MaxHistoryDays = 366
	}

	v := &cfg.Validation
	if v.SlotMinutes <= 0 {
		v.SlotMinutes = f.SlotMinutes
	}
	if v.Timezone == "" {
		v.Timezone = "UTC"
	}
	if v.CalendarCacheTTLSeconds <= 0 {
		v.CalendarCacheTTLSeconds = 300
	}
	v.CalendarCacheTTL = time.Duration(v.CalendarCacheTTLSeconds) * time.Second
	if v.CalendarConcurrency <= 0 {
		v.CalendarConcurrency = 8
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
}

// Location resolves the validation timezone.
func (v ValidationConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(v.Timezone)
	if err != nil {
		return nil, fmt.Errorf("loading timezone %q: %w", v.Timezone, err)
	}
	return loc, nil
}

func float64Ptr(v float64) *float64 { return &v }
