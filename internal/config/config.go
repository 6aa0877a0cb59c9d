package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config defines server configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	DB       DBConfig       `yaml:"db"`
	Log      LogConfig      `yaml:"log"`
	Tracking TrackingConfig `yaml:"tracking"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// TrackingConfig holds the tuning thresholds of the geofence state machine.
// These were tuned empirically from event telemetry and may be overridden
// per deployment.
type TrackingConfig struct {
	DebounceWindow       Duration `yaml:"debounce_window"`
	ImmediateThresholdM  float64  `yaml:"immediate_threshold_m"`
	PoorThresholdM       float64  `yaml:"poor_threshold_m"`
	DegradationFactor    float64  `yaml:"degradation_factor"`
	HysteresisWindow     Duration `yaml:"hysteresis_window"`
	StaleThreshold       Duration `yaml:"stale_threshold"`
	PositionFetchTimeout Duration `yaml:"position_fetch_timeout"`
}

// Duration is a time.Duration that unmarshals from YAML strings like "10s".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	parsed, err := time.ParseDuration(value.Value)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", value.Value, err)
	}
	*d = Duration(parsed)
	return nil
}

// Load reads configuration from an optional YAML file and environment variables.
func Load() (Config, error) {
	cfg := Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		DB: DBConfig{
			Path: "geoattend.db",
		},
		Log: LogConfig{
			Level: "info",
		},
		Tracking: TrackingConfig{
			DebounceWindow:       Duration(10 * time.Second),
			ImmediateThresholdM:  50,
			PoorThresholdM:       100,
			DegradationFactor:    3,
			HysteresisWindow:     Duration(5 * time.Minute),
			StaleThreshold:       Duration(10 * time.Minute),
			PositionFetchTimeout: Duration(2 * time.Second),
		},
	}

	if path := os.Getenv("GEOATTEND_CONFIG_PATH"); path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if host := os.Getenv("GEOATTEND_SERVER_HOST"); host != "" {
		cfg.Server.Host = host
	}
	if portStr := os.Getenv("GEOATTEND_SERVER_PORT"); portStr != "" {
		port, err := strconv.Atoi(portStr)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GEOATTEND_SERVER_PORT: %w", err)
		}
		cfg.Server.Port = port
	}
	if dbPath := os.Getenv("GEOATTEND_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if level := os.Getenv("GEOATTEND_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if window := os.Getenv("GEOATTEND_DEBOUNCE_WINDOW"); window != "" {
		d, err := time.ParseDuration(window)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GEOATTEND_DEBOUNCE_WINDOW: %w", err)
		}
		cfg.Tracking.DebounceWindow = Duration(d)
	}
	if window := os.Getenv("GEOATTEND_HYSTERESIS_WINDOW"); window != "" {
		d, err := time.ParseDuration(window)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GEOATTEND_HYSTERESIS_WINDOW: %w", err)
		}
		cfg.Tracking.HysteresisWindow = Duration(d)
	}
	if threshold := os.Getenv("GEOATTEND_STALE_THRESHOLD"); threshold != "" {
		d, err := time.ParseDuration(threshold)
		if err != nil {
			return Config{}, fmt.Errorf("invalid GEOATTEND_STALE_THRESHOLD: %w", err)
		}
		cfg.Tracking.StaleThreshold = Duration(d)
	}

	return cfg, nil
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}
