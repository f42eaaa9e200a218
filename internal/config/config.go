package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config captures the settings required to boot the diagnostics service.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logs       LogsConfig       `yaml:"logs"`
	Metrics    MetricsConfig    `yaml:"metrics"`
	Thresholds ThresholdsConfig `yaml:"thresholds"`
	Logging    LoggingConfig    `yaml:"logging"`
}

// ServerConfig controls the HTTP listeners.
type ServerConfig struct {
	Address         string        `yaml:"address"`
	MetricsAddress  string        `yaml:"metricsAddress"`
	ReadTimeout     time.Duration `yaml:"readTimeout"`
	WriteTimeout    time.Duration `yaml:"writeTimeout"`
	GracefulTimeout time.Duration `yaml:"gracefulTimeout"`
}

// LogsConfig controls the log analysis pipeline.
type LogsConfig struct {
	Dir           string        `yaml:"dir"`
	ParseWorkers  int           `yaml:"parseWorkers"`
	DefaultWindow time.Duration `yaml:"defaultWindow"`
}

// MetricsConfig controls the metrics analysis pipeline.
type MetricsConfig struct {
	Dir               string `yaml:"dir"`
	Document          string `yaml:"document"`
	DefaultHoursRange int    `yaml:"defaultHoursRange"`
}

// ThresholdsConfig holds the fixed anomaly-rule parameters. The defaults are
// the operational values tuned for 60-slot handler pools; they are exposed
// as configuration, not derived at runtime.
type ThresholdsConfig struct {
	HandlerSaturation     float64 `yaml:"handlerSaturation"`
	HandlerCritical       float64 `yaml:"handlerCritical"`
	HighUsage             float64 `yaml:"highUsage"`
	HighUsagePointLimit   int     `yaml:"highUsagePointLimit"`
	VolatilityStd         float64 `yaml:"volatilityStd"`
	VolatilityMax         float64 `yaml:"volatilityMax"`
	ErrorRatePercent      float64 `yaml:"errorRatePercent"`
	WALSlowSyncMs         float64 `yaml:"walSlowSyncMs"`
	ClusterHighUsageRatio float64 `yaml:"clusterHighUsageRatio"`
	TrendMinSamples       int     `yaml:"trendMinSamples"`
	TrendIncreaseRatio    float64 `yaml:"trendIncreaseRatio"`
	TrendDecreaseRatio    float64 `yaml:"trendDecreaseRatio"`
}

// LoggingConfig controls structured logging.
type LoggingConfig struct {
	Level string `yaml:"level"`
	JSON  bool   `yaml:"json"`
}

// Load initialises Config from a YAML file and optional environment overrides.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv("HBASE_DIAG_CONFIG")
	}

	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("config file %s not found: %w", path, err)
			}
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	return &cfg, nil
}

func defaultConfig() Config {
	return Config{
		Server: ServerConfig{
			Address:         ":8080",
			MetricsAddress:  ":2112",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    60 * time.Second,
			GracefulTimeout: 10 * time.Second,
		},
		Logs: LogsConfig{
			Dir:           "hbase_log",
			ParseWorkers:  4,
			DefaultWindow: time.Hour,
		},
		Metrics: MetricsConfig{
			Dir:               "hbase_metrics",
			Document:          "download.json",
			DefaultHoursRange: 72,
		},
		Thresholds: DefaultThresholds(),
		Logging:    LoggingConfig{Level: "info", JSON: false},
	}
}

// DefaultThresholds returns the stock anomaly-rule parameters.
func DefaultThresholds() ThresholdsConfig {
	return ThresholdsConfig{
		HandlerSaturation:     58,
		HandlerCritical:       60,
		HighUsage:             50,
		HighUsagePointLimit:   5,
		VolatilityStd:         15,
		VolatilityMax:         30,
		ErrorRatePercent:      5,
		WALSlowSyncMs:         100,
		ClusterHighUsageRatio: 0.3,
		TrendMinSamples:       10,
		TrendIncreaseRatio:    1.1,
		TrendDecreaseRatio:    0.9,
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HBASE_DIAG_SERVER_ADDRESS"); v != "" {
		cfg.Server.Address = v
	}
	if v := os.Getenv("HBASE_DIAG_METRICS_ADDRESS"); v != "" {
		cfg.Server.MetricsAddress = v
	}
	if v := os.Getenv("HBASE_DIAG_LOG_DIR"); v != "" {
		cfg.Logs.Dir = v
	}
	if v := os.Getenv("HBASE_DIAG_PARSE_WORKERS"); v != "" {
		if workers, err := strconv.Atoi(v); err == nil && workers > 0 {
			cfg.Logs.ParseWorkers = workers
		}
	}
	if v := os.Getenv("HBASE_DIAG_METRICS_DIR"); v != "" {
		cfg.Metrics.Dir = v
	}
	if v := os.Getenv("HBASE_DIAG_HOURS_RANGE"); v != "" {
		if hours, err := strconv.Atoi(v); err == nil && hours > 0 {
			cfg.Metrics.DefaultHoursRange = hours
		}
	}
	if v := os.Getenv("HBASE_DIAG_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("HBASE_DIAG_LOG_FORMAT"); v == "json" {
		cfg.Logging.JSON = true
	}
	if v := os.Getenv("HBASE_DIAG_GRACEFUL_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Server.GracefulTimeout = d
		}
	}
}
