// Package config loads fleetsync configuration from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/iudanet/fleetsync/internal/resolver"
	"github.com/iudanet/fleetsync/internal/worker"
)

// envPrefix prefixes every environment override.
const envPrefix = "FLEETSYNC_"

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Address         string        `yaml:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	// RateLimit is the number of sync requests allowed per device per minute (0 = unlimited)
	RateLimit int `yaml:"rate_limit"`
}

// DatabaseConfig holds server storage configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// DeviceConfig holds device-side configuration
type DeviceConfig struct {
	ID           string        `yaml:"id"`
	DataPath     string        `yaml:"data_path"`
	ServerURL    string        `yaml:"server_url"`
	SyncInterval time.Duration `yaml:"sync_interval"`
	PullLimit    int           `yaml:"pull_limit"`
}

// SyncConfig holds conflict resolution configuration
type SyncConfig struct {
	DefaultStrategy string            `yaml:"default_strategy"`
	Strategies      map[string]string `yaml:"strategies"`
	PriorityDevices []string          `yaml:"priority_devices"`
}

// WorkerConfig holds queue worker configuration
type WorkerConfig struct {
	Interval         time.Duration `yaml:"interval"`
	OperationTimeout time.Duration `yaml:"operation_timeout"`
	Retention        time.Duration `yaml:"retention"`
	BatchSize        int           `yaml:"batch_size"`
	Concurrency      int           `yaml:"concurrency"`
	MaxRetries       int           `yaml:"max_retries"`
	Enabled          bool          `yaml:"enabled"`
}

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Path    string `yaml:"path"`
	Enabled bool   `yaml:"enabled"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Config represents the complete configuration of the server and device binaries
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Device   DeviceConfig   `yaml:"device"`
	Sync     SyncConfig     `yaml:"sync"`
	Worker   WorkerConfig   `yaml:"worker"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{
		Worker:  WorkerConfig{Enabled: true},
		Metrics: MetricsConfig{Enabled: true},
	}
	setDefaults(cfg)
	return cfg
}

// LoadConfig loads configuration from a file, applies FLEETSYNC_* environment
// overrides and validates the result. An empty path skips the file.
func LoadConfig(filePath string) (*Config, error) {
	cfg := &Config{
		Worker:  WorkerConfig{Enabled: true},
		Metrics: MetricsConfig{Enabled: true},
	}

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnvironmentOverrides(cfg, os.LookupEnv); err != nil {
		return nil, err
	}

	// Set defaults if not specified
	setDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// setDefaults sets default values for unspecified configuration
func setDefaults(cfg *Config) {
	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = 15 * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = 15 * time.Second
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 30 * time.Second
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "fleetsync.db"
	}

	if cfg.Device.DataPath == "" {
		cfg.Device.DataPath = "fleetsync-device.db"
	}
	if cfg.Device.ServerURL == "" {
		cfg.Device.ServerURL = "http://localhost:8080"
	}
	if cfg.Device.SyncInterval == 0 {
		cfg.Device.SyncInterval = time.Minute
	}
	if cfg.Device.PullLimit == 0 {
		cfg.Device.PullLimit = 500
	}

	if cfg.Sync.DefaultStrategy == "" {
		cfg.Sync.DefaultStrategy = string(resolver.CRDTMerge)
	}

	d := worker.DefaultConfig()
	if cfg.Worker.Interval == 0 {
		cfg.Worker.Interval = d.Interval
	}
	if cfg.Worker.OperationTimeout == 0 {
		cfg.Worker.OperationTimeout = d.OperationTimeout
	}
	if cfg.Worker.Retention == 0 {
		cfg.Worker.Retention = d.Retention
	}
	if cfg.Worker.BatchSize == 0 {
		cfg.Worker.BatchSize = d.BatchSize
	}
	if cfg.Worker.Concurrency == 0 {
		cfg.Worker.Concurrency = d.Concurrency
	}
	if cfg.Worker.MaxRetries == 0 {
		cfg.Worker.MaxRetries = 3
	}

	if cfg.Metrics.Path == "" {
		cfg.Metrics.Path = "/metrics"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "text"
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error

	if c.Server.RateLimit < 0 {
		errs = append(errs, errors.New("server.rate_limit must not be negative"))
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 || c.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server timeouts must not be negative"))
	}
	if c.Device.SyncInterval < 0 {
		errs = append(errs, errors.New("device.sync_interval must not be negative"))
	}
	if c.Device.PullLimit < 0 {
		errs = append(errs, errors.New("device.pull_limit must not be negative"))
	}

	if _, _, err := c.Sync.Parse(); err != nil {
		errs = append(errs, err)
	}

	if c.Worker.Interval < 0 || c.Worker.OperationTimeout < 0 || c.Worker.Retention < 0 {
		errs = append(errs, errors.New("worker durations must not be negative"))
	}
	if c.Worker.BatchSize < 0 || c.Worker.Concurrency < 0 || c.Worker.MaxRetries < 0 {
		errs = append(errs, errors.New("worker limits must not be negative"))
	}

	if !strings.HasPrefix(c.Metrics.Path, "/") {
		errs = append(errs, fmt.Errorf("metrics.path must start with '/': %q", c.Metrics.Path))
	}

	if _, err := parseLevel(c.Logging.Level); err != nil {
		errs = append(errs, err)
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Errorf("logging.format must be text or json: %q", c.Logging.Format))
	}

	return errors.Join(errs...)
}

// Parse converts configured strategy names into resolver strategies.
func (s SyncConfig) Parse() (resolver.Strategy, map[string]resolver.Strategy, error) {
	def, err := resolver.ParseStrategy(s.DefaultStrategy)
	if err != nil {
		return "", nil, fmt.Errorf("sync.default_strategy: %w", err)
	}

	perType := make(map[string]resolver.Strategy, len(s.Strategies))
	for entityType, name := range s.Strategies {
		st, err := resolver.ParseStrategy(name)
		if err != nil {
			return "", nil, fmt.Errorf("sync.strategies.%s: %w", entityType, err)
		}
		perType[entityType] = st
	}
	return def, perType, nil
}

// WorkerSettings converts the worker section into worker.Config.
func (w WorkerConfig) WorkerSettings() worker.Config {
	return worker.Config{
		Interval:         w.Interval,
		OperationTimeout: w.OperationTimeout,
		Retention:        w.Retention,
		BatchSize:        w.BatchSize,
		Concurrency:      w.Concurrency,
	}
}

// NewLogger builds the slog logger described by the logging section.
func (l LoggingConfig) NewLogger(out io.Writer) *slog.Logger {
	level, err := parseLevel(l.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(out, opts))
	}
	return slog.New(slog.NewTextHandler(out, opts))
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("logging.level: %w", err)
	}
	return level, nil
}

// applyEnvironmentOverrides applies FLEETSYNC_* variables on top of the file values.
func applyEnvironmentOverrides(cfg *Config, lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) error {
		v, ok := lookup(envPrefix + name)
		if !ok || v == "" {
			return nil
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
		return nil
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(envPrefix + name)
		if !ok || v == "" {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = n
		return nil
	}

	str("SERVER_ADDRESS", &cfg.Server.Address)
	str("DATABASE_PATH", &cfg.Database.Path)
	str("DEVICE_ID", &cfg.Device.ID)
	str("DEVICE_DATA_PATH", &cfg.Device.DataPath)
	str("SERVER_URL", &cfg.Device.ServerURL)
	str("SYNC_DEFAULT_STRATEGY", &cfg.Sync.DefaultStrategy)
	str("LOG_LEVEL", &cfg.Logging.Level)
	str("LOG_FORMAT", &cfg.Logging.Format)

	if v, ok := lookup(envPrefix + "PRIORITY_DEVICES"); ok && v != "" {
		cfg.Sync.PriorityDevices = strings.Split(v, ",")
	}

	return errors.Join(
		num("SERVER_RATE_LIMIT", &cfg.Server.RateLimit),
		dur("DEVICE_SYNC_INTERVAL", &cfg.Device.SyncInterval),
		dur("WORKER_INTERVAL", &cfg.Worker.Interval),
		num("WORKER_BATCH_SIZE", &cfg.Worker.BatchSize),
		num("WORKER_CONCURRENCY", &cfg.Worker.Concurrency),
		num("WORKER_MAX_RETRIES", &cfg.Worker.MaxRetries),
	)
}
