// Package config loads aliasrewrite settings from .aliasrewrite.yaml,
// ALIASREWRITE_* environment variables and built-in defaults.
package config

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/Sumatoshi-tech/aliasrewrite/pkg/alias"
)

// Config is the top-level configuration.
// Field tags use mapstructure for viper unmarshalling. Aliases are decoded
// separately because viper does not keep mapping key order.
type Config struct {
	Aliases     []alias.Entry   `mapstructure:"-"`
	Include     []string        `mapstructure:"include"`
	Exclude     []string        `mapstructure:"exclude"`
	SkipVendor  bool            `mapstructure:"skip_vendor"`
	Workers     int             `mapstructure:"workers"`
	MaxFileSize string          `mapstructure:"max_file_size"`
	OutDir      string          `mapstructure:"out_dir"`
	Log         LogConfig       `mapstructure:"log"`
	Telemetry   TelemetryConfig `mapstructure:"telemetry"`

	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`
}

// LogConfig controls the slog logger.
type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

// TelemetryConfig controls OpenTelemetry export.
type TelemetryConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
	OTLPHeaders  string `mapstructure:"otlp_headers"`
}

// Sentinel errors for configuration validation.
var (
	// ErrInvalidConfig indicates the config document does not match the schema.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrInvalidWorkers indicates the workers value is negative.
	ErrInvalidWorkers = errors.New("workers must be non-negative")
	// ErrInvalidMaxFileSize indicates max_file_size is not a byte size.
	ErrInvalidMaxFileSize = errors.New("max_file_size must be a positive byte size")
	// ErrInvalidLogLevel indicates log.level is not a slog level name.
	ErrInvalidLogLevel = errors.New("log.level must be debug, info, warn or error")
)

// Validate checks value constraints that the schema cannot express.
func (c *Config) Validate() error {
	if c.Workers < 0 {
		return ErrInvalidWorkers
	}

	if _, err := c.MaxFileSizeBytes(); err != nil {
		return err
	}

	if _, err := c.LogLevel(); err != nil {
		return err
	}

	return nil
}

// MaxFileSizeBytes parses MaxFileSize ("1MiB", "512 kB", "1048576").
func (c *Config) MaxFileSizeBytes() (int64, error) {
	size, err := humanize.ParseBytes(c.MaxFileSize)
	if err != nil || size == 0 || size > uint64(1<<62) {
		return 0, fmt.Errorf("%w: %q", ErrInvalidMaxFileSize, c.MaxFileSize)
	}

	return int64(size), nil //nolint:gosec // bounded above
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (slog.Level, error) {
	var level slog.Level

	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}

	return level, nil
}

// Mapping compiles the configured aliases followed by extra, which lets
// command-line entries run after the file's.
func (c *Config) Mapping(extra ...alias.Entry) (*alias.Mapping, error) {
	entries := make([]alias.Entry, 0, len(c.Aliases)+len(extra))
	entries = append(entries, c.Aliases...)
	entries = append(entries, extra...)

	m, err := alias.Compile(entries)
	if err != nil {
		return nil, fmt.Errorf("compile aliases: %w", err)
	}

	return m, nil
}
