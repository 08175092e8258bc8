// Package config holds the settings of the provisioning step itself. The
// asset being provisioned is not configurable here.
package config

import (
	"bytes"
	stdErrors "errors"
	"io"
	"os"
	"strings"

	apperrors "lensdb/internal/errors"
	"lensdb/internal/logger"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

const (
	FormatText = "text"
	FormatJSON = "json"
)

// Config controls how the provisioning step reports to the build log.
type Config struct {
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	NoColor   bool   `yaml:"no_color"`
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		LogLevel:  "info",
		LogFormat: FormatText,
	}
}

// Load reads a YAML file and merges it over Default.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.ConfigError(apperrors.CodeConfigRead, "failed to read config file", err).
			WithModule("config").
			WithOperation("Load").
			WithField("path", path)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, apperrors.ConfigError(apperrors.CodeConfigParse, "failed to parse config file", err).
			WithModule("config").
			WithOperation("Load").
			WithField("path", path)
	}

	return Merge(Default(), cfg), nil
}

// Parse decodes configuration data, rejecting unknown keys.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if len(bytes.TrimSpace(data)) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !stdErrors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "failed to decode configuration")
	}
	return &cfg, nil
}

// Merge overlays non-empty settings from later configurations onto earlier ones.
func Merge(cfgs ...*Config) *Config {
	result := Default()
	for _, cfg := range cfgs {
		if cfg == nil {
			continue
		}
		if v := strings.TrimSpace(cfg.LogLevel); v != "" {
			result.LogLevel = v
		}
		if v := strings.TrimSpace(cfg.LogFormat); v != "" {
			result.LogFormat = strings.ToLower(v)
		}
		if cfg.NoColor {
			result.NoColor = true
		}
	}
	return result
}

// Validate checks that the level and format are recognised.
func (c *Config) Validate() error {
	if _, err := logger.ParseLevel(c.LogLevel); err != nil {
		return apperrors.ConfigError(apperrors.CodeConfigGeneric, "invalid log level", err).
			WithModule("config").
			WithOperation("Validate")
	}

	switch c.LogFormat {
	case FormatText, FormatJSON:
		return nil
	default:
		return apperrors.ConfigError(apperrors.CodeConfigGeneric, "invalid log format", errors.Errorf("unknown format %q", c.LogFormat)).
			WithModule("config").
			WithOperation("Validate")
	}
}

// NewLogger builds the build-log writer described by the configuration.
func (c *Config) NewLogger(out io.Writer) logger.Logger {
	level, err := logger.ParseLevel(c.LogLevel)
	if err != nil {
		level = logger.LevelInfo
	}

	opts := []logger.Option{logger.WithOutput(out), logger.WithLevel(level)}

	switch {
	case c.LogFormat == FormatJSON:
		return logger.NewStandardLogger(append(opts, logger.WithFormatter(&logger.JSONFormatter{}))...)
	case c.NoColor:
		return logger.NewStandardLogger(append(opts, logger.WithFormatter(&logger.TextFormatter{TimestampFormat: "15:04:05"}))...)
	default:
		return logger.NewColoredLogger(opts...)
	}
}
