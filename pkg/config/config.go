// Package config provides configuration loading and validation for mdescape.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Sentinel validation errors.
var (
	ErrInvalidPort         = errors.New("invalid server port")
	ErrInvalidBodyLimit    = errors.New("server max body bytes must be positive")
	ErrInvalidInputLimit   = errors.New("mcp max input bytes must be positive")
	ErrInvalidLogLevel     = errors.New("invalid logging level")
	ErrInvalidLogFormat    = errors.New("invalid logging format")
	ErrInvalidBundleFormat = errors.New("invalid bundle format")
	ErrInvalidSampleRatio  = errors.New("telemetry sample ratio must be within [0, 1]")
)

// envPrefix is the prefix of environment overrides, e.g. MDESCAPE_SERVER_PORT.
const envPrefix = "MDESCAPE"

const maxPort = 65535

// Config holds all configuration for mdescape.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging"`
	Bundle    BundleConfig    `mapstructure:"bundle"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Server    ServerConfig    `mapstructure:"server"`
	MCP       MCPConfig       `mapstructure:"mcp"`
	Escape    EscapeConfig    `mapstructure:"escape"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// BundleConfig controls how escape bundles are written.
type BundleConfig struct {
	Format   string `mapstructure:"format"`
	Compress bool   `mapstructure:"compress"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"`
	Port            int           `mapstructure:"port"`
}

// Addr returns the listen address.
func (server ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", server.Host, server.Port)
}

// MCPConfig holds MCP tool server configuration.
type MCPConfig struct {
	MaxInputBytes int `mapstructure:"max_input_bytes"`
}

// EscapeConfig controls the escape pipeline.
type EscapeConfig struct {
	// Fallback returns the source tree when a translation is malformed
	// instead of failing.
	Fallback bool `mapstructure:"fallback"`
	// CheckLayout compares placeholder usage between source and translation
	// and reports differences.
	CheckLayout bool `mapstructure:"check_layout"`
}

// TelemetryConfig holds OpenTelemetry export configuration.
type TelemetryConfig struct {
	OTLPEndpoint string  `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string  `mapstructure:"otlp_headers"`
	Environment  string  `mapstructure:"environment"`
	SampleRatio  float64 `mapstructure:"sample_ratio"`
	OTLPInsecure bool    `mapstructure:"otlp_insecure"`
}

// LoadConfig loads configuration from file and environment variables. With
// an empty path it looks for mdescape.yaml in the working directory,
// ./config and $HOME/.config/mdescape; a missing file is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName("mdescape")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("./config")

		home, homeErr := os.UserHomeDir()
		if homeErr == nil {
			viperCfg.AddConfigPath(filepath.Join(home, ".config", "mdescape"))
		}
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid configuration: %w", validateErr)
	}

	return &config, nil
}

// Default returns the configuration used when nothing is overridden. Unlike
// LoadConfig it reads neither files nor the environment.
func Default() (*Config, error) {
	viperCfg := viper.New()
	setDefaults(viperCfg)

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal default config: %w", unmarshalErr)
	}

	validateErr := validateConfig(&config)
	if validateErr != nil {
		return nil, fmt.Errorf("invalid default configuration: %w", validateErr)
	}

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults(viperCfg *viper.Viper) {
	viperCfg.SetDefault("logging.level", DefaultLoggingLevel)
	viperCfg.SetDefault("logging.format", DefaultLoggingFormat)

	viperCfg.SetDefault("bundle.format", DefaultBundleFormat)
	viperCfg.SetDefault("bundle.compress", DefaultBundleCompress)

	viperCfg.SetDefault("server.host", DefaultServerHost)
	viperCfg.SetDefault("server.port", DefaultServerPort)
	viperCfg.SetDefault("server.read_timeout", DefaultServerReadTimeout)
	viperCfg.SetDefault("server.write_timeout", DefaultServerWriteTimeout)
	viperCfg.SetDefault("server.idle_timeout", DefaultServerIdleTimeout)
	viperCfg.SetDefault("server.shutdown_timeout", DefaultServerShutdownTimeout)
	viperCfg.SetDefault("server.max_body_bytes", DefaultServerMaxBodyBytes)

	viperCfg.SetDefault("mcp.max_input_bytes", DefaultMCPMaxInputBytes)

	viperCfg.SetDefault("escape.fallback", DefaultEscapeFallback)
	viperCfg.SetDefault("escape.check_layout", DefaultEscapeCheckLayout)

	viperCfg.SetDefault("telemetry.otlp_endpoint", "")
	viperCfg.SetDefault("telemetry.otlp_headers", "")
	viperCfg.SetDefault("telemetry.otlp_insecure", false)
	viperCfg.SetDefault("telemetry.environment", DefaultTelemetryEnvironment)
	viperCfg.SetDefault("telemetry.sample_ratio", DefaultTelemetrySampleRatio)
}

// validateConfig validates the configuration.
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > maxPort {
		return fmt.Errorf("%w: %d", ErrInvalidPort, config.Server.Port)
	}

	if config.Server.MaxBodyBytes <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBodyLimit, config.Server.MaxBodyBytes)
	}

	if config.MCP.MaxInputBytes <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidInputLimit, config.MCP.MaxInputBytes)
	}

	switch strings.ToLower(config.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, config.Logging.Level)
	}

	switch strings.ToLower(config.Logging.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogFormat, config.Logging.Format)
	}

	switch strings.ToLower(config.Bundle.Format) {
	case "json", "yaml", "yml":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBundleFormat, config.Bundle.Format)
	}

	if config.Telemetry.SampleRatio < 0 || config.Telemetry.SampleRatio > 1 {
		return fmt.Errorf("%w: %v", ErrInvalidSampleRatio, config.Telemetry.SampleRatio)
	}

	return nil
}
