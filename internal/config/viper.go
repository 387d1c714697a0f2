// Package config provides Viper-based hierarchical configuration management
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override (CULTURA_CSV_DELIMITER, ...).
const EnvPrefix = "CULTURA"

// Config represents the complete application configuration
type Config struct {
	Log struct {
		Level  string `mapstructure:"level" yaml:"level"`
		Format string `mapstructure:"format" yaml:"format"`
	} `mapstructure:"log" yaml:"log"`

	CSV struct {
		Delimiter  string `mapstructure:"delimiter" yaml:"delimiter"`
		Decimal    string `mapstructure:"decimal" yaml:"decimal"`
		ValueField int    `mapstructure:"value_field" yaml:"value_field"`
	} `mapstructure:"csv" yaml:"csv"`

	Matching struct {
		Normalization   string `mapstructure:"normalization" yaml:"normalization"`
		FoldApostrophes bool   `mapstructure:"fold_apostrophes" yaml:"fold_apostrophes"`
	} `mapstructure:"matching" yaml:"matching"`

	Catalog struct {
		File string `mapstructure:"file" yaml:"file"`
	} `mapstructure:"catalog" yaml:"catalog"`

	Data struct {
		Directory string `mapstructure:"directory" yaml:"directory"`
	} `mapstructure:"data" yaml:"data"`

	Fetch struct {
		TimeoutSeconds int `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
	} `mapstructure:"fetch" yaml:"fetch"`

	Server struct {
		Addr                  string `mapstructure:"addr" yaml:"addr"`
		RequestTimeoutSeconds int    `mapstructure:"request_timeout_seconds" yaml:"request_timeout_seconds"`
		SessionTTLMinutes     int    `mapstructure:"session_ttl_minutes" yaml:"session_ttl_minutes"`
		MaxSessions           int    `mapstructure:"max_sessions" yaml:"max_sessions"`
	} `mapstructure:"server" yaml:"server"`
}

// InitializeConfig initializes Viper configuration with hierarchical loading
func InitializeConfig() (*Config, error) {
	return InitializeConfigFromFile("")
}

// InitializeConfigFromFile is InitializeConfig with an explicit config file. An
// empty path searches the standard locations.
func InitializeConfigFromFile(path string) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Config file locations
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("$HOME/.cultura-csv")
		v.AddConfigPath(".cultura-csv")
		v.AddConfigPath(".")
	}

	// 3. Environment variables
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// 4. Read config file (optional unless given explicitly)
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		switch {
		case path != "":
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		case !notFound:
			// Log the error but don't fail - continue with defaults and env vars
			fmt.Printf("Warning: error reading config file %s: %v\n", v.ConfigFileUsed(), err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// 5. Validate configuration
	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("csv.decimal", "point")
	v.SetDefault("csv.value_field", 1)

	v.SetDefault("matching.normalization", "nfc")
	v.SetDefault("matching.fold_apostrophes", false)

	v.SetDefault("catalog.file", "")
	v.SetDefault("data.directory", "data")

	v.SetDefault("fetch.timeout_seconds", 30)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.request_timeout_seconds", 60)
	v.SetDefault("server.session_ttl_minutes", 30)
	v.SetDefault("server.max_sessions", 1000)
}

// validateConfig validates the configuration values
func validateConfig(config *Config) error {
	if _, err := logrus.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("invalid log level: %s", config.Log.Level)
	}

	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s (must be 'text' or 'json')", config.Log.Format)
	}

	if config.CSV.Delimiter != "," && config.CSV.Delimiter != ";" {
		return fmt.Errorf("CSV delimiter must be ',' or ';', got: %s", config.CSV.Delimiter)
	}

	if config.CSV.Decimal != "point" && config.CSV.Decimal != "comma" {
		return fmt.Errorf("csv.decimal must be 'point' or 'comma', got: %s", config.CSV.Decimal)
	}

	if config.CSV.ValueField < 1 {
		return fmt.Errorf("csv.value_field must be at least 1, got: %d", config.CSV.ValueField)
	}

	if config.Matching.Normalization != "none" && config.Matching.Normalization != "nfc" {
		return fmt.Errorf("matching.normalization must be 'none' or 'nfc', got: %s", config.Matching.Normalization)
	}

	if config.Fetch.TimeoutSeconds < 1 || config.Fetch.TimeoutSeconds > 300 {
		return fmt.Errorf("fetch.timeout_seconds must be between 1 and 300, got: %d", config.Fetch.TimeoutSeconds)
	}

	if config.Server.RequestTimeoutSeconds < 1 {
		return fmt.Errorf("server.request_timeout_seconds must be positive, got: %d", config.Server.RequestTimeoutSeconds)
	}

	if config.Server.SessionTTLMinutes < 1 {
		return fmt.Errorf("server.session_ttl_minutes must be positive, got: %d", config.Server.SessionTTLMinutes)
	}

	if config.Server.MaxSessions < 1 {
		return fmt.Errorf("server.max_sessions must be positive, got: %d", config.Server.MaxSessions)
	}

	return nil
}

// DelimiterRune returns the configured CSV delimiter.
func (c *Config) DelimiterRune() rune {
	for _, r := range c.CSV.Delimiter {
		return r
	}
	return ','
}

// FetchTimeout returns the remote fetch timeout.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.Fetch.TimeoutSeconds) * time.Second
}

// RequestTimeout returns the HTTP handler timeout.
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Server.RequestTimeoutSeconds) * time.Second
}

// SessionTTL returns how long an idle chart session is kept.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.Server.SessionTTLMinutes) * time.Minute
}

// ConfigureLoggingFromConfig configures logging based on the Config struct
func ConfigureLoggingFromConfig(config *Config) *logrus.Logger {
	logger := logrus.New()

	logLevel, err := logrus.ParseLevel(strings.ToLower(config.Log.Level))
	if err != nil {
		logger.Warnf("Invalid log level '%s', using 'info'", config.Log.Level)
		logLevel = logrus.InfoLevel
	}
	logger.SetLevel(logLevel)

	if strings.ToLower(config.Log.Format) == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp: true,
		})
	}

	return logger
}
