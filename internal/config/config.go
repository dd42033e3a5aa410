package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds the complete application configuration.
type Config struct {
	Log       LogConfig       `mapstructure:"log"       yaml:"log"`
	Database  DatabaseConfig  `mapstructure:"database"  yaml:"database"`
	NATS      NATSConfig      `mapstructure:"nats"      yaml:"nats"`
	Extractor ExtractorConfig `mapstructure:"extractor" yaml:"extractor"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host           string `mapstructure:"host"            yaml:"host"`
	Port           int    `mapstructure:"port"            yaml:"port"`
	User           string `mapstructure:"user"            yaml:"user"`
	Password       string `mapstructure:"password"        yaml:"password"`
	Name           string `mapstructure:"name"            yaml:"name"`
	Schema         string `mapstructure:"schema"          yaml:"schema"`
	SSLMode        string `mapstructure:"sslmode"         yaml:"sslmode"`
	MaxConnections int    `mapstructure:"max_connections" yaml:"max_connections"`
}

// DSN returns the database connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	URL           string        `mapstructure:"url"            yaml:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects" yaml:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait" yaml:"reconnect_wait"`
}

// ExtractorConfig holds extraction pipeline configuration.
type ExtractorConfig struct {
	MaxSourceSize int64         `mapstructure:"max_source_size" yaml:"max_source_size"`
	ParseTimeout  time.Duration `mapstructure:"parse_timeout"   yaml:"parse_timeout"`
	Concurrency   int           `mapstructure:"concurrency"     yaml:"concurrency"`
}

// New creates a new Config instance from Viper.
func New(v *viper.Viper) *Config {
	var config Config

	// Unmarshal configuration
	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("unable to decode config: %w", err))
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		panic(fmt.Errorf("invalid configuration: %w", err))
	}

	return &config
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	// Required fields validation
	if c.Database.User == "" {
		return errors.New("database.user is required")
	}

	if c.Database.Name == "" {
		return errors.New("database.name is required")
	}

	// Validate numeric ranges
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return errors.New("database.port must be between 1 and 65535")
	}

	if c.Extractor.Concurrency < 1 {
		return errors.New("extractor.concurrency must be at least 1")
	}

	if c.Extractor.MaxSourceSize < 1 {
		return errors.New("extractor.max_source_size must be positive")
	}

	return nil
}
