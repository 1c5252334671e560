package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Environment is the deployment mode. It is resolved once at startup and never changes.
type Environment string

const (
	EnvironmentDevelopment Environment = "development"
	EnvironmentProduction  Environment = "production"
)

// IsDevelopment reports whether failure responses may include diagnostics.
func (e Environment) IsDevelopment() bool {
	return e == EnvironmentDevelopment
}

// ParseEnvironment resolves a configured mode. An empty value means production.
func ParseEnvironment(raw string) (Environment, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "development", "dev":
		return EnvironmentDevelopment, nil
	case "", "production", "prod":
		return EnvironmentProduction, nil
	}
	return "", fmt.Errorf("unknown environment %q", raw)
}

// Config holds the complete application configuration.
type Config struct {
	App      AppConfig      `mapstructure:"app"      yaml:"app"`
	API      APIConfig      `mapstructure:"api"      yaml:"api"`
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	NATS     NATSConfig     `mapstructure:"nats"     yaml:"nats"`
	Log      LogConfig      `mapstructure:"log"      yaml:"log"`
}

// AppConfig holds process-wide settings.
type AppConfig struct {
	Name        string `mapstructure:"name"        yaml:"name"`
	Environment string `mapstructure:"environment" yaml:"environment"`
}

// APIConfig holds API server configuration.
type APIConfig struct {
	Host            string        `mapstructure:"host"             yaml:"host"`
	Port            string        `mapstructure:"port"             yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"     yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"    yaml:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes"   yaml:"max_body_bytes"`
}

// Address returns the listen address.
func (a APIConfig) Address() string {
	return a.Host + ":" + a.Port
}

// DatabaseConfig holds database configuration.
type DatabaseConfig struct {
	Host           string        `mapstructure:"host"            yaml:"host"`
	Port           int           `mapstructure:"port"            yaml:"port"`
	User           string        `mapstructure:"user"            yaml:"user"`
	Password       string        `mapstructure:"password"        yaml:"password"`
	Name           string        `mapstructure:"name"            yaml:"name"`
	Schema         string        `mapstructure:"schema"          yaml:"schema"`
	SSLMode        string        `mapstructure:"sslmode"         yaml:"sslmode"`
	MaxConnections int           `mapstructure:"max_connections" yaml:"max_connections"`
	MinConnections int           `mapstructure:"min_connections" yaml:"min_connections"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout" yaml:"connect_timeout"`
}

// NATSConfig holds NATS configuration.
type NATSConfig struct {
	Enabled       bool          `mapstructure:"enabled"        yaml:"enabled"`
	URL           string        `mapstructure:"url"            yaml:"url"`
	MaxReconnects int           `mapstructure:"max_reconnects" yaml:"max_reconnects"`
	ReconnectWait time.Duration `mapstructure:"reconnect_wait" yaml:"reconnect_wait"`
	SubjectPrefix string        `mapstructure:"subject_prefix" yaml:"subject_prefix"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"  yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "userapi")
	v.SetDefault("app.environment", string(EnvironmentProduction))

	v.SetDefault("api.host", "0.0.0.0")
	v.SetDefault("api.port", "8080")
	v.SetDefault("api.read_timeout", "10s")
	v.SetDefault("api.write_timeout", "10s")
	v.SetDefault("api.shutdown_timeout", "30s")
	v.SetDefault("api.max_body_bytes", 10*1024)

	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "dev")
	v.SetDefault("database.password", "")
	v.SetDefault("database.name", "userapi")
	v.SetDefault("database.schema", "userapi")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_connections", 25)
	v.SetDefault("database.min_connections", 0)
	v.SetDefault("database.connect_timeout", "5s")

	v.SetDefault("nats.enabled", false)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("nats.max_reconnects", 5)
	v.SetDefault("nats.reconnect_wait", "2s")
	v.SetDefault("nats.subject_prefix", "userapi")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}

// New creates a new Config instance from Viper.
func New(v *viper.Viper) *Config {
	var config Config

	if err := v.Unmarshal(&config); err != nil {
		panic(fmt.Errorf("unable to decode config: %w", err))
	}

	if err := config.Validate(); err != nil {
		panic(fmt.Errorf("invalid configuration: %w", err))
	}

	return &config
}

// Environment returns the resolved deployment mode. Validate guarantees it parses.
func (c *Config) Environment() Environment {
	env, err := ParseEnvironment(c.App.Environment)
	if err != nil {
		return EnvironmentProduction
	}
	return env
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, err := ParseEnvironment(c.App.Environment); err != nil {
		return fmt.Errorf("app.environment: %w", err)
	}

	if c.API.Port == "" {
		return errors.New("api.port is required")
	}
	if c.API.MaxBodyBytes < 0 {
		return errors.New("api.max_body_bytes must not be negative")
	}

	if c.Database.User == "" {
		return errors.New("database.user is required")
	}
	if c.Database.Name == "" {
		return errors.New("database.name is required")
	}
	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return errors.New("database.port must be between 1 and 65535")
	}
	if c.Database.MinConnections > c.Database.MaxConnections && c.Database.MaxConnections > 0 {
		return errors.New("database.min_connections must not exceed database.max_connections")
	}

	if c.NATS.Enabled && c.NATS.URL == "" {
		return errors.New("nats.url is required when nats is enabled")
	}

	return nil
}

// Redacted returns a copy safe to print.
func (c Config) Redacted() Config {
	if c.Database.Password != "" {
		c.Database.Password = "********"
	}
	return c
}
