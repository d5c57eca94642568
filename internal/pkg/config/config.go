package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Backend   BackendConfig   `mapstructure:"backend"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Location  LocationConfig  `mapstructure:"location"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

// BackendConfig selects where venue data comes from: the hosted REST
// backend ("rest") or a self-hosted Postgres ("postgres").
type BackendConfig struct {
	Driver         string `mapstructure:"driver"`
	URL            string `mapstructure:"url"`
	APIKey         string `mapstructure:"api_key"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
}

func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSeconds) * time.Second
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// LocationConfig points at the device-location gateway.
type LocationConfig struct {
	GatewayURL        string `mapstructure:"gateway_url"`
	APIKey            string `mapstructure:"api_key"`
	FixTimeoutSeconds int    `mapstructure:"fix_timeout_seconds"`
	MaxFixAgeSeconds  int    `mapstructure:"max_fix_age_seconds"`
}

func (l LocationConfig) FixTimeout() time.Duration {
	return time.Duration(l.FixTimeoutSeconds) * time.Second
}

func (l LocationConfig) MaxFixAge() time.Duration {
	return time.Duration(l.MaxFixAgeSeconds) * time.Second
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	TempoAddr   string `mapstructure:"tempo_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("backend.driver", "rest")
	v.SetDefault("backend.url", "")
	v.SetDefault("backend.api_key", "")
	v.SetDefault("backend.timeout_seconds", 30)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "halal")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "halalfinder")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("location.gateway_url", "")
	v.SetDefault("location.api_key", "")
	v.SetDefault("location.fix_timeout_seconds", 15)
	v.SetDefault("location.max_fix_age_seconds", 10)
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.tempo_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: HALALFINDER_BACKEND_URL → backend.url
	v.SetEnvPrefix("HALALFINDER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	switch c.Backend.Driver {
	case "rest":
		if c.Backend.URL == "" {
			errs = append(errs, "backend.url is required for the rest driver")
		}
		if c.Backend.APIKey == "" {
			errs = append(errs, "backend.api_key is required for the rest driver")
		}
	case "postgres":
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required for the postgres driver")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.User == "" {
			errs = append(errs, "database.user is required for the postgres driver")
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required for the postgres driver")
		}
	default:
		errs = append(errs, fmt.Sprintf("backend.driver must be rest or postgres, got %q", c.Backend.Driver))
	}

	if c.Location.FixTimeoutSeconds <= 0 {
		errs = append(errs, "location.fix_timeout_seconds must be positive")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
