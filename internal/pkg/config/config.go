package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Routing   RoutingConfig   `mapstructure:"routing"`
	Prices    PricesConfig    `mapstructure:"prices"`
	Catalog   CatalogConfig   `mapstructure:"catalog"`
	Sessions  SessionsConfig  `mapstructure:"sessions"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
	RateLimit    int `mapstructure:"rate_limit"`
}

// RoutingConfig selects the route provider: "osrm" or "google".
type RoutingConfig struct {
	Provider     string        `mapstructure:"provider"`
	BaseURL      string        `mapstructure:"base_url"`
	GoogleAPIKey string        `mapstructure:"google_api_key"`
	Timeout      time.Duration `mapstructure:"timeout"`
}

type PricesConfig struct {
	SourceURL string        `mapstructure:"source_url"`
	Country   string        `mapstructure:"country"`
	UserAgent string        `mapstructure:"user_agent"`
	Timeout   time.Duration `mapstructure:"timeout"`
}

// CatalogConfig selects where vehicles come from: "json" (Path, or the
// bundled catalog when empty) or "postgres".
type CatalogConfig struct {
	Source string `mapstructure:"source"`
	Path   string `mapstructure:"path"`
}

type SessionsConfig struct {
	IdleTimeout   time.Duration `mapstructure:"idle_timeout"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxConns int32  `mapstructure:"max_conns"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

// NATSConfig: events are disabled when URL is empty.
type NATSConfig struct {
	URL string `mapstructure:"url"`
}

// ValkeyConfig: caching is disabled when Addr is empty.
type ValkeyConfig struct {
	Addr   string `mapstructure:"addr"`
	Prefix string `mapstructure:"prefix"`
}

type TelemetryConfig struct {
	ServiceName  string `mapstructure:"service_name"`
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	Enabled      bool   `mapstructure:"enabled"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Load reads configuration from .env, an optional config file and
// environment variables, in increasing order of precedence.
func Load(service string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v, service)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: TUNITRIP_ROUTING_PROVIDER → routing.provider
	v.SetEnvPrefix("TUNITRIP")
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

func setDefaults(v *viper.Viper, service string) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 30)
	v.SetDefault("server.rate_limit", 120)
	v.SetDefault("routing.provider", "osrm")
	v.SetDefault("routing.base_url", "https://router.project-osrm.org")
	v.SetDefault("routing.google_api_key", "")
	v.SetDefault("routing.timeout", 10*time.Second)
	v.SetDefault("prices.source_url", "https://www.globalpetrolprices.com/Tunisia/")
	v.SetDefault("prices.country", "Tunisia")
	v.SetDefault("prices.user_agent", "")
	v.SetDefault("prices.timeout", 15*time.Second)
	v.SetDefault("catalog.source", "json")
	v.SetDefault("catalog.path", "")
	v.SetDefault("sessions.idle_timeout", 30*time.Minute)
	v.SetDefault("sessions.sweep_interval", time.Minute)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "tunitrip")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "tunitrip")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("nats.url", "")
	v.SetDefault("valkey.addr", "")
	v.SetDefault("valkey.prefix", "tunitrip:")
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_endpoint", "localhost:4317")
	v.SetDefault("telemetry.enabled", false)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
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

	switch c.Routing.Provider {
	case "osrm":
		if c.Routing.BaseURL == "" {
			errs = append(errs, "routing.base_url is required for the osrm provider")
		}
	case "google":
		if c.Routing.GoogleAPIKey == "" {
			errs = append(errs, "routing.google_api_key is required for the google provider")
		}
	default:
		errs = append(errs, fmt.Sprintf("routing.provider must be osrm or google, got %q", c.Routing.Provider))
	}
	if c.Routing.Timeout <= 0 {
		errs = append(errs, "routing.timeout must be positive")
	}
	if c.Prices.Timeout <= 0 {
		errs = append(errs, "prices.timeout must be positive")
	}

	switch c.Catalog.Source {
	case "json":
	case "postgres":
		if c.Database.Host == "" {
			errs = append(errs, "database.host is required for the postgres catalog")
		}
		if c.Database.Port <= 0 || c.Database.Port > 65535 {
			errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
		}
		if c.Database.DBName == "" {
			errs = append(errs, "database.dbname is required for the postgres catalog")
		}
	default:
		errs = append(errs, fmt.Sprintf("catalog.source must be json or postgres, got %q", c.Catalog.Source))
	}

	if c.Sessions.IdleTimeout <= 0 {
		errs = append(errs, "sessions.idle_timeout must be positive")
	}
	if c.Sessions.SweepInterval <= 0 {
		errs = append(errs, "sessions.sweep_interval must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
