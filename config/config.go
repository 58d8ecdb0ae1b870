// Package config holds the orderdesk configuration: defaults, an optional
// YAML file, a .env file and environment overrides, applied in that order.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"orderdesk/catalog"
	"orderdesk/summary"
)

const (
	SourceCSV   = "csv"
	SourceMongo = "mongo"

	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Catalog CatalogConfig `yaml:"catalog"`
	Session SessionConfig `yaml:"session"`
	Order   OrderConfig   `yaml:"order"`
	Summary SummaryConfig `yaml:"summary"`
	Logging LoggingConfig `yaml:"logging"`
}

type ServerConfig struct {
	Port            string   `yaml:"port"`
	ShutdownTimeout string   `yaml:"shutdown_timeout"`
	AllowedOrigins  []string `yaml:"allowed_origins"`
	// Mutations per second and burst allowed to one session.
	RateLimit float64 `yaml:"rate_limit"`
	RateBurst int     `yaml:"rate_burst"`
}

type CatalogConfig struct {
	Source     string          `yaml:"source"` // csv or mongo
	Path       string          `yaml:"path"`
	Columns    catalog.Columns `yaml:"columns"`
	MongoURI   string          `yaml:"mongo_uri"`
	Database   string          `yaml:"database"`
	Collection string          `yaml:"collection"`
}

type SessionConfig struct {
	Store         string `yaml:"store"` // memory or redis
	Secret        string `yaml:"secret"`
	CookieName    string `yaml:"cookie_name"`
	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`
	RedisDB       int    `yaml:"redis_db"`
	TTL           string `yaml:"ttl"` // "0" or empty keeps sessions forever
}

type OrderConfig struct {
	Timezone string `yaml:"timezone"` // IANA name, empty for the local zone
}

type SummaryConfig struct {
	Labels  summary.Labels `yaml:"labels"`
	PDFFont string         `yaml:"pdf_font"`
	QRSize  int            `yaml:"qr_size"`
}

type LoggingConfig struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            ":8080",
			ShutdownTimeout: "10s",
			AllowedOrigins:  []string{"*"},
			RateLimit:       5,
			RateBurst:       10,
		},
		Catalog: CatalogConfig{
			Source:     SourceCSV,
			Path:       "products.csv",
			Columns:    catalog.DefaultColumns(),
			Database:   "orderdesk",
			Collection: "products",
		},
		Session: SessionConfig{
			Store:      StoreMemory,
			CookieName: "orderdesk_session",
			RedisAddr:  "localhost:6379",
			TTL:        "0",
		},
		Summary: SummaryConfig{
			Labels: summary.DefaultLabels(),
			QRSize: 256,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load builds the configuration. An empty path or a missing file leaves the
// defaults in place; a file that exists but does not parse is an error.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	// .env is optional; real environment variables win over it
	_ = godotenv.Load()

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() error {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Port = port
	}
	if path := os.Getenv("CATALOG_PATH"); path != "" {
		c.Catalog.Path = path
	}
	if src := os.Getenv("CATALOG_SOURCE"); src != "" {
		c.Catalog.Source = src
	}
	if uri := os.Getenv("MONGO_URI"); uri != "" {
		c.Catalog.MongoURI = uri
	}
	if addr := os.Getenv("REDIS_URL"); addr != "" {
		c.Session.RedisAddr = addr
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		c.Session.RedisPassword = pw
	}
	if db := os.Getenv("REDIS_DB"); db != "" {
		n, err := strconv.Atoi(db)
		if err != nil {
			return fmt.Errorf("REDIS_DB: %w", err)
		}
		c.Session.RedisDB = n
	}
	if store := os.Getenv("SESSION_STORE"); store != "" {
		c.Session.Store = store
	}
	if secret := os.Getenv("SESSION_SECRET"); secret != "" {
		c.Session.Secret = secret
	}
	if tz := os.Getenv("ORDER_TIMEZONE"); tz != "" {
		c.Order.Timezone = tz
	}
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		c.Logging.Level = lvl
	}
	return nil
}

// Validate reports the first setting the server could not start with.
func (c *Config) Validate() error {
	switch c.Catalog.Source {
	case SourceCSV:
		if c.Catalog.Path == "" {
			return fmt.Errorf("catalog.path is required for the csv source")
		}
	case SourceMongo:
		if c.Catalog.MongoURI == "" {
			return fmt.Errorf("catalog.mongo_uri is required for the mongo source")
		}
	default:
		return fmt.Errorf("unknown catalog source %q", c.Catalog.Source)
	}

	switch c.Session.Store {
	case StoreMemory, StoreRedis:
	default:
		return fmt.Errorf("unknown session store %q", c.Session.Store)
	}

	if _, err := c.ShutdownTimeout(); err != nil {
		return err
	}
	if _, err := c.SessionTTL(); err != nil {
		return err
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Server.RateLimit <= 0 || c.Server.RateBurst < 1 {
		return fmt.Errorf("server.rate_limit and server.rate_burst must be positive")
	}
	return nil
}

// Addr returns the listen address, adding the colon a bare port lacks.
func (c *Config) Addr() string {
	port := c.Server.Port
	if port == "" {
		return ":8080"
	}
	if !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}

func (c *Config) ShutdownTimeout() (time.Duration, error) {
	return parseDuration("server.shutdown_timeout", c.Server.ShutdownTimeout)
}

func (c *Config) SessionTTL() (time.Duration, error) {
	return parseDuration("session.ttl", c.Session.TTL)
}

// Location resolves order.timezone; empty means time.Local.
func (c *Config) Location() (*time.Location, error) {
	if c.Order.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Order.Timezone)
	if err != nil {
		return nil, fmt.Errorf("order.timezone: %w", err)
	}
	return loc, nil
}

func parseDuration(name, raw string) (time.Duration, error) {
	if raw == "" || raw == "0" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", name, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: must not be negative", name)
	}
	return d, nil
}
