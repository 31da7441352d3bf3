package aetherdb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// Config selects and parameterizes one backend.
type Config struct {
	Backend string `mapstructure:"backend"`

	SQL struct {
		Driver       string `mapstructure:"driver"`
		DSN          string `mapstructure:"dsn"`
		MaxOpenConns int    `mapstructure:"max_open_conns"`
		MaxIdleConns int    `mapstructure:"max_idle_conns"`
	} `mapstructure:"sql"`

	REST struct {
		BaseURL string        `mapstructure:"base_url"`
		Token   string        `mapstructure:"token"`
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"rest"`

	Firestore struct {
		ProjectID string        `mapstructure:"project_id"`
		Database  string        `mapstructure:"database"`
		BaseURL   string        `mapstructure:"base_url"`
		Timeout   time.Duration `mapstructure:"timeout"`
	} `mapstructure:"firestore"`

	Mongo struct {
		URI      string `mapstructure:"uri"`
		Database string `mapstructure:"database"`
	} `mapstructure:"mongo"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("backend", "sql")
	v.SetDefault("sql.driver", "sqlite3")
	v.SetDefault("sql.dsn", ":memory:")
	v.SetDefault("sql.max_open_conns", 10)
	v.SetDefault("sql.max_idle_conns", 10)
	v.SetDefault("rest.timeout", 30*time.Second)
	v.SetDefault("firestore.database", "(default)")
	v.SetDefault("firestore.timeout", 30*time.Second)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
}

// LoadConfig reads configuration from the given file, with AETHERDB_*
// environment variables taking precedence. An empty path loads defaults and
// environment only.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix("AETHERDB")
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// backendID normalizes the configured backend name.
func (c *Config) backendID() string {
	return strings.ToLower(strings.TrimSpace(c.Backend))
}

// Validate checks that the selected backend has what it needs to connect.
func (c *Config) Validate() error {
	switch c.backendID() {
	case "sql":
		if c.SQL.Driver == "" || c.SQL.DSN == "" {
			return fmt.Errorf("sql backend requires driver and dsn")
		}
	case "rest":
		if c.REST.BaseURL == "" {
			return fmt.Errorf("rest backend requires base_url")
		}
	case "firestore":
		if c.Firestore.ProjectID == "" {
			return fmt.Errorf("firestore backend requires project_id")
		}
	case "mongodb":
		if c.Mongo.URI == "" || c.Mongo.Database == "" {
			return fmt.Errorf("mongodb backend requires uri and database")
		}
	default:
		return fmt.Errorf("unknown backend %q", c.Backend)
	}
	return nil
}

// Open builds the driver the configuration selects. The caller owns the
// returned driver and typically hands it to Initialize.
func Open(ctx context.Context, cfg *Config, logger zerolog.Logger) (DatabaseDriver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.backendID() {
	case "sql":
		return NewSQLDriver(cfg.SQL.Driver, cfg.SQL.DSN, cfg.SQL.MaxOpenConns, cfg.SQL.MaxIdleConns, logger)
	case "rest":
		return NewRESTDriver(cfg.REST.BaseURL, cfg.REST.Token, cfg.REST.Timeout, logger), nil
	case "firestore":
		return NewFirestoreDriver(cfg.Firestore.BaseURL, cfg.Firestore.ProjectID, cfg.Firestore.Database, cfg.Firestore.Timeout, logger), nil
	case "mongodb":
		return NewMongoDriver(ctx, cfg.Mongo.URI, cfg.Mongo.Database, logger)
	default:
		return nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}
