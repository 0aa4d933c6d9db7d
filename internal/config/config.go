// Package config manages environment variables.
//
// It reads variables from the environment (and a `.env` file when present),
// loads them into structured Go types and validates that required values
// are present so they can be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (e.g. observability).
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists it is loaded into the
	// process environment before any env var is read.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	Env vars are read using the prefix CONTACTS_. Keys are lower-cased and
	the prefix removed; nesting uses the "." delimiter, so
	CONTACTS_SERVER.PORT -> server.port -> Config.Server.Port.
*/

// EnvPrefix is stripped from every environment variable koanf reads.
const EnvPrefix = "CONTACTS_"

// KV backends selectable through kv.backend.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config is the root configuration object for the application.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at load time.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	KV            KVConfig             `koanf:"kv" validate:"required"`
	Redis         RedisConfig          `koanf:"redis"`
	Database      DatabaseConfig       `koanf:"database"`
	Contacts      ContactsConfig       `koanf:"contacts" validate:"required"`
	Job           JobConfig            `koanf:"job"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
type ServerConfig struct {
	Port               string        `koanf:"port" validate:"required"`
	ReadTimeout        time.Duration `koanf:"read_timeout" validate:"min=1s"`
	WriteTimeout       time.Duration `koanf:"write_timeout" validate:"min=1s"`
	IdleTimeout        time.Duration `koanf:"idle_timeout" validate:"min=1s"`
	ShutdownTimeout    time.Duration `koanf:"shutdown_timeout" validate:"min=1s"`
	CORSAllowedOrigins []string      `koanf:"cors_allowed_origins" validate:"required"`

	// BodyLimit uses echo's size syntax, e.g. "64K" or "1M".
	BodyLimit string `koanf:"body_limit" validate:"required"`
}

// KVConfig selects and tunes the key-value backend.
type KVConfig struct {
	Backend string `koanf:"backend" validate:"required,oneof=memory redis postgres"`

	// Namespace is prepended to every Redis key.
	Namespace string `koanf:"namespace"`

	// ListLimit bounds one page of GET /contacts.
	ListLimit int `koanf:"list_limit" validate:"min=1,max=1000"`
}

// RedisConfig contains Redis connection details.
// Address is "host:port". Required for the redis backend and for jobs.
type RedisConfig struct {
	Address  string `koanf:"address"`
	Password string `koanf:"password"`
	DB       int    `koanf:"db" validate:"min=0"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
// Required for the postgres backend and the migrate command.
type DatabaseConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	User            string        `koanf:"user"`
	Password        string        `koanf:"password"`
	Name            string        `koanf:"name"`
	SSLMode         string        `koanf:"ssl_mode"`
	MaxOpenConns    int32         `koanf:"max_open_conns" validate:"min=1"`
	MaxIdleConns    int32         `koanf:"max_idle_conns" validate:"min=0"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `koanf:"conn_max_idle_time"`
}

// ContactsConfig tunes the contacts resource.
type ContactsConfig struct {
	// MountPath is the path prefix the contacts sub-router answers under. It
	// may span several segments, e.g. "api/v1/contacts".
	MountPath string `koanf:"mount_path" validate:"required"`

	// DefaultTTL expires writes that carry no expiration query. Zero keeps
	// them forever.
	DefaultTTL time.Duration `koanf:"default_ttl" validate:"min=0s"`

	// StrictCreateStatus answers an undecodable create body with 400 instead
	// of the historical 200.
	StrictCreateStatus bool `koanf:"strict_create_status"`

	// StrictUpdateIdentity also rejects an update whose new body carries an
	// id other than the path id. Off by default: only the stored record's id
	// is checked.
	StrictUpdateIdentity bool `koanf:"strict_update_identity"`
}

// JobConfig controls the background purge of expired Postgres entries.
type JobConfig struct {
	Enabled       bool          `koanf:"enabled"`
	Concurrency   int           `koanf:"concurrency" validate:"min=1"`
	PurgeInterval time.Duration `koanf:"purge_interval" validate:"min=1s"`
}

// Default returns a config with every optional value filled in. Values
// from the environment are layered on top of it.
func Default() *Config {
	return &Config{
		Primary: Primary{Env: "development"},
		Server: ServerConfig{
			Port:               "8080",
			ReadTimeout:        30 * time.Second,
			WriteTimeout:       30 * time.Second,
			IdleTimeout:        60 * time.Second,
			ShutdownTimeout:    10 * time.Second,
			CORSAllowedOrigins: []string{"*"},
			BodyLimit:          "64K",
		},
		KV: KVConfig{
			Backend:   BackendMemory,
			ListLimit: 1000,
		},
		Database: DatabaseConfig{
			Port:            5432,
			SSLMode:         "disable",
			MaxOpenConns:    10,
			MaxIdleConns:    2,
			ConnMaxLifetime: time.Hour,
			ConnMaxIdleTime: 30 * time.Minute,
		},
		Contacts: ContactsConfig{
			MountPath: "contacts",
		},
		Job: JobConfig{
			Concurrency:   2,
			PurgeInterval: time.Minute,
		},
		Observability: DefaultObservabilityConfig(),
	}
}

// LoadConfig loads configuration from environment variables, unmarshals it
// over Default(), validates it and returns the result.
func LoadConfig() (*Config, error) {
	k := koanf.New(".")

	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("could not load env variables: %w", err)
	}

	mainConfig := Default()

	// Unmarshal only overwrites keys present in the environment, so the
	// defaults survive for everything else, including nested observability
	// keys.
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Service name is fixed; environment follows primary.env.
	mainConfig.Observability.ServiceName = "contacts-worker"
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Validate(); err != nil {
		return nil, err
	}

	return mainConfig, nil
}

// Validate checks struct tags and the rules that span blocks.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if c.KV.Backend == BackendRedis && c.Redis.Address == "" {
		return fmt.Errorf("redis.address is required for the redis backend")
	}

	if c.KV.Backend == BackendPostgres {
		if err := c.Database.validateConnection(); err != nil {
			return err
		}
	}

	if c.Job.Enabled {
		if c.KV.Backend != BackendPostgres {
			return fmt.Errorf("job.enabled requires the postgres backend")
		}
		if c.Redis.Address == "" {
			return fmt.Errorf("redis.address is required when jobs are enabled")
		}
	}

	if c.Observability != nil {
		if err := c.Observability.Validate(); err != nil {
			return fmt.Errorf("invalid observability config: %w", err)
		}
	}

	return nil
}

func (d DatabaseConfig) validateConnection() error {
	missing := []string{}
	if d.Host == "" {
		missing = append(missing, "database.host")
	}
	if d.User == "" {
		missing = append(missing, "database.user")
	}
	if d.Name == "" {
		missing = append(missing, "database.name")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing database settings: %s", strings.Join(missing, ", "))
	}
	return nil
}
