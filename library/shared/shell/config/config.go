package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/equilobe/library-go/library/shared/core"
)

// Supported values of Config.DBAdapter.
const (
	AdapterPGXPool = "pgx.pool"
	AdapterSQLDB   = "sql.db"
	AdapterSQLX    = "sqlx.db"
)

// Environment variables that override the YAML file.
const (
	EnvDatabaseURL        = "LIBRARY_DATABASE_URL"
	EnvReplicaDatabaseURL = "LIBRARY_REPLICA_DATABASE_URL"
	EnvDBAdapter          = "LIBRARY_DB_ADAPTER"
	EnvPenaltyPolicy      = "LIBRARY_PENALTY_POLICY"
	EnvRedisAddr          = "LIBRARY_REDIS_ADDR"
	EnvLogLevel           = "LIBRARY_LOG_LEVEL"
	EnvOTELEndpoint       = "LIBRARY_OTEL_ENDPOINT"
)

const (
	defaultDBAdapter     = AdapterPGXPool
	defaultPenaltyPolicy = "default"
	defaultLogLevel      = "info"
	defaultRedisStream   = "library-events"
	defaultServiceName   = "library"
)

// ErrInvalidConfig is the root of all configuration validation failures.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the deployment configuration.
type Config struct {
	DatabaseURL        string `yaml:"databaseURL"`
	ReplicaDatabaseURL string `yaml:"replicaDatabaseURL"`
	DBAdapter          string `yaml:"dbAdapter"`
	PenaltyPolicy      string `yaml:"penaltyPolicy"`
	LogLevel           string `yaml:"logLevel"`
	RedisAddr          string `yaml:"redisAddr"`
	RedisStream        string `yaml:"redisStream"`
	OTELEndpoint       string `yaml:"otelEndpoint"`
	ServiceName        string `yaml:"serviceName"`
	AutoMigrate        bool   `yaml:"autoMigrate"`
}

// Default returns a Config with every optional key set to its default.
func Default() Config {
	return Config{
		DBAdapter:     defaultDBAdapter,
		PenaltyPolicy: defaultPenaltyPolicy,
		LogLevel:      defaultLogLevel,
		RedisStream:   defaultRedisStream,
		ServiceName:   defaultServiceName,
	}
}

// Load reads the YAML file at path, applies environment overrides and validates the result.
// An empty path skips the file, so a deployment can be configured from the environment alone.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}

		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		EnvDatabaseURL:        &c.DatabaseURL,
		EnvReplicaDatabaseURL: &c.ReplicaDatabaseURL,
		EnvDBAdapter:          &c.DBAdapter,
		EnvPenaltyPolicy:      &c.PenaltyPolicy,
		EnvRedisAddr:          &c.RedisAddr,
		EnvLogLevel:           &c.LogLevel,
		EnvOTELEndpoint:       &c.OTELEndpoint,
	}

	for env, field := range overrides {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			*field = v
		}
	}
}

func (c *Config) normalize() {
	c.DBAdapter = strings.ToLower(strings.TrimSpace(c.DBAdapter))
	c.PenaltyPolicy = strings.ToLower(strings.TrimSpace(c.PenaltyPolicy))
	c.LogLevel = strings.ToLower(strings.TrimSpace(c.LogLevel))

	if c.DBAdapter == "" {
		c.DBAdapter = defaultDBAdapter
	}

	if c.PenaltyPolicy == "" {
		c.PenaltyPolicy = defaultPenaltyPolicy
	}

	if c.LogLevel == "" {
		c.LogLevel = defaultLogLevel
	}

	if c.RedisStream == "" {
		c.RedisStream = defaultRedisStream
	}

	if c.ServiceName == "" {
		c.ServiceName = defaultServiceName
	}
}

// Validate checks that all required keys are present and all enumerations hold known values.
func (c Config) Validate() error {
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return errors.Join(ErrInvalidConfig, fmt.Errorf("databaseURL is required (set in config file or %s)", EnvDatabaseURL))
	}

	switch c.DBAdapter {
	case AdapterPGXPool, AdapterSQLDB, AdapterSQLX:
	default:
		return errors.Join(ErrInvalidConfig, fmt.Errorf("dbAdapter must be one of %s, %s, %s, got %q",
			AdapterPGXPool, AdapterSQLDB, AdapterSQLX, c.DBAdapter))
	}

	if c.ReplicaDatabaseURL != "" && c.DBAdapter == AdapterSQLX {
		return errors.Join(ErrInvalidConfig, errors.New("replicaDatabaseURL is not supported with sqlx.db"))
	}

	if _, err := core.PenaltyPolicyByName(c.PenaltyPolicy); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}

	if _, err := c.SlogLevel(); err != nil {
		return errors.Join(ErrInvalidConfig, err)
	}

	return nil
}

// Policy returns the configured penalty policy.
func (c Config) Policy() (core.PenaltyPolicy, error) {
	return core.PenaltyPolicyByName(c.PenaltyPolicy)
}

// SlogLevel maps logLevel to a slog.Level.
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo, fmt.Errorf("logLevel: %w", err)
	}

	return level, nil
}
