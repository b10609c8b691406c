// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MagicSessions Contributors

// Package config loads the magicsessions server configuration.
//
// Values are layered: built-in defaults, then the YAML file given with
// --config, then environment secrets, then flags the user set explicitly.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"

	"github.com/magicsessions/magicsessions/internal/auth"
)

// Environment variables consulted when the matching key is unset.
const (
	EnvDatabaseURL = "DATABASE_URL"
	EnvJWTKey      = "MAGICSESSIONS_JWT_KEY"
)

// Default values.
const (
	DefaultServerAddr      = ":8080"
	DefaultMetricsAddr     = "127.0.0.1:9100"
	DefaultReadTimeout     = 10 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultShutdownTimeout = 5 * time.Second
	DefaultMaxConns        = 10
	DefaultIssuer          = "magicsessions"
	DefaultAudience        = "magicsessions-clients"
	DefaultLogFormat       = "json"
	DefaultLogLevel        = "info"
)

// Config is the complete server configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server" json:"server,omitempty" jsonschema:"description=HTTP API listener"`
	Metrics  MetricsConfig  `koanf:"metrics" json:"metrics,omitempty" jsonschema:"description=Metrics and health listener"`
	Database DatabaseConfig `koanf:"database" json:"database,omitempty"`
	Auth     AuthConfig     `koanf:"auth" json:"auth,omitempty"`
	Log      LogConfig      `koanf:"log" json:"log,omitempty"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Addr            string        `koanf:"addr" json:"addr,omitempty"`
	ReadTimeout     time.Duration `koanf:"read_timeout" json:"read_timeout,omitempty"`
	WriteTimeout    time.Duration `koanf:"write_timeout" json:"write_timeout,omitempty"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" json:"shutdown_timeout,omitempty"`
}

// MetricsConfig configures the observability server. An empty address
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr" json:"addr,omitempty"`
}

// DatabaseConfig configures the PostgreSQL pool.
type DatabaseConfig struct {
	URL             string        `koanf:"url" json:"url,omitempty" jsonschema:"description=PostgreSQL connection URL (falls back to DATABASE_URL)"`
	MaxConns        int32         `koanf:"max_conns" json:"max_conns,omitempty" jsonschema:"minimum=1"`
	MinConns        int32         `koanf:"min_conns" json:"min_conns,omitempty" jsonschema:"minimum=0"`
	MaxConnLifetime time.Duration `koanf:"max_conn_lifetime" json:"max_conn_lifetime,omitempty"`
	ConnectRetries  uint64        `koanf:"connect_retries" json:"connect_retries,omitempty"`
	AutoMigrate     bool          `koanf:"auto_migrate" json:"auto_migrate,omitempty" jsonschema:"description=Apply pending migrations when serve starts"`
}

// AuthConfig configures token issuance and account policy.
type AuthConfig struct {
	JWT                 JWTConfig     `koanf:"jwt" json:"jwt,omitempty"`
	Lockout             LockoutConfig `koanf:"lockout" json:"lockout,omitempty"`
	BlockedEmailDomains []string      `koanf:"blocked_email_domains" json:"blocked_email_domains,omitempty" jsonschema:"description=Glob patterns matched against the email domain"`
	SweepInterval       time.Duration `koanf:"sweep_interval" json:"sweep_interval,omitempty"`
}

// JWTConfig configures access and refresh tokens.
type JWTConfig struct {
	Key                  string        `koanf:"key" json:"key,omitempty" jsonschema:"description=HS256 signing key (falls back to MAGICSESSIONS_JWT_KEY)"`
	Issuer               string        `koanf:"issuer" json:"issuer,omitempty"`
	Audience             string        `koanf:"audience" json:"audience,omitempty"`
	AccessTokenLifetime  time.Duration `koanf:"access_token_lifetime" json:"access_token_lifetime,omitempty"`
	RefreshTokenLifetime time.Duration `koanf:"refresh_token_lifetime" json:"refresh_token_lifetime,omitempty"`
}

// LockoutConfig configures the failed login lockout.
type LockoutConfig struct {
	Threshold int           `koanf:"threshold" json:"threshold,omitempty" jsonschema:"minimum=1"`
	Duration  time.Duration `koanf:"duration" json:"duration,omitempty"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Format string `koanf:"format" json:"format,omitempty" jsonschema:"enum=json,enum=text"`
	Level  string `koanf:"level" json:"level,omitempty" jsonschema:"enum=debug,enum=info,enum=warn,enum=error"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultServerAddr,
			ReadTimeout:     DefaultReadTimeout,
			WriteTimeout:    DefaultWriteTimeout,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Metrics: MetricsConfig{Addr: DefaultMetricsAddr},
		Database: DatabaseConfig{
			MaxConns:        DefaultMaxConns,
			MaxConnLifetime: time.Hour,
			ConnectRetries:  5,
			AutoMigrate:     true,
		},
		Auth: AuthConfig{
			JWT: JWTConfig{
				Issuer:               DefaultIssuer,
				Audience:             DefaultAudience,
				AccessTokenLifetime:  auth.DefaultAccessTokenLifetime,
				RefreshTokenLifetime: auth.DefaultRefreshTokenLifetime,
			},
			Lockout: LockoutConfig{
				Threshold: auth.LockoutThreshold,
				Duration:  auth.LockoutDuration,
			},
			SweepInterval: auth.DefaultSweepInterval,
		},
		Log: LogConfig{Format: DefaultLogFormat, Level: DefaultLogLevel},
	}
}

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"listen-addr":    "server.addr",
	"metrics-addr":   "metrics.addr",
	"database-url":   "database.url",
	"log-format":     "log.format",
	"log-level":      "log.level",
	"sweep-interval": "auth.sweep_interval",
}

// RegisterFlags adds the flags understood by Load to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("listen-addr", d.Server.Addr, "HTTP API listen address")
	fs.String("metrics-addr", d.Metrics.Addr, "metrics and health listen address (empty to disable)")
	fs.String("database-url", "", "PostgreSQL connection URL (default $"+EnvDatabaseURL+")")
	fs.String("log-format", d.Log.Format, "log format (json or text)")
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
	fs.Duration("sweep-interval", d.Auth.SweepInterval, "interval between expired token sweeps")
}

// Load builds the configuration. path may be empty, in which case no file
// is read. fs may be nil; only flags the user changed override file values.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		data, err := os.ReadFile(path) //nolint:gosec // path comes from the operator
		if err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
		if err := ValidateSchema(data); err != nil {
			return nil, oops.Code("CONFIG_SCHEMA_INVALID").With("path", path).Errorf("%s", FormatSchemaError(err))
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("path", path).Wrap(err)
		}
	}

	if fs != nil {
		provider := posflag.ProviderWithFlag(fs, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := flagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(fs, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "unmarshal").Wrap(err)
	}
	cfg.applyEnv()
	return cfg, nil
}

func (c *Config) applyEnv() {
	if c.Database.URL == "" {
		c.Database.URL = strings.TrimSpace(os.Getenv(EnvDatabaseURL))
	}
	if c.Auth.JWT.Key == "" {
		c.Auth.JWT.Key = os.Getenv(EnvJWTKey)
	}
}

// Validate checks the whole configuration for serving.
func (c Config) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Server),
		validation.Field(&c.Database),
		validation.Field(&c.Auth),
		validation.Field(&c.Log),
	)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return nil
}

// ValidateDatabase checks only what commands that touch the database need.
func (c Config) ValidateDatabase() error {
	if err := c.Database.Validate(); err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}
	return nil
}

// Validate checks the server settings.
func (s ServerConfig) Validate() error {
	return validation.ValidateStruct(&s,
		validation.Field(&s.Addr, validation.Required),
		validation.Field(&s.ReadTimeout, validation.Min(time.Duration(0))),
		validation.Field(&s.WriteTimeout, validation.Min(time.Duration(0))),
		validation.Field(&s.ShutdownTimeout, validation.Required, validation.Min(time.Second)),
	)
}

// Validate checks the database settings.
func (d DatabaseConfig) Validate() error {
	return validation.ValidateStruct(&d,
		validation.Field(&d.URL,
			validation.Required.Error("is required (set database.url or "+EnvDatabaseURL+")"),
			validation.By(postgresURL)),
		validation.Field(&d.MaxConns, validation.Min(int32(1))),
		validation.Field(&d.MinConns, validation.Min(int32(0)), validation.Max(d.MaxConns)),
	)
}

// Validate checks the auth settings.
func (a AuthConfig) Validate() error {
	return validation.ValidateStruct(&a,
		validation.Field(&a.JWT),
		validation.Field(&a.Lockout),
		validation.Field(&a.SweepInterval, validation.Required, validation.Min(time.Second)),
	)
}

// Validate checks the JWT settings.
func (j JWTConfig) Validate() error {
	return validation.ValidateStruct(&j,
		validation.Field(&j.Key,
			validation.Required.Error("is required (set auth.jwt.key or "+EnvJWTKey+")"),
			validation.By(minBytes(auth.MinSigningKeyLength))),
		validation.Field(&j.Issuer, validation.Required),
		validation.Field(&j.Audience, validation.Required),
		validation.Field(&j.AccessTokenLifetime, validation.Required, validation.Min(time.Minute)),
		validation.Field(&j.RefreshTokenLifetime, validation.Required, validation.Min(j.AccessTokenLifetime)),
	)
}

// Validate checks the lockout settings.
func (l LockoutConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Threshold, validation.Required, validation.Min(1)),
		validation.Field(&l.Duration, validation.Required, validation.Min(time.Second)),
	)
}

// Validate checks the log settings.
func (l LogConfig) Validate() error {
	return validation.ValidateStruct(&l,
		validation.Field(&l.Format, validation.Required, validation.In("json", "text")),
		validation.Field(&l.Level, validation.Required, validation.In("debug", "info", "warn", "error")),
	)
}

// LockoutPolicy converts the lockout settings.
func (c *Config) LockoutPolicy() auth.LockoutPolicy {
	return auth.LockoutPolicy{Threshold: c.Auth.Lockout.Threshold, Duration: c.Auth.Lockout.Duration}
}

// IssuerConfig converts the JWT settings.
func (c *Config) IssuerConfig() auth.IssuerConfig {
	return auth.IssuerConfig{
		SigningKey:           []byte(c.Auth.JWT.Key),
		Issuer:               c.Auth.JWT.Issuer,
		Audience:             c.Auth.JWT.Audience,
		AccessTokenLifetime:  c.Auth.JWT.AccessTokenLifetime,
		RefreshTokenLifetime: c.Auth.JWT.RefreshTokenLifetime,
	}
}

func postgresURL(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if !strings.HasPrefix(s, "postgres://") && !strings.HasPrefix(s, "postgresql://") {
		return errors.New("must be a postgres:// or postgresql:// URL")
	}
	return nil
}

func minBytes(n int) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if s != "" && len(s) < n {
			return fmt.Errorf("must be at least %d bytes", n)
		}
		return nil
	}
}
