// Package config loads the weaver settings from defaults, an optional
// weaver.yaml and WEAVER_ prefixed environment variables.
package config

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/toyz/weaver/pkg/logger"
	"github.com/toyz/weaver/pkg/storage/redis"
	"github.com/toyz/weaver/pkg/storage/sql"
	"github.com/toyz/weaver/pkg/weaver"
)

// EnvPrefix prefixes every environment override, WEAVER_SERVER_PORT for
// server.port
const EnvPrefix = "WEAVER"

// Config holds every setting of a weaver process
type Config struct {
	Server weaver.ServerConfig `mapstructure:"server"`
	Log    logger.Config       `mapstructure:"log"`
	Redis  RedisConfig         `mapstructure:"redis"`
	SQL    SQLConfig           `mapstructure:"sql"`
	Errors ErrorsConfig        `mapstructure:"errors"`
}

// RedisConfig enables the default redis adapter
type RedisConfig struct {
	Enabled      bool `mapstructure:"enabled"`
	redis.Config `mapstructure:",squash"`
}

// SQLConfig enables the default SQL adapter
type SQLConfig struct {
	Enabled    bool `mapstructure:"enabled"`
	sql.Config `mapstructure:",squash"`
}

// ErrorsConfig tunes error responses
type ErrorsConfig struct {
	// Verbose exposes internal error details to clients
	Verbose bool `mapstructure:"verbose"`
}

// Load reads the configuration. file may name a config file explicitly;
// otherwise weaver.yaml is looked up in the working directory and
// ./config, and a missing file is not an error.
func Load(file string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("weaver")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if file != "" || !stderrors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	hook := viper.DecodeHook(mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	))
	if err := v.Unmarshal(&cfg, hook); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Errors.Verbose {
		cfg.Server.Verbose = true
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	server := weaver.DefaultServerConfig()
	v.SetDefault("server.adapter", server.Adapter)
	v.SetDefault("server.host", server.Host)
	v.SetDefault("server.port", server.Port)
	v.SetDefault("server.enable_cors", server.EnableCORS)
	v.SetDefault("server.cors.allow_origins", server.CORS.AllowOrigins)
	v.SetDefault("server.cors.allow_methods", server.CORS.AllowMethods)
	v.SetDefault("server.cors.allow_headers", []string{})
	v.SetDefault("server.cors.allow_credentials", false)
	v.SetDefault("server.cors.max_age", 0)
	v.SetDefault("server.enable_secure_headers", server.EnableSecureHeaders)
	v.SetDefault("server.enable_tracer", server.EnableTracer)
	v.SetDefault("server.enable_recover", server.EnableRecover)
	v.SetDefault("server.body_limit", server.BodyLimit)
	v.SetDefault("server.verbose", false)
	v.SetDefault("server.shutdown_timeout", server.ShutdownTimeout)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.development", false)
	v.SetDefault("log.dir", "")

	rc := redis.DefaultConfig()
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.url", rc.URL)
	v.SetDefault("redis.addr", rc.Addr)
	v.SetDefault("redis.password", rc.Password)
	v.SetDefault("redis.db", rc.DB)
	v.SetDefault("redis.prefix", rc.Prefix)

	sc := sql.DefaultConfig()
	v.SetDefault("sql.enabled", false)
	v.SetDefault("sql.driver", sc.Driver)
	v.SetDefault("sql.dsn", sc.DSN)
	v.SetDefault("sql.max_open_conns", sc.MaxOpenConns)
	v.SetDefault("sql.max_idle_conns", sc.MaxIdleConns)
	v.SetDefault("sql.conn_max_lifetime", sc.ConnMaxLifetime)

	v.SetDefault("errors.verbose", false)
}

func validate(cfg *Config) error {
	switch strings.ToLower(cfg.Server.Adapter) {
	case "gin", "echo", "fiber":
	default:
		return fmt.Errorf("server.adapter must be gin, echo or fiber, got: %s", cfg.Server.Adapter)
	}
	if cfg.Server.Port == "" {
		return fmt.Errorf("server.port must not be empty")
	}
	if cfg.Server.BodyLimit < 0 {
		return fmt.Errorf("server.body_limit must not be negative, got: %d", cfg.Server.BodyLimit)
	}
	if cfg.SQL.Enabled && cfg.SQL.Driver != "pgx" && cfg.SQL.Driver != "sqlite3" {
		return fmt.Errorf("sql.driver must be pgx or sqlite3, got: %s", cfg.SQL.Driver)
	}
	return nil
}
