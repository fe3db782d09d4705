// Package redis is the redis storage adapter with hash and key/value
// helpers on top of go-redis.
package redis

import (
	"context"
	"fmt"

	goredis "github.com/redis/go-redis/v9"

	"github.com/toyz/weaver/pkg/storage"
)

// Config configures the redis connection. URL wins over Addr.
type Config struct {
	URL      string `mapstructure:"url"`
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// Prefix is put in front of every key the helpers touch
	Prefix string `mapstructure:"prefix"`
}

// DefaultConfig points at a local redis
func DefaultConfig() Config {
	return Config{Addr: "localhost:6379"}
}

// Client is a redis client that knows its key prefix
type Client struct {
	*goredis.Client
	prefix string
}

// Key applies the connection prefix to key
func (c *Client) Key(key string) string {
	return MakeKey(key, c.prefix)
}

// Adapter is the redis storage adapter
type Adapter = storage.Adapter[*Client, Config]

// Default is the default redis adapter used when helpers get a nil adapter
var Default storage.DefaultHandle[*Client, Config]

// NewAdapter creates a redis adapter. Call Initialize to connect.
func NewAdapter() *Adapter {
	return storage.NewAdapter("redis", DefaultConfig(), connect, func(c *Client) error {
		return c.Close()
	})
}

func connect(ctx context.Context, cfg Config) (*Client, error) {
	var opts *goredis.Options
	if cfg.URL != "" {
		parsed, err := goredis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &goredis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}
	}

	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &Client{Client: client, prefix: cfg.Prefix}, nil
}

// WithURL connects with a redis:// URL
func WithURL(url string) storage.Option[Config] {
	return func(cfg *Config) { cfg.URL = url }
}

// WithAddr connects to host:port
func WithAddr(addr string) storage.Option[Config] {
	return func(cfg *Config) { cfg.Addr = addr }
}

// WithPrefix sets the key prefix
func WithPrefix(prefix string) storage.Option[Config] {
	return func(cfg *Config) { cfg.Prefix = prefix }
}

// WithConfig replaces the whole configuration
func WithConfig(c Config) storage.Option[Config] {
	return func(cfg *Config) { *cfg = c }
}

func ensure(a *Adapter) (*Client, error) {
	return Default.Ensure(a)
}
