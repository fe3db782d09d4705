// Package logger builds the zap loggers used across weaver and carries a
// per-request context id.
package logger

import (
	"context"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config configures New
type Config struct {
	// Level is the minimum level: debug, info, warn or error
	Level string `mapstructure:"level"`
	// Development enables colored console output
	Development bool `mapstructure:"development"`
	// Dir enables daily rotating file output when set
	Dir string `mapstructure:"dir"`
}

// New builds a logger writing to stderr and, when Dir is set, to a file
// per day under Dir
func New(cfg Config) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(zapcore.DebugLevel)
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
			return nil, err
		}
	}

	consoleCfg := zap.NewProductionEncoderConfig()
	consoleCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	consoleCfg.EncodeLevel = zapcore.CapitalLevelEncoder
	if cfg.Development {
		consoleCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewConsoleEncoder(consoleCfg), zapcore.Lock(os.Stderr), level),
	}

	if cfg.Dir != "" {
		if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
			return nil, err
		}
		fileCfg := zap.NewProductionEncoderConfig()
		fileCfg.EncodeTime = zapcore.ISO8601TimeEncoder
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(fileCfg), NewDailyFile(cfg.Dir), level))
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}
	return zap.New(zapcore.NewTee(cores...), opts...), nil
}

var (
	defaultMu sync.RWMutex
	defaultLg = zap.NewNop()
)

// Default returns the process logger. It discards everything until
// SetDefault is called.
func Default() *zap.Logger {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultLg
}

// SetDefault replaces the process logger and returns the previous one
func SetDefault(l *zap.Logger) *zap.Logger {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	prev := defaultLg
	if l == nil {
		l = zap.NewNop()
	}
	defaultLg = l
	return prev
}

type contextKey int

const (
	contextIDKey contextKey = iota
	loggerKey
)

// WithContextID attaches a request context id to ctx
func WithContextID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, contextIDKey, id)
}

// ContextID returns the context id of ctx, or ""
func ContextID(ctx context.Context) string {
	id, _ := ctx.Value(contextIDKey).(string)
	return id
}

// WithLogger attaches l to ctx
func WithLogger(ctx context.Context, l *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext returns the logger of ctx, falling back to Default. The
// context id is added as a field when present.
func FromContext(ctx context.Context) *zap.Logger {
	l, ok := ctx.Value(loggerKey).(*zap.Logger)
	if !ok || l == nil {
		l = Default()
	}
	if id := ContextID(ctx); id != "" {
		return l.With(zap.String("context", id))
	}
	return l
}
