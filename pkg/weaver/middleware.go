package weaver

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/toyz/weaver/pkg/errors"
	"github.com/toyz/weaver/pkg/logger"
)

// ContextIDHeader carries the request context id
const ContextIDHeader = "X-Context-Id"

// Recover turns panics into server errors
func Recover() MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx RequestContext) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = errors.NewServer().SetInner(fmt.Errorf("panic: %v", r))
				}
			}()
			return next(ctx)
		}
	}
}

// CORSConfig configures CORS
type CORSConfig struct {
	AllowOrigins     []string `mapstructure:"allow_origins"`
	AllowMethods     []string `mapstructure:"allow_methods"`
	AllowHeaders     []string `mapstructure:"allow_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	MaxAge           int      `mapstructure:"max_age"`
}

// DefaultCORSConfig allows every origin
func DefaultCORSConfig() CORSConfig {
	return CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{
			http.MethodGet, http.MethodHead, http.MethodPut, http.MethodPatch,
			http.MethodPost, http.MethodDelete,
		},
	}
}

// CORS sets the CORS headers and answers preflight requests
func CORS(cfg CORSConfig) MiddlewareFunc {
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowOrigins = []string{"*"}
	}
	if len(cfg.AllowMethods) == 0 {
		cfg.AllowMethods = DefaultCORSConfig().AllowMethods
	}
	methods := strings.Join(cfg.AllowMethods, ",")
	headers := strings.Join(cfg.AllowHeaders, ",")

	allowed := func(origin string) string {
		for _, o := range cfg.AllowOrigins {
			if o == "*" && !cfg.AllowCredentials {
				return "*"
			}
			if o == "*" || strings.EqualFold(o, origin) {
				return origin
			}
		}
		return ""
	}

	return func(next HandlerFunc) HandlerFunc {
		return func(ctx RequestContext) error {
			res := ctx.Response()
			origin := ctx.Request().Header("Origin")
			res.SetHeader("Vary", "Origin")
			if origin == "" {
				return next(ctx)
			}
			allowOrigin := allowed(origin)
			if allowOrigin == "" {
				return next(ctx)
			}
			res.SetHeader("Access-Control-Allow-Origin", allowOrigin)
			if cfg.AllowCredentials {
				res.SetHeader("Access-Control-Allow-Credentials", "true")
			}

			if ctx.Method() != http.MethodOptions {
				return next(ctx)
			}
			res.SetHeader("Access-Control-Allow-Methods", methods)
			if headers != "" {
				res.SetHeader("Access-Control-Allow-Headers", headers)
			} else if h := ctx.Request().Header("Access-Control-Request-Headers"); h != "" {
				res.SetHeader("Access-Control-Allow-Headers", h)
			}
			if cfg.MaxAge > 0 {
				res.SetHeader("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
			}
			return res.Blob(http.StatusNoContent, "", nil)
		}
	}
}

// SecureHeaders sets conservative security headers on every response
func SecureHeaders() MiddlewareFunc {
	headers := map[string]string{
		"X-Content-Type-Options":    "nosniff",
		"X-Frame-Options":           "SAMEORIGIN",
		"X-XSS-Protection":          "0",
		"X-Download-Options":        "noopen",
		"Referrer-Policy":           "no-referrer",
		"Strict-Transport-Security": "max-age=15552000; includeSubDomains",
	}
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx RequestContext) error {
			for k, v := range headers {
				ctx.Response().SetHeader(k, v)
			}
			return next(ctx)
		}
	}
}

// BodyLimit rejects bodies larger than limit bytes
func BodyLimit(limit int64) MiddlewareFunc {
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx RequestContext) error {
			if limit <= 0 {
				return next(ctx)
			}
			if ctx.Request().ContentLength() > limit {
				return errors.NewHTTP(http.StatusRequestEntityTooLarge, "Request body too large.")
			}
			ctx.Set(bodyLimitKey, limit)
			return next(ctx)
		}
	}
}

// RequestTracer tags every request with a context id, exposes it in the
// X-Context-Id header and logs the request once it completes
func RequestTracer(log *zap.Logger) MiddlewareFunc {
	if log == nil {
		log = logger.Default()
	}
	return func(next HandlerFunc) HandlerFunc {
		return func(ctx RequestContext) error {
			id := uuid.NewString()
			c := logger.WithContextID(ctx.Context(), id)
			c = logger.WithLogger(c, log)
			ctx.SetContext(c)
			ctx.Response().SetHeader(ContextIDHeader, id)

			start := time.Now()
			err := next(ctx)

			fields := []zap.Field{
				zap.String("context", id),
				zap.String("method", ctx.Method()),
				zap.String("path", ctx.Path()),
				zap.Duration("latency", time.Since(start)),
			}
			if err != nil {
				log.Warn("request failed", append(fields, zap.Error(err))...)
				return err
			}
			log.Info("request", append(fields, zap.Int("status", ctx.Response().Status()))...)
			return nil
		}
	}
}
