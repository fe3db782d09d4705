package weaver

import (
	"net"
	"os"
	"time"
)

// ServerConfig holds configuration for the weaver web server
type ServerConfig struct {
	// Adapter selects the web server: gin, echo or fiber (default: gin)
	Adapter string `mapstructure:"adapter"`

	// Port is the port to listen on (default: $PORT or 8080)
	Port string `mapstructure:"port"`

	// Host is the host to bind to (default: "")
	Host string `mapstructure:"host"`

	// EnableCORS enables CORS middleware (default: true)
	EnableCORS bool       `mapstructure:"enable_cors"`
	CORS       CORSConfig `mapstructure:"cors"`

	// EnableSecureHeaders sets security headers on every response (default: true)
	EnableSecureHeaders bool `mapstructure:"enable_secure_headers"`

	// EnableTracer tags and logs every request (default: true)
	EnableTracer bool `mapstructure:"enable_tracer"`

	// EnableRecover enables panic recovery middleware (default: true)
	EnableRecover bool `mapstructure:"enable_recover"`

	// BodyLimit is the largest accepted request body in bytes (default: 1MiB)
	BodyLimit int64 `mapstructure:"body_limit"`

	// Verbose includes internal details in error responses (default: false)
	Verbose bool `mapstructure:"verbose"`

	// ShutdownTimeout is the timeout for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DefaultServerConfig returns a server configuration with sensible defaults
func DefaultServerConfig() *ServerConfig {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	return &ServerConfig{
		Adapter:             "gin",
		Port:                port,
		Host:                "",
		EnableCORS:          true,
		CORS:                DefaultCORSConfig(),
		EnableSecureHeaders: true,
		EnableTracer:        true,
		EnableRecover:       true,
		BodyLimit:           1 << 20,
		ShutdownTimeout:     30 * time.Second,
	}
}

// Addr returns the listen address
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}
