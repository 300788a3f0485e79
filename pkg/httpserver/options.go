package httpserver

import (
	"log/slog"
	"net"
	"time"
)

// Option configures a Server. Zero values leave the default in place.
type Option func(*config)

// WithAddr sets the listen address.
func WithAddr(addr string) Option {
	return func(c *config) {
		if addr != "" {
			c.addr = addr
		}
	}
}

// WithListener serves on l instead of listening on the configured address.
func WithListener(l net.Listener) Option {
	return func(c *config) { c.listener = l }
}

func WithReadTimeout(d time.Duration) Option {
	return func(c *config) { c.readTimeout = positive(d, c.readTimeout) }
}

func WithWriteTimeout(d time.Duration) Option {
	return func(c *config) { c.writeTimeout = positive(d, c.writeTimeout) }
}

func WithIdleTimeout(d time.Duration) Option {
	return func(c *config) { c.idleTimeout = positive(d, c.idleTimeout) }
}

// WithShutdownTimeout bounds how long Run waits for in-flight requests.
func WithShutdownTimeout(d time.Duration) Option {
	return func(c *config) { c.shutdownTimeout = positive(d, c.shutdownTimeout) }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithStartHook runs h once the listener is open, before requests are served.
func WithStartHook(h func(log *slog.Logger, addr net.Addr)) Option {
	return func(c *config) {
		if h != nil {
			c.startHooks = append(c.startHooks, h)
		}
	}
}

// WithStopHook runs h after shutdown completes.
func WithStopHook(h func(log *slog.Logger)) Option {
	return func(c *config) {
		if h != nil {
			c.stopHooks = append(c.stopHooks, h)
		}
	}
}

func positive(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
