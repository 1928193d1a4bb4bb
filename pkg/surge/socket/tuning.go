// Package socket applies TCP-level tuning to accepted connections.
package socket

import (
	"net"
	"time"
)

// Config selects the socket options applied to an accepted connection.
type Config struct {
	// NoDelay disables Nagle's algorithm. Response emission batches
	// writes itself; delaying segments only hurts latency.
	// Default: true
	NoDelay bool

	// KeepAlive enables TCP keepalive probing.
	// Default: true
	KeepAlive bool

	// KeepAlivePeriod is the idle time before the first probe.
	// Default: 60s
	KeepAlivePeriod time.Duration

	// UserTimeout caps how long unacknowledged data may sit in the
	// send buffer before the kernel declares the peer dead. Zero
	// leaves the kernel default. Linux only.
	UserTimeout time.Duration
}

// DefaultConfig returns the tuning profile for origin-server traffic.
func DefaultConfig() Config {
	return Config{
		NoDelay:         true,
		KeepAlive:       true,
		KeepAlivePeriod: 60 * time.Second,
	}
}

// Apply sets the portable options, then the platform-specific ones.
// Option failures beyond the portable set are best-effort.
func Apply(conn *net.TCPConn, cfg Config) error {
	if err := conn.SetNoDelay(cfg.NoDelay); err != nil {
		return err
	}
	if err := conn.SetKeepAlive(cfg.KeepAlive); err != nil {
		return err
	}
	if cfg.KeepAlive && cfg.KeepAlivePeriod > 0 {
		if err := conn.SetKeepAlivePeriod(cfg.KeepAlivePeriod); err != nil {
			return err
		}
	}
	return applyPlatform(conn, cfg)
}
