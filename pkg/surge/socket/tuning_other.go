//go:build !linux

package socket

import "net"

// applyPlatform is a no-op where no platform-specific options exist.
func applyPlatform(conn *net.TCPConn, cfg Config) error {
	return nil
}
