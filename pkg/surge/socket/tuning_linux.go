//go:build linux

package socket

import (
	"net"

	"golang.org/x/sys/unix"
)

// applyPlatform sets Linux-specific options. Best-effort: a kernel old
// enough to miss one of these still serves traffic.
func applyPlatform(conn *net.TCPConn, cfg Config) error {
	raw, err := conn.SyscallConn()
	if err != nil {
		return err
	}
	return raw.Control(func(fd uintptr) {
		if cfg.UserTimeout > 0 {
			// Detects clients that stop ACKing while data is queued,
			// complementing the engine's throughput policing.
			_ = unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_USER_TIMEOUT,
				int(cfg.UserTimeout.Milliseconds()))
		}
	})
}
