//go:build unix && !linux

package http1

import "golang.org/x/sys/unix"

// flush pushes the front data buffer into the socket. Platforms
// without writev support here write one buffer per call; the pipeline
// loops until the kernel refuses more.
func (c *NetConn) flush() (int64, error) {
	bufs := c.dataPrefix(1)
	if len(bufs) == 0 {
		return 0, nil
	}

	var n int64
	var werr error
	err := c.raw.Write(func(fd uintptr) bool {
		for {
			wrote, e := unix.Write(int(fd), bufs[0])
			if e == unix.EINTR {
				continue
			}
			if e != nil {
				werr = e
				return true
			}
			n = int64(wrote)
			return true
		}
	})
	if err != nil {
		return n, err
	}
	return n, werr
}
