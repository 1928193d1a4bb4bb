//go:build linux

package http1

import "golang.org/x/sys/unix"

// maxFlushVecs bounds one writev call; IOV_MAX is 1024 on Linux but a
// response rarely queues more than a handful of buffers.
const maxFlushVecs = 64

// flush pushes queued data buffers into the socket with one vectored
// write. Returns bytes the kernel accepted; a full socket buffer
// surfaces as EAGAIN.
func (c *NetConn) flush() (int64, error) {
	bufs := c.dataPrefix(maxFlushVecs)
	if len(bufs) == 0 {
		return 0, nil
	}

	var n int64
	var werr error
	err := c.raw.Write(func(fd uintptr) bool {
		for {
			wrote, e := unix.Writev(int(fd), bufs)
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
