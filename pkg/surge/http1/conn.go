package http1

import (
	"errors"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/yourusername/surge/pkg/surge/socket"
)

// Sentinel marks, enqueued like ordinary buffers and honored by the
// transport on flush. Identity is the backing array, never the
// contents; the byte inside is never written to the wire.
var (
	// SSLCloseNotify asks the transport to send a TLS close_notify
	// alert at this point in the stream. A no-op on plaintext.
	SSLCloseNotify = make([]byte, 1)

	// TCPFin asks the transport to shut down the write side (FIN) at
	// this point in the stream.
	TCPFin = make([]byte, 1)
)

func isCloseNotify(p []byte) bool { return len(p) == 1 && &p[0] == &SSLCloseNotify[0] }
func isFin(p []byte) bool         { return len(p) == 1 && &p[0] == &TCPFin[0] }
func isSentinel(p []byte) bool    { return isCloseNotify(p) || isFin(p) }

// Conn is the transport the pipeline writes into: a FIFO write queue
// over a non-blocking socket.
//
// QueueWrite appends a buffer (taking ownership) and returns the
// queued byte count. Write flushes as much as the kernel accepts
// without blocking and returns the bytes still queued. AwaitWritable
// blocks until the socket accepts more bytes or the timeout elapses
// (ErrWriteTimeout). Implementations are not safe for concurrent use;
// one response owns the connection at a time.
type Conn interface {
	QueueWrite(p []byte) int64
	Write() (remaining int64, err error)
	AwaitWritable(timeout time.Duration) error
	WriteQueueSize() int64
}

// closeWriter is the write-side shutdown half of net.TCPConn and
// tls.Conn. On tls.Conn, CloseWrite sends close_notify.
type closeWriter interface {
	CloseWrite() error
}

// NetConn is the production Conn over a *net.TCPConn. Flushing uses
// the raw file descriptor so a full socket buffer surfaces as EAGAIN
// instead of blocking the connection goroutine; AwaitWritable parks on
// the runtime poller through syscall.RawConn.
type NetConn struct {
	tcp *net.TCPConn
	raw syscall.RawConn

	// queue[0] may be partially written; off is the consumed prefix.
	queue  [][]byte
	off    int
	queued int64

	finSent bool
}

// NewNetConn wraps tcp, applying the socket tuning profile first.
func NewNetConn(tcp *net.TCPConn, tune socket.Config) (*NetConn, error) {
	if err := socket.Apply(tcp, tune); err != nil {
		return nil, err
	}
	raw, err := tcp.SyscallConn()
	if err != nil {
		return nil, err
	}
	return &NetConn{tcp: tcp, raw: raw}, nil
}

// QueueWrite appends p to the write queue. Sentinels count zero bytes.
func (c *NetConn) QueueWrite(p []byte) int64 {
	c.queue = append(c.queue, p)
	if !isSentinel(p) {
		c.queued += int64(len(p))
	}
	return c.queued
}

// WriteQueueSize returns the bytes queued and not yet accepted by the
// kernel. Sentinels are not counted.
func (c *NetConn) WriteQueueSize() int64 {
	return c.queued
}

// Write flushes queued buffers until the kernel refuses more, handling
// sentinels in stream order. Returns the bytes still queued.
func (c *NetConn) Write() (int64, error) {
	for len(c.queue) > 0 {
		head := c.queue[0]
		if isSentinel(head) {
			if err := c.handleSentinel(head); err != nil {
				return c.queued, err
			}
			c.queue = c.queue[1:]
			continue
		}
		if len(head[c.off:]) == 0 {
			// empty buffers are legal no-ops from the body source
			c.queue = c.queue[1:]
			c.off = 0
			continue
		}

		n, err := c.flush()
		c.consume(n)
		if err != nil {
			if errors.Is(err, syscall.EAGAIN) {
				return c.queued, nil
			}
			return c.queued, err
		}
		if n == 0 {
			// kernel accepted nothing; treat as not writable
			return c.queued, nil
		}
	}
	return 0, nil
}

// consume drops n accepted bytes off the front of the queue.
func (c *NetConn) consume(n int64) {
	c.queued -= n
	for n > 0 && len(c.queue) > 0 {
		head := c.queue[0]
		rem := int64(len(head) - c.off)
		if n < rem {
			c.off += int(n)
			return
		}
		n -= rem
		c.queue = c.queue[1:]
		c.off = 0
	}
}

// dataPrefix returns the queue's leading data buffers, stopping at the
// first sentinel, with the partial-write offset applied to the head.
func (c *NetConn) dataPrefix(max int) [][]byte {
	var bufs [][]byte
	for i, p := range c.queue {
		if isSentinel(p) || len(bufs) == max {
			break
		}
		if i == 0 && c.off > 0 {
			p = p[c.off:]
		}
		if len(p) > 0 {
			bufs = append(bufs, p)
		}
	}
	return bufs
}

func (c *NetConn) handleSentinel(p []byte) error {
	switch {
	case isCloseNotify(p):
		// Plain TCP carries no close_notify; TLS transports implement
		// Conn themselves and act here.
		return nil
	case isFin(p):
		if c.finSent {
			return nil
		}
		c.finSent = true
		return c.tcp.CloseWrite()
	}
	return nil
}

// AwaitWritable parks until the socket is writable again, or the
// timeout elapses.
func (c *NetConn) AwaitWritable(timeout time.Duration) error {
	if err := c.tcp.SetWriteDeadline(time.Now().Add(timeout)); err != nil {
		return err
	}
	defer c.tcp.SetWriteDeadline(time.Time{})

	first := true
	err := c.raw.Write(func(fd uintptr) bool {
		if first {
			first = false
			return false // park on the poller once
		}
		return true
	})
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return ErrWriteTimeout
		}
		return err
	}
	return nil
}

// Close closes the underlying socket, dropping any queued bytes.
func (c *NetConn) Close() error {
	c.queue = nil
	c.queued = 0
	return c.tcp.Close()
}
