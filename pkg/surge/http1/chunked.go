package http1

import (
	"strconv"
	"sync"

	"github.com/yourusername/surge/pkg/surge"
)

// chunkedSource wraps a body source in chunked transfer encoding
// (RFC 7230 §4.1), used when the entity length is unknown and the
// client speaks HTTP/1.1:
//
//	chunk      = chunk-size CRLF chunk-data CRLF
//	last-chunk = "0" CRLF CRLF
//
// Empty buffers from the base pass through unframed - a zero-size
// chunk would terminate the stream early.
type chunkedSource struct {
	mu      sync.Mutex
	base    surge.BodySource
	pending *surge.ReadFuture // in-flight base read
	done    bool              // last-chunk emitted
	closed  bool
}

// NewChunkedSource frames base in chunked encoding. The returned
// source owns base and closes it with itself.
func NewChunkedSource(base surge.BodySource) surge.BodySource {
	return &chunkedSource{base: base}
}

func (s *chunkedSource) Read() *surge.ReadFuture {
	if s.done {
		return surge.ReadEOF()
	}

	inner := s.base.Read()
	if res, ready := inner.TryResult(); ready {
		return surge.CompletedReadResult(s.frame(res))
	}

	s.mu.Lock()
	s.pending = inner
	s.mu.Unlock()

	f := surge.NewReadFuture()
	go func() {
		res := inner.Result()
		s.mu.Lock()
		s.pending = nil
		s.mu.Unlock()
		f.Complete(s.frame(res))
	}()
	return f
}

// frame converts one base completion into its wire form.
func (s *chunkedSource) frame(res surge.ReadResult) surge.ReadResult {
	if res.Err != nil {
		return res
	}
	if res.EOF {
		s.done = true
		return surge.ReadResult{Buf: []byte("0\r\n\r\n")}
	}
	if len(res.Buf) == 0 {
		return surge.ReadResult{Buf: nil}
	}

	size := strconv.AppendInt(nil, int64(len(res.Buf)), 16)
	framed := make([]byte, 0, len(size)+len(res.Buf)+4)
	framed = append(framed, size...)
	framed = append(framed, '\r', '\n')
	framed = append(framed, res.Buf...)
	framed = append(framed, '\r', '\n')
	return surge.ReadResult{Buf: framed}
}

// Close cancels any in-flight base read and releases the base once it
// settles. The consumer may close us right after cancelling our own
// future while the base read is still pending underneath.
func (s *chunkedSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()

	if pending == nil {
		return s.base.Close()
	}
	pending.Cancel(surge.ErrReadCancelled)
	base := s.base
	go func() {
		<-pending.Done()
		_ = base.Close()
	}()
	return nil
}
