package entity

import (
	"bytes"
	"io"
	"sync"

	"github.com/yourusername/surge/pkg/surge"
)

// compressor is the streaming half of a content coding: a writer that
// compresses into an internal buffer, plus Flush/Close to force
// pending output.
type compressor interface {
	io.Writer
	Flush() error
	Close() error
}

// codedEntity decorates a base entity with a content coding. Length
// becomes unknown; the etag gets a coding suffix inside the quotes so
// the coded representation validates separately from the identity one.
type codedEntity struct {
	surge.Entity
	coding  string
	newBody func(base surge.BodySource) surge.BodySource
}

func (c *codedEntity) ContentEncoding() string { return c.coding }
func (c *codedEntity) ContentLength() int64    { return -1 }

func (c *codedEntity) ETag() string {
	etag := c.Entity.ETag()
	if etag == "" {
		return ""
	}
	// `"v1"` becomes `"v1+gzip"`
	return etag[:len(etag)-1] + "+" + c.coding + `"`
}

func (c *codedEntity) Body() surge.BodySource {
	return c.newBody(c.Entity.Body())
}

// codedSource pumps base reads through a compressor. A read that
// produces no compressed output yet completes with an empty buffer,
// which the pipeline treats as a no-op.
type codedSource struct {
	mu     sync.Mutex
	base   surge.BodySource
	out    bytes.Buffer
	comp   compressor
	eof    bool // base reported EOF; compressor closed
	closed bool

	pending *surge.ReadFuture // in-flight base read
}

func newCodedSource(base surge.BodySource, comp compressor) *codedSource {
	return &codedSource{base: base, comp: comp}
}

func (s *codedSource) Read() *surge.ReadFuture {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return surge.ReadError(surge.ErrReadCancelled)
	}
	if s.out.Len() > 0 {
		buf := s.take()
		s.mu.Unlock()
		return surge.CompletedRead(buf)
	}
	if s.eof {
		s.mu.Unlock()
		return surge.ReadEOF()
	}
	s.mu.Unlock()

	inner := s.base.Read()
	if res, ready := inner.TryResult(); ready {
		return surge.CompletedReadResult(s.pump(res))
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
		f.Complete(s.pump(res))
	}()
	return f
}

// pump feeds one base completion through the compressor and drains
// whatever output it produced.
func (s *codedSource) pump(res surge.ReadResult) surge.ReadResult {
	if res.Err != nil {
		return res
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if res.EOF {
		s.eof = true
		if err := s.comp.Close(); err != nil {
			return surge.ReadResult{Err: err}
		}
		if s.out.Len() > 0 {
			return surge.ReadResult{Buf: s.take()}
		}
		return surge.ReadResult{EOF: true}
	}

	if len(res.Buf) > 0 {
		if _, err := s.comp.Write(res.Buf); err != nil {
			return surge.ReadResult{Err: err}
		}
	}
	return surge.ReadResult{Buf: s.take()}
}

// take hands out the buffered output. Callers hold the lock.
func (s *codedSource) take() []byte {
	if s.out.Len() == 0 {
		return nil
	}
	buf := make([]byte, s.out.Len())
	copy(buf, s.out.Bytes())
	s.out.Reset()
	return buf
}

func (s *codedSource) Close() error {
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
