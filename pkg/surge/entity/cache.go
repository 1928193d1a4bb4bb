package entity

import (
	"sync"

	"github.com/valyala/bytebufferpool"

	"github.com/yourusername/surge/pkg/surge"
)

// Cached decorates a base entity so the body bytes are kept in memory
// after the first complete emission. A cached response can then be
// saved and served to many requests without re-running the base
// source.
type Cached struct {
	surge.Entity

	mu     sync.Mutex
	cached []byte
	have   bool
}

// NewCached wraps base.
func NewCached(base surge.Entity) *Cached {
	return &Cached{Entity: base}
}

// Body serves from the cache once populated. Until then it reads
// through the base source, teeing into a scratch buffer that becomes
// the cache when the base reaches EOF cleanly or has produced its
// declared length.
func (c *Cached) Body() surge.BodySource {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.have {
		return NewSliceSource(c.cached)
	}
	return &teeSource{cache: c, base: c.Entity.Body(), buf: bytebufferpool.Get()}
}

// ContentLength reports the cached size once known.
func (c *Cached) ContentLength() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.have {
		return int64(len(c.cached))
	}
	return c.Entity.ContentLength()
}

func (c *Cached) fill(data []byte) {
	c.mu.Lock()
	if !c.have {
		c.cached = data
		c.have = true
	}
	c.mu.Unlock()
}

// teeSource copies every buffer it serves into a pooled scratch
// buffer; a clean EOF, or reaching the base's declared length,
// promotes the copy to the entity's cache. An early close (error
// paths, cancellation) just drops the scratch.
type teeSource struct {
	cache  *Cached
	base   surge.BodySource
	mu     sync.Mutex
	buf    *bytebufferpool.ByteBuffer
	closed bool
}

func (s *teeSource) Read() *surge.ReadFuture {
	inner := s.base.Read()
	if res, ready := inner.TryResult(); ready {
		return surge.CompletedReadResult(s.observe(res))
	}
	f := surge.NewReadFuture()
	go func() {
		f.Complete(s.observe(inner.Result()))
	}()
	return f
}

func (s *teeSource) observe(res surge.ReadResult) surge.ReadResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.buf == nil {
		return res
	}
	if res.Err != nil {
		return res
	}
	if res.EOF {
		data := make([]byte, len(s.buf.B))
		copy(data, s.buf.B)
		s.cache.fill(data)
		bytebufferpool.Put(s.buf)
		s.buf = nil
		return res
	}
	if len(res.Buf) > 0 {
		s.buf.B = append(s.buf.B, res.Buf...)
	}
	// the pipeline stops reading a known-length body at that length
	// without waiting for EOF, so a full copy is complete here too
	if n := s.cache.Entity.ContentLength(); n >= 0 && int64(len(s.buf.B)) == n {
		data := make([]byte, len(s.buf.B))
		copy(data, s.buf.B)
		s.cache.fill(data)
		bytebufferpool.Put(s.buf)
		s.buf = nil
	}
	return res
}

func (s *teeSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.buf != nil {
		bytebufferpool.Put(s.buf)
		s.buf = nil
	}
	s.mu.Unlock()
	return s.base.Close()
}
