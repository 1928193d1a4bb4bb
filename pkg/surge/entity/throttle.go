package entity

import (
	"sync"
	"time"

	"github.com/yourusername/surge/pkg/surge"
)

// Throttled decorates a base entity so its body is served no faster
// than bytesPerSecond. Useful for simulating slow origins on a dev
// machine; also the one stock entity whose reads genuinely stall, so
// tests lean on it to exercise the pipeline's read-stall branch.
type Throttled struct {
	surge.Entity
	bytesPerSecond int64
	chunkSize      int
}

// NewThrottled wraps base. chunkSize bounds one serving; keep
// chunkSize/bytesPerSecond small or the source stalls that many
// seconds between servings.
func NewThrottled(base surge.Entity, chunkSize int, bytesPerSecond int64) *Throttled {
	if chunkSize <= 0 {
		chunkSize = 8 * 1024
	}
	return &Throttled{Entity: base, bytesPerSecond: bytesPerSecond, chunkSize: chunkSize}
}

func (t *Throttled) Body() surge.BodySource {
	return &throttledSource{
		base:           t.Entity.Body(),
		bytesPerSecond: t.bytesPerSecond,
		chunkSize:      t.chunkSize,
		t0:             time.Now(),
	}
}

// throttledSource delays each serving until the cumulative byte count
// stays under the configured rate.
type throttledSource struct {
	mu             sync.Mutex
	base           surge.BodySource
	bytesPerSecond int64
	chunkSize      int
	t0             time.Time
	served         int64

	buf    []byte // undelivered tail of the last base read
	eof    bool
	closed bool
	timer  *time.Timer
}

func (s *throttledSource) Read() *surge.ReadFuture {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return surge.ReadError(surge.ErrReadCancelled)
	}
	if len(s.buf) > 0 {
		s.mu.Unlock()
		return s.deliver()
	}
	if s.eof {
		s.mu.Unlock()
		return surge.ReadEOF()
	}
	s.mu.Unlock()

	inner := s.base.Read()
	if res, ready := inner.TryResult(); ready {
		return s.absorb(res)
	}
	f := surge.NewReadFuture()
	go func() {
		res := inner.Result()
		af := s.absorb(res)
		f.Complete(af.Result())
	}()
	return f
}

// absorb stores one base completion and hands out the first serving.
func (s *throttledSource) absorb(res surge.ReadResult) *surge.ReadFuture {
	if res.Err != nil {
		return surge.ReadError(res.Err)
	}
	s.mu.Lock()
	if res.EOF {
		s.eof = true
		s.mu.Unlock()
		return surge.ReadEOF()
	}
	s.buf = res.Buf
	s.mu.Unlock()
	if len(res.Buf) == 0 {
		return surge.CompletedRead(nil)
	}
	return s.deliver()
}

// deliver serves the next chunk of the buffered bytes, delayed so that
// served/elapsed never exceeds the rate.
func (s *throttledSource) deliver() *surge.ReadFuture {
	s.mu.Lock()
	n := len(s.buf)
	if n > s.chunkSize {
		n = s.chunkSize
	}
	chunk := s.buf[:n]
	s.buf = s.buf[n:]
	s.served += int64(n)

	var wait time.Duration
	if s.bytesPerSecond > 0 {
		due := s.t0.Add(time.Duration(s.served) * time.Second / time.Duration(s.bytesPerSecond))
		wait = time.Until(due)
	}
	if wait <= 0 {
		s.mu.Unlock()
		return surge.CompletedRead(chunk)
	}

	f := surge.NewReadFuture()
	s.timer = time.AfterFunc(wait, func() {
		f.Complete(surge.ReadResult{Buf: chunk})
	})
	s.mu.Unlock()
	return f
}

func (s *throttledSource) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.mu.Unlock()
	return s.base.Close()
}
