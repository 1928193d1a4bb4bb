// Package entity provides response entity implementations for the
// surge engine: in-memory, file-backed, compressed, throttled, and
// cached bodies behind the surge.Entity interface.
package entity

import (
	"sync"
	"time"

	"github.com/yourusername/surge/pkg/surge"
)

// Bytes is an in-memory entity over a byte slice. The slice is treated
// as immutable after construction.
type Bytes struct {
	contentType string
	data        []byte
}

// NewBytes creates an entity with data as the whole body.
func NewBytes(contentType string, data []byte) *Bytes {
	return &Bytes{contentType: contentType, data: data}
}

func (b *Bytes) ContentType() string     { return b.contentType }
func (b *Bytes) ContentLength() int64    { return int64(len(b.data)) }
func (b *Bytes) ContentEncoding() string { return "" }
func (b *Bytes) LastModified() time.Time { return time.Time{} }
func (b *Bytes) Expires() time.Time      { return time.Time{} }
func (b *Bytes) ETag() string            { return "" }
func (b *Bytes) ETagIsWeak() bool        { return false }
func (b *Bytes) Body() surge.BodySource  { return NewSliceSource(b.data) }

// SliceSource serves one byte slice as a body: the whole slice in a
// single read, then EOF.
type SliceSource struct {
	mu     sync.Mutex
	data   []byte
	served bool
	closed bool
}

// NewSliceSource returns a source over data.
func NewSliceSource(data []byte) *SliceSource {
	return &SliceSource{data: data}
}

func (s *SliceSource) Read() *surge.ReadFuture {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return surge.ReadError(surge.ErrReadCancelled)
	}
	if s.served {
		return surge.ReadEOF()
	}
	s.served = true
	return surge.CompletedRead(s.data)
}

func (s *SliceSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
