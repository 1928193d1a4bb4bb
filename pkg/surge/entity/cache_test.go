package entity

import (
	"testing"

	"github.com/yourusername/surge/pkg/surge"
)

// countingEntity tracks how many body sources were handed out.
type countingEntity struct {
	*Bytes
	bodies int
}

func (e *countingEntity) Body() surge.BodySource {
	e.bodies++
	return e.Bytes.Body()
}

func TestCachedServesBaseOnceThenCache(t *testing.T) {
	base := &countingEntity{Bytes: NewBytes("text/plain", []byte("expensive"))}
	c := NewCached(base)

	if got := drain(t, c.Body()); string(got) != "expensive" {
		t.Fatalf("first emission = %q", got)
	}
	if got := drain(t, c.Body()); string(got) != "expensive" {
		t.Fatalf("second emission = %q", got)
	}
	if got := drain(t, c.Body()); string(got) != "expensive" {
		t.Fatalf("third emission = %q", got)
	}

	if base.bodies != 1 {
		t.Errorf("base sources created = %d, want 1", base.bodies)
	}
}

func TestCachedContentLengthAfterFill(t *testing.T) {
	c := NewCached(&countingEntity{Bytes: NewBytes("text/plain", []byte("12345"))})
	drain(t, c.Body())
	if got := c.ContentLength(); got != 5 {
		t.Errorf("ContentLength = %d", got)
	}
}

func TestCachedAbortedEmissionDoesNotPoisonCache(t *testing.T) {
	base := &countingEntity{Bytes: NewBytes("text/plain", []byte("whole body"))}
	c := NewCached(NewThrottled(base, 5, 0))

	// read part of the body (one 5-byte serving), then tear down
	// mid-stream
	src := c.Body()
	res := src.Read().Result()
	if res.Err != nil || res.EOF {
		t.Fatalf("first read = %+v", res)
	}
	if err := src.Close(); err != nil {
		t.Fatalf("Close = %v", err)
	}

	// the next emission must serve the full body, not the fragment
	if got := drain(t, c.Body()); string(got) != "whole body" {
		t.Errorf("after aborted emission: %q", got)
	}
}

func TestCachedMetadataDelegates(t *testing.T) {
	c := NewCached(&countingEntity{Bytes: NewBytes("text/css", []byte("x"))})
	if c.ContentType() != "text/css" {
		t.Errorf("ContentType = %q", c.ContentType())
	}
}
