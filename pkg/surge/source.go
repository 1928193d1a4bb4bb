// Package surge provides shared primitives for the surge HTTP/1.x
// response-emission engine: the asynchronous body source contract,
// the entity descriptor, and pooled byte buffers.
package surge

import (
	"errors"
	"io"
	"sync"
)

// BodySource is an asynchronous producer of response body bytes.
//
// Read returns a future that completes with a byte buffer, EOF, or an
// error. A returned buffer may be zero-length; that is a no-op for the
// consumer. After EOF or an error, Read must not be called again.
//
// Close releases the source. It is idempotent and non-blocking, and is
// legal only when no read is pending; the engine guarantees this by
// cancelling a pending read and deferring Close to its completion.
type BodySource interface {
	Read() *ReadFuture
	Close() error
}

// ReadResult is the completion value of a body read.
// Exactly one of Buf, EOF, Err is meaningful: Err if non-nil,
// else EOF if true, else Buf (possibly empty).
type ReadResult struct {
	Buf []byte
	EOF bool
	Err error
}

// ErrReadCancelled completes a read future whose consumer tore down the
// pipeline before the read finished.
var ErrReadCancelled = errors.New("surge: body read cancelled")

// ReadFuture is a one-shot asynchronous read completion.
//
// Producers call Complete exactly once; the first completion wins and
// later ones are dropped. Consumers poll with TryResult for immediate
// completion, or block on Done. Cancel completes the future early
// with an error; a producer's later completion is then dropped.
type ReadFuture struct {
	mu   sync.Mutex
	done chan struct{}
	res  ReadResult
	set  bool
}

// NewReadFuture returns an incomplete future for a producer to fill in.
func NewReadFuture() *ReadFuture {
	return &ReadFuture{done: make(chan struct{})}
}

// CompletedRead returns a future already completed with buf.
func CompletedRead(buf []byte) *ReadFuture {
	f := NewReadFuture()
	f.Complete(ReadResult{Buf: buf})
	return f
}

// CompletedReadResult returns a future already completed with res.
func CompletedReadResult(res ReadResult) *ReadFuture {
	f := NewReadFuture()
	f.Complete(res)
	return f
}

// ReadEOF returns a future already completed with end-of-stream.
func ReadEOF() *ReadFuture {
	f := NewReadFuture()
	f.Complete(ReadResult{EOF: true})
	return f
}

// ReadError returns a future already completed with err.
// io.EOF is normalized to an EOF completion.
func ReadError(err error) *ReadFuture {
	f := NewReadFuture()
	if err == io.EOF {
		f.Complete(ReadResult{EOF: true})
	} else {
		f.Complete(ReadResult{Err: err})
	}
	return f
}

// Complete resolves the future. Returns false if it was already resolved.
func (f *ReadFuture) Complete(res ReadResult) bool {
	f.mu.Lock()
	if f.set {
		f.mu.Unlock()
		return false
	}
	f.res = res
	f.set = true
	f.mu.Unlock()
	close(f.done)
	return true
}

// TryResult reports the result if the future has completed.
func (f *ReadFuture) TryResult() (ReadResult, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.res, f.set
}

// Done is closed when the future completes.
func (f *ReadFuture) Done() <-chan struct{} {
	return f.done
}

// Result blocks until completion and returns the result.
func (f *ReadFuture) Result() ReadResult {
	<-f.done
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.res
}

// Cancel completes the future here with err (ErrReadCancelled when
// nil) unless it has already completed. A producer with an operation
// still in flight finds the future completed and its own result is
// dropped. The consumer still awaits Done before closing the source.
func (f *ReadFuture) Cancel(err error) {
	if err == nil {
		err = ErrReadCancelled
	}
	f.Complete(ReadResult{Err: err})
}

// faultError marks a source failure as a programming fault rather than
// an I/O condition. The pipeline aborts without flushing on faults.
type faultError struct {
	err error
}

func (f *faultError) Error() string { return f.err.Error() }
func (f *faultError) Unwrap() error { return f.err }

// Fault wraps err as a programming-fault body error.
func Fault(err error) error {
	if err == nil {
		return nil
	}
	return &faultError{err: err}
}

// IsFault reports whether err is a programming fault, that is, whether
// it wraps an error made by Fault. Other errors, runtime errors
// included, are not faults unless wrapped by Fault.
func IsFault(err error) bool {
	var f *faultError
	return errors.As(err, &f)
}
