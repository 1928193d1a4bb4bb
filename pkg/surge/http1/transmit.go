package http1

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/valyala/bytebufferpool"
	"go.uber.org/multierr"

	"github.com/yourusername/surge/pkg/surge"
)

// Config carries the per-server emission limits, snapshotted into each
// Transmit at construction.
type Config struct {
	// OutboundBufferSize is the write-queue high watermark in bytes.
	// Above it the pipeline drains before reading more body.
	// Default: 16 KiB
	OutboundBufferSize int64

	// WriteMinThroughput is the minimum client download rate in
	// bytes/sec, enforced after a 10s warmup. Zero disables.
	// Default: 1024
	WriteMinThroughput int64

	// WriteTimeout caps one wait for sink writability.
	// Default: 30s
	WriteTimeout time.Duration

	// Logger receives framing-violation and abort records.
	// Default: slog.Default()
	Logger *slog.Logger
}

// DefaultConfig returns the default emission limits.
func DefaultConfig() Config {
	return Config{
		OutboundBufferSize: 16 * 1024,
		WriteMinThroughput: 1024,
		WriteTimeout:       30 * time.Second,
	}
}

// throughputWarmup is how long emission must have run, net of body
// read stalls, before throughput policing may fire. Early samples are
// dominated by connection setup and would misfire.
const throughputWarmup = 10 * time.Second

// Outcome is what one transmission ends with. Both errors can be set:
// a benign body error followed by a connection error during the final
// flush.
type Outcome struct {
	BodyErr error
	ConnErr error

	// IsLast reports whether the connection must not carry another
	// response - either requested up front or forced by an error.
	IsLast bool

	// HeadLength and BodyTotal are the serialized head size and the
	// body bytes handed to the write queue.
	HeadLength int64
	BodyTotal  int64

	// WrittenTotal is the bytes the kernel accepted.
	WrittenTotal int64
}

// Err folds both error slots into one value for callers that only
// need pass/fail.
func (o Outcome) Err() error {
	return multierr.Combine(o.BodyErr, o.ConnErr)
}

// gotoTag names the pipeline's resumption points. The run loop
// dispatches on it; the two suspension points (body read completion,
// sink writability) block inside the step functions.
type gotoTag int

const (
	gotoPipeBody gotoTag = iota
	gotoDrainMark
	gotoFlushAll
	gotoEnd
)

// Transmit emits one prepared response onto one connection: head
// first, then body bytes pumped from the source into the write queue
// under the high-watermark, write-timeout, and minimum-throughput
// rules, then the terminator sentinels when this is the connection's
// last response.
//
// A Transmit is single-use and confined to the connection's goroutine.
type Transmit struct {
	conn   Conn
	resp   *Response
	isLast bool
	minor  int // request minor version; !=0 serializes as 1.1

	highMark      int64
	minThroughput int64
	writeTimeout  time.Duration
	logger        *slog.Logger

	body        surge.BodySource
	bodyLength  int64 // -1 unknown; else exact
	pendingRead *surge.ReadFuture

	writeT0       time.Time
	headLength    int64
	writtenTotal  int64
	bodyTotal     int64
	readStallT0   time.Time
	readStallTime time.Duration

	bodyErr error
	connErr error

	headBuf *bytebufferpool.ByteBuffer

	// now is the clock, swappable in tests.
	now func() time.Time
}

// NewTransmit builds a transmission. body may be nil for bodiless
// responses; bodyLength is -1 when unknown. minor is the request's
// minor version (anything but 0 serializes as 1.1). The Transmit owns
// body from here on and closes it on every exit path.
func NewTransmit(conn Conn, resp *Response, isLast bool, minor int,
	body surge.BodySource, bodyLength int64, cfg Config) *Transmit {

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Transmit{
		conn:          conn,
		resp:          resp,
		isLast:        isLast,
		minor:         minor,
		highMark:      cfg.OutboundBufferSize,
		minThroughput: cfg.WriteMinThroughput,
		writeTimeout:  cfg.WriteTimeout,
		logger:        logger,
		body:          body,
		bodyLength:    bodyLength,
		now:           time.Now,
	}
}

// Run drives the state machine to completion and reports the outcome.
// A response mutator violation (resp.Err) aborts before any bytes are
// queued.
func (t *Transmit) Run() Outcome {
	if err := t.resp.Err(); err != nil {
		t.closeBody()
		return Outcome{BodyErr: err, IsLast: t.isLast}
	}

	g := t.startWrite()
	for g != gotoEnd {
		switch g {
		case gotoPipeBody:
			g = t.pipeBody()
		case gotoDrainMark:
			g = t.drainMark()
		case gotoFlushAll:
			g = t.flushAll()
		}
	}
	return t.end()
}

// startWrite queues the head and enters the body loop. The head is
// not flushed eagerly; it rides with the first body write, and the
// read-stall branch of pipeBody guarantees it reaches the client even
// when the source stalls immediately.
func (t *Transmit) startWrite() gotoTag {
	t.writeT0 = t.now()

	before := t.conn.WriteQueueSize()
	t.headBuf = EncodeHead(t.resp, t.minor)
	t.conn.QueueWrite(t.headBuf.B)
	t.headLength = t.conn.WriteQueueSize() - before

	if t.body == nil {
		return t.toFlushAll()
	}
	return gotoPipeBody
}

// pipeBody runs one iteration of the source->queue->sink pump:
// body.Read() -> conn.QueueWrite -> conn.Write.
func (t *Transmit) pipeBody() gotoTag {
	// [read]
	read := t.pendingRead
	if read != nil {
		// previous read still pending; re-check completion
		t.pendingRead = nil
	} else {
		read = t.readBody()
	}
	// Reads carry no timeout: the application body may stall as long
	// as it likes (long polling). Dangerous if the app never
	// completes, but that is the contract.

	res, ready := read.TryResult()
	if !ready {
		// [read stall]
		t.pendingRead = read

		// While the source stalls, push queued bytes to the client
		// instead of hoarding them. This is also what gets the head
		// out when the first read stalls.
		remaining, err := t.connWrite()
		if err != nil {
			return t.connErrExit(err)
		}

		if remaining == 0 {
			// only the read stalls; wait for it
			return t.awaitReadComplete()
		}
		// Source and sink both stall. Await only the sink: with the OS
		// send buffer full, reading and queueing more cannot improve
		// anything, and when the sink drains we re-test the read.
		if err := t.conn.AwaitWritable(t.writeTimeout); err != nil {
			return t.connErrExit(err)
		}
		return gotoPipeBody
	}

	// [read complete]
	if res.Err != nil {
		return t.bodyErrExit(res.Err)
	}
	if res.EOF {
		if t.bodyLength > 0 && t.bodyTotal < t.bodyLength {
			return t.bodyErrExit(fmt.Errorf("%w: %d<%d", ErrShortBody, t.bodyTotal, t.bodyLength))
		}
		// legit EOF: length matched earlier, was zero, or is unknown
		t.closeBody()
		return t.toFlushAll()
	}

	// got bytes; an empty buffer is a no-op but flows through the same
	// arithmetic
	t.bodyTotal += int64(len(res.Buf))
	if t.bodyLength >= 0 && t.bodyTotal > t.bodyLength {
		// Framing violation. The violating buffer never enters the
		// queue: the body is not trustworthy and must not be corrected
		// by slicing, and extra bytes must never reach the client.
		return t.bodyErrExit(fmt.Errorf("%w: %d>%d", ErrOverrun, t.bodyTotal, t.bodyLength))
	}
	writeRemaining := t.conn.QueueWrite(res.Buf)

	if t.bodyLength >= 0 && t.bodyTotal == t.bodyLength {
		// all declared bytes read; the next read would be EOF but we
		// do not verify that
		t.closeBody()
		return t.toFlushAll()
	}

	if writeRemaining > t.highMark {
		return gotoDrainMark
	}
	return gotoPipeBody
}

// readBody calls the source's Read, converting a panic into a
// programming-fault completion.
func (t *Transmit) readBody() (f *surge.ReadFuture) {
	defer func() {
		if r := recover(); r != nil {
			f = surge.ReadError(surge.Fault(fmt.Errorf("body source panic: %v", r)))
		}
	}()
	return t.body.Read()
}

// awaitReadComplete blocks on the pending read, accounting the stall
// so throughput policing does not blame the client for a slow app.
func (t *Transmit) awaitReadComplete() gotoTag {
	read := t.pendingRead
	if _, ready := read.TryResult(); ready {
		return gotoPipeBody
	}

	t.readStallT0 = t.now()
	<-read.Done()
	t.readStallTime += t.now().Sub(t.readStallT0)

	return gotoPipeBody
}

// connWrite flushes the sink and polices throughput while bytes remain
// queued. Returns the bytes still queued.
func (t *Transmit) connWrite() (int64, error) {
	before := t.conn.WriteQueueSize()
	remaining, err := t.conn.Write()
	if err != nil {
		return remaining, err
	}
	t.writtenTotal += before - remaining
	bytesWrittenTotal.Add(float64(before - remaining))

	if remaining > 0 && t.minThroughput > 0 {
		// Everything but our own read stalls is blamed on the client.
		timeSpent := t.now().Sub(t.writeT0) - t.readStallTime
		if timeSpent > throughputWarmup {
			minGoal := t.minThroughput * int64(timeSpent/time.Millisecond) / 1000
			if t.writtenTotal < minGoal {
				return remaining, ErrClientTooSlow
			}
		}
	}
	return remaining, nil
}

// drainMark flushes until the queue is back under the high watermark.
func (t *Transmit) drainMark() gotoTag {
	remaining, err := t.connWrite()
	if err != nil {
		return t.connErrExit(err)
	}
	if remaining > t.highMark {
		if err := t.conn.AwaitWritable(t.writeTimeout); err != nil {
			return t.connErrExit(err)
		}
		return gotoDrainMark
	}
	return gotoPipeBody
}

// toFlushAll queues the terminators when this is the connection's
// last response: close_notify first, then FIN.
func (t *Transmit) toFlushAll() gotoTag {
	if t.isLast {
		t.conn.QueueWrite(SSLCloseNotify)
		t.conn.QueueWrite(TCPFin)
	}
	return gotoFlushAll
}

// flushAll drains the queue to empty. Ends in either success or a
// connection error; a prior benign body error may already be recorded.
func (t *Transmit) flushAll() gotoTag {
	remaining, err := t.connWrite()
	if err != nil {
		return t.connErrExit(err)
	}
	if remaining > 0 {
		if err := t.conn.AwaitWritable(t.writeTimeout); err != nil {
			return t.connErrExit(err)
		}
		return gotoFlushAll
	}
	return gotoEnd
}

// bodyErrExit records a body-side failure. The output stream can no
// longer be trusted, so the connection is marked last. Benign (I/O
// class) errors still flush what was queued plus the terminators: a
// client on Content-Length or chunked framing detects the truncation,
// which is the outcome we want. Programming faults abort immediately.
func (t *Transmit) bodyErrExit(err error) gotoTag {
	t.closeBody()
	t.bodyErr = err
	t.isLast = true

	switch {
	case errors.Is(err, ErrShortBody):
		framingViolationsTotal.WithLabelValues("short").Inc()
	case errors.Is(err, ErrOverrun):
		framingViolationsTotal.WithLabelValues("overrun").Inc()
	}
	t.logger.Warn("response body error",
		slog.Any("error", err),
		slog.Int64("body_total", t.bodyTotal),
		slog.Int64("declared_length", t.bodyLength))

	if surge.IsFault(err) {
		return gotoEnd
	}
	return t.toFlushAll()
}

// connErrExit records a sink failure and terminates; nothing more can
// reach this client.
func (t *Transmit) connErrExit(err error) gotoTag {
	t.closeBody() // idempotent; may already be closed by EOF or body error
	t.connErr = err
	t.isLast = true

	switch {
	case errors.Is(err, ErrWriteTimeout):
		writeTimeoutsTotal.Inc()
	case errors.Is(err, ErrClientTooSlow):
		slowClientsTotal.Inc()
	}
	t.logger.Warn("connection write error",
		slog.Any("error", err),
		slog.Int64("written_total", t.writtenTotal))

	return gotoEnd
}

// closeBody releases the source exactly once. A pending read is
// cancelled and the close deferred to its completion; Close is never
// called with a read in flight.
func (t *Transmit) closeBody() {
	if t.body == nil {
		return
	}
	body := t.body
	t.body = nil

	pending := t.pendingRead
	t.pendingRead = nil
	if pending == nil {
		_ = body.Close()
		return
	}
	pending.Cancel(surge.ErrReadCancelled)
	go func() {
		<-pending.Done()
		_ = body.Close()
	}()
}

// end releases the head buffer once the write queue is empty and
// assembles the outcome. A buffer still referenced by the queue (error
// exits) is left to the GC instead of going back to the pool.
func (t *Transmit) end() Outcome {
	if t.conn.WriteQueueSize() == 0 {
		ReleaseHead(t.headBuf)
	}
	t.headBuf = nil

	switch {
	case t.connErr != nil:
		responsesTotal.WithLabelValues("conn_error").Inc()
	case t.bodyErr != nil:
		responsesTotal.WithLabelValues("body_error").Inc()
	default:
		responsesTotal.WithLabelValues("ok").Inc()
	}

	return Outcome{
		BodyErr:      t.bodyErr,
		ConnErr:      t.connErr,
		IsLast:       t.isLast,
		HeadLength:   t.headLength,
		BodyTotal:    t.bodyTotal,
		WrittenTotal: t.writtenTotal,
	}
}
