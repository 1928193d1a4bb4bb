package http1

import "errors"

// Builder errors - fail synchronously at the mutator call, before any
// bytes are emitted.
var (
	// ErrBadHeader indicates an invalid header name or value
	// Names must be tokens; values printable ASCII / HT, no CR or LF
	ErrBadHeader = errors.New("surge/http1: invalid header name or value")

	// ErrForbiddenHeader indicates a header the engine owns
	// (Set-Cookie, framing headers, entity headers)
	ErrForbiddenHeader = errors.New("surge/http1: header is managed by the engine")

	// ErrBadStatus indicates a status code outside 100-599, or one a
	// constructor does not accept (RedirectStatus: 301/302/303/307/308)
	ErrBadStatus = errors.New("surge/http1: invalid status code")

	// ErrBadCookie indicates an invalid cookie name or value
	ErrBadCookie = errors.New("surge/http1: invalid cookie")

	// ErrBadETag indicates an entity tag that is not an RFC 7232
	// quoted-string
	ErrBadETag = errors.New("surge/http1: invalid entity tag")

	// ErrEntityAbsent indicates entity metadata was set on a response
	// without an entity
	ErrEntityAbsent = errors.New("surge/http1: entity is absent")

	// ErrBadRedirectURI indicates a redirect target with illegal characters
	ErrBadRedirectURI = errors.New("surge/http1: invalid redirect uri")
)

// Framing errors - the body source disagreed with the declared length.
var (
	// ErrShortBody indicates body EOF before the declared length was reached
	ErrShortBody = errors.New("surge/http1: response body shorter than declared length")

	// ErrOverrun indicates the body produced more than the declared length
	// Extra bytes are never sent
	ErrOverrun = errors.New("surge/http1: response body longer than declared length")
)

// Connection errors.
var (
	// ErrWriteTimeout indicates the sink was not writable within the
	// configured write timeout
	ErrWriteTimeout = errors.New("surge/http1: write timeout")

	// ErrClientTooSlow indicates the client's download throughput fell
	// below the configured minimum after the warmup window
	ErrClientTooSlow = errors.New("surge/http1: client download throughput too low")

	// ErrConnClosed indicates the connection was already closed
	ErrConnClosed = errors.New("surge/http1: connection closed")
)
