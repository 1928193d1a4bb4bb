package http1

import (
	"strconv"
	"strings"

	"github.com/yourusername/surge/pkg/surge"
)

// RequestInfo is the slice of the parsed request that response
// emission depends on. The parser itself lives elsewhere.
type RequestInfo struct {
	// Method is the request method ("GET", "HEAD", "CONNECT", ...).
	Method string

	// MinorVersion is the request's HTTP/1 minor version, or -1 when
	// the request failed to parse.
	MinorVersion int

	// ParseError reports that the request could not be parsed; the
	// response (an error response) must be the connection's last.
	ParseError bool

	// ConnectionClose reports a Connection: close request header.
	ConnectionClose bool

	// KeepAlive reports an explicit Connection: keep-alive request
	// header, which HTTP/1.0 needs to persist.
	KeepAlive bool
}

// LastResponse decides whether resp must be the connection's final
// response. The transmitter consumes this as a plain boolean; an
// emission error can still force it to true afterwards.
func LastResponse(req RequestInfo, resp *Response, serverDraining, lastHint bool) bool {
	if req.ParseError {
		return true
	}
	if serverDraining || lastHint {
		return true
	}
	if req.ConnectionClose {
		return true
	}
	if strings.EqualFold(resp.Headers().Get(HeaderConnection), "close") {
		return true
	}
	// HTTP/1.0 closes unless the client opted into keep-alive
	if req.MinorVersion == 0 && !req.KeepAlive {
		return true
	}
	return false
}

// Prepared is the emission plan for one response: the body source the
// pipeline pumps, the declared length it frames against, and whether
// close-delimited framing forces this to be the last response.
type Prepared struct {
	Body       surge.BodySource
	BodyLength int64 // -1 unknown
	ForceLast  bool
}

// PrepareHead stamps the entity and framing headers onto resp and
// plans the body emission. This is the one place those headers are
// computed; the pipeline itself never adds or overwrites them.
//
// Rules:
//   - 1xx, 204, 304, and CONNECT-2xx responses carry no body; any
//     entity is ignored (304 still advertises its validators).
//   - HEAD advertises the entity's framing but sends no body bytes.
//   - A known length becomes Content-Length; unknown length becomes
//     Transfer-Encoding: chunked on HTTP/1.1, or close-delimited
//     framing (ForceLast) on HTTP/1.0.
func PrepareHead(resp *Response, req RequestInfo) Prepared {
	entity := resp.EntityValue()
	code := resp.StatusValue().Code

	suppressed := code/100 == 1 || code == 204 || code == 304 ||
		(req.Method == "CONNECT" && code/100 == 2)
	if entity == nil || (suppressed && code != 304) {
		return Prepared{BodyLength: 0}
	}

	h := resp.Headers()
	if ct := entity.ContentType(); ct != "" {
		h.Set(HeaderContentType, ct)
	}
	if ce := entity.ContentEncoding(); ce != "" {
		h.Set(HeaderContentEncoding, ce)
	}
	if etag := entity.ETag(); etag != "" {
		if entity.ETagIsWeak() {
			h.Set(HeaderETag, "W/"+etag)
		} else {
			h.Set(HeaderETag, etag)
		}
	}
	if lm := entity.LastModified(); !lm.IsZero() {
		h.Set(HeaderLastModified, lm.UTC().Format(httpTimeFormat))
	}
	if exp := entity.Expires(); !exp.IsZero() {
		h.Set(HeaderExpires, exp.UTC().Format(httpTimeFormat))
	}

	if suppressed {
		// 304: validators above, no body, no framing headers
		return Prepared{BodyLength: 0}
	}

	length := entity.ContentLength()
	if length >= 0 {
		h.Set(HeaderContentLength, strconv.FormatInt(length, 10))
		if req.Method == "HEAD" {
			return Prepared{BodyLength: 0}
		}
		return Prepared{Body: entity.Body(), BodyLength: length}
	}

	// length unknown
	if req.MinorVersion == 0 {
		// close-delimited; EOF marks the end of the message
		if req.Method == "HEAD" {
			return Prepared{BodyLength: 0, ForceLast: true}
		}
		return Prepared{Body: entity.Body(), BodyLength: -1, ForceLast: true}
	}

	h.Set(HeaderTransferEncoding, "chunked")
	if req.Method == "HEAD" {
		return Prepared{BodyLength: 0}
	}
	return Prepared{Body: NewChunkedSource(entity.Body()), BodyLength: -1}
}

// Respond is the glue a connection loop calls per response: prepare
// the head, decide the lifecycle, transmit, and report the outcome.
func Respond(conn Conn, resp *Response, req RequestInfo, serverDraining, lastHint bool, cfg Config) Outcome {
	prep := PrepareHead(resp, req)
	isLast := prep.ForceLast || LastResponse(req, resp, serverDraining, lastHint)
	t := NewTransmit(conn, resp, isLast, req.MinorVersion, prep.Body, prep.BodyLength, cfg)
	return t.Run()
}
