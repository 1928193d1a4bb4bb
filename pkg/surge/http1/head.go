package http1

import (
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// headPool holds the scratch buffers the head block is assembled in.
// A buffer stays checked out until its bytes have left the write queue.
var headPool bytebufferpool.Pool

// appendHead serializes the response head:
//
//	HTTP/1.<v> <code> <reason>\r\n
//	<name>: <value>\r\n        headers, insertion order
//	Set-Cookie: <line>\r\n     cookies, list order
//	\r\n
//
// minor selects HTTP/1.0 or HTTP/1.1; anything but 0 means 1, so an
// unknown request version (parse error) serializes as 1.1. Names and
// values were validated at mutation time; no escaping happens here.
// All strings are ASCII-compatible, so byte append is the Latin-1
// encoding.
func appendHead(dst []byte, status Status, minor int, headers *HeaderMap, setCookie []string) []byte {
	if minor == 0 {
		dst = append(dst, "HTTP/1.0 "...)
	} else {
		dst = append(dst, "HTTP/1.1 "...)
	}
	dst = strconv.AppendInt(dst, int64(status.Code), 10)
	dst = append(dst, ' ')
	dst = append(dst, status.Reason...)
	dst = append(dst, '\r', '\n')

	headers.Visit(func(name, value string) bool {
		dst = append(dst, name...)
		dst = append(dst, ':', ' ')
		dst = append(dst, value...)
		dst = append(dst, '\r', '\n')
		return true
	})

	for _, line := range setCookie {
		dst = append(dst, HeaderSetCookie...)
		dst = append(dst, ':', ' ')
		dst = append(dst, line...)
		dst = append(dst, '\r', '\n')
	}

	return append(dst, '\r', '\n')
}

// EncodeHead serializes the head block of resp into a pooled buffer.
// The caller owns the buffer and must return it with ReleaseHead once
// the bytes are no longer referenced.
func EncodeHead(resp *Response, minor int) *bytebufferpool.ByteBuffer {
	bb := headPool.Get()
	bb.B = appendHead(bb.B, resp.StatusValue(), minor, resp.Headers(), resp.SetCookieLines())
	return bb
}

// ReleaseHead returns a head buffer to the pool.
func ReleaseHead(bb *bytebufferpool.ByteBuffer) {
	if bb != nil {
		headPool.Put(bb)
	}
}
