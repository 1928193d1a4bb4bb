package http1

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yourusername/surge/pkg/surge/entity"
)

// Constructors and transforms for common responses. All return a
// mutable *Response the caller can keep modifying.

// Data creates a response with data as the whole body.
func Data(statusCode int, contentType string, data []byte) *Response {
	return NewResponse(StatusOf(statusCode), entity.NewBytes(contentType, data))
}

// Text creates a "text/plain;charset=UTF-8" response.
func Text(statusCode int, texts ...string) *Response {
	return NewResponse(StatusOf(statusCode), entity.NewText(texts...))
}

// HTML creates a "text/html;charset=UTF-8" response.
func HTML(statusCode int, htmlContent ...string) *Response {
	return NewResponse(StatusOf(statusCode), entity.NewHTML(htmlContent...))
}

// JSON marshals v into an "application/json" response.
func JSON(statusCode int, v any) *Response {
	e, err := entity.NewJSON(v)
	if err != nil {
		return InternalError(err)
	}
	return NewResponse(StatusOf(statusCode), e)
}

// Redirect creates a 303 redirect to uri. See RedirectStatus for a
// different code.
func Redirect(uri string) *Response {
	return RedirectStatus(StatusSeeOther, uri)
}

// RedirectStatus creates a redirect with one of 301/302/303/307/308.
// The uri may be absolute or relative; it is checked loosely, enough
// to be a legal Location value.
func RedirectStatus(status Status, uri string) *Response {
	switch status.Code {
	case 301, 302, 303, 307, 308:
	default:
		resp := NewResponse(status, nil)
		return resp.fail(fmt.Errorf("%w: %d is not a redirect status", ErrBadStatus, status.Code))
	}
	resp := NewResponse(status, entity.NewTextWithType(entity.ContentTypeASCII, uri))
	if err := checkRedirectURI(uri); err != nil {
		return resp.fail(err)
	}
	// Location is an ordinary response header and goes through the
	// usual header validation.
	return resp.Header(HeaderLocation, uri)
}

// InternalError maps an unexpected error to a vague 500 response. The
// error detail stays out of the body; an error id links the client's
// copy to the local log line.
func InternalError(err error) *Response {
	errorID := uuid.NewString()
	slog.Error("internal error", slog.String("error_id", errorID), slog.Any("error", err))

	return Text(500, "Internal Server Error [error id: "+errorID+"]\r\n\r\n"+
		time.Now().UTC().Format(httpTimeFormat))
}

// File creates a response serving the file at path. IO failures (file
// missing, permission) become a 404 carrying an error id; the path
// never reaches the client.
func File(statusCode int, path string) *Response {
	e, err := entity.NewFile(path, "")
	if err != nil {
		errorID := uuid.NewString()
		slog.Error("file response failed", slog.String("error_id", errorID),
			slog.String("path", path), slog.Any("error", err))
		return Text(404, "File Not Found [error id: "+errorID+"]\r\n\r\n"+
			time.Now().UTC().Format(httpTimeFormat))
	}
	return NewResponse(StatusOf(statusCode), e)
}

// Gzip copies the response with its entity gzip-coded at level 1 and
// adds "Vary: Accept-Encoding". A response without an entity is
// copied unchanged.
func Gzip(resp *Response) *Response {
	out := NewResponseFrom(resp)
	if e := out.EntityValue(); e != nil {
		out.Entity(entity.NewGzip(e, 1))
		addVary(out, "Accept-Encoding")
	}
	return out
}

// Brotli is Gzip's sibling for the br coding, quality 4.
func Brotli(resp *Response) *Response {
	out := NewResponseFrom(resp)
	if e := out.EntityValue(); e != nil {
		out.Entity(entity.NewBrotli(e, 4))
		addVary(out, "Accept-Encoding")
	}
	return out
}

// Cache copies the response with its entity cached in memory, so the
// copy can be saved and served to many requests.
func Cache(resp *Response) *Response {
	out := NewResponseFrom(resp)
	if e := out.EntityValue(); e != nil {
		out.Entity(entity.NewCached(e))
	}
	return out
}

// Throttle copies the response with its body served no faster than
// bytesPerSecond.
func Throttle(bytesPerSecond int64, resp *Response) *Response {
	out := NewResponseFrom(resp)
	if e := out.EntityValue(); e != nil {
		out.Entity(entity.NewThrottled(e, 8*1024, bytesPerSecond))
	}
	return out
}
// addVary appends token to the Vary header, comma-separated.
func addVary(resp *Response, token string) {
	if prev := resp.Headers().Get(HeaderVary); prev != "" {
		if prev == "*" {
			return
		}
		resp.Headers().Set(HeaderVary, prev+", "+token)
		return
	}
	resp.Headers().Set(HeaderVary, token)
}
