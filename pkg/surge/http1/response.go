package http1

import (
	"fmt"
	"time"

	"github.com/yourusername/surge/pkg/surge"
)

// Response is a mutable response value: status, headers, cookies, and
// an optional entity. Mutators are chainable and validate their
// inputs; the first violation sticks and is reported by Err and again
// by the transmitter before any bytes are emitted.
//
// Once emission starts the engine treats the response as frozen;
// callers must not mutate it concurrently with transmission.
type Response struct {
	httpVersion string
	status      Status
	headers     *HeaderMap
	cookies     []Cookie
	entity      surge.Entity

	err error
}

// NewResponse creates a response with the given status and entity.
// The entity may be nil for bodiless responses.
func NewResponse(status Status, entity surge.Entity) *Response {
	return &Response{
		httpVersion: "1.1",
		status:      status,
		headers:     NewHeaderMap(),
		entity:      entity,
	}
}

// NewResponseFrom copies origin for transformation. Headers and
// cookies are deep-copied; the entity is shared, since entities are
// immutable descriptions. The origin is not modified.
func NewResponseFrom(origin *Response) *Response {
	c := &Response{
		httpVersion: origin.httpVersion,
		status:      origin.status,
		headers:     origin.headers.Clone(),
		cookies:     make([]Cookie, len(origin.cookies)),
		entity:      origin.entity,
		err:         origin.err,
	}
	copy(c.cookies, origin.cookies)
	return c
}

// HTTPVersion returns the response's "major.minor" version text.
func (r *Response) HTTPVersion() string { return r.httpVersion }

// StatusValue returns the current status.
func (r *Response) StatusValue() Status { return r.status }

// Headers returns the header map. Prefer Header(name, value), which
// validates; direct mutation skips validation.
func (r *Response) Headers() *HeaderMap { return r.headers }

// Cookies returns the cookie list in insertion order.
func (r *Response) Cookies() []Cookie { return r.cookies }

// EntityValue returns the entity, or nil.
func (r *Response) EntityValue() surge.Entity { return r.entity }

// Err returns the first mutator violation, or nil.
func (r *Response) Err() error { return r.err }

func (r *Response) fail(err error) *Response {
	if r.err == nil {
		r.err = err
	}
	return r
}

// Status sets the status.
func (r *Response) Status(s Status) *Response {
	if !s.Valid() {
		return r.fail(fmt.Errorf("%w: %d", ErrBadStatus, s.Code))
	}
	r.status = s
	return r
}

// Header sets a header. An empty value is legal; value == remove via
// HeaderDel. Name and value are validated; Set-Cookie, framing
// headers, and entity headers are rejected.
func (r *Response) Header(name, value string) *Response {
	if err := r.SetHeader(name, value); err != nil {
		return r.fail(err)
	}
	return r
}

// HeaderDel removes a header.
func (r *Response) HeaderDel(name string) *Response {
	r.headers.Del(name)
	return r
}

// SetHeader is the non-chainable form of Header; it returns the
// validation error directly.
func (r *Response) SetHeader(name, value string) error {
	if isForbiddenHeader(name) {
		return fmt.Errorf("%w: %q", ErrForbiddenHeader, name)
	}
	if err := checkHeader(name, value); err != nil {
		return err
	}
	r.headers.Set(name, value)
	return nil
}

// Cookie adds a cookie. A cookie with the same (Name, Domain, Path)
// identity as an existing one replaces it in place, preserving list
// position.
func (r *Response) Cookie(c Cookie) *Response {
	if err := c.Validate(); err != nil {
		return r.fail(err)
	}
	for i := range r.cookies {
		if r.cookies[i].SameID(c) {
			r.cookies[i] = c
			return r
		}
	}
	r.cookies = append(r.cookies, c)
	return r
}

// Entity replaces the entity. Any staged metadata overrides from
// EntityETag etc. are discarded with the old entity.
func (r *Response) Entity(e surge.Entity) *Response {
	r.entity = e
	return r
}

func (r *Response) overlay() *surge.Overlay {
	if r.entity == nil {
		return nil
	}
	o := surge.AsOverlay(r.entity)
	r.entity = o
	return o
}

// EntityLastModified overrides the entity's lastModified.
func (r *Response) EntityLastModified(t time.Time) *Response {
	o := r.overlay()
	if o == nil {
		return r.fail(ErrEntityAbsent)
	}
	o.MLastModified = &t
	return r
}

// EntityExpires overrides the entity's expires.
func (r *Response) EntityExpires(t time.Time) *Response {
	o := r.overlay()
	if o == nil {
		return r.fail(ErrEntityAbsent)
	}
	o.MExpires = &t
	return r
}

// EntityETag overrides the entity's etag. The tag must be an RFC 7232
// quoted-string without the W/ prefix.
func (r *Response) EntityETag(etag string) *Response {
	o := r.overlay()
	if o == nil {
		return r.fail(ErrEntityAbsent)
	}
	if err := checkETag(etag); err != nil {
		return r.fail(err)
	}
	o.METag = &etag
	return r
}

// EntityETagIsWeak overrides the entity's etagIsWeak.
func (r *Response) EntityETagIsWeak(weak bool) *Response {
	o := r.overlay()
	if o == nil {
		return r.fail(ErrEntityAbsent)
	}
	o.METagIsWeak = &weak
	return r
}

// SetCookieLines materializes the Set-Cookie values for wire emission,
// one per cookie, in list order. Lines are never merged.
func (r *Response) SetCookieLines() []string {
	if len(r.cookies) == 0 {
		return nil
	}
	lines := make([]string, len(r.cookies))
	for i := range r.cookies {
		lines[i] = r.cookies[i].WireString()
	}
	return lines
}
