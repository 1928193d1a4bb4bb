package surge

import "time"

// Entity describes a response body: its metadata and a factory for the
// byte source that produces it.
//
// Entities are immutable descriptions; a response that needs to adjust
// one metadata field wraps the entity in an Overlay instead of mutating
// it. Body must return a fresh source per emission so a cached or
// sharable response can be served more than once.
type Entity interface {
	// ContentType is the media type, e.g. "text/plain;charset=UTF-8".
	ContentType() string

	// ContentLength is the body length in bytes, or -1 if unknown.
	ContentLength() int64

	// ContentEncoding is the applied coding ("gzip", "br"), or "".
	ContentEncoding() string

	// LastModified is the modification time; zero means unset.
	LastModified() time.Time

	// Expires is the expiration time; zero means unset.
	Expires() time.Time

	// ETag is the entity tag as a quoted-string, without the W/ prefix;
	// "" means unset.
	ETag() string

	// ETagIsWeak reports whether the tag is a weak validator.
	ETagIsWeak() bool

	// Body returns a fresh source for the entity bytes.
	Body() BodySource
}

// Overlay shadows selected metadata fields of a base entity while
// delegating everything else. Nil pointer fields delegate.
type Overlay struct {
	Base Entity

	MLastModified *time.Time
	MExpires      *time.Time
	METag         *string
	METagIsWeak   *bool
}

// AsOverlay returns e itself if it is already an Overlay, otherwise a
// new Overlay over e. Stacking overlays on every mutation would leak
// chains of wrappers.
func AsOverlay(e Entity) *Overlay {
	if o, ok := e.(*Overlay); ok {
		return o
	}
	return &Overlay{Base: e}
}

func (o *Overlay) ContentType() string     { return o.Base.ContentType() }
func (o *Overlay) ContentLength() int64    { return o.Base.ContentLength() }
func (o *Overlay) ContentEncoding() string { return o.Base.ContentEncoding() }
func (o *Overlay) Body() BodySource        { return o.Base.Body() }

func (o *Overlay) LastModified() time.Time {
	if o.MLastModified != nil {
		return *o.MLastModified
	}
	return o.Base.LastModified()
}

func (o *Overlay) Expires() time.Time {
	if o.MExpires != nil {
		return *o.MExpires
	}
	return o.Base.Expires()
}

func (o *Overlay) ETag() string {
	if o.METag != nil {
		return *o.METag
	}
	return o.Base.ETag()
}

func (o *Overlay) ETagIsWeak() bool {
	if o.METagIsWeak != nil {
		return *o.METagIsWeak
	}
	return o.Base.ETagIsWeak()
}
