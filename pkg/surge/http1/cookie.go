package http1

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// SameSite values for the Set-Cookie SameSite attribute.
type SameSite int

const (
	SameSiteUnset SameSite = iota
	SameSiteLax
	SameSiteStrict
	SameSiteNone
)

func (s SameSite) String() string {
	switch s {
	case SameSiteLax:
		return "Lax"
	case SameSiteStrict:
		return "Strict"
	case SameSiteNone:
		return "None"
	default:
		return ""
	}
}

// Cookie is one response cookie, serialized as a Set-Cookie line.
//
// Identity is the (Name, Domain, Path) triple: adding a cookie whose
// identity matches an existing one replaces it in place. MaxAge follows
// the Set-Cookie convention: 0 means a session cookie (no Max-Age
// attribute), negative means delete (Max-Age=0 on the wire).
type Cookie struct {
	Name  string
	Value string

	Domain string
	Path   string

	MaxAge   int // seconds; 0 session, <0 delete
	Secure   bool
	HttpOnly bool
	SameSite SameSite
}

// SameID reports whether two cookies share the (Name, Domain, Path)
// identity. Comparison is exact; absent attributes are empty strings.
func (c Cookie) SameID(o Cookie) bool {
	return c.Name == o.Name && c.Domain == o.Domain && c.Path == o.Path
}

// Validate checks the cookie for wire legality: token name, value
// bytes per RFC 6265 cookie-octet (with optional surrounding quotes),
// attribute values free of ";" and CTLs.
func (c Cookie) Validate() error {
	if !isToken(c.Name) {
		return fmt.Errorf("%w: name %q", ErrBadCookie, c.Name)
	}
	v := c.Value
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		v = v[1 : len(v)-1]
	}
	for i := 0; i < len(v); i++ {
		b := v[i]
		if b == 0x21 || (b >= 0x23 && b <= 0x2b) || (b >= 0x2d && b <= 0x3a) ||
			(b >= 0x3c && b <= 0x5b) || (b >= 0x5d && b <= 0x7e) {
			continue
		}
		return fmt.Errorf("%w: value of %q contains byte 0x%02x", ErrBadCookie, c.Name, b)
	}
	for _, attr := range []string{c.Domain, c.Path} {
		for i := 0; i < len(attr); i++ {
			if b := attr[i]; b == ';' || b < 0x20 || b == 0x7f {
				return fmt.Errorf("%w: attribute %q", ErrBadCookie, attr)
			}
		}
	}
	return nil
}

// WireString serializes the cookie as the value of one Set-Cookie
// header. The caller has validated the cookie; no escaping happens
// here.
func (c Cookie) WireString() string {
	var b strings.Builder
	b.WriteString(c.Name)
	b.WriteByte('=')
	b.WriteString(c.Value)

	if c.Domain != "" {
		b.WriteString("; Domain=")
		b.WriteString(c.Domain)
	}
	if c.Path != "" {
		b.WriteString("; Path=")
		b.WriteString(c.Path)
	}
	if c.MaxAge < 0 {
		b.WriteString("; Max-Age=0; Expires=")
		b.WriteString(time.Unix(0, 0).UTC().Format(httpTimeFormat))
	} else if c.MaxAge > 0 {
		b.WriteString("; Max-Age=")
		b.WriteString(strconv.Itoa(c.MaxAge))
	}
	if c.Secure {
		b.WriteString("; Secure")
	}
	if c.HttpOnly {
		b.WriteString("; HttpOnly")
	}
	if ss := c.SameSite.String(); ss != "" {
		b.WriteString("; SameSite=")
		b.WriteString(ss)
	}
	return b.String()
}
