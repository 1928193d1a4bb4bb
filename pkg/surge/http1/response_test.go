package http1

import (
	"errors"
	"testing"
	"time"

	"github.com/yourusername/surge/pkg/surge/entity"
)

func TestResponseHeaderSetGetDelete(t *testing.T) {
	resp := NewResponse(StatusOK, nil).
		Header("X-One", "1").
		Header("X-Two", "2")

	if resp.Err() != nil {
		t.Fatalf("Err = %v", resp.Err())
	}
	if got := resp.Headers().Get("x-one"); got != "1" {
		t.Errorf("case-insensitive Get = %q", got)
	}

	resp.HeaderDel("X-One")
	if resp.Headers().Has("X-One") {
		t.Error("header still present after delete")
	}
	if got := resp.Headers().Len(); got != 1 {
		t.Errorf("Len = %d", got)
	}
}

func TestResponseHeaderInsertionOrderPreserved(t *testing.T) {
	resp := NewResponse(StatusOK, nil).
		Header("B-Header", "b").
		Header("A-Header", "a").
		Header("C-Header", "c").
		Header("a-header", "a2") // update in place, keeps position

	var names []string
	resp.Headers().Visit(func(name, value string) bool {
		names = append(names, name)
		return true
	})
	want := []string{"B-Header", "A-Header", "C-Header"}
	if len(names) != len(want) {
		t.Fatalf("names = %v", names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
	if got := resp.Headers().Get("A-Header"); got != "a2" {
		t.Errorf("updated value = %q", got)
	}
}

func TestResponseRejectsBadHeaders(t *testing.T) {
	cases := []struct {
		name, value string
	}{
		{"Bad Name", "v"},
		{"", "v"},
		{"Na\rme", "v"},
		{"Name", "bad\r\nvalue"},
		{"Name", "bad\nvalue"},
		{"Name", "bad\x00value"},
	}
	for _, c := range cases {
		resp := NewResponse(StatusOK, nil).Header(c.name, c.value)
		if !errors.Is(resp.Err(), ErrBadHeader) {
			t.Errorf("Header(%q, %q): Err = %v, want ErrBadHeader", c.name, c.value, resp.Err())
		}
	}
}

func TestResponseRejectsManagedHeaders(t *testing.T) {
	for _, name := range []string{
		"Set-Cookie", "set-cookie",
		"Content-Length", "Transfer-Encoding",
		"Content-Type", "Content-Encoding",
		"ETag", "Last-Modified", "Expires",
	} {
		resp := NewResponse(StatusOK, nil).Header(name, "v")
		if !errors.Is(resp.Err(), ErrForbiddenHeader) {
			t.Errorf("Header(%q): Err = %v, want ErrForbiddenHeader", name, resp.Err())
		}
		if resp.Headers().Has(name) {
			t.Errorf("%q was stored despite rejection", name)
		}
	}
}

func TestResponseHeaderAddThenRemoveEqualsNever(t *testing.T) {
	never := NewResponse(StatusOK, nil).Header("Keep", "yes")
	addRemove := NewResponse(StatusOK, nil).Header("Keep", "yes").
		Header("X-Gone", "tmp")
	addRemove.HeaderDel("X-Gone")

	a := appendHead(nil, never.StatusValue(), 1, never.Headers(), never.SetCookieLines())
	b := appendHead(nil, addRemove.StatusValue(), 1, addRemove.Headers(), addRemove.SetCookieLines())
	if string(a) != string(b) {
		t.Errorf("serializations differ:\n%q\n%q", a, b)
	}
}

func TestResponseCookieReplaceInPlace(t *testing.T) {
	resp := NewResponse(StatusOK, nil).
		Cookie(Cookie{Name: "sid", Value: "one", Path: "/"}).
		Cookie(Cookie{Name: "theme", Value: "dark", Path: "/"}).
		Cookie(Cookie{Name: "sid", Value: "two", Path: "/"})

	cookies := resp.Cookies()
	if len(cookies) != 2 {
		t.Fatalf("len(cookies) = %d, want 2", len(cookies))
	}
	if cookies[0].Name != "sid" || cookies[0].Value != "two" {
		t.Errorf("cookies[0] = %+v, want replaced sid at original index", cookies[0])
	}
	if cookies[1].Name != "theme" {
		t.Errorf("cookies[1] = %+v", cookies[1])
	}
}

func TestResponseCookieIdentityIsNameDomainPath(t *testing.T) {
	resp := NewResponse(StatusOK, nil).
		Cookie(Cookie{Name: "sid", Value: "a", Path: "/"}).
		Cookie(Cookie{Name: "sid", Value: "b", Path: "/admin"}).
		Cookie(Cookie{Name: "sid", Value: "c", Domain: "example.com", Path: "/"})

	if got := len(resp.Cookies()); got != 3 {
		t.Errorf("len(cookies) = %d, want 3 distinct identities", got)
	}
}

func TestResponseCookieValidation(t *testing.T) {
	resp := NewResponse(StatusOK, nil).Cookie(Cookie{Name: "bad name", Value: "v"})
	if !errors.Is(resp.Err(), ErrBadCookie) {
		t.Errorf("Err = %v, want ErrBadCookie", resp.Err())
	}

	resp = NewResponse(StatusOK, nil).Cookie(Cookie{Name: "n", Value: "bad;value"})
	if !errors.Is(resp.Err(), ErrBadCookie) {
		t.Errorf("Err = %v, want ErrBadCookie", resp.Err())
	}
}

func TestResponseCopyIsIndependent(t *testing.T) {
	orig := NewResponse(StatusOK, entity.NewText("body")).
		Header("X-A", "1").
		Cookie(Cookie{Name: "sid", Value: "a", Path: "/"})

	cp := NewResponseFrom(orig)

	// identical serialization
	a := appendHead(nil, orig.StatusValue(), 1, orig.Headers(), orig.SetCookieLines())
	b := appendHead(nil, cp.StatusValue(), 1, cp.Headers(), cp.SetCookieLines())
	if string(a) != string(b) {
		t.Fatalf("copy serializes differently:\n%q\n%q", a, b)
	}

	// mutations do not leak across
	cp.Header("X-B", "2")
	cp.Cookie(Cookie{Name: "sid", Value: "changed", Path: "/"})
	if orig.Headers().Has("X-B") {
		t.Error("copy header leaked into origin")
	}
	if orig.Cookies()[0].Value != "a" {
		t.Error("copy cookie leaked into origin")
	}

	// entity is shared by reference
	if cp.EntityValue() != orig.EntityValue() {
		t.Error("entity should be shared")
	}
}

func TestResponseEntityMetadataOverlay(t *testing.T) {
	base := entity.NewText("hello")
	when := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	resp := NewResponse(StatusOK, base).
		EntityETag(`"v1"`).
		EntityETagIsWeak(true).
		EntityLastModified(when)

	if resp.Err() != nil {
		t.Fatalf("Err = %v", resp.Err())
	}
	e := resp.EntityValue()
	if e.ETag() != `"v1"` {
		t.Errorf("ETag = %q", e.ETag())
	}
	if !e.ETagIsWeak() {
		t.Error("ETagIsWeak = false")
	}
	if !e.LastModified().Equal(when) {
		t.Errorf("LastModified = %v", e.LastModified())
	}
	// delegated fields come from the base
	if e.ContentType() != entity.ContentTypeTextPlain {
		t.Errorf("ContentType = %q", e.ContentType())
	}
	if e.ContentLength() != 5 {
		t.Errorf("ContentLength = %d", e.ContentLength())
	}
}

func TestResponseEntityMetadataRequiresEntity(t *testing.T) {
	resp := NewResponse(StatusOK, nil).EntityETag(`"v1"`)
	if !errors.Is(resp.Err(), ErrEntityAbsent) {
		t.Errorf("Err = %v, want ErrEntityAbsent", resp.Err())
	}
}

func TestResponseEntityReplaceDiscardsOverrides(t *testing.T) {
	resp := NewResponse(StatusOK, entity.NewText("a")).EntityETag(`"v1"`)

	fresh := entity.NewText("b")
	resp.Entity(fresh)

	if got := resp.EntityValue().ETag(); got != "" {
		t.Errorf("ETag = %q, want staged override discarded", got)
	}
}

func TestResponseEntityETagValidated(t *testing.T) {
	for _, bad := range []string{"v1", `"v1`, `v1"`, `""" `, "\"a\rb\""} {
		resp := NewResponse(StatusOK, entity.NewText("x")).EntityETag(bad)
		if !errors.Is(resp.Err(), ErrBadETag) {
			t.Errorf("EntityETag(%q): Err = %v, want ErrBadETag", bad, resp.Err())
		}
	}
	resp := NewResponse(StatusOK, entity.NewText("x")).EntityETag(`""`)
	if resp.Err() != nil {
		t.Errorf("empty quoted-string should be legal: %v", resp.Err())
	}
}

func TestResponseStatusValidation(t *testing.T) {
	resp := NewResponse(StatusOK, nil).Status(Status{Code: 99})
	if !errors.Is(resp.Err(), ErrBadStatus) {
		t.Errorf("Err = %v, want ErrBadStatus", resp.Err())
	}
	resp = NewResponse(StatusOK, nil).Status(Status{Code: 600})
	if !errors.Is(resp.Err(), ErrBadStatus) {
		t.Errorf("Err = %v, want ErrBadStatus", resp.Err())
	}
}
