package http1

import (
	"strings"
	"testing"
)

func TestHeadMinimal(t *testing.T) {
	resp := NewResponse(StatusOK, nil)
	head := appendHead(nil, resp.StatusValue(), 1, resp.Headers(), nil)
	if string(head) != "HTTP/1.1 200 OK\r\n\r\n" {
		t.Errorf("head = %q", head)
	}
}

func TestHeadVersionSelection(t *testing.T) {
	resp := NewResponse(StatusOK, nil)
	cases := []struct {
		minor int
		want  string
	}{
		{0, "HTTP/1.0 "},
		{1, "HTTP/1.1 "},
		{-1, "HTTP/1.1 "}, // unknown request version serializes as 1.1
	}
	for _, c := range cases {
		head := appendHead(nil, resp.StatusValue(), c.minor, resp.Headers(), nil)
		if !strings.HasPrefix(string(head), c.want) {
			t.Errorf("minor %d: head = %q, want prefix %q", c.minor, head, c.want)
		}
	}
}

func TestHeadHeaderOrderAndFormat(t *testing.T) {
	resp := NewResponse(StatusOf(404), nil).
		Header("X-Second", "2").
		Header("X-First", "1")

	head := string(appendHead(nil, resp.StatusValue(), 1, resp.Headers(), nil))
	want := "HTTP/1.1 404 Not Found\r\n" +
		"X-Second: 2\r\n" +
		"X-First: 1\r\n" +
		"\r\n"
	if head != want {
		t.Errorf("head = %q, want %q", head, want)
	}
}

func TestHeadSetCookieLinesFollowHeadersNeverMerged(t *testing.T) {
	resp := NewResponse(StatusOK, nil).
		Header("X-App", "a").
		Cookie(Cookie{Name: "one", Value: "1", Path: "/"}).
		Cookie(Cookie{Name: "two", Value: "2", Path: "/"})

	head := string(appendHead(nil, resp.StatusValue(), 1, resp.Headers(), resp.SetCookieLines()))
	want := "HTTP/1.1 200 OK\r\n" +
		"X-App: a\r\n" +
		"Set-Cookie: one=1; Path=/\r\n" +
		"Set-Cookie: two=2; Path=/\r\n" +
		"\r\n"
	if head != want {
		t.Errorf("head = %q, want %q", head, want)
	}
}

func TestHeadCookieReplaceKeepsWirePosition(t *testing.T) {
	resp := NewResponse(StatusOK, nil).
		Cookie(Cookie{Name: "sid", Value: "first", Path: "/"}).
		Cookie(Cookie{Name: "other", Value: "x", Path: "/"}).
		Cookie(Cookie{Name: "sid", Value: "second", Path: "/"})

	head := string(appendHead(nil, resp.StatusValue(), 1, resp.Headers(), resp.SetCookieLines()))
	sid := strings.Index(head, "Set-Cookie: sid=second")
	other := strings.Index(head, "Set-Cookie: other=x")
	if sid == -1 || other == -1 {
		t.Fatalf("head = %q", head)
	}
	if sid > other {
		t.Error("replaced cookie lost its original wire position")
	}
	if strings.Contains(head, "sid=first") {
		t.Error("replaced value still on wire")
	}
	if strings.Count(head, "Set-Cookie: sid=") != 1 {
		t.Error("replaced cookie duplicated on wire")
	}
}

func TestHeadEmptyHeaderValue(t *testing.T) {
	resp := NewResponse(StatusOK, nil).Header("X-Empty", "")
	if resp.Err() != nil {
		t.Fatalf("empty value should be legal: %v", resp.Err())
	}
	head := string(appendHead(nil, resp.StatusValue(), 1, resp.Headers(), nil))
	if !strings.Contains(head, "X-Empty: \r\n") {
		t.Errorf("head = %q", head)
	}
}

func TestEncodeHeadPooledBuffer(t *testing.T) {
	resp := NewResponse(StatusOK, nil).Header("X-A", "1")
	bb := EncodeHead(resp, 1)
	if !strings.HasPrefix(string(bb.B), "HTTP/1.1 200 OK\r\n") {
		t.Errorf("encoded = %q", bb.B)
	}
	ReleaseHead(bb)
	ReleaseHead(nil) // tolerated
}
