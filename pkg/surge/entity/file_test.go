package entity

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestFileEntityMetadata(t *testing.T) {
	path := writeTemp(t, "page.html", "<html></html>")

	e, err := NewFile(path, "")
	if err != nil {
		t.Fatalf("NewFile: %v", err)
	}
	if e.ContentLength() != 13 {
		t.Errorf("ContentLength = %d", e.ContentLength())
	}
	if !strings.HasPrefix(e.ContentType(), "text/html") {
		t.Errorf("ContentType = %q", e.ContentType())
	}
	if e.LastModified().IsZero() {
		t.Error("LastModified unset")
	}
	etag := e.ETag()
	if len(etag) < 2 || etag[0] != '"' || etag[len(etag)-1] != '"' {
		t.Errorf("ETag = %q, want quoted-string", etag)
	}
	if e.ETagIsWeak() {
		t.Error("file etag should be strong")
	}
}

func TestFileEntityExplicitContentType(t *testing.T) {
	path := writeTemp(t, "blob.bin", "data")
	e, err := NewFile(path, "application/x-custom")
	if err != nil {
		t.Fatal(err)
	}
	if e.ContentType() != "application/x-custom" {
		t.Errorf("ContentType = %q", e.ContentType())
	}
}

func TestFileEntityBody(t *testing.T) {
	content := strings.Repeat("file streaming ", 100)
	path := writeTemp(t, "body.txt", content)

	e, err := NewFile(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if got := drain(t, e.Body()); string(got) != content {
		t.Errorf("body mismatch: %d bytes", len(got))
	}
	// a second emission re-opens the file
	if got := drain(t, e.Body()); string(got) != content {
		t.Error("second emission mismatch")
	}
}

func TestFileEntityMissingFile(t *testing.T) {
	if _, err := NewFile(filepath.Join(t.TempDir(), "absent"), ""); err == nil {
		t.Error("want error for missing file")
	}
}

func TestFileEntityDirectoryRejected(t *testing.T) {
	if _, err := NewFile(t.TempDir(), ""); err == nil {
		t.Error("want error for directory")
	}
}

func TestFileEntityETagTracksChanges(t *testing.T) {
	path := writeTemp(t, "v.txt", "one")
	a, err := NewFile(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("longer content"), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := NewFile(path, "")
	if err != nil {
		t.Fatal(err)
	}
	if a.ETag() == b.ETag() {
		t.Error("etag unchanged across file change")
	}
}

func TestFileSourceCloseIdempotent(t *testing.T) {
	path := writeTemp(t, "c.txt", "x")
	e, err := NewFile(path, "")
	if err != nil {
		t.Fatal(err)
	}
	src := e.Body()
	_ = src.Read().Result()
	if err := src.Close(); err != nil {
		t.Errorf("Close = %v", err)
	}
	if err := src.Close(); err != nil {
		t.Errorf("second Close = %v", err)
	}
}
