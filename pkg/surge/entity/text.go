package entity

import "strings"

// Content types for the text constructors.
const (
	ContentTypeTextPlain = "text/plain;charset=UTF-8"
	ContentTypeTextHTML  = "text/html;charset=UTF-8"
	ContentTypeJSON      = "application/json;charset=UTF-8"
	ContentTypeASCII     = "text/plain;charset=US-ASCII"
)

// NewText creates a "text/plain;charset=UTF-8" entity from the
// concatenation of texts.
func NewText(texts ...string) *Bytes {
	return NewTextWithType(ContentTypeTextPlain, texts...)
}

// NewHTML creates a "text/html;charset=UTF-8" entity.
func NewHTML(texts ...string) *Bytes {
	return NewTextWithType(ContentTypeTextHTML, texts...)
}

// NewTextWithType creates a text entity with an explicit content type.
func NewTextWithType(contentType string, texts ...string) *Bytes {
	switch len(texts) {
	case 0:
		return NewBytes(contentType, nil)
	case 1:
		return NewBytes(contentType, []byte(texts[0]))
	}
	var b strings.Builder
	for _, t := range texts {
		b.WriteString(t)
	}
	return NewBytes(contentType, []byte(b.String()))
}
