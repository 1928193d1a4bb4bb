package entity

import (
	"github.com/andybalholm/brotli"

	"github.com/yourusername/surge/pkg/surge"
)

// NewBrotli decorates base with the br content coding at the given
// quality (0..11). Like gzip, transforms favor speed: the body is
// re-compressed on every emission.
func NewBrotli(base surge.Entity, quality int) surge.Entity {
	return &codedEntity{
		Entity: base,
		coding: "br",
		newBody: func(body surge.BodySource) surge.BodySource {
			src := newCodedSource(body, nil)
			src.comp = brotli.NewWriterLevel(&src.out, quality)
			return src
		},
	}
}
