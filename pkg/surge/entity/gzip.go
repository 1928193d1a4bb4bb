package entity

import (
	"github.com/klauspost/compress/gzip"

	"github.com/yourusername/surge/pkg/surge"
)

// NewGzip decorates base with the gzip content coding at the given
// level (gzip.BestSpeed..gzip.BestCompression). Response transforms
// use level 1: the body is compressed per emission, so cheap beats
// dense.
func NewGzip(base surge.Entity, level int) surge.Entity {
	return &codedEntity{
		Entity: base,
		coding: "gzip",
		newBody: func(body surge.BodySource) surge.BodySource {
			src := newCodedSource(body, nil)
			zw, err := gzip.NewWriterLevel(&src.out, level)
			if err != nil {
				zw = gzip.NewWriter(&src.out)
			}
			src.comp = zw
			return src
		},
	}
}
