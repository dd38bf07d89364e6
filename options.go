package dknn

import (
	"github.com/hupe1980/dknn/codec"
	"github.com/hupe1980/dknn/persistence"
)

type options struct {
	codec       codec.Codec
	compression persistence.Compression
}

// Option configures snapshot encoding and decoding.
// Options override the defaults set on the Builder.
type Option func(*options)

// WithCodec configures the codec used for the snapshot manifest.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompression configures payload compression when saving.
// Loading detects the compression from the snapshot header.
func WithCompression(c persistence.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

func applyOptions(base options, optFns []Option) options {
	for _, fn := range optFns {
		if fn != nil {
			fn(&base)
		}
	}
	if base.codec == nil {
		base.codec = codec.Default
	}
	return base
}
