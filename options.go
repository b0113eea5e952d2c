// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package chisel

import "github.com/jonnycoombes/chisel-json/decoder"

// DefaultMaxDepth is the container nesting limit applied when no other
// limit is configured.
const DefaultMaxDepth = 1024

// Options control how input is decoded and parsed. A zero Options is ready
// for use, and selects UTF-8 input, DefaultMaxDepth, and Mixed numerics.
// A nil *Options is equivalent to a zero Options.
type Options struct {
	// Encoding selects how input bytes are interpreted as code points.
	Encoding decoder.Encoding

	// MaxDepth bounds the nesting of objects and arrays. Parsing input
	// nested more deeply fails with a DepthExceededError. Values less than
	// or equal to zero select DefaultMaxDepth.
	MaxDepth int

	// Numerics selects how number lexemes resolve to values.
	Numerics NumericMode
}

func (o *Options) encoding() decoder.Encoding {
	if o == nil {
		return decoder.UTF8
	}
	return o.Encoding
}

func (o *Options) maxDepth() int {
	if o == nil || o.MaxDepth <= 0 {
		return DefaultMaxDepth
	}
	return o.MaxDepth
}

func (o *Options) numerics() NumericMode {
	if o == nil {
		return Mixed
	}
	return o.Numerics
}
