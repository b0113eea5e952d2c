// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package ast

import (
	"errors"
	"io"

	chisel "github.com/jonnycoombes/chisel-json"
)

// Parse parses a single JSON value from r and returns its syntax tree.
func Parse(r io.Reader) (Value, error) { return ParseWithOptions(r, nil) }

// ParseWithOptions parses a single JSON value from r as configured by
// opts, and returns its syntax tree. A nil opts selects the defaults
// described on chisel.Options.
func ParseWithOptions(r io.Reader, opts *chisel.Options) (Value, error) {
	b := new(Builder)
	if err := chisel.NewStreamWithOptions(r, opts).Parse(b); err != nil {
		return nil, err
	}
	return b.Value()
}

// A Builder assembles a syntax tree from a stream of parse events. It
// implements the chisel.Sink interface: pass it to the Parse method of a
// chisel.Stream, then call Value for the finished tree.
//
// The builder applies the usual reading of duplicate object keys: the last
// value for a key wins, at the position where the key first occurred. A
// parse failure discards all partially built state, so a tree is produced
// only for input that parsed completely. A Builder may be reused; each
// parse replaces the result of the previous one.
type Builder struct {
	stk  []*bframe
	root Value
	ok   bool
}

// A bframe accumulates one open container.
type bframe struct {
	obj   Object
	index map[string]int // key to position in obj
	arr   Array
	isObj bool

	key     string // pending member key
	haveKey bool
}

// Event implements the chisel.Sink interface.
func (b *Builder) Event(evt *chisel.Event) error {
	switch evt.Kind() {
	case chisel.StartOfInput:
		b.reset()
	case chisel.StartObject:
		b.stk = append(b.stk, &bframe{isObj: true, index: make(map[string]int)})
	case chisel.StartArray:
		b.stk = append(b.stk, new(bframe))
	case chisel.ObjectKey:
		top, err := b.top(true)
		if err != nil {
			return err
		}
		top.key, top.haveKey = evt.Text(), true
	case chisel.EndObject:
		top, err := b.top(true)
		if err != nil {
			return err
		}
		b.stk = b.stk[:len(b.stk)-1]
		return b.attach(top.obj)
	case chisel.EndArray:
		top, err := b.top(false)
		if err != nil {
			return err
		}
		b.stk = b.stk[:len(b.stk)-1]
		return b.attach(top.arr)
	case chisel.StringValue:
		return b.attach(String(evt.Text()))
	case chisel.NumberValue:
		return b.attach(Num(evt.Num()))
	case chisel.BoolValue:
		return b.attach(Bool(evt.Bool()))
	case chisel.NullValue:
		return b.attach(Null)
	case chisel.ParseFailure:
		b.reset()
	case chisel.EndOfInput:
		// The root value was attached when the last container closed.
	}
	return nil
}

// Value returns the finished tree after a successful parse. It reports an
// error if no parse has completed since the builder was created or reset.
func (b *Builder) Value() (Value, error) {
	if !b.ok {
		return nil, errors.New("no complete value")
	}
	return b.root, nil
}

func (b *Builder) reset() { b.stk, b.root, b.ok = nil, nil, false }

// top returns the innermost open container, which must be an object if
// wantObj is true and an array otherwise. It reports an error if the event
// sequence did not come from a well-formed parse.
func (b *Builder) top(wantObj bool) (*bframe, error) {
	if len(b.stk) == 0 {
		return nil, errors.New("no open container")
	}
	top := b.stk[len(b.stk)-1]
	if top.isObj != wantObj {
		return nil, errors.New("mismatched container")
	}
	return top, nil
}

// attach adds a completed value to the innermost open container, or
// records it as the root when no container is open.
func (b *Builder) attach(v Value) error {
	if len(b.stk) == 0 {
		b.root, b.ok = v, true
		return nil
	}
	top := b.stk[len(b.stk)-1]
	if !top.isObj {
		top.arr = append(top.arr, v)
		return nil
	}
	if !top.haveKey {
		return errors.New("missing member key")
	}
	if i, dup := top.index[top.key]; dup {
		top.obj[i].Value = v
	} else {
		top.index[top.key] = len(top.obj)
		top.obj = append(top.obj, Field(top.key, v))
	}
	top.key, top.haveKey = "", false
	return nil
}
