// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package cursor implements traversal over the syntax tree of a JSON value.
package cursor

import (
	"fmt"
	"strconv"

	"github.com/jonnycoombes/chisel-json/ast"
	"github.com/jonnycoombes/chisel-json/pointer"
)

// Get traverses path from v and returns the value it reaches, which must
// have type T. Path elements are as documented for the Down method.
func Get[T ast.Value](v ast.Value, path ...any) (T, error) {
	c := New(v).Down(path...)
	var zero T
	if err := c.Err(); err != nil {
		return zero, err
	}
	out, ok := c.Value().(T)
	if !ok {
		return zero, fmt.Errorf("wrong value type %T", c.Value())
	}
	return out, nil
}

// A Cursor is a movable location within the structure of an ast.Value.
type Cursor struct {
	org ast.Value
	stk []step
	err error
}

// A step records one traversal hop: the value reached and the reference
// token naming it within its parent.
type step struct {
	val ast.Value
	tok string
}

// New constructs a new Cursor positioned at origin.
func New(origin ast.Value) *Cursor { return &Cursor{org: origin} }

// Origin returns the origin value of c.
func (c *Cursor) Origin() ast.Value { return c.org }

// AtOrigin reports whether c is at its origin.
func (c *Cursor) AtOrigin() bool { return len(c.stk) == 0 }

// Value reports the current value under the cursor.
func (c *Cursor) Value() ast.Value {
	if c.AtOrigin() {
		return c.org
	}
	return c.stk[len(c.stk)-1].val
}

// Pointer reports the location of the cursor as a JSON Pointer relative to
// its origin. Positions reached by a negative or positional index report
// the canonical reference token for the element.
func (c *Cursor) Pointer() pointer.Pointer {
	p := make(pointer.Pointer, len(c.stk))
	for i, s := range c.stk {
		p[i] = s.tok
	}
	return p
}

// Err reports the error from the most recent traversal operation, if any.
func (c *Cursor) Err() error { return c.err }

// Up moves the cursor one position toward its origin, if possible.
// It returns c to permit chaining.
func (c *Cursor) Up() *Cursor {
	if n := len(c.stk); n > 0 {
		c.stk = c.stk[:n-1]
	}
	return c
}

// Reset returns the cursor to its origin and clears its error.
func (c *Cursor) Reset() { c.stk = c.stk[:0]; c.err = nil }

// Down traverses a sequential path into the structure of c starting from
// the current value. If the whole path resolves, the cursor stops at the
// value reached; otherwise traversal stops where resolution failed and the
// error is recorded. Use Err to recover the error.
//
// A string path element selects a member of an object by name. An integer
// selects an element of an array, or a member of an object, by position;
// negative positions count backward from the end (-1 is last, -2 second
// last).
func (c *Cursor) Down(path ...any) *Cursor {
	c.err = nil
	cur := c.Value()
	for _, elt := range path {
		switch t := elt.(type) {
		case string:
			obj, ok := cur.(ast.Object)
			if !ok {
				return c.setErrorf("cannot traverse %T with %q", cur, t)
			}
			m := obj.Find(t)
			if m == nil {
				return c.setErrorf("key %q not found", t)
			}
			cur = c.push(m.Value, t)

		case int:
			switch e := cur.(type) {
			case ast.Array:
				i, ok := fixArrayBound(len(e), t)
				if !ok {
					return c.setErrorf("array index %d out of bounds (n=%d)", t, len(e))
				}
				cur = c.push(e[i], strconv.Itoa(i))
			case ast.Object:
				i, ok := fixArrayBound(len(e), t)
				if !ok {
					return c.setErrorf("object index %d out of bounds (n=%d)", t, len(e))
				}
				cur = c.push(e[i].Value, e[i].Key)
			default:
				return c.setErrorf("cannot traverse %T with %v", cur, elt)
			}

		default:
			return c.setErrorf("invalid path element %T", elt)
		}
	}
	return c
}

func (c *Cursor) push(v ast.Value, tok string) ast.Value {
	c.stk = append(c.stk, step{val: v, tok: tok})
	return v
}

func (c *Cursor) setErrorf(msg string, args ...any) *Cursor {
	c.err = fmt.Errorf(msg, args...)
	return c
}

func fixArrayBound(n, i int) (int, bool) {
	if i < 0 {
		i += n
	}
	return i, i >= 0 && i < n
}
