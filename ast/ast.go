// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package ast defines an abstract syntax tree for JSON values, and a
// builder that assembles syntax trees from parse events.
package ast

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"

	chisel "github.com/jonnycoombes/chisel-json"
	"github.com/jonnycoombes/chisel-json/pointer"
)

// A Value is an arbitrary JSON value.
type Value interface {
	// JSON renders the value as JSON source text.
	JSON() string

	// String renders the value as a human-readable string. The result is
	// not required to be valid JSON.
	String() string
}

// An Object is a collection of key-value members. The order of members is
// preserved as constructed.
type Object []*Member

// Find returns the first member of o with the given key, or nil.
func (o Object) Find(key string) *Member {
	for _, m := range o {
		if m.Key == key {
			return m
		}
	}
	return nil
}

// Len returns the number of members of o.
func (o Object) Len() int { return len(o) }

// Set replaces the value of the first member of o with the given key, or
// appends a new member with that key, and returns the updated object.
func (o Object) Set(key string, v Value) Object {
	if m := o.Find(key); m != nil {
		m.Value = v
		return o
	}
	return append(o, Field(key, v))
}

// Sort reorders the members of o in ascending order by key.
func (o Object) Sort() {
	slices.SortFunc(o, func(a, b *Member) int { return strings.Compare(a.Key, b.Key) })
}

// JSON renders o as JSON source text.
func (o Object) JSON() string {
	var sb strings.Builder
	sb.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(m.JSON())
	}
	sb.WriteByte('}')
	return sb.String()
}

func (o Object) String() string { return fmt.Sprintf("Object(len=%d)", len(o)) }

// A Member is a single key-value pair belonging to an Object. A nil Member
// is not a valid member.
type Member struct {
	Key   string
	Value Value
}

// Field constructs an object member with the given key and value.
func Field(key string, value Value) *Member { return &Member{Key: key, Value: value} }

// JSON renders the member as JSON source text.
func (m *Member) JSON() string { return chisel.Quote(m.Key) + ":" + m.Value.JSON() }

func (m *Member) String() string { return fmt.Sprintf("Member(key=%q)", m.Key) }

// An Array is a sequence of values.
type Array []Value

// Len returns the number of elements of a.
func (a Array) Len() int { return len(a) }

// JSON renders a as JSON source text.
func (a Array) JSON() string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range a {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(v.JSON())
	}
	sb.WriteByte(']')
	return sb.String()
}

func (a Array) String() string { return fmt.Sprintf("Array(len=%d)", len(a)) }

// A String is a string value.
type String string

// Len returns the length in bytes of s.
func (s String) Len() int { return len(s) }

// JSON renders s as JSON source text.
func (s String) JSON() string { return chisel.Quote(string(s)) }

func (s String) String() string { return string(s) }

// A Number is a numeric value, either an integer or a floating-point
// quantity.
type Number struct{ num chisel.Numeric }

// Int constructs a Number with the given integer value.
func Int(z int64) Number { return Number{num: chisel.Int(z)} }

// Float constructs a Number with the given floating-point value.
func Float(f float64) Number { return Number{num: chisel.Float(f)} }

// Num constructs a Number with the value num.
func Num(num chisel.Numeric) Number { return Number{num: num} }

// IsInt reports whether n is an integer.
func (n Number) IsInt() bool { return n.num.IsInt() }

// Int64 returns n as an int64, truncating any fractional part.
func (n Number) Int64() int64 { return n.num.Int64() }

// Float64 returns n as a float64.
func (n Number) Float64() float64 { return n.num.Float64() }

// Value returns the value of n.
func (n Number) Value() chisel.Numeric { return n.num }

// JSON renders n as JSON source text.
func (n Number) JSON() string { return n.num.String() }

func (n Number) String() string { return n.num.String() }

// A Bool is a Boolean constant, true or false.
type Bool bool

// JSON renders b as JSON source text.
func (b Bool) JSON() string {
	if b {
		return "true"
	}
	return "false"
}

func (b Bool) String() string { return b.JSON() }

// Null represents the JSON null constant.
var Null nullValue

type nullValue struct{}

// JSON renders the value as JSON source text.
func (nullValue) JSON() string { return "null" }

func (nullValue) String() string { return "null" }

// ToValue converts a plain Go value of a compatible type into a Value. It
// panics if v does not have one of the supported types:
//
//	nil            to Null
//	bool           to Bool
//	string         to String
//	int, int64     to Number
//	float64        to Number
//	[]any          to Array
//	map[string]any to Object, with members ordered by key
//
// A v that is already a Value is returned unchanged.
func ToValue(v any) Value {
	switch t := v.(type) {
	case nil:
		return Null
	case Value:
		return t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case int:
		return Int(int64(t))
	case int64:
		return Int(t)
	case float64:
		return Float(t)
	case []any:
		out := make(Array, len(t))
		for i, elt := range t {
			out[i] = ToValue(elt)
		}
		return out
	case map[string]any:
		keys := make([]string, 0, len(t))
		for key := range t {
			keys = append(keys, key)
		}
		slices.Sort(keys)
		out := make(Object, 0, len(t))
		for _, key := range keys {
			out = append(out, Field(key, ToValue(t[key])))
		}
		return out
	}
	panic(fmt.Sprintf("cannot convert %T to a Value", v))
}

// Resolve evaluates p against the tree rooted at v, returning the value it
// designates. It reports an error if some token of p does not resolve:
// object members are selected by name, array elements by decimal index.
func Resolve(v Value, p pointer.Pointer) (Value, error) {
	cur := v
	for i, tok := range p {
		switch t := cur.(type) {
		case Object:
			m := t.Find(tok)
			if m == nil {
				return nil, fmt.Errorf("at %q: member %q not found", p[:i].String(), tok)
			}
			cur = m.Value
		case Array:
			idx, err := arrayIndex(tok)
			if err != nil {
				return nil, fmt.Errorf("at %q: %w", p[:i].String(), err)
			} else if idx >= len(t) {
				return nil, fmt.Errorf("at %q: index %d out of range (%d elements)",
					p[:i].String(), idx, len(t))
			}
			cur = t[idx]
		default:
			return nil, fmt.Errorf("at %q: cannot traverse %T", p[:i].String(), cur)
		}
	}
	return cur, nil
}

// arrayIndex parses tok as an array index: a decimal integer with no sign
// and no redundant leading zeroes.
func arrayIndex(tok string) (int, error) {
	if tok == "" || (len(tok) > 1 && tok[0] == '0') {
		return -1, fmt.Errorf("invalid array index %q", tok)
	}
	for i := range len(tok) {
		if tok[i] < '0' || tok[i] > '9' {
			return -1, fmt.Errorf("invalid array index %q", tok)
		}
	}
	return strconv.Atoi(tok)
}
