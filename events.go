// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package chisel

import (
	"errors"

	"github.com/jonnycoombes/chisel-json/pointer"
)

// An EventKind identifies the structural meaning of an Event.
type EventKind byte

// Constants defining the valid EventKind values.
const (
	StartOfInput EventKind = 1 + iota // parsing began
	EndOfInput                        // parsing finished and consumed the input
	StartObject                       // "{" opened an object
	EndObject                         // "}" closed the innermost object
	StartArray                        // "[" opened an array
	EndArray                          // "]" closed the innermost array
	ObjectKey                         // the name of an object member
	StringValue                       // a string value
	NumberValue                       // a number value
	BoolValue                         // true or false
	NullValue                         // null
	ParseFailure                      // parsing failed; see Err
)

var eventStr = [...]string{
	StartOfInput: "start of input",
	EndOfInput:   "end of input",
	StartObject:  "start object",
	EndObject:    "end object",
	StartArray:   "start array",
	EndArray:     "end array",
	ObjectKey:    "object key",
	StringValue:  "string value",
	NumberValue:  "number value",
	BoolValue:    "boolean value",
	NullValue:    "null value",
	ParseFailure: "parse failure",
}

func (k EventKind) String() string {
	if k == 0 || int(k) >= len(eventStr) {
		return "invalid event"
	}
	return eventStr[k]
}

// An Event describes one step of a parse. Events are delivered
// synchronously to the Sink and are valid only for the duration of the
// call that delivers them; a sink that retains event data must copy it.
type Event struct {
	kind EventKind
	span Span
	text string  // payload for ObjectKey, StringValue
	num  Numeric // payload for NumberValue
	b    bool    // payload for BoolValue
	err  error   // payload for ParseFailure

	s *Stream // originating stream, for pointer rendering
}

// Kind reports the kind of the event.
func (e *Event) Kind() EventKind { return e.kind }

// Span reports the span of source text that produced the event.
func (e *Event) Span() Span { return e.span }

// Text returns the decoded text of an ObjectKey or StringValue event. For
// other kinds it returns "".
func (e *Event) Text() string { return e.text }

// Num returns the value of a NumberValue event.
func (e *Event) Num() Numeric { return e.num }

// Bool returns the value of a BoolValue event.
func (e *Event) Bool() bool { return e.b }

// Err returns the failure reported by a ParseFailure event.
func (e *Event) Err() error { return e.err }

// Pointer reports the document location of the event as an RFC 6901 JSON
// Pointer. StartObject/EndObject and StartArray/EndArray report the
// location of the container itself; ObjectKey and value events report the
// location of the member or element. The result is freshly allocated and
// remains valid after the sink call returns.
func (e *Event) Pointer() pointer.Pointer { return e.s.eventPointer() }

// ErrAbort is returned by a Sink to stop a parse before the end of input.
// The Stream halts immediately and its Parse method reports nil.
var ErrAbort = errors.New("parse aborted")

// A Sink receives the events of a parse, one call per event. Returning nil
// continues the parse. Returning ErrAbort stops the parse immediately, and
// Parse reports success. Returning any other error stops the parse and
// Parse reports that error unchanged.
type Sink interface {
	Event(*Event) error
}

// A SinkFunc implements the Sink interface with a function.
type SinkFunc func(*Event) error

// Event satisfies the Sink interface.
func (f SinkFunc) Event(e *Event) error { return f(e) }
