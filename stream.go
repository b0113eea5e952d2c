// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package chisel

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jonnycoombes/chisel-json/pointer"
)

// Stream is a stream parser that consumes input and delivers events to a
// Sink corresponding with the structure of the input: one top-level value,
// which the parser requires to be followed by the end of the input.
//
// The parser keeps its own stack of open containers rather than recursing,
// so deeply nested input cannot exhaust the call stack; nesting beyond the
// configured maximum is reported as a DepthExceededError. The parser
// ensures objects and arrays are correctly balanced, and that every member
// value delivered inside an object is preceded by exactly one ObjectKey
// event.
//
// A Stream consumes its input: Parse is called once per Stream.
type Stream struct {
	sc       *Scanner
	maxDepth int
	numerics NumericMode

	frames  []frame   // open containers, innermost last
	path    []pathSeg // document location, one segment per active member/element
	evt     Event     // event record, reused between deliveries
	started bool      // a token has been consumed
	done    bool      // the top-level value is complete
}

// NewStream constructs a new Stream that consumes UTF-8 input from r.
func NewStream(r io.Reader) *Stream { return NewStreamWithOptions(r, nil) }

// NewStreamWithOptions constructs a new Stream that consumes input from r
// as configured by opts. A nil opts selects the defaults described on
// Options.
func NewStreamWithOptions(r io.Reader, opts *Options) *Stream {
	return &Stream{
		sc:       NewScannerWithOptions(r, opts),
		maxDepth: opts.maxDepth(),
		numerics: opts.numerics(),
	}
}

// Parse parses the input stream and delivers events to sink until the
// input is exhausted, the sink stops the parse, or an error occurs.
//
// A parse failure is delivered to the sink as a final ParseFailure event
// and then returned as a *Error carrying its kind and position; no events
// follow it. If the sink returns ErrAbort the parse stops immediately, no
// further events are delivered, and Parse returns nil. Any other error
// returned by the sink stops the parse identically and is returned
// unchanged.
func (s *Stream) Parse(sink Sink) error {
	err := s.run(sink)
	if errors.Is(err, ErrAbort) {
		return nil
	}
	return err
}

type frameKind byte

const (
	inObject frameKind = iota
	inArray
)

// An await names the class of token a frame accepts next.
type await byte

const (
	awaitKeyOrEnd   await = iota // object: first member name, or "}"
	awaitKey                     // object: member name after ","
	awaitColon                   // object: ":" after a member name
	awaitValue                   // object or array: a value
	awaitValueOrEnd              // array: first element, or "]"
	awaitCommaOrEnd              // object or array: "," or the closer
)

type frame struct {
	kind frameKind
	aw   await
}

// A pathSeg is one step of the document location: an object member name or
// an array element index.
type pathSeg struct {
	name  string
	index int
	named bool
}

func (s *Stream) run(sink Sink) error {
	if err := s.emit(sink, Event{kind: StartOfInput, span: s.sc.Span()}); err != nil {
		return err
	}
	for {
		err := s.sc.Next()
		if err == io.EOF {
			if s.done {
				return s.emit(sink, Event{kind: EndOfInput, span: s.sc.Span()})
			} else if !s.started {
				return s.failParse(sink, errAt(SyntaxError, s.sc.Span().End, "empty input"))
			}
			return s.failParse(sink, errAt(SyntaxError, s.sc.Span().End, "unexpected end of input"))
		} else if err != nil {
			return s.failParse(sink, err)
		}
		s.started = true

		if s.done {
			// The top-level value is complete; nothing may follow it.
			return s.failParse(sink, errAt(SyntaxError, s.sc.Span().Start,
				"unexpected %v after value", s.sc.Token()))
		}
		if err := s.step(sink); err != nil {
			return err
		}
	}
}

// step consumes the current token and advances the state machine.
func (s *Stream) step(sink Sink) error {
	tok := s.sc.Token()
	span := s.sc.Span()

	if n := len(s.frames); n > 0 {
		top := &s.frames[n-1]
		switch top.aw {
		case awaitKeyOrEnd, awaitKey:
			if tok == String {
				key := string(s.sc.Unescape())
				top.aw = awaitColon
				s.path = append(s.path, pathSeg{name: key, named: true})
				return s.emit(sink, Event{kind: ObjectKey, span: span, text: key})
			} else if tok == RBrace && top.aw == awaitKeyOrEnd {
				return s.closeObject(sink, span)
			} else if top.aw == awaitKeyOrEnd {
				return s.failParse(sink, s.expected(span, tok, String, RBrace))
			}
			return s.failParse(sink, s.expected(span, tok, String))

		case awaitColon:
			if tok != Colon {
				return s.failParse(sink, s.expected(span, tok, Colon))
			}
			top.aw = awaitValue
			return nil

		case awaitCommaOrEnd:
			closer := RBrace
			if top.kind == inArray {
				closer = RSquare
			}
			switch tok {
			case Comma:
				if top.kind == inObject {
					top.aw = awaitKey
				} else {
					top.aw = awaitValue
					s.path[len(s.path)-1].index++
				}
				return nil
			case closer:
				if top.kind == inObject {
					return s.closeObject(sink, span)
				}
				return s.closeArray(sink, span)
			}
			return s.failParse(sink, s.expected(span, tok, Comma, closer))

		case awaitValueOrEnd:
			if tok == RSquare {
				return s.closeArray(sink, span)
			}
		}
		// awaitValue, or awaitValueOrEnd on something other than "]".
		return s.value(sink, tok, span)
	}

	// Top level: the root value.
	return s.value(sink, tok, span)
}

// value consumes a token in value position.
func (s *Stream) value(sink Sink, tok Token, span Span) error {
	switch tok {
	case LBrace:
		return s.open(sink, inObject, span)
	case LSquare:
		return s.open(sink, inArray, span)
	case String:
		text := string(s.sc.Unescape())
		if err := s.emit(sink, Event{kind: StringValue, span: span, text: text}); err != nil {
			return err
		}
	case Integer, Number:
		num, err := ResolveNumber(s.sc.Text(), s.numerics)
		if err != nil {
			return s.failParse(sink, errAt(LexicalError, span.Start,
				"invalid number %q: %w", s.sc.Text(), err))
		}
		if err := s.emit(sink, Event{kind: NumberValue, span: span, num: num}); err != nil {
			return err
		}
	case True, False:
		if err := s.emit(sink, Event{kind: BoolValue, span: span, b: tok == True}); err != nil {
			return err
		}
	case Null:
		if err := s.emit(sink, Event{kind: NullValue, span: span}); err != nil {
			return err
		}
	default:
		return s.failParse(sink, errAt(SyntaxError, span.Start, "unexpected %v", tok))
	}
	s.afterValue()
	return nil
}

// open begins a container value, pushing a frame for it.
func (s *Stream) open(sink Sink, kind frameKind, span Span) error {
	if len(s.frames) >= s.maxDepth {
		return s.failParse(sink, errAt(DepthExceededError, span.Start,
			"nesting depth %d exceeds limit %d", len(s.frames)+1, s.maxDepth))
	}
	evt := Event{kind: StartObject, span: span}
	fr := frame{kind: inObject, aw: awaitKeyOrEnd}
	if kind == inArray {
		evt.kind = StartArray
		fr = frame{kind: inArray, aw: awaitValueOrEnd}
	}
	if err := s.emit(sink, evt); err != nil {
		return err
	}
	s.frames = append(s.frames, fr)
	if kind == inArray {
		s.path = append(s.path, pathSeg{})
	}
	return nil
}

func (s *Stream) closeObject(sink Sink, span Span) error {
	s.frames = s.frames[:len(s.frames)-1]
	if err := s.emit(sink, Event{kind: EndObject, span: span}); err != nil {
		return err
	}
	s.afterValue()
	return nil
}

func (s *Stream) closeArray(sink Sink, span Span) error {
	s.frames = s.frames[:len(s.frames)-1]
	s.path = s.path[:len(s.path)-1] // drop the element index
	if err := s.emit(sink, Event{kind: EndArray, span: span}); err != nil {
		return err
	}
	s.afterValue()
	return nil
}

// afterValue records that a complete value was consumed at the current
// position: the enclosing frame advances to its comma-or-end state and an
// enclosing object member's path segment is released. With no enclosing
// frame the top-level value is complete.
func (s *Stream) afterValue() {
	if len(s.frames) == 0 {
		s.done = true
		return
	}
	top := &s.frames[len(s.frames)-1]
	if top.kind == inObject {
		s.path = s.path[:len(s.path)-1] // drop the member name
	}
	top.aw = awaitCommaOrEnd
}

// emit delivers evt to sink. The Stream's one event record is reused
// between deliveries.
func (s *Stream) emit(sink Sink, evt Event) error {
	evt.s = s
	s.evt = evt
	return sink.Event(&s.evt)
}

// failParse reports err to the sink as a final ParseFailure event and
// returns it. The sink's result is ignored: the parse is already over.
func (s *Stream) failParse(sink Sink, err error) error {
	s.emit(sink, Event{kind: ParseFailure, span: s.sc.Span(), err: err})
	return err
}

func (s *Stream) expected(span Span, got Token, want ...Token) *Error {
	return errAt(SyntaxError, span.Start, "%s", tokLabel(want, got))
}

// eventPointer renders the current document location as a JSON Pointer.
func (s *Stream) eventPointer() pointer.Pointer {
	if len(s.path) == 0 {
		return nil
	}
	p := make(pointer.Pointer, len(s.path))
	for i, seg := range s.path {
		if seg.named {
			p[i] = seg.name
		} else {
			p[i] = strconv.Itoa(seg.index)
		}
	}
	return p
}

// tokLabel makes a human-readable summary string for the given token types.
func tokLabel(tokens []Token, got any) string {
	if len(tokens) == 0 {
		return fmt.Sprint(got)
	}
	var exp string
	if len(tokens) == 1 {
		exp = tokens[0].String()
	} else {
		last := len(tokens) - 1
		ss := make([]string, len(tokens)-1)
		for i, tok := range tokens[:last] {
			ss[i] = tok.String()
		}
		exp = strings.Join(ss, ", ") + " or " + tokens[last].String()
	}
	return fmt.Sprintf("expected %s, got %v", exp, got)
}
