// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

// Package chisel implements a JSON scanner and an event-driven stream
// parser for JSON.
//
// # Scanning
//
// The Scanner type implements a lexical scanner for JSON. Construct a
// scanner from an io.Reader and call its Next method to iterate over the
// stream. Next advances to the next input token and returns nil, or
// reports an error:
//
//	s := chisel.NewScanner(input)
//	for s.Next() == nil {
//	   log.Printf("Next token: %v at %v", s.Token(), s.Span())
//	}
//
// Next returns io.EOF when the input has been fully consumed. Any other
// error indicates a decoding, lexical, or I/O error in the input, and is
// of concrete type *chisel.Error.
//
//	if s.Err() != io.EOF {
//	   log.Fatalf("Scanning failed: %v", s.Err())
//	}
//
// # Streaming
//
// The Stream type implements an event-driven stream parser for JSON. The
// parser consumes one top-level value and delivers an Event to a Sink for
// each structural element of the input as it is recognized. In case of
// error, a final ParseFailure event is delivered and an error of concrete
// type *chisel.Error is returned.
//
// Construct a Stream from an io.Reader and call its Parse method. Parse
// returns nil if the input was fully processed without error:
//
//	s := chisel.NewStream(input)
//	err := s.Parse(chisel.SinkFunc(func(evt *chisel.Event) error {
//	   log.Printf("Event: %v at %v", evt.Kind(), evt.Pointer())
//	   return nil
//	}))
//	if err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//
// A Sink stops the parse early by returning ErrAbort, which Parse reports
// as success. Any other error from the sink stops the parse and is
// returned unchanged.
//
// # Events
//
// The kinds of event delivered to a Sink correspond to the syntax of JSON
// values:
//
//	JSON type  | Event kinds               | Description
//	---------- | ------------------------- | ---------------------------------
//	object     | StartObject, EndObject    | { ... }
//	array      | StartArray, EndArray      | [ ... ]
//	member     | ObjectKey                 | "key" before its value
//	value      | StringValue, NumberValue, | scalar values
//	           | BoolValue, NullValue      |
//	--         | StartOfInput, EndOfInput, | parse lifecycle
//	           | ParseFailure              |
//
// Every event carries the source span it was recognized at and the JSON
// Pointer (RFC 6901) of its location in the document. The Event passed to
// a sink is only valid for the duration of that call; the sink must copy
// any data it needs to retain beyond the lifetime of the call.
//
// The parser ensures that Start and End events are correctly paired and
// that each object member value is preceded by its ObjectKey, or that an
// error is reported.
//
// # Trees
//
// The ast subpackage assembles complete syntax trees from the event
// stream. Its Builder type is a Sink, and its Parse function wires a
// Builder to a Stream:
//
//	v, err := ast.Parse(input)
//	if err != nil {
//	   log.Fatalf("Parse failed: %v", err)
//	}
//	fmt.Println(v.JSON())
//
// # Options
//
// The constructors ending in WithOptions accept an Options value that
// selects the input encoding, the maximum nesting depth, and the numeric
// resolution mode. A nil Options selects UTF-8, DefaultMaxDepth, and
// mixed integer and floating-point numbers.
package chisel
