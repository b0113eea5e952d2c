// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package chisel

import (
	"errors"
	"fmt"
)

// An ErrorKind classifies the cause of a parse failure.
type ErrorKind byte

// Constants defining the valid ErrorKind values.
const (
	EncodingError      ErrorKind = 1 + iota // input is not valid in the selected encoding
	LexicalError                            // input does not form a valid token
	SyntaxError                             // token sequence violates the JSON grammar
	DepthExceededError                      // container nesting exceeds the configured limit
	IOError                                 // the underlying reader failed
)

var kindLabel = [...]string{
	EncodingError:      "encoding error",
	LexicalError:       "lexical error",
	SyntaxError:        "syntax error",
	DepthExceededError: "depth exceeded",
	IOError:            "read error",
}

func (k ErrorKind) String() string {
	if k == 0 || int(k) >= len(kindLabel) {
		return "unknown error"
	}
	return kindLabel[k]
}

// An Error is the concrete type of all parse failures reported by this
// package. It records the class of the failure and the position at which
// parsing stopped.
type Error struct {
	Kind    ErrorKind
	Coords  Coords // position at which the failure was detected
	Message string

	err error // wrapped cause, if any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at %s: %s", e.Kind, e.Coords, e.Message)
}

func (e *Error) Unwrap() error { return e.err }

// errAt constructs an *Error of the given kind at the given position. A %w
// verb in format records the wrapped cause for errors.Is and errors.As.
func errAt(kind ErrorKind, at Coords, format string, args ...any) *Error {
	err := fmt.Errorf(format, args...)
	return &Error{Kind: kind, Coords: at, Message: err.Error(), err: errors.Unwrap(err)}
}
