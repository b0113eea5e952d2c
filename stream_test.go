// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package chisel_test

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	chisel "github.com/jonnycoombes/chisel-json"
	"github.com/jonnycoombes/chisel-json/decoder"

	"github.com/google/go-cmp/cmp"
)

func TestStream(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		// Scalar roots.
		{`true`, `
StartOfInput
BoolValue "" true
EndOfInput`},
		{`null`, `
StartOfInput
NullValue ""
EndOfInput`},
		{`0`, `
StartOfInput
NumberValue "" 0
EndOfInput`},
		{`-6.32`, `
StartOfInput
NumberValue "" -6.32
EndOfInput`},
		{`0.1e-2`, `
StartOfInput
NumberValue "" 0.001
EndOfInput`},
		{`9223372036854775808`, `
StartOfInput
NumberValue "" 9.223372036854776e+18
EndOfInput`},
		{`""`, `
StartOfInput
StringValue "" ""
EndOfInput`},
		{`"a\tb"`, `
StartOfInput
StringValue "" "a\tb"
EndOfInput`},
		{`"a b"`, `
StartOfInput
StringValue "" "a b"
EndOfInput`},
		{`"𝄞"`, `
StartOfInput
StringValue "" "𝄞"
EndOfInput`},

		// Containers.
		{`{}`, `
StartOfInput
StartObject ""
EndObject ""
EndOfInput`},
		{`[]`, `
StartOfInput
StartArray ""
EndArray ""
EndOfInput`},
		{"\n{\n  \"a\" : 1\n}\n", `
StartOfInput
StartObject ""
ObjectKey "/a" "a"
NumberValue "/a" 1
EndObject ""
EndOfInput`},
		{`{"a": 15, "b": [true, null], "c": {"d": "x"}}`, `
StartOfInput
StartObject ""
ObjectKey "/a" "a"
NumberValue "/a" 15
ObjectKey "/b" "b"
StartArray "/b"
BoolValue "/b/0" true
NullValue "/b/1"
EndArray "/b"
ObjectKey "/c" "c"
StartObject "/c"
ObjectKey "/c/d" "d"
StringValue "/c/d" "x"
EndObject "/c"
EndObject ""
EndOfInput`},
		{`[[1, 2], [], 3]`, `
StartOfInput
StartArray ""
StartArray "/0"
NumberValue "/0/0" 1
NumberValue "/0/1" 2
EndArray "/0"
StartArray "/1"
EndArray "/1"
NumberValue "/2" 3
EndArray ""
EndOfInput`},

		// Duplicate member names pass through unmerged.
		{`{"a": 1, "a": 2}`, `
StartOfInput
StartObject ""
ObjectKey "/a" "a"
NumberValue "/a" 1
ObjectKey "/a" "a"
NumberValue "/a" 2
EndObject ""
EndOfInput`},

		// Member names with pointer metacharacters are escaped in pointers.
		{`{"a/b": 1, "m~n": 2, "": 3}`, `
StartOfInput
StartObject ""
ObjectKey "/a~1b" "a/b"
NumberValue "/a~1b" 1
ObjectKey "/m~0n" "m~n"
NumberValue "/m~0n" 2
ObjectKey "/" ""
NumberValue "/" 3
EndObject ""
EndOfInput`},
	}

	for _, test := range tests {
		st := chisel.NewStream(strings.NewReader(test.input))
		th := new(testHandler)
		if err := st.Parse(th); err != nil {
			t.Errorf("Parse %#q failed: %v", test.input, err)
		}

		if diff := diffStrings(test.want, th.output()); diff != "" {
			t.Errorf("Input: %#q\nOutput: (-want, +got)\n%s", test.input, diff)
		}
	}
}

func TestStreamErrors(t *testing.T) {
	tests := []struct {
		input string
		want  string
		estr  string
	}{
		// No value at all.
		{``, `
StartOfInput
ParseFailure syntax error at 1:0: empty input`,
			`syntax error at 1:0: empty input`},
		{`   `, `
StartOfInput
ParseFailure syntax error at 1:3: empty input`,
			`syntax error at 1:3: empty input`},

		// Various kinds of unbalanced object bits.
		{`{`, `
StartOfInput
StartObject ""
ParseFailure syntax error at 1:1: unexpected end of input`,
			`syntax error at 1:1: unexpected end of input`},
		{`}`, `
StartOfInput
ParseFailure syntax error at 1:0: unexpected "}"`,
			`syntax error at 1:0: unexpected "}"`},
		{`{false:1}`, `
StartOfInput
StartObject ""
ParseFailure syntax error at 1:1: expected string or "}", got false`,
			`syntax error at 1:1: expected string or "}", got false`},
		{`{"true" 1}`, `
StartOfInput
StartObject ""
ObjectKey "/true" "true"
ParseFailure syntax error at 1:8: expected ":", got integer`,
			`syntax error at 1:8: expected ":", got integer`},
		{`{"true":}`, `
StartOfInput
StartObject ""
ObjectKey "/true" "true"
ParseFailure syntax error at 1:8: unexpected "}"`,
			`syntax error at 1:8: unexpected "}"`},
		{`{"true":1,`, `
StartOfInput
StartObject ""
ObjectKey "/true" "true"
NumberValue "/true" 1
ParseFailure syntax error at 1:10: unexpected end of input`,
			`syntax error at 1:10: unexpected end of input`},
		{`{"a":1 "b":2}`, `
StartOfInput
StartObject ""
ObjectKey "/a" "a"
NumberValue "/a" 1
ParseFailure syntax error at 1:7: expected "," or "}", got string`,
			`syntax error at 1:7: expected "," or "}", got string`},

		// Unbalanced array bits.
		{`[`, `
StartOfInput
StartArray ""
ParseFailure syntax error at 1:1: unexpected end of input`,
			`syntax error at 1:1: unexpected end of input`},
		{`]`, `
StartOfInput
ParseFailure syntax error at 1:0: unexpected "]"`,
			`syntax error at 1:0: unexpected "]"`},
		{`[15,`, `
StartOfInput
StartArray ""
NumberValue "/0" 15
ParseFailure syntax error at 1:4: unexpected end of input`,
			`syntax error at 1:4: unexpected end of input`},
		{`[15,]`, `
StartOfInput
StartArray ""
NumberValue "/0" 15
ParseFailure syntax error at 1:4: unexpected "]"`,
			`syntax error at 1:4: unexpected "]"`},
		{`[15 16]`, `
StartOfInput
StartArray ""
NumberValue "/0" 15
ParseFailure syntax error at 1:4: expected "," or "]", got integer`,
			`syntax error at 1:4: expected "," or "]", got integer`},

		// Material after the top-level value.
		{`1 2.0`, `
StartOfInput
NumberValue "" 1
ParseFailure syntax error at 1:2: unexpected number after value`,
			`syntax error at 1:2: unexpected number after value`},
		{`true false`, `
StartOfInput
BoolValue "" true
ParseFailure syntax error at 1:5: unexpected false after value`,
			`syntax error at 1:5: unexpected false after value`},
		{`{} []`, `
StartOfInput
StartObject ""
EndObject ""
ParseFailure syntax error at 1:3: unexpected "[" after value`,
			`syntax error at 1:3: unexpected "[" after value`},

		// Lexical and encoding failures inside a parse.
		{`01`, `
StartOfInput
ParseFailure lexical error at 1:2: extra leading zeroes`,
			`lexical error at 1:2: extra leading zeroes`},
		{`"what did you`, `
StartOfInput
ParseFailure lexical error at 1:13: unexpected end of input`,
			`lexical error at 1:13: unexpected end of input`},
		{"[true, \xff]", `
StartOfInput
StartArray ""
BoolValue "/0" true
ParseFailure encoding error at 1:7: invalid UTF-8 byte sequence at offset 7`,
			`encoding error at 1:7: invalid UTF-8 byte sequence at offset 7`},
	}

	for _, test := range tests {
		st := chisel.NewStream(strings.NewReader(test.input))
		th := new(testHandler)
		err := st.Parse(th)
		if err == nil {
			t.Errorf("Parse %#q did not report an error", test.input)
			continue
		}

		if diff := diffStrings(test.want, th.output()); diff != "" {
			t.Errorf("Input: %#q\nOutput: (-want, +got)\n%s", test.input, diff)
		}
		if diff := diffStrings(test.estr, err.Error()); diff != "" {
			t.Errorf("Input: %#q\nError: (-want, +got)\n%s", test.input, diff)
		}

		var perr *chisel.Error
		if !errors.As(err, &perr) {
			t.Errorf("Input: %#q: error has type %T, want *chisel.Error", test.input, err)
		}
	}
}

func TestStreamAbort(t *testing.T) {
	// The sink aborts at the second array element, so the parser delivers
	// StartOfInput, StartArray, and two values, then stops without an
	// EndOfInput or a ParseFailure.
	var calls int
	err := chisel.NewStream(strings.NewReader(`[1, 2, 3]`)).Parse(chisel.SinkFunc(func(e *chisel.Event) error {
		calls++
		if e.Kind() == chisel.NumberValue && e.Num().Int64() == 2 {
			return chisel.ErrAbort
		}
		if e.Kind() == chisel.EndOfInput || e.Kind() == chisel.ParseFailure {
			t.Errorf("Unexpected %v event after abort", e.Kind())
		}
		return nil
	}))
	if err != nil {
		t.Errorf("Parse: got error %v, want nil", err)
	}
	if calls != 4 {
		t.Errorf("Sink called %d times, want 4", calls)
	}
}

func TestStreamSinkError(t *testing.T) {
	sentinel := errors.New("no key for me")

	var calls int
	err := chisel.NewStream(strings.NewReader(`{"a": 1}`)).Parse(chisel.SinkFunc(func(e *chisel.Event) error {
		calls++
		if e.Kind() == chisel.ObjectKey {
			return sentinel
		}
		return nil
	}))
	if err != sentinel {
		t.Errorf("Parse: got error %v, want %v", err, sentinel)
	}
	if calls != 3 {
		t.Errorf("Sink called %d times, want 3", calls)
	}
}

func TestStreamSpans(t *testing.T) {
	const input = `{"a": -1.5e3}`
	const want = `
StartOfInput 1:0-0
StartObject 1:0-1
ObjectKey 1:1-4
NumberValue 1:6-12
EndObject 1:12-13
EndOfInput 1:13-13`

	th := new(testHandler)
	err := chisel.NewStream(strings.NewReader(input)).Parse(chisel.SinkFunc(func(e *chisel.Event) error {
		th.pr("%v %v", titleKind(e.Kind()), e.Span())
		return nil
	}))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if diff := diffStrings(want, th.output()); diff != "" {
		t.Errorf("Input: %#q\nOutput: (-want, +got)\n%s", input, diff)
	}
}

func TestStreamOptions(t *testing.T) {
	t.Run("FloatOnly", func(t *testing.T) {
		const input = `[1, 2.5, -3]`
		const want = `
StartOfInput
StartArray ""
NumberValue "/0" 1.0
NumberValue "/1" 2.5
NumberValue "/2" -3.0
EndArray ""
EndOfInput`

		st := chisel.NewStreamWithOptions(strings.NewReader(input), &chisel.Options{
			Numerics: chisel.FloatOnly,
		})
		th := new(testHandler)
		if err := st.Parse(th); err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if diff := diffStrings(want, th.output()); diff != "" {
			t.Errorf("Input: %#q\nOutput: (-want, +got)\n%s", input, diff)
		}
	})

	t.Run("MaxDepthExceeded", func(t *testing.T) {
		const input = `[[[0]]]`
		const want = `
StartOfInput
StartArray ""
StartArray "/0"
ParseFailure depth exceeded at 1:2: nesting depth 3 exceeds limit 2`
		const estr = `depth exceeded at 1:2: nesting depth 3 exceeds limit 2`

		st := chisel.NewStreamWithOptions(strings.NewReader(input), &chisel.Options{MaxDepth: 2})
		th := new(testHandler)
		err := st.Parse(th)
		if err == nil {
			t.Fatal("Parse did not report an error")
		}
		if diff := diffStrings(want, th.output()); diff != "" {
			t.Errorf("Input: %#q\nOutput: (-want, +got)\n%s", input, diff)
		}
		if diff := diffStrings(estr, err.Error()); diff != "" {
			t.Errorf("Input: %#q\nError: (-want, +got)\n%s", input, diff)
		}
	})

	t.Run("MaxDepthAtLimit", func(t *testing.T) {
		const input = `[[0]]`
		const want = `
StartOfInput
StartArray ""
StartArray "/0"
NumberValue "/0/0" 0
EndArray "/0"
EndArray ""
EndOfInput`

		st := chisel.NewStreamWithOptions(strings.NewReader(input), &chisel.Options{MaxDepth: 2})
		th := new(testHandler)
		if err := st.Parse(th); err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if diff := diffStrings(want, th.output()); diff != "" {
			t.Errorf("Input: %#q\nOutput: (-want, +got)\n%s", input, diff)
		}
	})

	t.Run("UTF16LE", func(t *testing.T) {
		const input = "\x22\x00h\x00i\x00\x22\x00"
		const want = `
StartOfInput
StringValue "" "hi"
EndOfInput`

		st := chisel.NewStreamWithOptions(strings.NewReader(input), &chisel.Options{
			Encoding: decoder.UTF16LE,
		})
		th := new(testHandler)
		if err := st.Parse(th); err != nil {
			t.Fatalf("Parse failed: %v", err)
		}
		if diff := diffStrings(want, th.output()); diff != "" {
			t.Errorf("Input: %#q\nOutput: (-want, +got)\n%s", input, diff)
		}
	})
}

func diffStrings(want, got string) string {
	return cmp.Diff(strings.Split(strings.TrimSpace(want), "\n"),
		strings.Split(strings.TrimSpace(got), "\n"))
}

// titleKind renders an event kind as a compact label for trace output.
func titleKind(k chisel.EventKind) string {
	switch k {
	case chisel.StartOfInput:
		return "StartOfInput"
	case chisel.EndOfInput:
		return "EndOfInput"
	case chisel.StartObject:
		return "StartObject"
	case chisel.EndObject:
		return "EndObject"
	case chisel.StartArray:
		return "StartArray"
	case chisel.EndArray:
		return "EndArray"
	case chisel.ObjectKey:
		return "ObjectKey"
	case chisel.StringValue:
		return "StringValue"
	case chisel.NumberValue:
		return "NumberValue"
	case chisel.BoolValue:
		return "BoolValue"
	case chisel.NullValue:
		return "NullValue"
	case chisel.ParseFailure:
		return "ParseFailure"
	}
	return fmt.Sprintf("Unknown(%d)", k)
}

// A testHandler records one line per event so tests can compare a whole
// parse against a readable transcript.
type testHandler struct {
	buf bytes.Buffer
}

func (t *testHandler) pr(msg string, args ...any) {
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	fmt.Fprintf(&t.buf, msg, args...)
}

func (t *testHandler) output() string { return t.buf.String() }

func (t *testHandler) Event(e *chisel.Event) error {
	switch e.Kind() {
	case chisel.StartOfInput, chisel.EndOfInput:
		t.pr("%s", titleKind(e.Kind()))
	case chisel.ObjectKey, chisel.StringValue:
		t.pr("%s %q %q", titleKind(e.Kind()), e.Pointer(), e.Text())
	case chisel.NumberValue:
		t.pr("%s %q %v", titleKind(e.Kind()), e.Pointer(), e.Num())
	case chisel.BoolValue:
		t.pr("%s %q %v", titleKind(e.Kind()), e.Pointer(), e.Bool())
	case chisel.NullValue:
		t.pr("%s %q", titleKind(e.Kind()), e.Pointer())
	case chisel.ParseFailure:
		t.pr("ParseFailure %v", e.Err())
	default:
		t.pr("%s %q", titleKind(e.Kind()), e.Pointer())
	}
	return nil
}
