// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package chisel

import (
	"bytes"
	"errors"
	"math"
	"strconv"
	"strings"
)

// A NumericMode selects how number lexemes resolve to values.
type NumericMode byte

// Constants defining the valid NumericMode values.
const (
	Mixed     NumericMode = iota // distinguish integer and float values (default)
	FloatOnly                    // resolve every number to a float
)

// A Numeric is the value of a JSON number: either a 64-bit signed integer
// or a 64-bit IEEE-754 floating point value. The zero value is the integer
// zero.
type Numeric struct {
	i     int64
	f     float64
	isFlt bool
}

// Int returns a Numeric holding the integer z.
func Int(z int64) Numeric { return Numeric{i: z} }

// Float returns a Numeric holding the floating point value f.
func Float(f float64) Numeric { return Numeric{f: f, isFlt: true} }

// IsInt reports whether n holds an integer value.
func (n Numeric) IsInt() bool { return !n.isFlt }

// Int64 returns n as an int64. A float value is truncated toward zero.
func (n Numeric) Int64() int64 {
	if n.isFlt {
		return int64(n.f)
	}
	return n.i
}

// Float64 returns n as a float64, widening an integer value.
func (n Numeric) Float64() float64 {
	if n.isFlt {
		return n.f
	}
	return float64(n.i)
}

// String renders n as JSON number text. The rendering preserves the
// integer/float distinction: a float always carries a decimal point or an
// exponent, so that re-parsing the text recovers an equal Numeric.
func (n Numeric) String() string {
	if !n.isFlt {
		return strconv.FormatInt(n.i, 10)
	}
	return formatFloat(n.f)
}

func formatFloat(f float64) string {
	// Infinities have no JSON notation of their own, but they are what an
	// out-of-range literal converts to, so render one back.
	if math.IsInf(f, 1) {
		return "1e999"
	} else if math.IsInf(f, -1) {
		return "-1e999"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

// ResolveNumber resolves the text of a number lexeme into a Numeric value.
// The text must already be validated against the JSON number grammar.
//
// In Mixed mode, a lexeme with no fraction or exponent resolves to an
// integer if its value fits in int64, widening to a float on overflow;
// every other lexeme resolves to a float. In FloatOnly mode every lexeme
// resolves to a float. Magnitudes beyond the float64 range convert to the
// corresponding infinity.
func ResolveNumber(text []byte, mode NumericMode) (Numeric, error) {
	if mode == FloatOnly || bytes.ContainsAny(text, ".eE") {
		return resolveFloat(string(text))
	}
	z, err := strconv.ParseInt(string(text), 10, 64)
	if err == nil {
		return Int(z), nil
	} else if errors.Is(err, strconv.ErrRange) {
		return resolveFloat(string(text))
	}
	return Numeric{}, err
}

func resolveFloat(s string) (Numeric, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return Numeric{}, err
	}
	return Float(v), nil
}
