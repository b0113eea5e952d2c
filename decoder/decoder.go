// Copyright (C) 2023 Michael J. Fromberger. All Rights Reserved.

// Package decoder converts a stream of raw bytes into a stream of Unicode
// code points under a selected character encoding.
package decoder

import (
	"bufio"
	"fmt"
	"io"
	"unicode/utf16"
	"unicode/utf8"
)

// An Encoding selects how input bytes are interpreted as code points.
// The zero value is UTF8.
type Encoding byte

// Constants defining the supported encodings.
const (
	UTF8    Encoding = iota // UTF-8 (the default)
	ASCII                   // 7-bit ASCII
	UTF16LE                 // UTF-16, little-endian
	UTF16BE                 // UTF-16, big-endian
)

var encString = [...]string{UTF8: "UTF-8", ASCII: "ASCII", UTF16LE: "UTF-16LE", UTF16BE: "UTF-16BE"}

func (e Encoding) String() string {
	if int(e) >= len(encString) {
		return "unknown encoding"
	}
	return encString[e]
}

// An InvalidByteError reports input that is not valid under the encoding a
// Decoder was constructed with.
type InvalidByteError struct {
	Offset   int // byte offset of the start of the invalid sequence
	Encoding Encoding
}

func (e *InvalidByteError) Error() string {
	return fmt.Sprintf("invalid %s byte sequence at offset %d", e.Encoding, e.Offset)
}

// A Decoder reads a sequence of Unicode code points from a byte source.
// The sequence is lazy and not restartable: once Next reports an error,
// all subsequent calls report the same error.
type Decoder struct {
	r   *bufio.Reader
	enc Encoding
	err error // sticky failure

	off int // byte offset of the next unread code point

	// One code point of pushback for Unread.
	prev   rune
	prevN  int
	unread bool
}

// New constructs a decoder that reads from r under the given encoding.
func New(r io.Reader, enc Encoding) *Decoder {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	return &Decoder{r: br, enc: enc}
}

// Encoding reports the encoding the decoder was constructed with.
func (d *Decoder) Encoding() Encoding { return d.enc }

// Offset reports the byte offset of the next unread code point.
func (d *Decoder) Offset() int { return d.off }

// Next returns the next code point of the input and its width in source
// bytes. At the end of input Next reports io.EOF. Input that is not valid
// under the decoder's encoding is reported as an *InvalidByteError whose
// offset marks the start of the invalid sequence.
func (d *Decoder) Next() (rune, int, error) {
	if d.err != nil {
		return 0, 0, d.err
	}
	if d.unread {
		d.unread = false
		d.off += d.prevN
		return d.prev, d.prevN, nil
	}

	var ch rune
	var nb int
	var err error
	switch d.enc {
	case ASCII:
		ch, nb, err = d.nextASCII()
	case UTF16LE, UTF16BE:
		ch, nb, err = d.nextUTF16()
	default:
		ch, nb, err = d.nextUTF8()
	}
	if err != nil {
		d.err = err
		return 0, 0, err
	}
	d.prev, d.prevN = ch, nb
	d.off += nb
	return ch, nb, nil
}

// Unread makes the code point most recently returned by Next available
// again. Only one code point of pushback is tracked, and only following a
// successful call of Next.
func (d *Decoder) Unread() {
	if d.prevN > 0 && !d.unread {
		d.unread = true
		d.off -= d.prevN
	}
}

func (d *Decoder) nextUTF8() (rune, int, error) {
	ch, nb, err := d.r.ReadRune()
	if err != nil {
		return 0, 0, err
	} else if ch == utf8.RuneError && nb == 1 {
		// ReadRune substitutes the replacement rune for a single invalid
		// byte; a real U+FFFD in the input decodes with width 3.
		return 0, 0, &InvalidByteError{Offset: d.off, Encoding: d.enc}
	}
	return ch, nb, nil
}

func (d *Decoder) nextASCII() (rune, int, error) {
	b, err := d.r.ReadByte()
	if err != nil {
		return 0, 0, err
	} else if b >= 0x80 {
		return 0, 0, &InvalidByteError{Offset: d.off, Encoding: d.enc}
	}
	return rune(b), 1, nil
}

func (d *Decoder) nextUTF16() (rune, int, error) {
	u1, err := d.readUnit()
	if err != nil {
		return 0, 0, err
	}
	if u1 < 0xD800 || u1 >= 0xE000 {
		return rune(u1), 2, nil
	}
	if u1 >= 0xDC00 {
		// A low surrogate with no preceding high surrogate.
		return 0, 0, &InvalidByteError{Offset: d.off, Encoding: d.enc}
	}
	u2, err := d.readUnit()
	if err == io.EOF {
		return 0, 0, &InvalidByteError{Offset: d.off, Encoding: d.enc}
	} else if err != nil {
		return 0, 0, err
	} else if u2 < 0xDC00 || u2 >= 0xE000 {
		return 0, 0, &InvalidByteError{Offset: d.off, Encoding: d.enc}
	}
	return utf16.DecodeRune(rune(u1), rune(u2)), 4, nil
}

// readUnit reads one 16-bit code unit in the decoder's byte order. A single
// trailing byte is reported as an invalid sequence, not as end of input.
func (d *Decoder) readUnit() (uint16, error) {
	b0, err := d.r.ReadByte()
	if err != nil {
		return 0, err
	}
	b1, err := d.r.ReadByte()
	if err == io.EOF {
		return 0, &InvalidByteError{Offset: d.off, Encoding: d.enc}
	} else if err != nil {
		return 0, err
	}
	if d.enc == UTF16LE {
		return uint16(b0) | uint16(b1)<<8, nil
	}
	return uint16(b0)<<8 | uint16(b1), nil
}
