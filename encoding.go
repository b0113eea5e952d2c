// Copyright (C) 2021 Michael J. Fromberger. All Rights Reserved.

package chisel

import (
	"errors"
	"strings"

	"github.com/jonnycoombes/chisel-json/internal/escape"

	"go4.org/mem"
)

// Quote encodes src as a JSON string value. The contents are escaped and
// double quotation marks are added.
func Quote(src string) string {
	buf := make([]byte, 0, len(src)+2)
	buf = append(buf, '"')
	buf = escape.Quote(buf, mem.S(src))
	buf = append(buf, '"')
	return string(buf)
}

// Unquote decodes a JSON string value. Double quotation marks are removed,
// and escape sequences are replaced with their unescaped equivalents.
// Surrogate pairs split across two \u escapes are combined; an unpaired
// surrogate decodes to the Unicode replacement rune. Unquote reports an
// error for a malformed or incomplete escape sequence.
func Unquote(src string) ([]byte, error) {
	if len(src) < 2 || !strings.HasPrefix(src, `"`) || !strings.HasSuffix(src, `"`) {
		return nil, errors.New("missing quotations")
	}
	return escape.Unquote(mem.S(src[1 : len(src)-1]))
}
