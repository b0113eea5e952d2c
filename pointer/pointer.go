// Package pointer implements JSON Pointer values as described by RFC 6901.
//
// A pointer is a sequence of reference tokens separated by "/" characters.
// Within a token, "~" and "/" are escaped as "~0" and "~1" respectively.
// The empty pointer refers to the whole document:
//
//	""           the document itself
//	"/a/b"       member "b" of member "a" of the root object
//	"/a~1b"      member "a/b" of the root object
//	"/2"         the third element of the root array
package pointer

import (
	"fmt"
	"strconv"
	"strings"
)

// A Pointer is a parsed JSON Pointer: a sequence of decoded reference
// tokens, outermost first. An empty Pointer refers to the whole document.
type Pointer []string

// Parse parses s in RFC 6901 notation. The empty string is the root
// pointer; any other pointer must begin with "/".
func Parse(s string) (Pointer, error) {
	if s == "" {
		return nil, nil
	}
	if !strings.HasPrefix(s, "/") {
		return nil, fmt.Errorf("pointer %q does not begin with %q", s, "/")
	}
	parts := strings.Split(s[1:], "/")
	p := make(Pointer, len(parts))
	for i, part := range parts {
		tok, err := unescapeToken(part)
		if err != nil {
			return nil, err
		}
		p[i] = tok
	}
	return p, nil
}

// String renders p in RFC 6901 notation.
func (p Pointer) String() string {
	if len(p) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, tok := range p {
		sb.WriteByte('/')
		sb.WriteString(escapeToken(tok))
	}
	return sb.String()
}

// IsRoot reports whether p refers to the whole document.
func (p Pointer) IsRoot() bool { return len(p) == 0 }

// Push returns a copy of p extended with the object member name.
func (p Pointer) Push(name string) Pointer {
	return append(p[:len(p):len(p)], name)
}

// PushIndex returns a copy of p extended with the array index i.
func (p Pointer) PushIndex(i int) Pointer { return p.Push(strconv.Itoa(i)) }

// Pop returns p with its last reference token removed. Popping the root
// pointer returns the root pointer.
func (p Pointer) Pop() Pointer {
	if len(p) == 0 {
		return p
	}
	return p[:len(p)-1]
}

func escapeToken(s string) string {
	if !strings.ContainsAny(s, "~/") {
		return s
	}
	s = strings.ReplaceAll(s, "~", "~0")
	return strings.ReplaceAll(s, "/", "~1")
}

func unescapeToken(s string) (string, error) {
	if !strings.Contains(s, "~") {
		return s, nil
	}
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '~' {
			sb.WriteByte(s[i])
			continue
		}
		i++
		if i == len(s) {
			return "", fmt.Errorf("incomplete escape at end of %q", s)
		}
		switch s[i] {
		case '0':
			sb.WriteByte('~')
		case '1':
			sb.WriteByte('/')
		default:
			return "", fmt.Errorf("invalid escape %q", s[i-1:i+1])
		}
	}
	return sb.String(), nil
}
