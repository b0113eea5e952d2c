package chisel

import "fmt"

// A Coords describes a single position in source input.
type Coords struct {
	Offset int // byte offset in the input, 0-based
	Line   int // line number, 1-based
	Column int // byte offset of the position in its line, 0-based
}

func (c Coords) String() string { return fmt.Sprintf("%d:%d", c.Line, c.Column) }

// A Span describes a contiguous span of source input, from the position of
// its first byte to the position one past its last byte.
type Span struct {
	Start Coords // position of the first byte
	End   Coords // position one past the last byte; End.Offset >= Start.Offset
}

func (s Span) String() string {
	if s.Start.Line == s.End.Line {
		return fmt.Sprintf("%d:%d-%d", s.Start.Line, s.Start.Column, s.End.Column)
	}
	return fmt.Sprintf("%s-%s", s.Start, s.End)
}
