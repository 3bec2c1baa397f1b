// Package segment splits a chat message into code, math, and text segments.
//
// The pipeline is Normalize, then Tokenize, then optionally WrapBareMath.
// Segments keep the order of the input; concatenating them with Join
// reproduces the normalized text for balanced input.
package segment

import "strings"

// Kind identifies what a segment holds.
type Kind int

const (
	KindText Kind = iota
	KindCode
	KindDisplayMath
	KindInlineMath
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindCode:
		return "code"
	case KindDisplayMath:
		return "display-math"
	case KindInlineMath:
		return "inline-math"
	}
	return "unknown"
}

// Segment is a contiguous run of input with one kind.
type Segment struct {
	Kind    Kind
	Content string
	// Lang is the info string of a fenced code block.
	Lang string
	// Fenced distinguishes ``` blocks from `inline` code.
	Fenced bool
}

// Join re-wraps segments in canonical delimiters.
func Join(segs []Segment) string {
	var b strings.Builder
	for _, s := range segs {
		switch s.Kind {
		case KindCode:
			if s.Fenced {
				b.WriteString("```")
				b.WriteString(s.Lang)
				b.WriteByte('\n')
				b.WriteString(s.Content)
				b.WriteString("\n```")
			} else {
				b.WriteByte('`')
				b.WriteString(s.Content)
				b.WriteByte('`')
			}
		case KindDisplayMath:
			b.WriteString("$$")
			b.WriteString(s.Content)
			b.WriteString("$$")
		case KindInlineMath:
			b.WriteByte('$')
			b.WriteString(s.Content)
			b.WriteByte('$')
		default:
			b.WriteString(s.Content)
		}
	}
	return b.String()
}
