// Package richtext splits one line of markdown into flat styled spans.
package richtext

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Span is a run of text with uniform style. Spans never nest.
type Span struct {
	Text   string
	Bold   bool
	Italic bool
	// Code and Math mark spans that came from inline code or inline math.
	Code bool
	Math bool
}

// Style returns the font style letters for the span: "", "B", "I" or "BI".
func (s Span) Style() string {
	switch {
	case s.Bold && s.Italic:
		return "BI"
	case s.Bold:
		return "B"
	case s.Italic:
		return "I"
	}
	return ""
}

// Parse finds **bold**, __bold__, *italic* and _italic_ runs, leftmost
// first. Matches never overlap and markers inside a match are kept as
// text. A run of three or more identical markers is literal, so
// ***text*** stays as typed. Backslash escapes \*, \_ and \$ produce the
// bare character.
func Parse(line string) []Span {
	var (
		spans []Span
		plain strings.Builder
	)
	flush := func() {
		if plain.Len() > 0 {
			spans = append(spans, Span{Text: plain.String()})
			plain.Reset()
		}
	}

	for i := 0; i < len(line); {
		c := line[i]
		if c == '\\' && i+1 < len(line) && isEscapable(line[i+1]) {
			plain.WriteByte(line[i+1])
			i += 2
			continue
		}
		if c != '*' && c != '_' {
			plain.WriteByte(c)
			i++
			continue
		}

		n := markerRun(line, i)
		switch {
		case n == 2:
			if end, ok := closeAt(line, i, 2); ok {
				flush()
				spans = append(spans, Span{Text: unescape(line[i+2 : end]), Bold: true})
				i = end + 2
				continue
			}
		case n == 1:
			if end, ok := closeAt(line, i, 1); ok {
				flush()
				spans = append(spans, Span{Text: unescape(line[i+1 : end]), Italic: true})
				i = end + 1
				continue
			}
		}
		plain.WriteString(line[i : i+n])
		i += n
	}
	flush()
	return spans
}

// markerRun counts identical marker bytes starting at i.
func markerRun(s string, i int) int {
	n := 1
	for i+n < len(s) && s[i+n] == s[i] {
		n++
	}
	return n
}

// closeAt finds the closing run of exactly n markers for the opener at i.
// Underscore emphasis must not sit inside a word, so snake_case stays
// plain.
func closeAt(s string, i, n int) (int, bool) {
	marker := s[i]
	if marker == '_' && wordBefore(s, i) {
		return 0, false
	}
	start := i + n
	if start >= len(s) || s[start] == ' ' {
		return 0, false
	}
	for j := start; j < len(s); j++ {
		if s[j] == '\\' {
			j++
			continue
		}
		if s[j] != marker {
			continue
		}
		run := markerRun(s, j)
		if run == n && j > start && s[j-1] != ' ' {
			if marker == '_' && wordAfter(s, j+n) {
				j += run - 1
				continue
			}
			return j, true
		}
		j += run - 1
	}
	return 0, false
}

func wordBefore(s string, i int) bool {
	if i == 0 {
		return false
	}
	r, _ := utf8.DecodeLastRuneInString(s[:i])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func wordAfter(s string, i int) bool {
	if i >= len(s) {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s[i:])
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func isEscapable(c byte) bool {
	return c == '*' || c == '_' || c == '$' || c == '`' || c == '|'
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && isEscapable(s[i+1]) {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// CleanCellText strips emphasis markers from table cell text and resolves
// backslash escapes.
func CleanCellText(s string) string {
	var b strings.Builder
	for _, sp := range Parse(s) {
		b.WriteString(sp.Text)
	}
	return strings.TrimSpace(strings.NewReplacer("***", "", "**", "", "__", "").Replace(b.String()))
}

// PlainText joins span text.
func PlainText(spans []Span) string {
	var b strings.Builder
	for _, sp := range spans {
		b.WriteString(sp.Text)
	}
	return b.String()
}
