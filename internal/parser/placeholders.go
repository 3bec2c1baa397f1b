package parser

import (
	"strconv"
	"strings"

	"github.com/dgallion1/msgexport/internal/richtext"
	"github.com/dgallion1/msgexport/internal/segment"
)

// Inline math and code are held out of the line text behind private-use
// markers so that emphasis and table parsing never see their contents.
const (
	holdOpen  = '\uE001'
	holdClose = '\uE002'
)

type placeholders []segment.Segment

func (p *placeholders) hold(seg segment.Segment) string {
	*p = append(*p, seg)
	return string(holdOpen) + strconv.Itoa(len(*p)-1) + string(holdClose)
}

// lookup parses a marker at the start of s, returning the held segment and
// the marker length.
func (p placeholders) lookup(s string) (segment.Segment, int, bool) {
	open := len(string(holdOpen))
	if !strings.HasPrefix(s, string(holdOpen)) {
		return segment.Segment{}, 0, false
	}
	end := strings.IndexRune(s[open:], holdClose)
	if end < 0 {
		return segment.Segment{}, 0, false
	}
	idx, err := strconv.Atoi(s[open : open+end])
	if err != nil || idx < 0 || idx >= len(p) {
		return segment.Segment{}, 0, false
	}
	return p[idx], open + end + len(string(holdClose)), true
}

// expand splits a span at its markers. Held segments become their own
// spans, inheriting the surrounding emphasis.
func (p placeholders) expand(sp richtext.Span) []richtext.Span {
	if !strings.ContainsRune(sp.Text, holdOpen) {
		return []richtext.Span{sp}
	}

	var (
		out  []richtext.Span
		rest = sp.Text
	)
	for rest != "" {
		i := strings.IndexRune(rest, holdOpen)
		if i < 0 {
			out = append(out, withText(sp, rest))
			break
		}
		if i > 0 {
			out = append(out, withText(sp, rest[:i]))
		}
		seg, n, ok := p.lookup(rest[i:])
		if !ok {
			out = append(out, withText(sp, rest[i:i+len(string(holdOpen))]))
			rest = rest[i+len(string(holdOpen)):]
			continue
		}
		held := richtext.Span{Bold: sp.Bold, Italic: sp.Italic}
		if seg.Kind == segment.KindInlineMath {
			held.Text = segment.MathText(seg.Content)
			held.Math = true
		} else {
			held.Text = seg.Content
			held.Code = true
		}
		out = append(out, held)
		rest = rest[i+n:]
	}
	return out
}

// plain replaces markers with the text form of the held segments.
func (p placeholders) plain(s string) string {
	if !strings.ContainsRune(s, holdOpen) {
		return s
	}
	var b strings.Builder
	for s != "" {
		i := strings.IndexRune(s, holdOpen)
		if i < 0 {
			b.WriteString(s)
			break
		}
		b.WriteString(s[:i])
		seg, n, ok := p.lookup(s[i:])
		if !ok {
			n = len(string(holdOpen))
		} else if seg.Kind == segment.KindInlineMath {
			b.WriteString(segment.MathText(seg.Content))
		} else {
			b.WriteString(seg.Content)
		}
		s = s[i+n:]
	}
	return b.String()
}

func withText(sp richtext.Span, text string) richtext.Span {
	sp.Text = text
	return sp
}
