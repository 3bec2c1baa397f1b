package segment

import (
	"regexp"
	"strings"
)

var wordRe = regexp.MustCompile(`[A-Za-z]{3,}`)

// WrapBareMath finds LaTeX written without delimiters inside text
// segments. A line holding a known command and at most two prose words
// becomes display math; otherwise each command expression on the line
// becomes inline math. Lines that carry markdown structure (tables,
// headings, list items, HTML) only get the inline treatment, as do line
// fragments that share their line with inline code or inline math.
//
// The heuristic can misfire on prose that quotes LaTeX commands.
func WrapBareMath(segs []Segment) []Segment {
	out := make([]Segment, 0, len(segs))
	for i, seg := range segs {
		if seg.Kind != KindText || !strings.ContainsRune(seg.Content, '\\') {
			out = append(out, seg)
			continue
		}
		startsLine := i == 0 || breaksLine(segs[i-1])
		endsLine := i == len(segs)-1 || breaksLine(segs[i+1])
		out = appendMerged(out, wrapText(seg.Content, startsLine, endsLine)...)
	}
	return out
}

// breaksLine reports whether a segment stands on lines of its own.
func breaksLine(seg Segment) bool {
	return (seg.Kind == KindCode && seg.Fenced) || seg.Kind == KindDisplayMath
}

// wrapText wraps the expressions in one text segment. startsLine and
// endsLine tell whether the segment's first and last lines are whole
// source lines rather than pieces next to inline code or math.
func wrapText(s string, startsLine, endsLine bool) []Segment {
	var segs []Segment
	lines := strings.SplitAfter(s, "\n")
	for k, line := range lines {
		body := strings.TrimSuffix(line, "\n")
		nl := line[len(body):]

		exprs := commandExprs(body)
		if len(exprs) == 0 {
			segs = appendMerged(segs, Segment{Kind: KindText, Content: line})
			continue
		}

		whole := (k > 0 || startsLine) && (nl != "" || endsLine)
		if whole && !structuredLine(body) && proseWords(body, exprs) <= 2 {
			trimmed := strings.TrimSpace(body)
			lead := body[:strings.Index(body, trimmed)]
			tail := body[len(lead)+len(trimmed):]
			segs = appendMerged(segs,
				Segment{Kind: KindText, Content: lead},
				Segment{Kind: KindDisplayMath, Content: trimmed},
				Segment{Kind: KindText, Content: tail + nl},
			)
			continue
		}

		last := 0
		for _, e := range exprs {
			segs = appendMerged(segs,
				Segment{Kind: KindText, Content: body[last:e[0]]},
				Segment{Kind: KindInlineMath, Content: body[e[0]:e[1]]},
			)
			last = e[1]
		}
		segs = appendMerged(segs, Segment{Kind: KindText, Content: body[last:] + nl})
	}
	return segs
}

// appendMerged appends segments, dropping empty text and merging adjacent
// text segments.
func appendMerged(dst []Segment, segs ...Segment) []Segment {
	for _, s := range segs {
		if s.Kind == KindText {
			if s.Content == "" {
				continue
			}
			if n := len(dst); n > 0 && dst[n-1].Kind == KindText {
				dst[n-1].Content += s.Content
				continue
			}
		}
		dst = append(dst, s)
	}
	return dst
}

func structuredLine(line string) bool {
	t := strings.TrimSpace(line)
	if t == "" {
		return false
	}
	switch t[0] {
	case '|', '#', '<', '>':
		return true
	}
	return strings.HasPrefix(t, "- ") || strings.HasPrefix(t, "* ")
}

// proseWords counts alphabetic runs of three or more letters outside the
// command expressions.
func proseWords(line string, exprs [][2]int) int {
	var b strings.Builder
	last := 0
	for _, e := range exprs {
		b.WriteString(line[last:e[0]])
		b.WriteByte(' ')
		last = e[1]
	}
	b.WriteString(line[last:])
	return len(wordRe.FindAllString(b.String(), -1))
}

// commandExprs returns the byte ranges of known command expressions: the
// command word plus any brace or bracket groups and scripts that follow.
// Adjacent expressions separated only by spaces or operators are merged.
func commandExprs(line string) [][2]int {
	var exprs [][2]int
	for i := 0; i < len(line); i++ {
		if line[i] != '\\' {
			continue
		}
		name, n := commandAt(line[i:])
		if !isLetter(name0(name)) || !IsKnownCommand(name) {
			i += n - 1
			continue
		}
		start := i
		j := exprEnd(line, i+n)
		if k := len(exprs); k > 0 && joinable(line[exprs[k-1][1]:start]) {
			exprs[k-1][1] = j
		} else {
			exprs = append(exprs, [2]int{start, j})
		}
		i = j - 1
	}
	return exprs
}

func name0(name string) byte {
	if name == "" {
		return 0
	}
	return name[0]
}

// exprEnd extends an expression past argument groups and scripts.
func exprEnd(line string, j int) int {
	for j < len(line) {
		switch line[j] {
		case '{':
			_, n := braceGroup(line[j:])
			j += n
		case '[':
			end := strings.IndexByte(line[j:], ']')
			if end < 0 {
				return j
			}
			j += end + 1
		case '_', '^':
			j++
			if j < len(line) && line[j] == '{' {
				_, n := braceGroup(line[j:])
				j += n
			} else if j < len(line) {
				j++
			}
		default:
			return j
		}
	}
	return j
}

// joinable reports whether the gap between two expressions belongs to the
// same formula, as in "\alpha + \beta".
func joinable(gap string) bool {
	if strings.TrimSpace(gap) == "" {
		return true
	}
	for _, r := range gap {
		if !strings.ContainsRune(" +-*/=<>()0123456789.,", r) {
			return false
		}
	}
	return strings.ContainsAny(gap, "+-*/=<>")
}
