package segment

import (
	"regexp"
	"strings"
)

// stateFn is one state of the scanner; it returns the next state or nil
// when the input is exhausted.
type stateFn func(*scanner) stateFn

type scanner struct {
	input string
	pos   int
	text  strings.Builder
	segs  []Segment
}

// Tokenize splits normalized text into ordered segments. It never fails:
// unterminated delimiters degrade to literal text or to a trailing math
// segment.
func Tokenize(s string) []Segment {
	sc := &scanner{input: s}
	for state := stateFn(lexText); state != nil; {
		state = state(sc)
	}
	sc.flushText()
	return sc.segs
}

func (sc *scanner) rest() string { return sc.input[sc.pos:] }

func (sc *scanner) flushText() {
	if sc.text.Len() == 0 {
		return
	}
	sc.segs = append(sc.segs, Segment{Kind: KindText, Content: sc.text.String()})
	sc.text.Reset()
}

func (sc *scanner) emit(seg Segment) {
	sc.flushText()
	sc.segs = append(sc.segs, seg)
}

// literal copies n bytes of input into the pending text run.
func (sc *scanner) literal(n int) {
	sc.text.WriteString(sc.input[sc.pos : sc.pos+n])
	sc.pos += n
}

func lexText(sc *scanner) stateFn {
	for sc.pos < len(sc.input) {
		rest := sc.rest()
		switch {
		case strings.HasPrefix(rest, "```"):
			if strings.Contains(rest[3:], "```") {
				return lexFence
			}
			sc.literal(3)
		case rest[0] == '`':
			if _, ok := inlineCodeEnd(rest); ok {
				return lexInlineCode
			}
			sc.literal(1)
		case strings.HasPrefix(rest, `\$`):
			sc.literal(2)
		case strings.HasPrefix(rest, "$$"):
			return lexDisplayMath
		case rest[0] == '$':
			if _, ok := inlineMathEnd(rest); ok {
				return lexInlineMath
			}
			sc.literal(1)
		case strings.HasPrefix(rest, `\begin{`):
			if envName(rest) != "" {
				return lexEnvMath
			}
			sc.literal(1)
		default:
			sc.literal(1)
		}
	}
	return nil
}

func lexFence(sc *scanner) stateFn {
	body := sc.rest()[3:]
	end := strings.Index(body, "```")
	inner := body[:end]

	var lang string
	if nl := strings.IndexByte(inner, '\n'); nl >= 0 {
		lang = strings.TrimSpace(inner[:nl])
		inner = inner[nl+1:]
	}
	inner = strings.TrimSuffix(inner, "\n")

	sc.emit(Segment{Kind: KindCode, Content: inner, Lang: lang, Fenced: true})
	sc.pos += 3 + end + 3
	return lexText
}

// inlineCodeEnd reports the offset of the closing backtick of an inline
// code span starting at s[0]. The span must close on the same line and
// hold at least one character.
func inlineCodeEnd(s string) (int, bool) {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\n':
			return 0, false
		case '`':
			return i, i > 1
		}
	}
	return 0, false
}

func lexInlineCode(sc *scanner) stateFn {
	end, _ := inlineCodeEnd(sc.rest())
	sc.emit(Segment{Kind: KindCode, Content: sc.rest()[1:end]})
	sc.pos += end + 1
	return lexText
}

func lexDisplayMath(sc *scanner) stateFn {
	body := sc.rest()[2:]
	end := strings.Index(body, "$$")
	if end < 0 {
		// Still streaming: everything left is math.
		sc.emit(Segment{Kind: KindDisplayMath, Content: strings.TrimSpace(body)})
		sc.pos = len(sc.input)
		return nil
	}
	sc.emit(Segment{Kind: KindDisplayMath, Content: body[:end]})
	sc.pos += 2 + end + 2
	return lexText
}

// inlineMathEnd reports the offset of the $ closing an inline math span
// starting at s[0]. The close must sit on the same line and the content
// must look like math, which keeps "costs $5 and $10" as prose.
func inlineMathEnd(s string) (int, bool) {
	for i := 1; i < len(s); i++ {
		switch s[i] {
		case '\n':
			return 0, false
		case '\\':
			i++
		case '$':
			content := s[1:i]
			if strings.TrimSpace(content) == "" || !LooksLikeMath(content) {
				return 0, false
			}
			return i, true
		}
	}
	return 0, false
}

func lexInlineMath(sc *scanner) stateFn {
	end, _ := inlineMathEnd(sc.rest())
	sc.emit(Segment{Kind: KindInlineMath, Content: sc.rest()[1:end]})
	sc.pos += end + 1
	return lexText
}

var envNameRe = regexp.MustCompile(`^\\begin\{([A-Za-z]+\*?)\}`)

func envName(s string) string {
	m := envNameRe.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return m[1]
}

func lexEnvMath(sc *scanner) stateFn {
	rest := sc.rest()
	closing := `\end{` + envName(rest) + `}`
	end := strings.Index(rest, closing)
	if end < 0 {
		sc.emit(Segment{Kind: KindDisplayMath, Content: strings.TrimSpace(rest)})
		sc.pos = len(sc.input)
		return nil
	}
	end += len(closing)
	sc.emit(Segment{Kind: KindDisplayMath, Content: rest[:end]})
	sc.pos += end
	return lexText
}

var (
	mathSymbolRe   = regexp.MustCompile(`[_^{}\\]`)
	letterDigitRe  = regexp.MustCompile(`[A-Za-z][0-9]`)
	commandTokenRe = regexp.MustCompile(`\\([A-Za-z]+)`)
)

// LooksLikeMath reports whether s reads as a formula rather than prose.
func LooksLikeMath(s string) bool {
	for _, m := range commandTokenRe.FindAllStringSubmatch(s, -1) {
		if IsKnownCommand(m[1]) {
			return true
		}
	}
	return mathSymbolRe.MatchString(s) || letterDigitRe.MatchString(s)
}
