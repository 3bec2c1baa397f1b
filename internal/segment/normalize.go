package segment

import (
	"regexp"
	"strings"
)

// escapedDollar stands in for a literal \$ while delimiters are rewritten.
const escapedDollar = "\uE000"

var (
	codeRegionRe = regexp.MustCompile("(?s)```.*?```|`[^`\n]+`")

	doubleDisplayRe = regexp.MustCompile(`(?s)\\\\\[(.*?)\\\\\]`)
	doubleInlineRe  = regexp.MustCompile(`(?s)\\\\\((.*?)\\\\\)`)
	displayRe       = regexp.MustCompile(`(?s)\\\[(.*?)\\\]`)
	inlineRe        = regexp.MustCompile(`\\\((.*?)\\\)`)

	// \\frac inside a doubly escaped body is an escaped \frac.
	doubledCommandRe = regexp.MustCompile(`\\\\([A-Za-z{}_^|,;!])`)
)

// Normalize rewrites the alternate LaTeX delimiters \[..\] and \(..\)
// (and their doubly escaped forms) into $$..$$ and $..$. Code spans and
// fences pass through untouched. Normalizing canonical text is a no-op.
func Normalize(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	last := 0
	for _, loc := range codeRegionRe.FindAllStringIndex(s, -1) {
		b.WriteString(normalizeMath(s[last:loc[0]]))
		b.WriteString(s[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(normalizeMath(s[last:]))
	return b.String()
}

func normalizeMath(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	s = strings.ReplaceAll(s, `\$`, escapedDollar)

	s = doubleDisplayRe.ReplaceAllStringFunc(s, func(m string) string {
		body := doubleDisplayRe.FindStringSubmatch(m)[1]
		return "$$" + unescapeCommands(body) + "$$"
	})
	s = doubleInlineRe.ReplaceAllStringFunc(s, func(m string) string {
		body := doubleInlineRe.FindStringSubmatch(m)[1]
		return "$" + unescapeCommands(body) + "$"
	})
	s = displayRe.ReplaceAllString(s, "$$$$${1}$$$$")
	s = inlineRe.ReplaceAllString(s, "$$${1}$$")

	return strings.ReplaceAll(s, escapedDollar, `\$`)
}

func unescapeCommands(body string) string {
	return doubledCommandRe.ReplaceAllString(body, `\${1}`)
}
