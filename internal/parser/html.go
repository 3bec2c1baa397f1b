package parser

import (
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

var (
	centerRe = regexp.MustCompile(`(?is)^<center>(.*?)</center>$`)

	// Only lines carrying one of these tags go through the HTML parser, so
	// prose like "a<b" is left alone.
	inlineTagRe = regexp.MustCompile(`(?i)</?(?:br|b|i|u|em|strong|sup|sub|span|p|div|small|mark|center|font|code|s|del|ins)\b[^>]*>`)
	entityRe    = regexp.MustCompile(`&(?:[a-zA-Z]+|#[0-9]+|#x[0-9a-fA-F]+);`)
)

// stripCenter reports whether s is wrapped in <center>...</center> and
// returns the inner text.
func stripCenter(s string) (string, bool) {
	m := centerRe.FindStringSubmatch(s)
	if m == nil {
		return s, false
	}
	return strings.TrimSpace(m[1]), true
}

// stripInlineHTML drops inline tags, keeping their text, and unescapes
// entities. <br> becomes a space since every block is a single line.
func stripInlineHTML(s string) string {
	if !inlineTagRe.MatchString(s) {
		if entityRe.MatchString(s) {
			return html.UnescapeString(s)
		}
		return s
	}
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(s), context)
	if err != nil {
		return s
	}
	var buf strings.Builder
	for _, n := range nodes {
		textContent(n, &buf)
	}
	return strings.TrimSpace(buf.String())
}

func textContent(n *html.Node, buf *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		buf.WriteString(n.Data)
	case html.ElementNode:
		switch n.DataAtom {
		case atom.Br:
			buf.WriteByte(' ')
			return
		case atom.Script, atom.Style:
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		textContent(c, buf)
	}
}
