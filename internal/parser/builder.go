// Package parser turns a raw chat message into the block model.
package parser

import (
	"strings"

	"github.com/dgallion1/msgexport/internal/doctree"
	"github.com/dgallion1/msgexport/internal/richtext"
	"github.com/dgallion1/msgexport/internal/segment"
)

// Build parses a chat message into a Document. It never fails; malformed
// markup degrades to plain text and malformed tables are dropped.
func Build(content string) *doctree.Document {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	normalized := segment.Normalize(content)
	segs := segment.WrapBareMath(segment.Tokenize(normalized))

	b := &builder{}
	for _, seg := range segs {
		switch {
		case seg.Kind == segment.KindText:
			b.text.WriteString(seg.Content)
		case seg.Kind == segment.KindInlineMath, seg.Kind == segment.KindCode && !seg.Fenced:
			b.text.WriteString(b.inline.hold(seg))
		case seg.Kind == segment.KindCode:
			b.flushText()
			b.blocks = append(b.blocks, &doctree.CodeBlock{
				Lang:  seg.Lang,
				Lines: strings.Split(seg.Content, "\n"),
			})
			b.afterBlock = true
		case seg.Kind == segment.KindDisplayMath:
			b.flushText()
			src := strings.TrimSpace(seg.Content)
			if src != "" {
				b.blocks = append(b.blocks, &doctree.MathBlock{
					Source: src,
					Text:   segment.MathText(src),
					Rows:   segment.MathRows(src),
				})
			}
			b.afterBlock = true
		}
	}
	b.flushText()

	return &doctree.Document{
		Title:  Title(normalized),
		Blocks: b.blocks,
	}
}

type builder struct {
	text       strings.Builder
	inline     placeholders
	table      []string // Pipe lines waiting for a non-table line
	blocks     []doctree.Block
	afterBlock bool // Previous segment was a code or math block
}

// flushText turns the pending text into line blocks.
func (b *builder) flushText() {
	text := b.text.String()
	b.text.Reset()

	if b.afterBlock {
		text = strings.TrimPrefix(text, "\n")
		b.afterBlock = false
	}
	text = strings.TrimSuffix(text, "\n")
	if text != "" {
		for _, line := range strings.Split(text, "\n") {
			b.line(line)
		}
	}
	b.flushTable()
}

func (b *builder) line(raw string) {
	trimmed := strings.TrimSpace(raw)
	if strings.HasPrefix(trimmed, "|") {
		b.table = append(b.table, trimmed)
		return
	}
	b.flushTable()

	if trimmed == "" {
		b.blocks = append(b.blocks, &doctree.Spacer{})
		return
	}

	text := trimmed
	inner, centered := stripCenter(text)
	if centered {
		text = inner
	}
	if level, rest := headingLevel(text); level > 0 {
		if inner, ok := stripCenter(rest); ok {
			rest, centered = inner, true
		}
		spans := b.spans(rest)
		for i := range spans {
			spans[i].Bold = true
		}
		b.blocks = append(b.blocks, &doctree.Heading{Level: level, Spans: spans, Centered: centered})
		return
	}

	if !centered && (strings.HasPrefix(text, "- ") || strings.HasPrefix(text, "* ")) {
		b.blocks = append(b.blocks, &doctree.BulletItem{Spans: b.spans(strings.TrimSpace(text[2:]))})
		return
	}

	b.blocks = append(b.blocks, &doctree.Paragraph{Spans: b.spans(text), Centered: centered})
}

// spans runs inline HTML cleanup and emphasis parsing, then expands held
// inline math and code back into their own spans.
func (b *builder) spans(text string) []richtext.Span {
	text = stripInlineHTML(text)
	var out []richtext.Span
	for _, sp := range richtext.Parse(text) {
		out = append(out, b.inline.expand(sp)...)
	}
	return out
}

// flushTable emits the buffered pipe lines as a table. Fewer than three
// lines cannot hold a header, separator and body row, so they are dropped.
func (b *builder) flushTable() {
	lines := b.table
	b.table = nil
	if len(lines) < 3 {
		return
	}

	header := b.cells(lines[0])
	t := &doctree.Table{Header: header}
	for _, line := range lines[2:] {
		row := b.cells(line)
		switch {
		case len(row) > len(header):
			row = row[:len(header)]
		case len(row) < len(header):
			row = append(row, make([]string, len(header)-len(row))...)
		}
		t.Rows = append(t.Rows, row)
	}
	b.blocks = append(b.blocks, t)
}

// cells splits a pipe row, honoring \| escapes.
func (b *builder) cells(line string) []string {
	line = strings.TrimPrefix(line, "|")
	if strings.HasSuffix(line, "|") && !strings.HasSuffix(line, `\|`) {
		line = line[:len(line)-1]
	}

	var (
		cells []string
		cur   strings.Builder
	)
	for i := 0; i < len(line); i++ {
		switch {
		case line[i] == '\\' && i+1 < len(line) && line[i+1] == '|':
			cur.WriteByte('|')
			i++
		case line[i] == '|':
			cells = append(cells, b.cellText(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(line[i])
		}
	}
	return append(cells, b.cellText(cur.String()))
}

func (b *builder) cellText(s string) string {
	return strings.TrimSpace(b.inline.plain(stripInlineHTML(s)))
}

func headingLevel(s string) (int, string) {
	switch {
	case strings.HasPrefix(s, "### "):
		return 3, strings.TrimSpace(s[4:])
	case strings.HasPrefix(s, "## "):
		return 2, strings.TrimSpace(s[3:])
	case strings.HasPrefix(s, "# "):
		return 1, strings.TrimSpace(s[2:])
	}
	return 0, s
}
