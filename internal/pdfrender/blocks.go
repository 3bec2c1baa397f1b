package pdfrender

import (
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/msgexport/internal/doctree"
	"github.com/dgallion1/msgexport/internal/richtext"
)

func (l *layout) heading(h *doctree.Heading) {
	level := h.Level
	if level < 1 {
		level = 1
	}
	if level > len(headingSizes) {
		level = len(headingSizes)
	}
	size := headingSizes[level-1]

	if l.pager.y > l.pager.top {
		l.pager.y += 2
	}
	// Keep the heading with its first body line.
	l.pager.reserve(lineHeight(size) + lineHeight(bodySize))
	l.paragraph(h.Spans, size, h.Centered, 0)
	l.pager.y += 1.5
}

func (l *layout) bullet(b *doctree.BulletItem) {
	lines := l.wrap(b.Spans, bodySize, l.contentWidth()-bulletIndent)
	if len(lines) == 0 {
		return
	}
	lh := lineHeight(bodySize)
	for i, ln := range lines {
		l.pager.reserve(lh)
		if i == 0 {
			l.setFont("", bodySize, false)
			l.pdf.Text(l.margin+1, baseline(l.pager.y, lh, bodySize), l.tr("•"))
		}
		l.drawLine(ln, l.margin+bulletIndent, bodySize)
	}
	l.pager.y += paragraphGap / 2
}

// code draws a fenced block in Courier on a grey band. Long lines are cut
// at the character that no longer fits.
func (l *layout) code(c *doctree.CodeBlock) {
	const pad = 2.0
	lh := lineHeight(codeSize)
	maxW := l.contentWidth() - 2*pad

	l.setFont("", codeSize, true)
	charW := l.width("M")
	perLine := int(maxW / charW)
	if perLine < 1 {
		perLine = 1
	}

	l.pager.y += 1
	l.pdf.SetFillColor(245, 245, 245)
	for _, src := range c.Lines {
		for _, part := range chunkRunes(strings.ReplaceAll(src, "\t", "    "), perLine) {
			l.pager.reserve(lh)
			l.pdf.Rect(l.margin, l.pager.y, l.contentWidth(), lh, "F")
			l.setFont("", codeSize, true)
			l.pdf.Text(l.margin+pad, baseline(l.pager.y, lh, codeSize), l.tr(part))
			l.pager.y += lh
		}
	}
	l.pdf.SetFillColor(255, 255, 255)
	l.pager.y += 2
}

func chunkRunes(s string, n int) []string {
	if utf8.RuneCountInString(s) <= n {
		return []string{s}
	}
	var out []string
	runes := []rune(s)
	for len(runes) > n {
		out = append(out, string(runes[:n]))
		runes = runes[n:]
	}
	return append(out, string(runes))
}

func (l *layout) math(m *doctree.MathBlock) {
	l.pager.y += 1
	for _, line := range m.Rows {
		l.paragraph([]richtext.Span{{Text: line, Italic: true, Math: true}}, bodySize, true, 0)
	}
	l.pager.y += 2
}
