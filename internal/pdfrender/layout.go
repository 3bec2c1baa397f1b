package pdfrender

import (
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/msgexport/internal/render"
	"github.com/dgallion1/msgexport/internal/richtext"
	"github.com/jung-kurt/gofpdf"
)

// Sizes in points, distances in millimetres.
const (
	ptToMM = 25.4 / 72

	bodySize     = 11.0
	codeSize     = 9.0
	tableSize    = 10.0
	templateSize = 10.0
	smallSize    = 9.0

	lineSpacing  = 1.4
	paragraphGap = 1.0
	spacerHeight = 3.0
	bulletIndent = 5.0
)

var headingSizes = [...]float64{18, 15, 13}

func lineHeight(size float64) float64 { return size * ptToMM * lineSpacing }

// baseline returns the text baseline for a line box of height lh starting
// at y.
func baseline(y, lh, size float64) float64 {
	fs := size * ptToMM
	return y + (lh-fs)/2 + fs*0.8
}

// pager owns the vertical cursor. Content is only placed after reserve
// confirms it fits above the bottom limit.
type pager struct {
	y       float64
	top     float64
	bottom  float64 // Lowest y content may reach
	newPage func()
}

// reserve starts a new page when h more millimetres would cross the bottom
// limit, and reports whether it did. A block taller than a whole page is
// placed at the top of a page and allowed to overflow.
func (p *pager) reserve(h float64) bool {
	if p.y+h <= p.bottom || p.y <= p.top {
		return false
	}
	p.newPage()
	p.y = p.top
	return true
}

// layout is the state of one render call.
type layout struct {
	pdf    *gofpdf.Fpdf
	tr     func(string) string
	family string
	margin float64
	pageW  float64
	pageH  float64
	pager  *pager
	log    *slog.Logger

	footer []string // Translated footer lines, drawn on the last page
}

func newLayout(log *slog.Logger, margin float64, font render.Font) *layout {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPage()

	l := &layout{
		pdf:    pdf,
		family: fontFamily(font),
		margin: margin,
		log:    log,
	}
	cp1252 := pdf.UnicodeTranslatorFromDescriptor("")
	l.tr = func(s string) string { return cp1252(latinize(s)) }
	l.pageW, l.pageH = pdf.GetPageSize()
	l.pager = &pager{
		y:       margin,
		top:     margin,
		bottom:  l.pageH - margin,
		newPage: pdf.AddPage,
	}
	return l
}

func (l *layout) contentWidth() float64 { return l.pageW - 2*l.margin }

func (l *layout) setFont(style string, size float64, code bool) {
	family := l.family
	if code {
		family = "Courier"
	}
	l.pdf.SetFont(family, style, size)
}

func (l *layout) width(s string) float64 { return l.pdf.GetStringWidth(l.tr(s)) }

// piece is a run of one style inside a wrapped line.
type piece struct {
	text  string
	style string
	code  bool
	width float64
}

type textLine struct {
	pieces []piece
	width  float64
}

func (ln *textLine) add(p piece) {
	ln.width += p.width
	if n := len(ln.pieces); n > 0 {
		last := &ln.pieces[n-1]
		if last.style == p.style && last.code == p.code {
			last.text += p.text
			last.width += p.width
			return
		}
	}
	ln.pieces = append(ln.pieces, p)
}

func spanStyle(sp richtext.Span) string {
	if sp.Math && !sp.Italic {
		sp.Italic = true
	}
	return sp.Style()
}

// wrap breaks spans into lines no wider than maxW, measuring every word in
// its own style. Words wider than a line are split between runes.
func (l *layout) wrap(spans []richtext.Span, size, maxW float64) []textLine {
	var (
		lines   []textLine
		cur     textLine
		pending bool // A space separates the next word from cur
	)
	breakLine := func() {
		lines = append(lines, cur)
		cur = textLine{}
		pending = false
	}

	for _, sp := range spans {
		style := spanStyle(sp)
		l.setFont(style, size, sp.Code)
		spaceW := l.width(" ")

		place := func(word string) {
			ww := l.width(word)
			sw := 0.0
			if pending && len(cur.pieces) > 0 {
				sw = spaceW
			}
			if len(cur.pieces) > 0 && cur.width+sw+ww > maxW {
				breakLine()
				sw = 0
			}
			for ww > maxW-cur.width && utf8.RuneCountInString(word) > 1 {
				n := l.fit(word, maxW-cur.width-sw)
				if n == 0 {
					if len(cur.pieces) > 0 {
						breakLine()
						sw = 0
						continue
					}
					_, n = utf8.DecodeRuneInString(word)
				}
				head := word[:n]
				cur.add(piece{text: spaces(sw) + head, style: style, code: sp.Code, width: sw + l.width(head)})
				breakLine()
				sw = 0
				word = word[n:]
				ww = l.width(word)
			}
			if word != "" {
				cur.add(piece{text: spaces(sw) + word, style: style, code: sp.Code, width: sw + ww})
			}
			pending = false
		}

		for i, part := range strings.Split(sp.Text, "\n") {
			if i > 0 {
				breakLine()
			}
			if part == "" {
				continue
			}
			if isSpace(part[0]) {
				pending = true
			}
			for j, word := range strings.Fields(part) {
				if j > 0 {
					pending = true
				}
				place(word)
			}
			if isSpace(part[len(part)-1]) {
				pending = true
			}
		}
	}
	if len(cur.pieces) > 0 {
		lines = append(lines, cur)
	}
	return lines
}

// fit returns the byte length of the longest rune prefix of s that is at
// most w wide in the current font.
func (l *layout) fit(s string, w float64) int {
	n := 0
	for i, r := range s {
		end := i + utf8.RuneLen(r)
		if l.width(s[:end]) > w {
			break
		}
		n = end
	}
	return n
}

func spaces(sw float64) string {
	if sw > 0 {
		return " "
	}
	return ""
}

func isSpace(c byte) bool { return c == ' ' || c == '\t' }

// drawLine places one wrapped line at x on the next free line box.
func (l *layout) drawLine(ln textLine, x, size float64) {
	lh := lineHeight(size)
	l.pager.reserve(lh)
	y := baseline(l.pager.y, lh, size)
	for _, p := range ln.pieces {
		l.setFont(p.style, size, p.code)
		l.pdf.Text(x, y, l.tr(p.text))
		x += p.width
	}
	l.pager.y += lh
}

// paragraph wraps and draws spans, centered or from the left margin plus
// indent.
func (l *layout) paragraph(spans []richtext.Span, size float64, centered bool, indent float64) {
	for _, ln := range l.wrap(spans, size, l.contentWidth()-indent) {
		x := l.margin + indent
		if centered {
			x = (l.pageW - ln.width) / 2
		}
		l.drawLine(ln, x, size)
	}
}
