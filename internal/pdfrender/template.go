package pdfrender

import (
	"bytes"
	"fmt"

	"github.com/dgallion1/msgexport/internal/logo"
	"github.com/dgallion1/msgexport/internal/render"
	"github.com/jung-kurt/gofpdf"
)

// drawLogo places the template logo at the top of the first page. A logo
// that cannot be decoded is logged and skipped; the cursor then stays
// where it was.
func (l *layout) drawLogo(tmpl *render.Template) {
	if tmpl.Logo == "" {
		return
	}
	img, err := logo.Decode(tmpl.Logo)
	if err != nil {
		l.log.Warn("logo skipped", "format", "pdf", "error", err)
		return
	}

	h := render.LogoHeightMM
	w := img.WidthFor(h)
	if cw := l.contentWidth(); w > cw {
		w, h = cw, cw*float64(img.Height)/float64(img.Width)
	}

	x := l.margin
	switch tmpl.LogoPosition {
	case render.AnchorRight:
		x = l.pageW - l.margin - w
	case render.AnchorCenter:
		x = (l.pageW - w) / 2
	}

	opts := gofpdf.ImageOptions{ImageType: img.Type}
	l.pdf.RegisterImageOptionsReader("logo", opts, bytes.NewReader(img.Data))
	if l.pdf.Err() {
		l.log.Warn("logo skipped", "format", "pdf", "error", l.pdf.Error())
		l.pdf.ClearError()
		return
	}
	l.pager.reserve(h)
	l.pdf.ImageOptions("logo", x, l.pager.y, w, h, false, opts, 0, "")
	l.pager.y += h + 4
}

// drawHeader draws the sender block on the left and the recipient block
// right-aligned, then moves below the taller of the two.
func (l *layout) drawHeader(tmpl *render.Template) {
	if !tmpl.HasHeader() {
		return
	}
	colW := (l.contentWidth() - 10) / 2
	l.setFont("", templateSize, false)
	sender := l.splitText(tmpl.SenderText, colW)
	recipient := l.splitText(tmpl.RecipientText, colW)

	lh := lineHeight(templateSize)
	height := float64(max(len(sender), len(recipient))) * lh
	l.pager.reserve(height)

	top := l.pager.y
	for i, line := range sender {
		l.pdf.Text(l.margin, baseline(top+float64(i)*lh, lh, templateSize), line)
	}
	right := l.pageW - l.margin
	for i, line := range recipient {
		x := right - l.pdf.GetStringWidth(line)
		l.pdf.Text(x, baseline(top+float64(i)*lh, lh, templateSize), line)
	}
	l.pager.y = top + height + 6
}

// reserveFooter lifts the bottom limit on every page so body content never
// runs into the footer band.
func (l *layout) reserveFooter(tmpl *render.Template) {
	if !tmpl.HasFooter() {
		return
	}
	l.setFont("", smallSize, false)
	l.footer = l.splitText(tmpl.FooterText, l.contentWidth())
	band := 4 + float64(len(l.footer))*lineHeight(smallSize)
	l.pager.bottom -= band
}

// drawFooter draws the divider and footer text on the last page.
func (l *layout) drawFooter() {
	if len(l.footer) == 0 {
		return
	}
	y := l.pager.bottom + 2
	l.pdf.SetDrawColor(150, 150, 150)
	l.pdf.SetLineWidth(0.3)
	l.pdf.Line(l.margin, y, l.pageW-l.margin, y)

	lh := lineHeight(smallSize)
	l.setFont("", smallSize, false)
	l.pdf.SetTextColor(90, 90, 90)
	for i, line := range l.footer {
		l.pdf.Text(l.margin, baseline(y+1+float64(i)*lh, lh, smallSize), line)
	}
	l.pdf.SetTextColor(0, 0, 0)
}

// drawPageNumbers writes "i / n" in the bottom margin of every page once
// the total is known.
func (l *layout) drawPageNumbers() {
	n := l.pdf.PageCount()
	for i := 1; i <= n; i++ {
		l.pdf.SetPage(i)
		l.setFont("", smallSize, false)
		label := fmt.Sprintf("%d / %d", i, n)
		x := l.pageW - l.margin - l.pdf.GetStringWidth(label)
		l.pdf.Text(x, l.pageH-l.margin/2, label)
	}
}

// splitText translates multi-line template text and wraps each line to w
// in the current font.
func (l *layout) splitText(s string, w float64) []string {
	var out []string
	for _, line := range render.Lines(s) {
		if line == "" {
			out = append(out, "")
			continue
		}
		for _, b := range l.pdf.SplitLines([]byte(l.tr(line)), w) {
			out = append(out, string(b))
		}
	}
	return out
}
