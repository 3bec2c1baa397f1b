// Package docxrender writes a block model as a Word document with go-docx.
package docxrender

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/dgallion1/msgexport/internal/doctree"
	"github.com/dgallion1/msgexport/internal/logo"
	"github.com/dgallion1/msgexport/internal/render"
	"github.com/dgallion1/msgexport/internal/richtext"
	"github.com/fumiama/go-docx"
)

// Page geometry in twips (1/1440 inch). A4 with 2 cm margins.
const (
	pageWidthTwips  = 11906
	pageHeightTwips = 16838
	marginTwips     = 1134
	contentTwips    = pageWidthTwips - 2*marginTwips

	// Word sizes are half-points.
	bodyHalfPts  = "22"
	codeHalfPts  = "19"
	tableHalfPts = "20"
	smallHalfPts = "18"
)

var headingHalfPts = [...]string{"36", "30", "26"}

// Renderer produces DOCX documents. It is safe for concurrent use.
type Renderer struct {
	log *slog.Logger
}

// New creates a DOCX renderer.
func New(log *slog.Logger) *Renderer {
	return &Renderer{log: log}
}

func (r *Renderer) Extension() string   { return render.FormatDOCX.Extension() }
func (r *Renderer) ContentType() string { return render.FormatDOCX.ContentType() }

// Render builds the document body, serializes it, and adds the section
// properties and footer part.
func (r *Renderer) Render(ctx context.Context, doc *doctree.Document, tmpl *render.Template) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f := &flow{
		doc:  docx.New().WithDefaultTheme(),
		font: fontName(render.FontOf(tmpl)),
		log:  r.log,
	}
	if tmpl != nil {
		f.logo(tmpl)
		f.header(tmpl)
	}
	for _, b := range doc.Blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f.block(b)
	}

	var buf bytes.Buffer
	if _, err := f.doc.WriteTo(&buf); err != nil {
		return nil, fmt.Errorf("write docx: %w", err)
	}

	var footer *footerPart
	if tmpl.HasFooter() || tmpl.PageNumbers() {
		footer = &footerPart{font: f.font, numbers: tmpl.PageNumbers()}
		if tmpl.HasFooter() {
			footer.lines = render.Lines(tmpl.FooterText)
		}
	}
	out, err := finishPackage(buf.Bytes(), footer)
	if err != nil {
		return nil, fmt.Errorf("finish docx: %w", err)
	}
	return out, nil
}

// fontName maps a template font to the Word font every platform ships.
func fontName(f render.Font) string {
	switch f {
	case render.FontTimes:
		return "Times New Roman"
	case render.FontCourier:
		return "Courier New"
	}
	return "Arial"
}

// flow is the state of one render call.
type flow struct {
	doc  *docx.Docx
	font string
	log  *slog.Logger
}

func (f *flow) block(b doctree.Block) {
	switch b := b.(type) {
	case *doctree.Heading:
		level := min(max(b.Level, 1), len(headingHalfPts))
		p := f.doc.AddParagraph().Style(fmt.Sprintf("Heading%d", level))
		if b.Centered {
			p.Justification("center")
		}
		f.spans(p, b.Spans, headingHalfPts[level-1])
	case *doctree.Paragraph:
		p := f.doc.AddParagraph()
		if b.Centered {
			p.Justification("center")
		}
		f.spans(p, b.Spans, bodyHalfPts)
	case *doctree.BulletItem:
		p := f.doc.AddParagraph().Style("ListParagraph")
		f.run(p.AddText("•  "), bodyHalfPts)
		f.spans(p, b.Spans, bodyHalfPts)
	case *doctree.Table:
		f.table(b)
	case *doctree.Spacer:
		f.doc.AddParagraph()
	case *doctree.CodeBlock:
		for _, line := range b.Lines {
			p := f.doc.AddParagraph()
			p.AddText(strings.ReplaceAll(line, "\t", "    ")).
				Font("Courier New", "Courier New", "Courier New", "default").
				Size(codeHalfPts)
		}
	case *doctree.MathBlock:
		for _, line := range b.Rows {
			p := f.doc.AddParagraph().Justification("center")
			p.AddText(line).
				Font("Cambria Math", "Cambria Math", "Cambria Math", "default").
				Italic().
				Size(bodyHalfPts)
		}
	default:
		f.log.Warn("skipping unknown block", "kind", b.Kind())
	}
}

// run applies the document font and size to a run.
func (f *flow) run(r *docx.Run, size string) *docx.Run {
	return r.Font(f.font, f.font, f.font, "default").Size(size)
}

func (f *flow) spans(p *docx.Paragraph, spans []richtext.Span, size string) {
	for _, sp := range spans {
		if sp.Text == "" {
			continue
		}
		r := p.AddText(sp.Text).Size(size)
		switch {
		case sp.Code:
			r.Font("Courier New", "Courier New", "Courier New", "default")
		case sp.Math:
			r.Font("Cambria Math", "Cambria Math", "Cambria Math", "default")
		default:
			r.Font(f.font, f.font, f.font, "default")
		}
		if sp.Bold {
			r.Bold()
		}
		if sp.Italic || sp.Math {
			r.Italic()
		}
	}
}

var gridBorders = &docx.APITableBorderColors{
	Top: "808080", Left: "808080", Bottom: "808080", Right: "808080",
	InsideH: "808080", InsideV: "808080",
}

// table writes a fixed grid: equal column widths across the content area.
func (f *flow) table(t *doctree.Table) {
	cols := t.Columns()
	if cols == 0 {
		return
	}
	colW := int64(contentTwips / cols)
	widths := make([]int64, cols)
	for i := range widths {
		widths[i] = colW
	}
	heights := make([]int64, len(t.Rows)+1)

	tbl := f.doc.AddTableTwips(heights, widths, colW*int64(cols), gridBorders)
	for ri, row := range tbl.TableRows {
		cells := t.Header
		if ri > 0 {
			cells = t.Rows[ri-1]
		}
		for ci, cell := range row.TableCells {
			var text string
			if ci < len(cells) {
				text = richtext.CleanCellText(cells[ci])
			}
			r := f.run(cell.AddParagraph().AddText(text), tableHalfPts)
			if ri == 0 {
				r.Bold()
			}
		}
	}
	f.doc.AddParagraph()
}

// logo adds the template logo as an inline picture 20 mm tall. go-docx
// sizes pictures from their pixels at 96 dpi, so the image is resampled
// to the pixel height that prints at the target size.
func (f *flow) logo(tmpl *render.Template) {
	if tmpl.Logo == "" {
		return
	}
	img, err := logo.Decode(tmpl.Logo)
	if err == nil {
		px := int(math.Round(render.LogoHeightMM / 25.4 * 96))
		img, err = img.ScaleToHeight(px)
	}
	if err != nil {
		f.log.Warn("logo skipped", "format", "docx", "error", err)
		return
	}

	p := f.doc.AddParagraph().Justification(justification(tmpl.LogoPosition))
	if _, err := p.AddInlineDrawing(img.Data); err != nil {
		f.log.Warn("logo skipped", "format", "docx", "error", err)
	}
}

// justification uses the transitional jc values; "start" and "end" are
// strict-only and older Word builds ignore them.
func justification(a render.Anchor) string {
	switch a {
	case render.AnchorRight:
		return "right"
	case render.AnchorCenter:
		return "center"
	}
	return "left"
}

// clearBorders removes the single-line borders go-docx puts on every
// table.
func clearBorders(tbl *docx.Table) {
	none := func() *docx.WTableBorder { return &docx.WTableBorder{Val: "nil"} }
	tbl.TableProperties.TableBorders = &docx.WTableBorders{
		Top: none(), Left: none(), Bottom: none(), Right: none(),
		InsideH: none(), InsideV: none(),
	}
}

// header writes sender and recipient side by side in a borderless
// two-column table.
func (f *flow) header(tmpl *render.Template) {
	if !tmpl.HasHeader() {
		return
	}
	half := int64(contentTwips / 2)
	tbl := f.doc.AddTableTwips([]int64{0}, []int64{half, half}, 2*half, nil)
	clearBorders(tbl)
	cells := tbl.TableRows[0].TableCells

	for _, line := range render.Lines(tmpl.SenderText) {
		f.run(cells[0].AddParagraph().AddText(line), bodyHalfPts)
	}
	for _, line := range render.Lines(tmpl.RecipientText) {
		f.run(cells[1].AddParagraph().Justification(justification(render.AnchorRight)).AddText(line), bodyHalfPts)
	}
	f.doc.AddParagraph()
}
