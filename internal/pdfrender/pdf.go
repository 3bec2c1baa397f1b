// Package pdfrender lays out a block model on A4 pages with gofpdf.
package pdfrender

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"

	"github.com/dgallion1/msgexport/internal/doctree"
	"github.com/dgallion1/msgexport/internal/render"
)

// Options tune the page geometry.
type Options struct {
	MarginMM float64 // Page margin on all sides; 0 means render.MarginMM
}

// Renderer produces PDF documents. It holds no per-document state and is
// safe for concurrent use.
type Renderer struct {
	log  *slog.Logger
	opts Options
}

// New creates a PDF renderer.
func New(log *slog.Logger, opts Options) *Renderer {
	if opts.MarginMM <= 0 {
		opts.MarginMM = render.MarginMM
	}
	return &Renderer{log: log, opts: opts}
}

func (r *Renderer) Extension() string   { return render.FormatPDF.Extension() }
func (r *Renderer) ContentType() string { return render.FormatPDF.ContentType() }

// Render lays out doc and returns the serialized PDF. tmpl may be nil.
func (r *Renderer) Render(ctx context.Context, doc *doctree.Document, tmpl *render.Template) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	l := newLayout(r.log, r.opts.MarginMM, render.FontOf(tmpl))
	if doc.Title != "" {
		l.pdf.SetTitle(doc.Title, true)
	}
	l.pdf.SetCreator("msgexport", true)

	if tmpl != nil {
		l.drawLogo(tmpl)
		l.drawHeader(tmpl)
		l.reserveFooter(tmpl)
	}

	for _, b := range doc.Blocks {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		l.block(b)
	}

	if tmpl != nil {
		l.drawFooter()
		if tmpl.PageNumbers() {
			l.drawPageNumbers()
		}
	}

	var buf bytes.Buffer
	if err := l.pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func (l *layout) block(b doctree.Block) {
	switch b := b.(type) {
	case *doctree.Heading:
		l.heading(b)
	case *doctree.Paragraph:
		l.paragraph(b.Spans, bodySize, b.Centered, 0)
		l.pager.y += paragraphGap
	case *doctree.BulletItem:
		l.bullet(b)
	case *doctree.Table:
		l.table(b)
	case *doctree.Spacer:
		l.pager.y += spacerHeight
	case *doctree.CodeBlock:
		l.code(b)
	case *doctree.MathBlock:
		l.math(b)
	default:
		l.log.Warn("skipping unknown block", "kind", b.Kind())
	}
}

// fontFamily maps a template font to the gofpdf core family.
func fontFamily(f render.Font) string {
	switch f {
	case render.FontTimes:
		return "Times"
	case render.FontCourier:
		return "Courier"
	}
	return "Helvetica"
}
