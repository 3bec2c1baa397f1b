package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/dgallion1/msgexport/internal/config"
	"github.com/dgallion1/msgexport/internal/docxrender"
	"github.com/dgallion1/msgexport/internal/parser"
	"github.com/dgallion1/msgexport/internal/pdfrender"
	"github.com/dgallion1/msgexport/internal/render"
	"github.com/dgallion1/msgexport/internal/save"
)

// Result is one rendered document.
type Result struct {
	Filename    string
	ContentType string
	Data        []byte
	Blocks      int
}

// Orchestrator turns chat messages into exported documents: parse once,
// render in the requested format, then hand the blob to a Saver.
type Orchestrator struct {
	renderers map[render.Format]render.Renderer
	saver     save.Saver
	log       *slog.Logger
	cfg       config.Config
	now       func() time.Time
}

// NewOrchestrator creates the export pipeline. saver receives every
// document passed to Export.
func NewOrchestrator(cfg config.Config, saver save.Saver, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		renderers: map[render.Format]render.Renderer{
			render.FormatPDF:  pdfrender.New(log, pdfrender.Options{MarginMM: cfg.MarginMM}),
			render.FormatDOCX: docxrender.New(log),
		},
		saver: saver,
		log:   log,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Render produces the document without saving it.
func (o *Orchestrator) Render(ctx context.Context, content string, format render.Format, tmpl *render.Template) (*Result, error) {
	return o.render(ctx, content, format, tmpl, 0)
}

// render does the work of Render. A positive seq is appended to the
// filename so batch members never share a name.
func (o *Orchestrator) render(ctx context.Context, content string, format render.Format, tmpl *render.Template, seq int) (*Result, error) {
	start := o.now()
	if strings.TrimSpace(content) == "" {
		return nil, ErrEmptyContent
	}
	r, ok := o.renderers[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if tmpl != nil {
		t := *tmpl
		if err := t.Validate(); err != nil {
			return nil, err
		}
		tmpl = &t
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	doc := parser.Build(content)
	data, err := r.Render(ctx, doc, tmpl)
	if err != nil {
		return nil, fmt.Errorf("render %s: %w", format, err)
	}

	res := &Result{
		Filename:    o.filename(r.Extension(), tmpl != nil, seq),
		ContentType: r.ContentType(),
		Data:        data,
		Blocks:      len(doc.Blocks),
	}
	o.log.Info("document rendered",
		"format", format,
		"filename", res.Filename,
		"blocks", res.Blocks,
		"bytes", len(data),
		"duration_ms", o.now().Sub(start).Milliseconds(),
	)
	return res, nil
}

// Export renders the document and saves it with the orchestrator's saver.
func (o *Orchestrator) Export(ctx context.Context, content string, format render.Format, tmpl *render.Template) (*Result, error) {
	return o.ExportWith(ctx, o.saver, content, format, tmpl)
}

// ExportWith renders the document and saves it with saver. Nothing is
// saved when rendering fails.
func (o *Orchestrator) ExportWith(ctx context.Context, saver save.Saver, content string, format render.Format, tmpl *render.Template) (*Result, error) {
	if saver == nil {
		return nil, fmt.Errorf("export: no saver configured")
	}
	res, err := o.Render(ctx, content, format, tmpl)
	if err != nil {
		return nil, err
	}
	if err := o.store(ctx, saver, res); err != nil {
		return nil, err
	}
	return res, nil
}

func (o *Orchestrator) store(ctx context.Context, saver save.Saver, res *Result) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := saver.Save(ctx, res.Data, res.Filename); err != nil {
		return fmt.Errorf("save %s: %w", res.Filename, err)
	}
	o.log.Info("document saved", "filename", res.Filename)
	return nil
}

// filename is response_<ms>.<ext> for the standard layout and
// custom_doc_<ms>.<ext> when a template is used.
func (o *Orchestrator) filename(ext string, custom bool, seq int) string {
	prefix := "response_"
	if custom {
		prefix = "custom_doc_"
	}
	name := fmt.Sprintf("%s%d", prefix, o.now().UnixMilli())
	if seq > 0 {
		name += fmt.Sprintf("_%d", seq)
	}
	return name + ext
}
