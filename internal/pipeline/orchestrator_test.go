package pipeline

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dgallion1/msgexport/internal/config"
	"github.com/dgallion1/msgexport/internal/render"
	"github.com/dgallion1/msgexport/internal/save"
)

type memSaver struct {
	mu    sync.Mutex
	files map[string][]byte
	err   error
}

func (m *memSaver) Save(ctx context.Context, blob []byte, filename string) error {
	if m.err != nil {
		return m.err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.files == nil {
		m.files = make(map[string][]byte)
	}
	m.files[filename] = blob
	return nil
}

func testOrchestrator(saver save.Saver) *Orchestrator {
	cfg := config.Config{MaxConcurrentExports: 2, MaxBatchSize: 5, MarginMM: 15}
	o := NewOrchestrator(cfg, saver, slog.New(slog.NewTextHandler(io.Discard, nil)))
	o.now = func() time.Time { return time.UnixMilli(1700000000123) }
	return o
}

func TestExport_PDF(t *testing.T) {
	saver := &memSaver{}
	o := testOrchestrator(saver)

	res, err := o.Export(context.Background(), "# Hi\n\nSome text", render.FormatPDF, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Filename != "response_1700000000123.pdf" {
		t.Errorf("expected response_1700000000123.pdf, got %q", res.Filename)
	}
	if res.ContentType != "application/pdf" {
		t.Errorf("expected application/pdf, got %q", res.ContentType)
	}
	if res.Blocks != 3 {
		t.Errorf("expected 3 blocks, got %d", res.Blocks)
	}
	saved, ok := saver.files[res.Filename]
	if !ok || !bytes.HasPrefix(saved, []byte("%PDF-")) {
		t.Error("expected PDF saved under its filename")
	}
}

func TestExport_TemplateFilename(t *testing.T) {
	saver := &memSaver{}
	o := testOrchestrator(saver)

	tmpl := &render.Template{Variant: render.VariantFooter, FooterText: "Acme"}
	res, err := o.Export(context.Background(), "Body", render.FormatDOCX, tmpl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Filename != "custom_doc_1700000000123.docx" {
		t.Errorf("expected custom_doc_1700000000123.docx, got %q", res.Filename)
	}
	if !bytes.HasPrefix(res.Data, []byte("PK")) {
		t.Error("expected a zip package")
	}
	if tmpl.Font != "" {
		t.Error("expected caller's template left unmodified")
	}
}

func TestExport_Errors(t *testing.T) {
	o := testOrchestrator(&memSaver{})
	ctx := context.Background()

	tests := []struct {
		name    string
		content string
		format  render.Format
		tmpl    *render.Template
		want    error
	}{
		{"empty", "", render.FormatPDF, nil, ErrEmptyContent},
		{"whitespace", " \n\t ", render.FormatDOCX, nil, ErrEmptyContent},
		{"format", "text", render.Format("odt"), nil, ErrUnsupportedFormat},
		{"variant", "text", render.FormatPDF, &render.Template{Variant: "letterhead"}, ErrInvalidTemplate},
		{"font", "text", render.FormatPDF, &render.Template{Font: "comic"}, ErrInvalidTemplate},
		{"anchor", "text", render.FormatDOCX, &render.Template{LogoPosition: "bottom"}, ErrInvalidTemplate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := o.Export(ctx, tt.content, tt.format, tt.tmpl)
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestExport_SaveFailure(t *testing.T) {
	boom := errors.New("disk full")
	o := testOrchestrator(&memSaver{err: boom})
	_, err := o.Export(context.Background(), "text", render.FormatPDF, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected save error, got %v", err)
	}
	if !strings.Contains(err.Error(), "response_1700000000123.pdf") {
		t.Errorf("expected filename in error, got %q", err)
	}
}

func TestExport_NoSaveOnRenderFailure(t *testing.T) {
	saver := &memSaver{}
	o := testOrchestrator(saver)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := o.Export(ctx, "text", render.FormatPDF, nil); err == nil {
		t.Fatal("expected error for canceled context")
	}
	if len(saver.files) != 0 {
		t.Errorf("expected nothing saved, got %d files", len(saver.files))
	}
}

func TestExport_DirSaver(t *testing.T) {
	dir := t.TempDir()
	o := testOrchestrator(&save.DirSaver{Dir: dir})
	res, err := o.Export(context.Background(), "| a | b |\n|---|---|\n| 1 | 2 |", render.FormatDOCX, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	data, err := os.ReadFile((&save.DirSaver{Dir: dir}).Path(res.Filename))
	if err != nil {
		t.Fatalf("read saved file: %v", err)
	}
	if !bytes.Equal(data, res.Data) {
		t.Error("expected saved bytes to match result")
	}
}

func TestRender_DoesNotSave(t *testing.T) {
	saver := &memSaver{}
	o := testOrchestrator(saver)
	if _, err := o.Render(context.Background(), "text", render.FormatPDF, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(saver.files) != 0 {
		t.Errorf("expected nothing saved, got %d files", len(saver.files))
	}
}

func TestExportWith_NilSaver(t *testing.T) {
	o := testOrchestrator(nil)
	if _, err := o.Export(context.Background(), "text", render.FormatPDF, nil); err == nil {
		t.Fatal("expected error without a saver")
	}
}
