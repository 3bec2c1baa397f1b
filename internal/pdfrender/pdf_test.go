package pdfrender

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/dgallion1/msgexport/internal/inspect"
	"github.com/dgallion1/msgexport/internal/parser"
	"github.com/dgallion1/msgexport/internal/render"
	"github.com/dgallion1/msgexport/internal/richtext"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func renderText(t *testing.T, content string, tmpl *render.Template) *inspect.Report {
	t.Helper()
	r := New(testLogger(), Options{})
	data, err := r.Render(context.Background(), parser.Build(content), tmpl)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("%PDF-")) {
		t.Fatalf("expected PDF header, got %q", data[:min(len(data), 8)])
	}
	rep, err := inspect.PDF(data)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	return rep
}

func TestPager_NeverDrawsPastBottom(t *testing.T) {
	pages := 1
	p := &pager{y: 15, top: 15, bottom: 100}
	p.newPage = func() { pages++ }

	heights := []float64{10, 20, 30, 25, 5, 40, 12, 8, 33}
	for _, h := range heights {
		broke := p.reserve(h)
		if p.y+h > p.bottom {
			t.Fatalf("item of height %v placed at %v past bottom %v", h, p.y, p.bottom)
		}
		if broke && p.y != p.top {
			t.Errorf("expected cursor at top after break, got %v", p.y)
		}
		p.y += h
	}
	if pages != 3 {
		t.Errorf("expected 3 pages, got %d", pages)
	}
}

func TestPager_OversizedItemAtTop(t *testing.T) {
	pages := 1
	p := &pager{y: 15, top: 15, bottom: 100, newPage: func() { pages++ }}
	if p.reserve(500) {
		t.Error("expected no break for oversized item at the top of a page")
	}
	if pages != 1 {
		t.Errorf("expected 1 page, got %d", pages)
	}
}

func TestWrap_RespectsWidth(t *testing.T) {
	l := newLayout(testLogger(), render.MarginMM, render.FontHelvetica)
	spans := []richtext.Span{
		{Text: "The quick brown fox jumps over the "},
		{Text: "lazy", Bold: true},
		{Text: " dog and keeps running through a "},
		{Text: "supercalifragilisticexpialidocious", Italic: true},
		{Text: " field."},
	}
	const maxW = 40.0
	lines := l.wrap(spans, bodySize, maxW)
	if len(lines) < 3 {
		t.Fatalf("expected several lines, got %d", len(lines))
	}

	var words []string
	for i, ln := range lines {
		if ln.width > maxW+0.01 {
			t.Errorf("line %d is %.2fmm wide, limit %.2f", i, ln.width, maxW)
		}
		var b strings.Builder
		for _, p := range ln.pieces {
			b.WriteString(p.text)
		}
		words = append(words, strings.Fields(b.String())...)
	}
	joined := strings.Join(words, " ")
	if !strings.Contains(joined, "lazy dog") {
		t.Errorf("expected words kept in order, got %q", joined)
	}
}

func TestWrap_SplitsLongWord(t *testing.T) {
	l := newLayout(testLogger(), render.MarginMM, render.FontHelvetica)
	word := strings.Repeat("x", 200)
	lines := l.wrap([]richtext.Span{{Text: word}}, bodySize, 30)
	if len(lines) < 2 {
		t.Fatalf("expected word split across lines, got %d", len(lines))
	}
	var total int
	for _, ln := range lines {
		for _, p := range ln.pieces {
			total += len(p.text)
		}
	}
	if total != 200 {
		t.Errorf("expected all 200 runes kept, got %d", total)
	}
}

func TestRender_Basic(t *testing.T) {
	content := "# Quarterly Report\n\nHello **world** with _style_.\n\n- first point\n- second point\n\n| Name | Score |\n|---|---|\n| Ada | 42 |\n\n```go\nfmt.Println(\"hi\")\n```\n$$\\frac{a}{b}$$"
	rep := renderText(t, content, nil)

	if rep.Pages != 1 {
		t.Errorf("expected 1 page, got %d", rep.Pages)
	}
	text := rep.Text()
	for _, want := range []string{"Quarterly Report", "Hello", "world", "first point", "Name", "Ada", "42", "Println", "(a)/(b)"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected page text to contain %q, got %q", want, text)
		}
	}
}

func TestRender_Paginates(t *testing.T) {
	var b strings.Builder
	for i := 1; i <= 120; i++ {
		fmt.Fprintf(&b, "Line number %d of a long answer\n", i)
	}
	rep := renderText(t, b.String(), &render.Template{ShowPageNumbers: true})

	if rep.Pages < 2 {
		t.Fatalf("expected several pages, got %d", rep.Pages)
	}
	last := rep.PageText[rep.Pages-1]
	label := fmt.Sprintf("%d / %d", rep.Pages, rep.Pages)
	if !strings.Contains(last, label) {
		t.Errorf("expected last page to contain %q, got %q", label, last)
	}
	if !strings.Contains(rep.PageText[0], fmt.Sprintf("1 / %d", rep.Pages)) {
		t.Errorf("expected first page number on page 1")
	}
	if !strings.Contains(rep.Text(), "Line number 120 of") {
		t.Error("expected final line to be rendered")
	}
}

func TestRender_TableHeaderRepeats(t *testing.T) {
	var b strings.Builder
	b.WriteString("| Ingredient | Amount |\n|---|---|\n")
	for i := 0; i < 90; i++ {
		fmt.Fprintf(&b, "| item%d | %d g |\n", i, i*10)
	}
	rep := renderText(t, b.String(), nil)
	if rep.Pages < 2 {
		t.Fatalf("expected table to span pages, got %d", rep.Pages)
	}
	for i, page := range rep.PageText {
		if !strings.Contains(page, "Ingredient") {
			t.Errorf("expected header on page %d", i+1)
		}
	}
}

func TestRender_FooterOnLastPageOnly(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 100; i++ {
		b.WriteString("filler text line\n")
	}
	rep := renderText(t, b.String(), &render.Template{Variant: render.VariantFooter, FooterText: "Confidential memo"})
	if rep.Pages < 2 {
		t.Fatalf("expected several pages, got %d", rep.Pages)
	}
	for i, page := range rep.PageText {
		has := strings.Contains(page, "Confidential memo")
		if last := i == rep.Pages-1; has != last {
			t.Errorf("page %d: footer present=%v, expected %v", i+1, has, last)
		}
	}
}

func TestRender_HeaderVariant(t *testing.T) {
	tmpl := &render.Template{
		Variant:       render.VariantHeader,
		Font:          render.FontTimes,
		SenderText:    "Acme Ltd\n1 Main Street",
		RecipientText: "Jordan Client",
	}
	rep := renderText(t, "Body text", tmpl)
	text := rep.Text()
	for _, want := range []string{"Acme Ltd", "1 Main Street", "Jordan Client", "Body text"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in %q", want, text)
		}
	}
}

func TestRender_Logo(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 60, 30))
	for x := 0; x < 60; x++ {
		img.Set(x, x/2, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	uri := "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())

	for _, anchor := range []render.Anchor{render.AnchorLeft, render.AnchorRight, render.AnchorCenter} {
		rep := renderText(t, "After logo", &render.Template{Logo: uri, LogoPosition: anchor})
		if !strings.Contains(rep.Text(), "After logo") {
			t.Errorf("%s: expected body text after logo", anchor)
		}
	}
}

func TestRender_BadLogoIsSkipped(t *testing.T) {
	rep := renderText(t, "Still exported", &render.Template{Logo: "data:image/png;base64,AAAA"})
	if !strings.Contains(rep.Text(), "Still exported") {
		t.Errorf("expected export to continue without logo, got %q", rep.Text())
	}
}

func TestRender_MathSymbolsLatinized(t *testing.T) {
	rep := renderText(t, `The value $\alpha \leq \beta$ holds`, nil)
	text := rep.Text()
	if !strings.Contains(text, "alpha <= beta") {
		t.Errorf("expected spelled-out symbols, got %q", text)
	}
}

func TestRender_CanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New(testLogger(), Options{}).Render(ctx, parser.Build("text"), nil)
	if err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestRendererMetadata(t *testing.T) {
	r := New(testLogger(), Options{})
	if r.Extension() != ".pdf" || r.ContentType() != "application/pdf" {
		t.Errorf("unexpected metadata %q %q", r.Extension(), r.ContentType())
	}
}
