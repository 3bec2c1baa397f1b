package inspect

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"strings"

	pdflib "github.com/ledongthuc/pdf"
)

// PDFReader extracts page text with ledongthuc/pdf. With
// FallbackPdftotext set it retries through the pdftotext binary when the
// library cannot read the file.
type PDFReader struct {
	FallbackPdftotext bool
}

func (p *PDFReader) Read(r io.ReaderAt, size int64) (*Report, error) {
	pages, err := extractPDFText(r, size)
	if err != nil && p.FallbackPdftotext {
		pages, err = extractPdftotext(io.NewSectionReader(r, 0, size))
	}
	if err != nil {
		return nil, fmt.Errorf("extract pdf text: %w", err)
	}
	return &Report{Format: "pdf", Pages: len(pages), PageText: pages}, nil
}

func extractPDFText(r io.ReaderAt, size int64) ([]string, error) {
	reader, err := pdflib.NewReader(r, size)
	if err != nil {
		return nil, err
	}

	numPages := reader.NumPage()
	pages := make([]string, 0, numPages)
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", i, err)
		}
		pages = append(pages, text)
	}
	return pages, nil
}

func extractPdftotext(r io.Reader) ([]string, error) {
	cmd := exec.Command("pdftotext", "-layout", "-", "-")
	cmd.Stdin = r
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("pdftotext: %w", err)
	}
	// pdftotext ends every page with a form feed.
	text := strings.TrimSuffix(string(bytes.TrimRight(out, "\n")), "\f")
	return strings.Split(text, "\f"), nil
}
