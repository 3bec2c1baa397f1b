// Package inspect reads exported documents back: page count and text for
// PDF, paragraphs, tables and footer for DOCX.
package inspect

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Paragraph is one body paragraph of a flow document.
type Paragraph struct {
	Style string
	Level int // Heading level, 0 for body text
	Text  string
}

// Report describes an exported document.
type Report struct {
	Format string

	// PDF
	Pages    int
	PageText []string

	// DOCX
	Paragraphs   []Paragraph
	Tables       int
	Footer       string
	FooterFields []string // Field instructions such as PAGE
}

// Text returns all readable text in the document.
func (r *Report) Text() string {
	if r.Format == "pdf" {
		return strings.Join(r.PageText, "\f")
	}
	parts := make([]string, 0, len(r.Paragraphs)+1)
	for _, p := range r.Paragraphs {
		parts = append(parts, p.Text)
	}
	if r.Footer != "" {
		parts = append(parts, r.Footer)
	}
	return strings.Join(parts, "\n")
}

// Reader reads one document format.
type Reader interface {
	Read(r io.ReaderAt, size int64) (*Report, error)
}

// ForFile returns the reader for a filename's extension.
func ForFile(filename string) (Reader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".pdf":
		return &PDFReader{}, nil
	case ".docx":
		return &DOCXReader{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// File inspects a document on disk.
func File(path string) (*Report, error) {
	rd, err := ForFile(path)
	if err != nil {
		return nil, err
	}
	return ReadFile(rd, path)
}

// ReadFile inspects a document on disk with a specific reader.
func ReadFile(rd Reader, path string) (*Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	return rd.Read(f, info.Size())
}

// PDF inspects an in-memory PDF.
func PDF(data []byte) (*Report, error) {
	return (&PDFReader{}).Read(bytes.NewReader(data), int64(len(data)))
}

// DOCX inspects an in-memory DOCX.
func DOCX(data []byte) (*Report, error) {
	return (&DOCXReader{}).Read(bytes.NewReader(data), int64(len(data)))
}
