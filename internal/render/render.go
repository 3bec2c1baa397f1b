// Package render defines what the document renderers share: the Renderer
// interface, output formats and the custom template options.
package render

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgallion1/msgexport/internal/doctree"
)

// Renderer lays out a block model in one output format.
type Renderer interface {
	Render(ctx context.Context, doc *doctree.Document, tmpl *Template) ([]byte, error)
	Extension() string
	ContentType() string
}

// Format is an output format name.
type Format string

const (
	FormatPDF  Format = "pdf"
	FormatDOCX Format = "docx"
)

// Extension returns the file extension for f, with the leading dot.
func (f Format) Extension() string { return "." + string(f) }

// ContentType returns the MIME type of documents in format f.
func (f Format) ContentType() string {
	switch f {
	case FormatPDF:
		return "application/pdf"
	case FormatDOCX:
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	}
	return "application/octet-stream"
}

// ParseFormat accepts a format name in any case, with or without a
// leading dot.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(s)), "."))
	switch f {
	case FormatPDF, FormatDOCX:
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q", s)
}

// Variant selects the template layout.
type Variant string

const (
	VariantSimple Variant = "simple"
	VariantHeader Variant = "header"
	VariantFooter Variant = "footer"
)

// Font is one of the base font families every renderer supports.
type Font string

const (
	FontHelvetica Font = "helvetica"
	FontTimes     Font = "times"
	FontCourier   Font = "courier"
)

// Anchor is the horizontal logo position.
type Anchor string

const (
	AnchorLeft   Anchor = "top-left"
	AnchorRight  Anchor = "top-right"
	AnchorCenter Anchor = "top-center"
)

// Layout constants shared by the renderers.
const (
	LogoHeightMM = 20.0
	MarginMM     = 15.0
)

// Template holds the user's custom document options. A nil *Template means
// the standard layout.
type Template struct {
	Variant         Variant `json:"variant" yaml:"variant"`
	Font            Font    `json:"font" yaml:"font"`
	Logo            string  `json:"logo,omitempty" yaml:"logo,omitempty"` // base64 data URI
	LogoPosition    Anchor  `json:"logoPosition,omitempty" yaml:"logoPosition,omitempty"`
	SenderText      string  `json:"senderText,omitempty" yaml:"senderText,omitempty"`
	RecipientText   string  `json:"recipientText,omitempty" yaml:"recipientText,omitempty"`
	FooterText      string  `json:"footerText,omitempty" yaml:"footerText,omitempty"`
	ShowPageNumbers bool    `json:"showPageNumbers" yaml:"showPageNumbers"`
}

// ErrInvalidTemplate is returned for unknown variants, fonts or anchors.
var ErrInvalidTemplate = errors.New("invalid template")

// Validate fills defaults and rejects unknown enum values.
func (t *Template) Validate() error {
	if t.Variant == "" {
		t.Variant = VariantSimple
	}
	if t.Font == "" {
		t.Font = FontHelvetica
	}
	if t.LogoPosition == "" {
		t.LogoPosition = AnchorLeft
	}

	switch t.Variant {
	case VariantSimple, VariantHeader, VariantFooter:
	default:
		return fmt.Errorf("%w: variant %q", ErrInvalidTemplate, t.Variant)
	}
	switch t.Font {
	case FontHelvetica, FontTimes, FontCourier:
	default:
		return fmt.Errorf("%w: font %q", ErrInvalidTemplate, t.Font)
	}
	switch t.LogoPosition {
	case AnchorLeft, AnchorRight, AnchorCenter:
	default:
		return fmt.Errorf("%w: logo position %q", ErrInvalidTemplate, t.LogoPosition)
	}
	return nil
}

// FontOf returns the template font, or helvetica for the standard layout.
func FontOf(t *Template) Font {
	if t == nil || t.Font == "" {
		return FontHelvetica
	}
	return t.Font
}

// HasHeader reports whether the sender/recipient header block is drawn.
func (t *Template) HasHeader() bool {
	return t != nil && t.Variant == VariantHeader && (t.SenderText != "" || t.RecipientText != "")
}

// HasFooter reports whether the footer text block is drawn.
func (t *Template) HasFooter() bool {
	return t != nil && t.Variant == VariantFooter && strings.TrimSpace(t.FooterText) != ""
}

// PageNumbers reports whether page numbers are drawn.
func (t *Template) PageNumbers() bool {
	return t != nil && t.ShowPageNumbers
}

// Lines splits multi-line template text, dropping trailing blank lines.
func Lines(s string) []string {
	s = strings.TrimRight(strings.ReplaceAll(s, "\r\n", "\n"), "\n ")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
