package inspect

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/fumiama/go-docx"
)

// DOCXReader reads body paragraphs with go-docx and the footer part, which
// go-docx does not model, straight from the package.
type DOCXReader struct{}

func (d *DOCXReader) Read(r io.ReaderAt, size int64) (*Report, error) {
	doc, err := docx.Parse(r, size)
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	rep := &Report{Format: "docx"}
	for _, item := range doc.Document.Body.Items {
		switch it := item.(type) {
		case *docx.Paragraph:
			style := ""
			if it.Properties != nil && it.Properties.Style != nil {
				style = it.Properties.Style.Val
			}
			rep.Paragraphs = append(rep.Paragraphs, Paragraph{
				Style: style,
				Level: docxHeadingLevel(style),
				Text:  docxParagraphText(it),
			})
		case *docx.Table:
			rep.Tables++
		}
	}

	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("open docx package: %w", err)
	}
	for _, f := range zr.File {
		if !strings.HasPrefix(f.Name, "word/footer") || !strings.HasSuffix(f.Name, ".xml") {
			continue
		}
		text, fields, err := footerText(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}
		rep.Footer = strings.TrimSpace(rep.Footer + " " + text)
		rep.FooterFields = append(rep.FooterFields, fields...)
	}
	return rep, nil
}

func docxHeadingLevel(style string) int {
	for level := 1; level <= 6; level++ {
		if strings.EqualFold(style, fmt.Sprintf("Heading%d", level)) ||
			strings.EqualFold(style, fmt.Sprintf("heading %d", level)) {
			return level
		}
	}
	return 0
}

func docxParagraphText(para *docx.Paragraph) string {
	var buf strings.Builder
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
	}
	return strings.TrimSpace(buf.String())
}

// footerText collects w:t text and field instructions from a footer part.
func footerText(f *zip.File) (string, []string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()

	var (
		buf    strings.Builder
		fields []string
		inText bool
	)
	dec := xml.NewDecoder(rc)
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "t":
				inText = true
			case "fldSimple":
				for _, a := range t.Attr {
					if a.Name.Local == "instr" {
						fields = append(fields, strings.TrimSpace(a.Value))
					}
				}
			case "p":
				if buf.Len() > 0 {
					buf.WriteByte('\n')
				}
			}
		case xml.EndElement:
			if t.Name.Local == "t" {
				inText = false
			}
		case xml.CharData:
			if inText {
				buf.Write(t)
			}
		}
	}
	return strings.TrimSpace(buf.String()), fields, nil
}
