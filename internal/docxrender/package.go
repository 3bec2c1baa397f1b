package docxrender

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
)

// go-docx writes the body but does not model section properties or
// header/footer parts, so they are patched into the package after
// serialization.

const (
	documentPart     = "word/document.xml"
	relsPart         = "word/_rels/document.xml.rels"
	contentTypesPart = "[Content_Types].xml"
	stylesPart       = "word/styles.xml"
	footerPartName   = "word/footer1.xml"

	nsW = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	nsR = "http://schemas.openxmlformats.org/officeDocument/2006/relationships"
)

var (
	sectPrRe      = regexp.MustCompile(`(?s)<w:sectPr\b[^>]*/>|<w:sectPr\b.*?</w:sectPr>`)
	relIDRe       = regexp.MustCompile(`Id="rId(\d+)"`)
	defaultParaRe = regexp.MustCompile(`<w:style w:type="paragraph" w:default="1" w:styleId="([^"]+)"`)
	styleIDRe     = regexp.MustCompile(`w:styleId="([^"]+)"`)
)

// paragraphStyles are the styles the body refers to by ID. The go-docx
// default theme defines none of them.
var paragraphStyles = []struct {
	id, name, pPr, rPr string
}{
	{"Heading1", "heading 1", `<w:keepNext/><w:spacing w:before="240" w:after="120"/><w:outlineLvl w:val="0"/>`, `<w:b/><w:sz w:val="36"/>`},
	{"Heading2", "heading 2", `<w:keepNext/><w:spacing w:before="200" w:after="100"/><w:outlineLvl w:val="1"/>`, `<w:b/><w:sz w:val="30"/>`},
	{"Heading3", "heading 3", `<w:keepNext/><w:spacing w:before="160" w:after="80"/><w:outlineLvl w:val="2"/>`, `<w:b/><w:sz w:val="26"/>`},
	{"ListParagraph", "List Paragraph", `<w:ind w:left="720"/>`, ``},
}

// footerPart is the footer content: text lines above an optional
// "{PAGE} / {NUMPAGES}" line.
type footerPart struct {
	lines   []string
	numbers bool
	font    string
}

// finishPackage rewrites the zip with A4 section properties and, when
// footer is set, a footer part referenced from the section.
func finishPackage(pkg []byte, footer *footerPart) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(pkg), int64(len(pkg)))
	if err != nil {
		return nil, fmt.Errorf("open package: %w", err)
	}

	parts := make([][]byte, len(zr.File))
	var relID string
	for i, f := range zr.File {
		if parts[i], err = readPart(f); err != nil {
			return nil, err
		}
		if footer != nil && f.Name == relsPart {
			relID = nextRelID(parts[i])
		}
	}
	if footer != nil && relID == "" {
		return nil, fmt.Errorf("package has no %s", relsPart)
	}

	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	for i, f := range zr.File {
		data := parts[i]
		switch f.Name {
		case documentPart:
			data = patchDocument(data, relID)
		case stylesPart:
			data = patchStyles(data)
		case relsPart:
			if footer != nil {
				data = insertBefore(data, "</Relationships>", fmt.Sprintf(
					`<Relationship Id="%s" Type="%s/footer" Target="footer1.xml"/>`, relID, nsR))
			}
		case contentTypesPart:
			if footer != nil {
				data = insertBefore(data, "</Types>",
					`<Override PartName="/word/footer1.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.footer+xml"/>`)
			}
		}
		if err := writePart(zw, f.Name, data); err != nil {
			return nil, err
		}
	}
	if footer != nil {
		if err := writePart(zw, footerPartName, footer.xml()); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("close package: %w", err)
	}
	return out.Bytes(), nil
}

func readPart(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", f.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", f.Name, err)
	}
	return data, nil
}

func writePart(zw *zip.Writer, name string, data []byte) error {
	w, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Deflate})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}

// nextRelID returns the relationship ID after the highest rId<n> in rels.
// Readers, go-docx among them, reject IDs that are not of that form.
func nextRelID(rels []byte) string {
	var top uint64
	for _, m := range relIDRe.FindAllSubmatch(rels, -1) {
		if n, err := strconv.ParseUint(string(m[1]), 10, 64); err == nil && n > top {
			top = n
		}
	}
	return "rId" + strconv.FormatUint(top+1, 10)
}

// patchStyles adds the heading and list styles the body refers to,
// skipping any the styles part already defines.
func patchStyles(styles []byte) []byte {
	defined := make(map[string]bool)
	for _, m := range styleIDRe.FindAllSubmatch(styles, -1) {
		defined[string(m[1])] = true
	}
	var basedOn string
	if m := defaultParaRe.FindSubmatch(styles); m != nil {
		basedOn = fmt.Sprintf(`<w:basedOn w:val="%s"/><w:next w:val="%[1]s"/>`, m[1])
	}

	var b strings.Builder
	for _, st := range paragraphStyles {
		if defined[st.id] {
			continue
		}
		fmt.Fprintf(&b, `<w:style w:type="paragraph" w:styleId="%s"><w:name w:val="%s"/>%s<w:qFormat/><w:pPr>%s</w:pPr>`,
			st.id, st.name, basedOn, st.pPr)
		if st.rPr != "" {
			fmt.Fprintf(&b, "<w:rPr>%s</w:rPr>", st.rPr)
		}
		b.WriteString("</w:style>")
	}
	if b.Len() == 0 {
		return styles
	}
	return insertBefore(styles, "</w:styles>", b.String())
}

// patchDocument replaces any section properties with A4 ones and makes
// sure the relationships namespace is declared. An empty footerRelID
// leaves the section without a footer.
func patchDocument(doc []byte, footerRelID string) []byte {
	withFooter := footerRelID != ""
	s := sectPrRe.ReplaceAllString(string(doc), "")

	var sect strings.Builder
	sect.WriteString("<w:sectPr>")
	if withFooter {
		fmt.Fprintf(&sect, `<w:footerReference w:type="default" r:id="%s"/>`, footerRelID)
	}
	fmt.Fprintf(&sect, `<w:pgSz w:w="%d" w:h="%d"/>`, pageWidthTwips, pageHeightTwips)
	fmt.Fprintf(&sect, `<w:pgMar w:top="%d" w:right="%d" w:bottom="%d" w:left="%d" w:header="567" w:footer="567" w:gutter="0"/>`,
		marginTwips, marginTwips, marginTwips, marginTwips)
	sect.WriteString("</w:sectPr>")

	if i := strings.LastIndex(s, "</w:body>"); i >= 0 {
		s = s[:i] + sect.String() + s[i:]
	}
	if withFooter && !strings.Contains(s, "xmlns:r=") {
		s = strings.Replace(s, "<w:document ", `<w:document xmlns:r="`+nsR+`" `, 1)
	}
	return []byte(s)
}

func insertBefore(data []byte, marker, fragment string) []byte {
	s := string(data)
	i := strings.LastIndex(s, marker)
	if i < 0 {
		return data
	}
	return []byte(s[:i] + fragment + s[i:])
}

// xml renders the footer part.
func (f *footerPart) xml() []byte {
	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	fmt.Fprintf(&b, `<w:ftr xmlns:w="%s" xmlns:r="%s">`, nsW, nsR)

	for i, line := range f.lines {
		b.WriteString("<w:p><w:pPr>")
		if i == 0 {
			b.WriteString(`<w:pBdr><w:top w:val="single" w:sz="6" w:space="4" w:color="808080"/></w:pBdr>`)
		}
		b.WriteString("</w:pPr>")
		b.WriteString(f.textRun(line))
		b.WriteString("</w:p>")
	}

	if f.numbers {
		b.WriteString(`<w:p><w:pPr><w:jc w:val="right"/></w:pPr>`)
		b.WriteString(`<w:fldSimple w:instr=" PAGE ">` + f.textRun("1") + `</w:fldSimple>`)
		b.WriteString(f.textRun(" / "))
		b.WriteString(`<w:fldSimple w:instr=" NUMPAGES ">` + f.textRun("1") + `</w:fldSimple>`)
		b.WriteString("</w:p>")
	}

	b.WriteString("</w:ftr>")
	return []byte(b.String())
}

func (f *footerPart) textRun(text string) string {
	var esc bytes.Buffer
	_ = xml.EscapeText(&esc, []byte(text))
	return fmt.Sprintf(`<w:r><w:rPr><w:rFonts w:ascii="%[1]s" w:hAnsi="%[1]s" w:cs="%[1]s"/><w:color w:val="595959"/><w:sz w:val="%[2]s"/></w:rPr><w:t xml:space="preserve">%[3]s</w:t></w:r>`,
		f.font, smallHalfPts, esc.String())
}
