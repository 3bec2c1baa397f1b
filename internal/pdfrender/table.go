package pdfrender

import (
	"github.com/dgallion1/msgexport/internal/doctree"
	"github.com/dgallion1/msgexport/internal/richtext"
)

const (
	cellPad     = 1.5
	minColWidth = 18.0
)

// headerFill is the header row background.
var headerFill = [3]int{41, 128, 185}

// tableRow is a measured row: translated, wrapped cell lines and height.
type tableRow struct {
	cells  [][]string
	height float64
	header bool
}

// table draws an auto-layout grid. The header row repeats at the top of
// every page the table continues on.
func (l *layout) table(t *doctree.Table) {
	if t.Columns() == 0 {
		return
	}
	widths := l.columnWidths(t)
	header := l.measureRow(t.Header, widths, true)

	l.pager.y += 1
	first := 0.0
	if len(t.Rows) > 0 {
		first = l.measureRow(t.Rows[0], widths, false).height
	}
	l.pager.reserve(header.height + first)
	l.drawRow(header, widths)

	for _, cells := range t.Rows {
		row := l.measureRow(cells, widths, false)
		if l.pager.reserve(row.height) {
			l.drawRow(header, widths)
		}
		l.drawRow(row, widths)
	}
	l.pager.y += 3
}

// columnWidths sizes columns by their widest cell, clamps them to a
// minimum and scales the set to the content width.
func (l *layout) columnWidths(t *doctree.Table) []float64 {
	n := t.Columns()
	contentW := l.contentWidth()
	widths := make([]float64, n)

	l.setFont("B", tableSize, false)
	for i, h := range t.Header {
		widths[i] = l.width(richtext.CleanCellText(h)) + 2*cellPad
	}
	l.setFont("", tableSize, false)
	for _, row := range t.Rows {
		for i, c := range row {
			if w := l.width(richtext.CleanCellText(c)) + 2*cellPad; w > widths[i] {
				widths[i] = w
			}
		}
	}

	var sum float64
	for i := range widths {
		widths[i] = min(max(widths[i], minColWidth), contentW)
		sum += widths[i]
	}
	for i := range widths {
		widths[i] *= contentW / sum
	}
	return widths
}

func (l *layout) measureRow(cells []string, widths []float64, header bool) tableRow {
	style := ""
	if header {
		style = "B"
	}
	l.setFont(style, tableSize, false)

	row := tableRow{cells: make([][]string, len(widths)), header: header}
	most := 1
	for i := range widths {
		var text string
		if i < len(cells) {
			text = l.tr(richtext.CleanCellText(cells[i]))
		}
		lines := []string{""}
		if text != "" {
			lines = lines[:0]
			for _, b := range l.pdf.SplitLines([]byte(text), widths[i]-2*cellPad) {
				lines = append(lines, string(b))
			}
		}
		row.cells[i] = lines
		most = max(most, len(lines))
	}
	row.height = float64(most)*lineHeight(tableSize) + 2*cellPad
	return row
}

func (l *layout) drawRow(row tableRow, widths []float64) {
	lh := lineHeight(tableSize)
	y := l.pager.y
	x := l.margin

	style := ""
	if row.header {
		style = "B"
	}
	l.pdf.SetDrawColor(200, 200, 200)
	l.pdf.SetLineWidth(0.2)
	for i, w := range widths {
		if row.header {
			l.pdf.SetFillColor(headerFill[0], headerFill[1], headerFill[2])
			l.pdf.Rect(x, y, w, row.height, "FD")
			l.pdf.SetTextColor(255, 255, 255)
		} else {
			l.pdf.Rect(x, y, w, row.height, "D")
			l.pdf.SetTextColor(0, 0, 0)
		}
		l.setFont(style, tableSize, false)
		for j, line := range row.cells[i] {
			top := y + cellPad + float64(j)*lh
			// Lines are already translated.
			l.pdf.Text(x+cellPad, baseline(top, lh, tableSize), line)
		}
		x += w
	}
	l.pdf.SetTextColor(0, 0, 0)
	l.pager.y += row.height
}
