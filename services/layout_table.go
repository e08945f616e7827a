package services

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type columnKind int

const (
	colIndex columnKind = iota
	colLocation
	colProfile
	colWidth
	colHeight
	colQty
	colDetails
	colPerItem
	colSubtotal
)

// tableColumn is one column of the items table. Columns are ordered from the
// rightmost (index 0) to the leftmost; right is the x of the column's right edge.
type tableColumn struct {
	kind  columnKind
	title string
	width float64 // 0 means "take the remaining width"
	wrap  bool
	right float64
}

func (c tableColumn) left() float64 { return c.right - c.width }

// quoteColumns is the column set of the items table, rightmost first.
func quoteColumns() []tableColumn {
	return []tableColumn{
		{kind: colIndex, title: "#", width: 22},
		{kind: colLocation, title: "מיקום", width: 62, wrap: true},
		{kind: colProfile, title: "פרופיל", width: 62, wrap: true},
		{kind: colWidth, title: "רוחב", width: 38},
		{kind: colHeight, title: "גובה", width: 38},
		{kind: colQty, title: "כמות", width: 32},
		{kind: colDetails, title: "פרטים ותוספות", wrap: true},
		{kind: colPerItem, title: "מחיר ליחידה", width: 66},
		{kind: colSubtotal, title: "סה\"כ", width: 72},
	}
}

// layoutColumns gives the flexible column the width left over so that all
// widths sum to contentWidth, then assigns each column's right edge as
// rightEdge minus the widths of every column to its right.
func layoutColumns(cols []tableColumn, contentWidth, rightEdge float64) ([]tableColumn, error) {
	out := make([]tableColumn, len(cols))
	copy(out, cols)

	var fixed float64
	flex := -1
	for i, c := range out {
		if c.width == 0 {
			if flex >= 0 {
				return nil, fmt.Errorf("table layout: more than one flexible column")
			}
			flex = i
			continue
		}
		fixed += c.width
	}

	if flex >= 0 {
		rest := contentWidth - fixed
		if rest < 40 {
			return nil, fmt.Errorf("table layout: content width %.2f leaves %.2f for column %q", contentWidth, rest, out[flex].title)
		}
		out[flex].width = rest
	} else if math.Abs(fixed-contentWidth) > 0.01 {
		return nil, fmt.Errorf("table layout: columns span %.2f, content width is %.2f", fixed, contentWidth)
	}

	offset := 0.0
	for i := range out {
		out[i].right = rightEdge - offset
		offset += out[i].width
	}
	return out, nil
}

// DetailsSummary joins an item's free-text details with a summary of its
// checked add-ons, e.g. "white frame — motor (350.00 ₪), mesh (80.00 ₪)".
func DetailsSummary(item LineItem) string {
	var addons []string
	for _, a := range item.Addons {
		if !a.Checked {
			continue
		}
		name := strings.TrimSpace(a.Name)
		if name == "" {
			name = "תוספת"
		}
		addons = append(addons, fmt.Sprintf("%s (%s)", name, FormatMoney(a.Price.Number())))
	}

	details := strings.TrimSpace(item.Details)
	summary := strings.Join(addons, ", ")
	switch {
	case details == "":
		return summary
	case summary == "":
		return details
	default:
		return details + " — " + summary
	}
}

// tableRow is an item prepared for drawing: the text of every cell, wrapped
// where the column wraps, and the resulting row height.
type tableRow struct {
	cells  [][]string
	height float64
}

func (l *quoteLayout) cellText(index int, item LineItem, kind columnKind) string {
	switch kind {
	case colIndex:
		return strconv.Itoa(index + 1)
	case colLocation:
		return item.Location
	case colProfile:
		return item.ProfileName
	case colWidth:
		return FormatQty(item.WidthCm.Number())
	case colHeight:
		return FormatQty(item.HeightCm.Number())
	case colQty:
		return FormatQty(math.Max(0, item.Qty.Number()))
	case colDetails:
		return DetailsSummary(item)
	case colPerItem:
		return FormatMoney(item.PerItemPrice)
	case colSubtotal:
		return FormatMoney(item.Subtotal)
	}
	return ""
}

// prepareRow wraps every variable-length cell to its column and sizes the row
// as max(1, most lines in any cell) * line height + row padding.
func (l *quoteLayout) prepareRow(index int, item LineItem) tableRow {
	row := tableRow{cells: make([][]string, len(l.cols))}
	maxLines := 1
	limit := l.maxCellLines()
	for i, col := range l.cols {
		text := l.cellText(index, item, col.kind)
		if col.wrap {
			row.cells[i] = l.clampLines(l.cv.WrapText(text, col.width-2*cellPad), limit, col.width-2*cellPad)
		} else if text != "" {
			row.cells[i] = []string{text}
		}
		if n := len(row.cells[i]); n > maxLines {
			maxLines = n
		}
	}
	row.height = float64(maxLines)*l.cfg.LineHeight + l.cfg.RowPadding
	return row
}

// maxCellLines is the most wrapped lines a cell may hold so that one row
// plus the table header fits on an empty page.
func (l *quoteLayout) maxCellLines() int {
	avail := l.bottomLimit() - l.cfg.Margin - l.cfg.HeaderRowH - l.cfg.RowPadding
	n := int(math.Floor(avail / l.cfg.LineHeight))
	if n < 1 {
		return 1
	}
	return n
}

// clampLines keeps the first limit lines and ends the last kept one with an
// ellipsis that still fits width.
func (l *quoteLayout) clampLines(lines []string, limit int, width float64) []string {
	if len(lines) <= limit {
		return lines
	}
	lines = lines[:limit]
	last := []rune(strings.TrimSpace(lines[limit-1]))
	for len(last) > 0 && l.cv.MeasureText(string(last)+"…") > width {
		last = last[:len(last)-1]
	}
	lines[limit-1] = strings.TrimSpace(string(last)) + "…"
	return lines
}

// drawTable draws the header row and the item rows. A row that would cross
// the bottom margin starts a new page with a fresh header, so rows are never
// split and the header is never left alone at the bottom of a page.
func (l *quoteLayout) drawTable() {
	l.cv.SetFont(FontRegular, l.cfg.BodyFontSize)
	rows := make([]tableRow, len(l.doc.Items))
	for i, item := range l.doc.Items {
		rows[i] = l.prepareRow(i, item)
	}

	first := 0.0
	if len(rows) > 0 {
		first = rows[0].height
	}
	if l.y+l.cfg.HeaderRowH+first > l.bottomLimit() {
		l.newPage()
	}
	l.drawTableHeader()

	for i, row := range rows {
		if l.y+row.height > l.bottomLimit() {
			l.newPage()
			l.drawTableHeader()
		}
		l.drawRow(i, row)
	}
}

func (l *quoteLayout) drawTableHeader() {
	h := l.cfg.HeaderRowH
	l.cv.SetFillColor(colorHeaderBg)
	l.cv.Rect(l.cfg.Margin, l.y, l.contentWidth(), h, RectOptions{Fill: true})

	l.cv.SetFont(FontBold, l.cfg.BodyFontSize)
	l.cv.SetTextColor(colorWhite)
	baseline := l.y + h/2 + l.cfg.BodyFontSize/3
	for _, col := range l.cols {
		l.textIn(col.title, col.left(), col.right, baseline, DirAuto, AlignCenter)
	}

	l.cv.SetTextColor(colorText)
	l.cv.SetFont(FontRegular, l.cfg.BodyFontSize)
	l.y += h
}

func (l *quoteLayout) drawRow(index int, row tableRow) {
	if index%2 == 1 {
		l.cv.SetFillColor(colorAltRow)
		l.cv.Rect(l.cfg.Margin, l.y, l.contentWidth(), row.height, RectOptions{Fill: true})
	}

	for i, col := range l.cols {
		l.cv.Rect(col.left(), l.y, col.width, row.height, RectOptions{Stroke: true})

		dir, align := DirAuto, AlignAuto
		switch col.kind {
		case colIndex, colWidth, colHeight, colQty:
			dir, align = DirLTR, AlignCenter
		case colPerItem, colSubtotal:
			dir, align = DirLTR, AlignRight
		}

		for k, line := range row.cells[i] {
			baseline := l.y + l.cfg.RowPadding/2 + l.cfg.LineHeight*float64(k+1) - 2.5
			l.textIn(line, col.left(), col.right, baseline, dir, align)
		}
	}
	l.y += row.height
}
