package services

import (
	"bytes"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const (
	quotesSheet = "Quotes"
	itemsSheet  = "Items"
)

var moneyNumFmt = `#,##0.00 "₪"`

// GenerateExcel creates a workbook with a "Quotes" sheet summarizing every
// saved quote of a customer and an "Items" sheet listing their line items.
// Both sheets are laid out right to left.
func GenerateExcel(data CustomerExport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), quotesSheet); err != nil {
		return nil, fmt.Errorf("set sheet name: %w", err)
	}
	if _, err := f.NewSheet(itemsSheet); err != nil {
		return nil, fmt.Errorf("create items sheet: %w", err)
	}

	rtl := true
	for _, sheet := range []string{quotesSheet, itemsSheet} {
		if err := f.SetSheetView(sheet, 0, &excelize.ViewOptions{RightToLeft: &rtl}); err != nil {
			return nil, fmt.Errorf("set sheet view %s: %w", sheet, err)
		}
	}

	st, err := newWorkbookStyles(f)
	if err != nil {
		return nil, err
	}

	if err := writeQuotesSheet(f, st, data); err != nil {
		return nil, err
	}
	if err := writeItemsSheet(f, st, data); err != nil {
		return nil, err
	}
	f.SetActiveSheet(0)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("write excel: %w", err)
	}

	return buf.Bytes(), nil
}

type workbookStyles struct {
	title, subtitle, header, cell, money, label, total int
}

func newWorkbookStyles(f *excelize.File) (workbookStyles, error) {
	var st workbookStyles
	var err error

	// Title style: bold, 16pt.
	if st.title, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 16},
	}); err != nil {
		return st, fmt.Errorf("create title style: %w", err)
	}

	if st.subtitle, err = f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Size: 11},
	}); err != nil {
		return st, fmt.Errorf("create subtitle style: %w", err)
	}

	// Column header style: bold, white text, charcoal background, centered.
	if st.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF", Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#212529"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
		Border:    thinBorders(),
	}); err != nil {
		return st, fmt.Errorf("create header style: %w", err)
	}

	if st.cell, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Size: 10},
		Alignment: &excelize.Alignment{Vertical: "top", WrapText: true},
		Border:    thinBorders(),
	}); err != nil {
		return st, fmt.Errorf("create cell style: %w", err)
	}

	if st.money, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Size: 10},
		Alignment:    &excelize.Alignment{Vertical: "top"},
		Border:       thinBorders(),
		CustomNumFmt: &moneyNumFmt,
	}); err != nil {
		return st, fmt.Errorf("create money style: %w", err)
	}

	if st.label, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Alignment: &excelize.Alignment{Horizontal: "right"},
	}); err != nil {
		return st, fmt.Errorf("create summary label style: %w", err)
	}

	if st.total, err = f.NewStyle(&excelize.Style{
		Font:         &excelize.Font{Bold: true, Size: 11},
		CustomNumFmt: &moneyNumFmt,
	}); err != nil {
		return st, fmt.Errorf("create summary value style: %w", err)
	}

	return st, nil
}

func writeQuotesSheet(f *excelize.File, st workbookStyles, data CustomerExport) error {
	sheet := quotesSheet
	widths := []float64{6, 30, 12, 8, 14, 14, 14}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return fmt.Errorf("set col width %s: %w", col, err)
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(widths))

	// ── Header Rows (1-2) ───────────────────────────────────────────────

	if err := f.MergeCell(sheet, "A1", lastCol+"1"); err != nil {
		return fmt.Errorf("merge title: %w", err)
	}
	f.SetCellValue(sheet, "A1", sanitizeExcelCell(data.Customer.Name))
	f.SetCellStyle(sheet, "A1", lastCol+"1", st.title)

	contact := data.Customer.Phone
	if data.Customer.Email != "" {
		if contact != "" {
			contact += " | "
		}
		contact += data.Customer.Email
	}
	if contact != "" {
		if err := f.MergeCell(sheet, "A2", lastCol+"2"); err != nil {
			return fmt.Errorf("merge contact: %w", err)
		}
		f.SetCellValue(sheet, "A2", sanitizeExcelCell(contact))
		f.SetCellStyle(sheet, "A2", lastCol+"2", st.subtitle)
	}

	// ── Row 4: Column Headers ───────────────────────────────────────────

	headers := []string{"#", "כותרת", "תאריך", "פריטים", "סכום ביניים", "מע\"מ", "סה\"כ"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellStyle(sheet, "A4", lastCol+"4", st.header)

	// ── Data Rows (starting row 5) ──────────────────────────────────────

	row := 5
	for i, q := range data.Quotes {
		r := fmt.Sprintf("%d", row)
		f.SetCellValue(sheet, "A"+r, i+1)
		f.SetCellValue(sheet, "B"+r, sanitizeExcelCell(q.Title))
		f.SetCellValue(sheet, "C"+r, FormatDate(q.Date))
		f.SetCellValue(sheet, "D"+r, q.ItemCount)
		f.SetCellValue(sheet, "E"+r, roundMoney(q.Totals.Sub))
		f.SetCellValue(sheet, "F"+r, roundMoney(q.Totals.Tax))
		f.SetCellValue(sheet, "G"+r, roundMoney(q.Totals.Grand))
		f.SetCellStyle(sheet, "A"+r, "D"+r, st.cell)
		f.SetCellStyle(sheet, "E"+r, "G"+r, st.money)
		row++
	}

	// ── Summary Row ─────────────────────────────────────────────────────

	row++
	r := fmt.Sprintf("%d", row)
	f.SetCellValue(sheet, "F"+r, "סה\"כ כללי:")
	f.SetCellStyle(sheet, "F"+r, "F"+r, st.label)
	f.SetCellValue(sheet, "G"+r, roundMoney(data.GrandTotal()))
	f.SetCellStyle(sheet, "G"+r, "G"+r, st.total)
	return nil
}

func writeItemsSheet(f *excelize.File, st workbookStyles, data CustomerExport) error {
	sheet := itemsSheet
	widths := []float64{24, 5, 16, 16, 8, 8, 7, 40, 14, 14}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(sheet, col, col, w); err != nil {
			return fmt.Errorf("set col width %s: %w", col, err)
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(widths))

	headers := []string{"הצעה", "#", "מיקום", "פרופיל", "רוחב", "גובה", "כמות", "פרטים ותוספות", "מחיר ליחידה", "סה\"כ"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, h)
	}
	f.SetCellStyle(sheet, "A1", lastCol+"1", st.header)

	row := 2
	for _, q := range data.Quotes {
		label := q.Title
		if label == "" {
			label = FormatDate(q.Date)
		}
		for i, item := range q.Items {
			r := fmt.Sprintf("%d", row)
			f.SetCellValue(sheet, "A"+r, sanitizeExcelCell(label))
			f.SetCellValue(sheet, "B"+r, i+1)
			f.SetCellValue(sheet, "C"+r, sanitizeExcelCell(item.Location))
			f.SetCellValue(sheet, "D"+r, sanitizeExcelCell(item.ProfileName))
			f.SetCellValue(sheet, "E"+r, item.WidthCm.Number())
			f.SetCellValue(sheet, "F"+r, item.HeightCm.Number())
			f.SetCellValue(sheet, "G"+r, math.Max(0, item.Qty.Number()))
			f.SetCellValue(sheet, "H"+r, sanitizeExcelCell(DetailsSummary(item)))
			f.SetCellValue(sheet, "I"+r, roundMoney(item.PerItemPrice))
			f.SetCellValue(sheet, "J"+r, roundMoney(item.Subtotal))
			f.SetCellStyle(sheet, "A"+r, "H"+r, st.cell)
			f.SetCellStyle(sheet, "I"+r, "J"+r, st.money)
			row++
		}
	}
	return nil
}

// roundMoney rounds to whole agorot the same way FormatMoney does.
func roundMoney(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// sanitizeExcelCell prevents formula injection by prefixing dangerous leading
// characters with a single quote. Excel interprets cells starting with =, +, -,
// @, \t or \r as formulas, which can be abused for code execution or data theft.
func sanitizeExcelCell(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '-', '@', '\t', '\r', '|':
		return "'" + s
	}
	return s
}

// thinBorders returns a slice of excelize.Border for thin borders on all four sides.
func thinBorders() []excelize.Border {
	sides := []string{"left", "top", "bottom", "right"}
	borders := make([]excelize.Border, len(sides))
	for i, side := range sides {
		borders[i] = excelize.Border{
			Type:  side,
			Color: "#000000",
			Style: 1, // thin
		}
	}
	return borders
}
