package services

import (
	"fmt"
	"log"
	"math"
	"strconv"
	"strings"
	"time"
)

// TotalsSide selects which side of the page the totals box sits on.
type TotalsSide int

const (
	TotalsLeft TotalsSide = iota
	TotalsRight
)

// ParseTotalsSide maps "left"/"right" to a TotalsSide, defaulting to left.
func ParseTotalsSide(s string) TotalsSide {
	if strings.EqualFold(strings.TrimSpace(s), "right") {
		return TotalsRight
	}
	return TotalsLeft
}

// LayoutConfig holds the geometry and fixed texts of the quote document.
type LayoutConfig struct {
	Margin       float64
	CompanyLines []string
	TotalsSide   TotalsSide

	HeaderFontSize float64
	BodyFontSize   float64
	LineHeight     float64 // height of one wrapped line inside a table cell
	RowPadding     float64 // vertical padding added to every table row
	HeaderRowH     float64
}

// DefaultCompanyLines is the letterhead printed when none is configured.
var DefaultCompanyLines = []string{
	"אלומיניום והנדסה בע\"מ",
	"חלונות, דלתות ומעטפת אלומיניום",
	"הצעת מחיר",
}

// DefaultLayoutConfig returns the A4 layout used for exported quotes.
func DefaultLayoutConfig() LayoutConfig {
	return LayoutConfig{
		Margin:         40,
		CompanyLines:   DefaultCompanyLines,
		TotalsSide:     TotalsLeft,
		HeaderFontSize: 16,
		BodyFontSize:   9,
		LineHeight:     11,
		RowPadding:     8,
		HeaderRowH:     20,
	}
}

// SignatureImage is a PNG ready to be placed in the footer.
type SignatureImage struct {
	PNG    []byte
	Width  int
	Height int
}

// QuoteDocument is the finalized payload rendered by RenderQuote.
type QuoteDocument struct {
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Date          time.Time
	Notes         string
	TaxRate       float64 // normalized fraction, used for the tax label
	Items         []LineItem
	Totals        QuoteTotals
	Signature     *SignatureImage
}

var (
	colorText      = Color{33, 37, 41}
	colorMuted     = Color{100, 100, 100}
	colorGrid      = Color{200, 200, 200}
	colorHeaderBg  = Color{33, 37, 41}
	colorWhite     = Color{255, 255, 255}
	colorAltRow    = Color{248, 249, 250}
	colorTotalsBg  = Color{245, 245, 245}
	colorHighlight = Color{33, 37, 41}
)

const (
	cellPad         = 4
	totalsBoxWidth  = 210
	totalsRowHeight = 18
	totalsPad       = 6
	signatureWidth  = 120
	signatureMaxH   = 50
)

// quoteLayout carries the drawing cursor while a document is rendered.
type quoteLayout struct {
	cv    Canvas
	cfg   LayoutConfig
	doc   QuoteDocument
	cols  []tableColumn
	pageW float64
	pageH float64
	y     float64
	pages int
}

// RenderQuote draws the quote onto cv in fixed section order: company header,
// customer block, divider, items table, totals box and footer.
func RenderQuote(cv Canvas, doc QuoteDocument, cfg LayoutConfig) error {
	l := &quoteLayout{cv: cv, cfg: cfg, doc: doc}

	cv.AddPage()
	l.pages = 1
	l.pageW, l.pageH = cv.PageSize()
	l.y = cfg.Margin

	cols, err := layoutColumns(quoteColumns(), l.contentWidth(), l.pageW-cfg.Margin)
	if err != nil {
		return err
	}
	l.cols = cols

	cv.SetTextColor(colorText)
	cv.SetDrawColor(colorGrid)

	l.drawCompanyHeader()
	l.drawCustomerBlock()
	l.drawDivider()
	l.drawTable()
	l.drawTotals()
	l.drawFooter()
	return nil
}

func (l *quoteLayout) contentWidth() float64 {
	return l.pageW - 2*l.cfg.Margin
}

func (l *quoteLayout) bottomLimit() float64 {
	return l.pageH - l.cfg.Margin
}

func (l *quoteLayout) newPage() {
	l.cv.AddPage()
	l.pages++
	l.y = l.cfg.Margin
}

// text places a run after resolving its direction and alignment.
func (l *quoteLayout) text(s string, x, y float64, dir Direction, align Align) {
	d := ResolveDirection(s, dir)
	l.cv.Text(s, x, y, TextOptions{Align: ResolveAlign(d, align), Direction: d})
}

// textIn places a run inside the horizontal span [left, right], anchoring it
// at the edge (or center) its resolved alignment calls for.
func (l *quoteLayout) textIn(s string, left, right, y float64, dir Direction, align Align) {
	d := ResolveDirection(s, dir)
	a := ResolveAlign(d, align)
	var x float64
	switch a {
	case AlignLeft:
		x = left + cellPad
	case AlignCenter:
		x = (left + right) / 2
	default:
		x = right - cellPad
	}
	l.cv.Text(s, x, y, TextOptions{Align: a, Direction: d})
}

func (l *quoteLayout) drawCompanyHeader() {
	l.cv.SetFont(FontBold, l.cfg.HeaderFontSize)
	for _, line := range l.cfg.CompanyLines {
		l.y += l.cfg.HeaderFontSize + 4
		l.text(line, l.pageW/2, l.y, DirRTL, AlignCenter)
	}
	l.y += 8
}

func (l *quoteLayout) drawCustomerBlock() {
	l.cv.SetFont(FontRegular, 11)

	line := "לקוח: " + l.doc.CustomerName
	if phone := strings.TrimSpace(l.doc.CustomerPhone); phone != "" {
		line += "   טלפון: " + phone
	}
	l.y += 16
	l.text(line, l.pageW/2, l.y, DirAuto, AlignCenter)

	if email := strings.TrimSpace(l.doc.CustomerEmail); email != "" {
		l.y += 14
		l.text(email, l.pageW/2, l.y, DirLTR, AlignCenter)
	}
}

func (l *quoteLayout) drawDivider() {
	l.y += 10
	l.cv.SetDrawColor(colorMuted)
	l.cv.Line(l.cfg.Margin, l.y, l.pageW-l.cfg.Margin, l.y)
	l.cv.SetDrawColor(colorGrid)
	l.y += 12
}

func (l *quoteLayout) drawTotals() {
	boxH := float64(3*totalsRowHeight + 2*totalsPad)
	l.y += 12
	if l.y+boxH > l.bottomLimit() {
		l.newPage()
	}

	x := l.cfg.Margin
	if l.cfg.TotalsSide == TotalsRight {
		x = l.pageW - l.cfg.Margin - totalsBoxWidth
	}
	top := l.y

	l.cv.SetFillColor(colorTotalsBg)
	l.cv.Rect(x, top, totalsBoxWidth, boxH, RectOptions{Fill: true, Stroke: true, Radius: 6})

	labelX := x + totalsBoxWidth - 10
	valueX := x + totalsBoxWidth*0.45
	rows := []struct {
		label string
		value float64
	}{
		{"סכום ביניים", l.doc.Totals.Sub},
		{fmt.Sprintf("מע\"מ %s%%", formatPercent(l.doc.TaxRate)), l.doc.Totals.Tax},
		{"סה\"כ לתשלום", l.doc.Totals.Grand},
	}

	for i, r := range rows {
		rowTop := top + totalsPad + float64(i)*totalsRowHeight
		baseline := rowTop + totalsRowHeight - 5

		grand := i == len(rows)-1
		if grand {
			l.cv.SetFillColor(colorHighlight)
			l.cv.Rect(x+3, rowTop, totalsBoxWidth-6, totalsRowHeight, RectOptions{Fill: true, Radius: 4})
			l.cv.SetTextColor(colorWhite)
			l.cv.SetFont(FontBold, 11)
		} else {
			l.cv.SetTextColor(colorText)
			l.cv.SetFont(FontRegular, 10)
		}

		l.text(r.label, labelX, baseline, DirAuto, AlignRight)
		l.text(FormatMoney(r.value), valueX, baseline, DirLTR, AlignRight)
	}

	l.cv.SetTextColor(colorText)
	l.y = top + boxH
}

const (
	footerDateLineH  = 16
	footerNotesLineH = 13
	footerSigLabelH  = 18
)

// drawFooter anchors the footer block to the bottom of the last page,
// starting a new page when the table or totals already reach into it.
// Notes too long for one page flow down from the top of a fresh page and
// the signature block closes the last one.
func (l *quoteLayout) drawFooter() {
	l.cv.SetFont(FontRegular, 10)
	notes := l.cv.WrapText(strings.TrimSpace(l.doc.Notes), l.contentWidth())

	sigW, sigH := 0.0, 0.0
	if sig := l.doc.Signature; sig != nil && sig.Width > 0 && sig.Height > 0 {
		sigH = math.Min(signatureMaxH, signatureWidth*float64(sig.Height)/float64(sig.Width))
		sigW = sigH * float64(sig.Width) / float64(sig.Height)
	}

	closing := footerSigLabelH + sigH
	height := footerDateLineH + closing
	if len(notes) > 0 {
		height += float64(len(notes)*footerNotesLineH) + 6
	}

	l.y += 16
	if height > l.bottomLimit()-l.cfg.Margin {
		if l.y > l.cfg.Margin+16 {
			l.newPage()
		}
		y := l.drawFooterDate(l.cfg.Margin)
		if len(notes) > 0 {
			y += 6
		}
		for _, line := range notes {
			if y+footerNotesLineH > l.bottomLimit() {
				l.newPage()
				y = l.cfg.Margin
			}
			y = l.drawNoteLine(line, y)
		}
		if y+closing > l.bottomLimit() {
			l.newPage()
		}
		l.drawSignature(l.bottomLimit()-closing, sigW, sigH)
		return
	}

	top := l.bottomLimit() - height
	if l.y > top {
		l.newPage()
	}
	y := l.drawFooterDate(top)
	if len(notes) > 0 {
		y += 6
		for _, line := range notes {
			y = l.drawNoteLine(line, y)
		}
	}
	l.drawSignature(y, sigW, sigH)
}

func (l *quoteLayout) drawFooterDate(y float64) float64 {
	l.cv.SetFont(FontRegular, 10)
	l.text("תאריך: "+FormatDate(l.doc.Date), l.pageW-l.cfg.Margin, y+12, DirAuto, AlignAuto)
	return y + footerDateLineH
}

func (l *quoteLayout) drawNoteLine(line string, y float64) float64 {
	y += footerNotesLineH
	right := l.pageW - l.cfg.Margin
	l.textIn(line, l.cfg.Margin-cellPad, right+cellPad, y-3, DirAuto, AlignAuto)
	return y
}

// drawSignature draws the signature label and line at y, then the image
// below it at its own aspect ratio.
func (l *quoteLayout) drawSignature(y, sigW, sigH float64) {
	right := l.pageW - l.cfg.Margin
	l.cv.SetFont(FontBold, 10)
	l.text("חתימה:", right, y+14, DirRTL, AlignRight)
	l.cv.SetDrawColor(colorMuted)
	l.cv.Line(right-220, y+16, right-50, y+16)
	l.cv.SetDrawColor(colorGrid)
	y += footerSigLabelH

	if sigH > 0 {
		if err := l.cv.Image(l.doc.Signature.PNG, right-sigW, y, sigW, sigH); err != nil {
			log.Printf("layout: skipping signature image: %v", err)
		}
	}
}

// formatPercent renders a fraction as a percentage without trailing zeros.
func formatPercent(rate float64) string {
	pct := math.Round(rate*10000) / 100
	return strconv.FormatFloat(pct, 'f', -1, 64)
}
