package services

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/phpdave11/gofpdf"
)

// ErrPDFUnavailable is returned when the PDF engine cannot produce a document.
var ErrPDFUnavailable = errors.New("pdf engine unavailable")

const (
	documentFontFamily = "QuoteFont"
	fallbackFontFamily = "Helvetica"

	// bezierArc is the control point distance for a quarter circle of radius 1.
	bezierArc = 0.5523
)

// FontSet holds the TrueType font data embedded into quote documents.
// A zero FontSet selects the built-in Helvetica face.
type FontSet struct {
	Regular []byte
	Bold    []byte
}

// PDFCanvas is a Canvas backed by gofpdf: A4 portrait, unit points.
type PDFCanvas struct {
	pdf       *gofpdf.Fpdf
	family    string
	translate func(string) string
	images    int
}

var _ Canvas = (*PDFCanvas)(nil)

func newFpdf() *gofpdf.Fpdf {
	pdf := gofpdf.New("P", "pt", "A4", "")
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetCreator("aluquote", true)
	pdf.SetLineWidth(0.6)
	return pdf
}

// NewPDFCanvas creates an empty document. If the fonts in fs cannot be
// embedded the canvas logs a warning and falls back to Helvetica, which has
// no Hebrew glyphs.
func NewPDFCanvas(fs FontSet) (*PDFCanvas, error) {
	c := &PDFCanvas{pdf: newFpdf(), family: fallbackFontFamily}

	if len(fs.Regular) > 0 {
		if err := embedFonts(c.pdf, fs); err != nil {
			log.Printf("pdf_canvas: could not embed font, falling back to %s: %v", fallbackFontFamily, err)
			c.pdf = newFpdf()
		} else {
			c.family = documentFontFamily
		}
	}

	if c.family == fallbackFontFamily {
		c.translate = c.pdf.UnicodeTranslatorFromDescriptor("")
	}
	if c.pdf.Err() {
		return nil, fmt.Errorf("%w: %v", ErrPDFUnavailable, c.pdf.Error())
	}
	c.pdf.SetFont(c.family, "", 10)
	return c, nil
}

// embedFonts registers the regular and bold faces. The TTF parser panics on
// some malformed input, so panics are turned into errors.
func embedFonts(pdf *gofpdf.Fpdf, fs FontSet) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parse font: %v", r)
		}
	}()

	bold := fs.Bold
	if len(bold) == 0 {
		bold = fs.Regular
	}
	pdf.AddUTF8FontFromBytes(documentFontFamily, "", fs.Regular)
	pdf.AddUTF8FontFromBytes(documentFontFamily, "B", bold)
	if pdf.Err() {
		return pdf.Error()
	}
	return nil
}

func (c *PDFCanvas) encode(s string) string {
	if c.translate != nil {
		return c.translate(s)
	}
	return s
}

func (c *PDFCanvas) SetFont(style FontStyle, size float64) {
	styleStr := ""
	if style == FontBold {
		styleStr = "B"
	}
	c.pdf.SetFont(c.family, styleStr, size)
}

func (c *PDFCanvas) SetTextColor(col Color) { c.pdf.SetTextColor(col.R, col.G, col.B) }
func (c *PDFCanvas) SetDrawColor(col Color) { c.pdf.SetDrawColor(col.R, col.G, col.B) }
func (c *PDFCanvas) SetFillColor(col Color) { c.pdf.SetFillColor(col.R, col.G, col.B) }

// Text draws a run at baseline y. RTL runs are reordered into visual order
// before measuring, and x is shifted so the run ends (right), starts (left)
// or is centered on the anchor.
func (c *PDFCanvas) Text(text string, x, y float64, opts TextOptions) {
	if text == "" {
		return
	}
	visual := c.encode(VisualOrder(text, opts.Direction))
	w := c.pdf.GetStringWidth(visual)

	switch ResolveAlign(opts.Direction, opts.Align) {
	case AlignRight:
		x -= w
	case AlignCenter:
		x -= w / 2
	}
	c.pdf.Text(x, y, visual)
}

func (c *PDFCanvas) Line(x1, y1, x2, y2 float64) {
	c.pdf.Line(x1, y1, x2, y2)
}

func (c *PDFCanvas) Rect(x, y, w, h float64, opts RectOptions) {
	style := rectStyle(opts)
	if style == "" {
		return
	}
	if opts.Radius <= 0 {
		c.pdf.Rect(x, y, w, h, style)
		return
	}

	r := opts.Radius
	if r > w/2 {
		r = w / 2
	}
	if r > h/2 {
		r = h / 2
	}
	k := bezierArc * r

	p := c.pdf
	p.MoveTo(x+r, y)
	p.LineTo(x+w-r, y)
	p.CurveBezierCubicTo(x+w-r+k, y, x+w, y+r-k, x+w, y+r)
	p.LineTo(x+w, y+h-r)
	p.CurveBezierCubicTo(x+w, y+h-r+k, x+w-r+k, y+h, x+w-r, y+h)
	p.LineTo(x+r, y+h)
	p.CurveBezierCubicTo(x+r-k, y+h, x, y+h-r+k, x, y+h-r)
	p.LineTo(x, y+r)
	p.CurveBezierCubicTo(x, y+r-k, x+r-k, y, x+r, y)
	p.ClosePath()
	p.DrawPath(style)
}

func rectStyle(opts RectOptions) string {
	switch {
	case opts.Fill && opts.Stroke:
		return "FD"
	case opts.Fill:
		return "F"
	case opts.Stroke:
		return "D"
	default:
		return ""
	}
}

// Image places PNG data. A zero h keeps the aspect ratio.
func (c *PDFCanvas) Image(data []byte, x, y, w, h float64) error {
	c.images++
	name := fmt.Sprintf("image-%d", c.images)
	opts := gofpdf.ImageOptions{ImageType: "PNG"}

	c.pdf.RegisterImageOptionsReader(name, opts, bytes.NewReader(data))
	if c.pdf.Err() {
		return fmt.Errorf("register image: %w", c.pdf.Error())
	}
	c.pdf.ImageOptions(name, x, y, w, h, false, opts, 0, "")
	return nil
}

func (c *PDFCanvas) MeasureText(text string) float64 {
	return c.pdf.GetStringWidth(c.encode(text))
}

func (c *PDFCanvas) WrapText(text string, maxWidth float64) []string {
	return wrapWords(text, maxWidth, c.MeasureText)
}

func (c *PDFCanvas) AddPage() {
	c.pdf.AddPage()
}

func (c *PDFCanvas) PageSize() (float64, float64) {
	return c.pdf.GetPageSize()
}

// Output serializes the document.
func (c *PDFCanvas) Output(w io.Writer) error {
	if c.pdf.Err() {
		return fmt.Errorf("%w: %v", ErrPDFUnavailable, c.pdf.Error())
	}
	if err := c.pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}
