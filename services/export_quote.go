package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"
	"unicode"
)

// ExportPayload is everything needed to render a quote document.
type ExportPayload struct {
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Title         string
	Date          time.Time
	TaxPercent    RawText
	Notes         string
	Items         []LineItem

	// Totals is the snapshot stored with a saved quote. When nil the totals
	// are computed from Items and TaxPercent.
	Totals *QuoteTotals
}

// ValidationError is a precondition failure whose Message is shown to the user.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ValidateQuote checks the preconditions shared by save and export: a customer
// name and at least one line item.
func ValidateQuote(customerName string, items []LineItem) error {
	if strings.TrimSpace(customerName) == "" {
		return &ValidationError{Field: "customer_name", Message: "יש להזין שם לקוח"}
	}
	if len(items) == 0 {
		return &ValidationError{Field: "items", Message: "יש להוסיף לפחות פריט אחד"}
	}
	return nil
}

// ExportConfig wires the exporter to its layout and optional resources.
type ExportConfig struct {
	Layout        LayoutConfig
	Fonts         *FontLoader
	SignaturePath string
	Timeout       time.Duration

	// NewCanvas builds the drawing surface; defaults to a gofpdf canvas.
	NewCanvas func(FontSet) (Canvas, error)
}

// Exporter renders quotes to PDF.
type Exporter struct {
	cfg ExportConfig
}

// ExportResult is a rendered document and its download name.
type ExportResult struct {
	PDF      []byte
	Filename string
}

// NewExporter returns an Exporter, filling unset config fields with defaults.
func NewExporter(cfg ExportConfig) *Exporter {
	if cfg.Layout.Margin == 0 {
		cfg.Layout = DefaultLayoutConfig()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultResourceTimeout
	}
	if cfg.NewCanvas == nil {
		cfg.NewCanvas = func(fs FontSet) (Canvas, error) { return NewPDFCanvas(fs) }
	}
	return &Exporter{cfg: cfg}
}

// ExportQuote validates the payload and renders it. A missing font or
// signature degrades the document and is only logged; the call fails for
// validation errors and when no PDF can be produced (ErrPDFUnavailable).
func (e *Exporter) ExportQuote(ctx context.Context, p ExportPayload) (*ExportResult, error) {
	if err := ValidateQuote(p.CustomerName, p.Items); err != nil {
		return nil, err
	}

	date := p.Date
	if date.IsZero() {
		date = time.Now()
	}
	totals := ComputeQuoteTotals(p.Items, p.TaxPercent)
	if p.Totals != nil {
		totals = *p.Totals
	}

	doc := QuoteDocument{
		CustomerName:  strings.TrimSpace(p.CustomerName),
		CustomerPhone: p.CustomerPhone,
		CustomerEmail: p.CustomerEmail,
		Date:          date,
		Notes:         p.Notes,
		TaxRate:       NormalizeTaxPercent(p.TaxPercent.Number()),
		Items:         p.Items,
		Totals:        totals,
	}

	var fonts FontSet
	if e.cfg.Fonts != nil {
		fs, err := e.cfg.Fonts.Load(ctx)
		if err != nil {
			log.Printf("export_quote: font unavailable, using fallback: %v", err)
		} else {
			fonts = fs
		}
	}

	if strings.TrimSpace(e.cfg.SignaturePath) != "" {
		sig, err := LoadSignature(ctx, e.cfg.SignaturePath, e.cfg.Timeout)
		if err != nil {
			log.Printf("export_quote: omitting signature: %v", err)
		} else {
			doc.Signature = sig
		}
	}

	cv, err := e.cfg.NewCanvas(fonts)
	if err != nil {
		return nil, pdfUnavailable(err)
	}
	if err := RenderQuote(cv, doc, e.cfg.Layout); err != nil {
		return nil, fmt.Errorf("render quote: %w", err)
	}

	var buf bytes.Buffer
	if err := cv.Output(&buf); err != nil {
		return nil, pdfUnavailable(err)
	}

	return &ExportResult{PDF: buf.Bytes(), Filename: QuoteFilename(p.CustomerName, date)}, nil
}

func pdfUnavailable(err error) error {
	if errors.Is(err, ErrPDFUnavailable) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPDFUnavailable, err)
}

// SanitizeFilename strips characters that are not allowed in file names and
// collapses whitespace runs into a single underscore.
func SanitizeFilename(s string) string {
	var b strings.Builder
	pendingSpace := false
	for _, r := range strings.TrimSpace(s) {
		switch {
		case unicode.IsSpace(r):
			pendingSpace = true
			continue
		case unicode.IsControl(r), strings.ContainsRune(`\/:*?"<>|`, r):
			continue
		}
		if pendingSpace && b.Len() > 0 {
			b.WriteByte('_')
		}
		pendingSpace = false
		b.WriteRune(r)
	}
	return b.String()
}

// QuoteFilename is "<customer>_<YYYY-MM-DD>.pdf", or "quote_<date>.pdf" when
// nothing of the name survives sanitizing.
func QuoteFilename(customerName string, date time.Time) string {
	name := SanitizeFilename(customerName)
	if name == "" {
		name = "quote"
	}
	return fmt.Sprintf("%s_%s.pdf", name, date.Format("2006-01-02"))
}
