package services

import (
	"fmt"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// CustomerQuote is a saved quote with its line items.
type CustomerQuote struct {
	QuoteSummary
	TaxPercent RawText
	Items      []LineItem
}

// CustomerExport holds everything needed for the customer spreadsheet and
// statement: the customer and their saved quotes, newest first.
type CustomerExport struct {
	Customer  CustomerSummary
	Quotes    []CustomerQuote
	Generated time.Time
}

// GrandTotal sums the grand totals of all quotes.
func (c CustomerExport) GrandTotal() float64 {
	var sum float64
	for _, q := range c.Quotes {
		sum += q.Totals.Grand
	}
	return sum
}

// BuildCustomerExport loads a customer and every quote saved for them.
func BuildCustomerExport(app core.App, customerID string) (CustomerExport, error) {
	customer, err := GetCustomer(app, customerID)
	if err != nil {
		return CustomerExport{}, err
	}
	summaries, err := ListQuotes(app, customerID)
	if err != nil {
		return CustomerExport{}, err
	}

	out := CustomerExport{Customer: customer, Generated: time.Now()}
	for _, s := range summaries {
		p, err := LoadQuotePayload(app, s.ID)
		if err != nil {
			return CustomerExport{}, fmt.Errorf("load quote %s: %w", s.ID, err)
		}
		out.Quotes = append(out.Quotes, CustomerQuote{
			QuoteSummary: s,
			TaxPercent:   p.TaxPercent,
			Items:        p.Items,
		})
	}
	return out, nil
}

// customerFileStem is the sanitized customer name used in export file names.
func customerFileStem(name string) string {
	if s := SanitizeFilename(name); s != "" {
		return s
	}
	return "customer"
}

// CustomerExcelFilename is "<customer>_quotes_<YYYY-MM-DD>.xlsx".
func CustomerExcelFilename(name string, date time.Time) string {
	return fmt.Sprintf("%s_quotes_%s.xlsx", customerFileStem(name), date.Format("2006-01-02"))
}

// StatementFilename is "<customer>_statement_<YYYY-MM-DD>.pdf".
func StatementFilename(name string, date time.Time) string {
	return fmt.Sprintf("%s_statement_%s.pdf", customerFileStem(name), date.Format("2006-01-02"))
}
