package services

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/pocketbase/pocketbase/core"
)

// SaveQuoteInput is a quote about to be stored, with its customer details.
type SaveQuoteInput struct {
	CustomerName  string
	CustomerPhone string
	CustomerEmail string
	Title         string
	Date          time.Time
	TaxPercent    RawText
	Notes         string
	Items         []LineItem

	// Totals overrides the computed snapshot; used when importing quotes
	// whose totals were stored by an earlier version.
	Totals *QuoteTotals
}

// SavedQuote identifies the records written by SaveQuote.
type SavedQuote struct {
	QuoteID         string
	CustomerID      string
	CustomerCreated bool
	Totals          QuoteTotals
}

// SaveQuote stores a quote and its customer in one transaction. Customers
// are matched by exact trimmed name; a matched customer's phone and email
// are replaced only by non-empty new values. The totals are snapshotted on
// the quote record.
func SaveQuote(app core.App, in SaveQuoteInput) (*SavedQuote, error) {
	if err := ValidateQuote(in.CustomerName, in.Items); err != nil {
		return nil, err
	}

	totals := ComputeQuoteTotals(in.Items, in.TaxPercent)
	if in.Totals != nil {
		totals = *in.Totals
	}
	date := in.Date
	if date.IsZero() {
		date = time.Now()
	}

	result := &SavedQuote{Totals: totals}
	err := app.RunInTransaction(func(txApp core.App) error {
		customer, created, err := upsertCustomer(txApp, in.CustomerName, in.CustomerPhone, in.CustomerEmail)
		if err != nil {
			return err
		}
		result.CustomerID = customer.Id
		result.CustomerCreated = created

		col, err := txApp.FindCollectionByNameOrId("quotes")
		if err != nil {
			return fmt.Errorf("quotes collection not found: %w", err)
		}
		q := core.NewRecord(col)
		q.Set("customer", customer.Id)
		q.Set("title", strings.TrimSpace(in.Title))
		q.Set("date", date)
		q.Set("items", in.Items)
		q.Set("tax_percent", string(in.TaxPercent))
		q.Set("notes", in.Notes)
		q.Set("sub", totals.Sub)
		q.Set("tax", totals.Tax)
		q.Set("grand", totals.Grand)
		if err := txApp.Save(q); err != nil {
			return fmt.Errorf("save quote: %w", err)
		}
		result.QuoteID = q.Id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// upsertCustomer finds the customer named name or creates one.
func upsertCustomer(app core.App, name, phone, email string) (*core.Record, bool, error) {
	name = strings.TrimSpace(name)
	phone = strings.TrimSpace(phone)
	email = strings.TrimSpace(email)

	rec, err := app.FindFirstRecordByData("customers", "name", name)
	created := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		col, err := app.FindCollectionByNameOrId("customers")
		if err != nil {
			return nil, false, fmt.Errorf("customers collection not found: %w", err)
		}
		rec = core.NewRecord(col)
		rec.Set("name", name)
		created = true
	case err != nil:
		return nil, false, fmt.Errorf("find customer %q: %w", name, err)
	}

	if phone != "" {
		rec.Set("phone", phone)
	}
	if email != "" {
		rec.Set("email", email)
	}
	if err := app.Save(rec); err != nil {
		return nil, false, fmt.Errorf("save customer %q: %w", name, err)
	}
	return rec, created, nil
}

// LoadQuotePayload rebuilds the export payload of a saved quote, carrying
// its snapshotted totals.
func LoadQuotePayload(app core.App, quoteID string) (ExportPayload, error) {
	q, err := app.FindRecordById("quotes", quoteID)
	if err != nil {
		return ExportPayload{}, fmt.Errorf("quote %s not found: %w", quoteID, err)
	}
	customer, err := app.FindRecordById("customers", q.GetString("customer"))
	if err != nil {
		return ExportPayload{}, fmt.Errorf("customer of quote %s not found: %w", quoteID, err)
	}

	var items []LineItem
	if err := q.UnmarshalJSONField("items", &items); err != nil {
		return ExportPayload{}, fmt.Errorf("decode items of quote %s: %w", quoteID, err)
	}

	date := q.GetDateTime("date").Time()
	if date.IsZero() {
		date = q.GetDateTime("created").Time()
	}

	return ExportPayload{
		CustomerName:  customer.GetString("name"),
		CustomerPhone: customer.GetString("phone"),
		CustomerEmail: customer.GetString("email"),
		Title:         q.GetString("title"),
		Date:          date,
		TaxPercent:    RawText(q.GetString("tax_percent")),
		Notes:         q.GetString("notes"),
		Items:         items,
		Totals: &QuoteTotals{
			Sub:   q.GetFloat("sub"),
			Tax:   q.GetFloat("tax"),
			Grand: q.GetFloat("grand"),
		},
	}, nil
}

// QuoteSummary is one saved quote as shown in lists.
type QuoteSummary struct {
	ID           string
	CustomerID   string
	CustomerName string
	Title        string
	Date         time.Time
	ItemCount    int
	Totals       QuoteTotals
}

// ListQuotes returns saved quotes, newest first. An empty customerID lists
// the quotes of every customer.
func ListQuotes(app core.App, customerID string) ([]QuoteSummary, error) {
	filter, params := "id != ''", map[string]any{}
	if customerID != "" {
		filter = "customer = {:customerId}"
		params["customerId"] = customerID
	}
	records, err := app.FindRecordsByFilter("quotes", filter, "-date,-created", 0, 0, params)
	if err != nil {
		return nil, fmt.Errorf("list quotes: %w", err)
	}

	names := map[string]string{}
	out := make([]QuoteSummary, 0, len(records))
	for _, q := range records {
		cid := q.GetString("customer")
		name, ok := names[cid]
		if !ok {
			if c, err := app.FindRecordById("customers", cid); err == nil {
				name = c.GetString("name")
			}
			names[cid] = name
		}

		var items []LineItem
		if err := q.UnmarshalJSONField("items", &items); err != nil {
			log.Printf("quote_store: quote %s has unreadable items: %v", q.Id, err)
		}

		date := q.GetDateTime("date").Time()
		if date.IsZero() {
			date = q.GetDateTime("created").Time()
		}
		out = append(out, QuoteSummary{
			ID:           q.Id,
			CustomerID:   cid,
			CustomerName: name,
			Title:        q.GetString("title"),
			Date:         date,
			ItemCount:    len(items),
			Totals: QuoteTotals{
				Sub:   q.GetFloat("sub"),
				Tax:   q.GetFloat("tax"),
				Grand: q.GetFloat("grand"),
			},
		})
	}
	return out, nil
}

// DeleteQuote removes a saved quote.
func DeleteQuote(app core.App, quoteID string) error {
	q, err := app.FindRecordById("quotes", quoteID)
	if err != nil {
		return fmt.Errorf("quote %s not found: %w", quoteID, err)
	}
	if err := app.Delete(q); err != nil {
		return fmt.Errorf("delete quote %s: %w", quoteID, err)
	}
	return nil
}
