package services

import (
	"fmt"
	"strings"

	"github.com/pocketbase/pocketbase/core"
)

// CustomerSummary is a customer with the aggregate of their saved quotes.
type CustomerSummary struct {
	ID         string
	Name       string
	Phone      string
	Email      string
	Notes      string
	QuoteCount int
	Total      float64 // sum of grand totals
}

// ListCustomers returns every customer sorted by name. When search is not
// empty only customers whose name, phone or email contains it are returned.
func ListCustomers(app core.App, search string) ([]CustomerSummary, error) {
	filter, params := "id != ''", map[string]any{}
	if s := strings.TrimSpace(search); s != "" {
		filter = "name ~ {:q} || phone ~ {:q} || email ~ {:q}"
		params["q"] = s
	}
	records, err := app.FindRecordsByFilter("customers", filter, "name", 0, 0, params)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}

	quotes, err := ListQuotes(app, "")
	if err != nil {
		return nil, err
	}
	count := map[string]int{}
	total := map[string]float64{}
	for _, q := range quotes {
		count[q.CustomerID]++
		total[q.CustomerID] += q.Totals.Grand
	}

	out := make([]CustomerSummary, 0, len(records))
	for _, r := range records {
		out = append(out, CustomerSummary{
			ID:         r.Id,
			Name:       r.GetString("name"),
			Phone:      r.GetString("phone"),
			Email:      r.GetString("email"),
			Notes:      r.GetString("notes"),
			QuoteCount: count[r.Id],
			Total:      total[r.Id],
		})
	}
	return out, nil
}

// GetCustomer returns a single customer with its quote aggregate.
func GetCustomer(app core.App, id string) (CustomerSummary, error) {
	r, err := app.FindRecordById("customers", id)
	if err != nil {
		return CustomerSummary{}, fmt.Errorf("customer %s not found: %w", id, err)
	}
	quotes, err := ListQuotes(app, id)
	if err != nil {
		return CustomerSummary{}, err
	}
	c := CustomerSummary{
		ID:         r.Id,
		Name:       r.GetString("name"),
		Phone:      r.GetString("phone"),
		Email:      r.GetString("email"),
		Notes:      r.GetString("notes"),
		QuoteCount: len(quotes),
	}
	for _, q := range quotes {
		c.Total += q.Totals.Grand
	}
	return c, nil
}

// DeleteCustomer removes a customer; their quotes are removed with them.
func DeleteCustomer(app core.App, id string) error {
	r, err := app.FindRecordById("customers", id)
	if err != nil {
		return fmt.Errorf("customer %s not found: %w", id, err)
	}
	if err := app.Delete(r); err != nil {
		return fmt.Errorf("delete customer %s: %w", id, err)
	}
	return nil
}
