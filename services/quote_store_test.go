package services

import (
	"errors"
	"testing"
	"time"

	"aluquote/testhelpers"
)

func sampleSaveInput(name string) SaveQuoteInput {
	return SaveQuoteInput{
		CustomerName:  name,
		CustomerPhone: "050-1234567",
		Title:         "Kitchen windows",
		Date:          time.Date(2025, time.March, 7, 0, 0, 0, 0, time.UTC),
		TaxPercent:    "18",
		Notes:         "Installation included",
		Items: []LineItem{CommitLineItem(LineItem{
			WidthCm: "100", HeightCm: "200", Qty: "3", UnitPrice: "150", ProfileName: "Klil 4500",
		})},
	}
}

func TestSaveQuote_CreatesCustomerAndQuote(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	saved, err := SaveQuote(app, sampleSaveInput("  Dana Levi  "))
	if err != nil {
		t.Fatalf("SaveQuote() error = %v", err)
	}
	if !saved.CustomerCreated {
		t.Error("expected a new customer")
	}
	if !approxEqual(saved.Totals.Grand, 1062) {
		t.Errorf("Grand = %v, want 1062", saved.Totals.Grand)
	}

	customer, err := app.FindRecordById("customers", saved.CustomerID)
	if err != nil {
		t.Fatalf("customer not found: %v", err)
	}
	if customer.GetString("name") != "Dana Levi" {
		t.Errorf("customer name = %q, want trimmed name", customer.GetString("name"))
	}

	quote, err := app.FindRecordById("quotes", saved.QuoteID)
	if err != nil {
		t.Fatalf("quote not found: %v", err)
	}
	if quote.GetString("customer") != saved.CustomerID {
		t.Error("quote is not linked to the customer")
	}
	if quote.GetFloat("sub") != 900 || !approxEqual(quote.GetFloat("tax"), 162) {
		t.Errorf("snapshot = sub %v tax %v", quote.GetFloat("sub"), quote.GetFloat("tax"))
	}
}

func TestSaveQuote_DeduplicatesCustomer(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	first, err := SaveQuote(app, sampleSaveInput("Dana"))
	if err != nil {
		t.Fatalf("first SaveQuote() error = %v", err)
	}

	in := sampleSaveInput(" Dana ")
	in.CustomerPhone = ""
	in.CustomerEmail = "dana@example.com"
	second, err := SaveQuote(app, in)
	if err != nil {
		t.Fatalf("second SaveQuote() error = %v", err)
	}

	if second.CustomerID != first.CustomerID {
		t.Fatal("expected the existing customer to be reused")
	}
	if second.CustomerCreated {
		t.Error("CustomerCreated = true for an existing customer")
	}

	customer, _ := app.FindRecordById("customers", first.CustomerID)
	if customer.GetString("phone") != "050-1234567" {
		t.Errorf("phone = %q, an empty value must not overwrite it", customer.GetString("phone"))
	}
	if customer.GetString("email") != "dana@example.com" {
		t.Errorf("email = %q, a new non-empty value should win", customer.GetString("email"))
	}

	customers, _ := app.FindAllRecords("customers")
	if len(customers) != 1 {
		t.Errorf("expected 1 customer, got %d", len(customers))
	}
}

func TestSaveQuote_Validation(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	in := sampleSaveInput("")
	_, err := SaveQuote(app, in)
	var verr *ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	in = sampleSaveInput("Dana")
	in.Items = nil
	if _, err := SaveQuote(app, in); !errors.As(err, &verr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}

	customers, _ := app.FindAllRecords("customers")
	quotes, _ := app.FindAllRecords("quotes")
	if len(customers) != 0 || len(quotes) != 0 {
		t.Error("a rejected save must not write anything")
	}
}

func TestLoadQuotePayload(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	in := sampleSaveInput("Dana")
	in.Totals = &QuoteTotals{Sub: 1, Tax: 2, Grand: 3}
	saved, err := SaveQuote(app, in)
	if err != nil {
		t.Fatalf("SaveQuote() error = %v", err)
	}

	p, err := LoadQuotePayload(app, saved.QuoteID)
	if err != nil {
		t.Fatalf("LoadQuotePayload() error = %v", err)
	}
	if p.CustomerName != "Dana" || p.CustomerPhone != "050-1234567" {
		t.Errorf("customer = %q %q", p.CustomerName, p.CustomerPhone)
	}
	if p.Totals == nil || p.Totals.Grand != 3 {
		t.Errorf("Totals = %+v, want the stored snapshot", p.Totals)
	}
	if len(p.Items) != 1 || p.Items[0].ProfileName != "Klil 4500" || p.Items[0].Subtotal != 900 {
		t.Errorf("items = %+v", p.Items)
	}
	if p.TaxPercent != "18" || p.Notes != "Installation included" || p.Title != "Kitchen windows" {
		t.Errorf("payload = %+v", p)
	}
	if !p.Date.Equal(in.Date) {
		t.Errorf("Date = %v, want %v", p.Date, in.Date)
	}

	if _, err := LoadQuotePayload(app, "missing"); err == nil {
		t.Error("expected error for a missing quote")
	}
}

func TestListQuotes(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	older := sampleSaveInput("Dana")
	older.Date = time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	newer := sampleSaveInput("Dana")
	other := sampleSaveInput("Avi")

	for _, in := range []SaveQuoteInput{older, newer, other} {
		if _, err := SaveQuote(app, in); err != nil {
			t.Fatalf("SaveQuote() error = %v", err)
		}
	}

	all, err := ListQuotes(app, "")
	if err != nil {
		t.Fatalf("ListQuotes() error = %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 quotes, got %d", len(all))
	}

	dana, _ := app.FindFirstRecordByData("customers", "name", "Dana")
	mine, err := ListQuotes(app, dana.Id)
	if err != nil {
		t.Fatalf("ListQuotes(customer) error = %v", err)
	}
	if len(mine) != 2 {
		t.Fatalf("expected 2 quotes for Dana, got %d", len(mine))
	}
	if !mine[0].Date.After(mine[1].Date) {
		t.Error("expected newest quote first")
	}
	if mine[0].CustomerName != "Dana" || mine[0].ItemCount != 1 {
		t.Errorf("summary = %+v", mine[0])
	}
}

func TestDeleteCustomer_CascadesToQuotes(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	saved, err := SaveQuote(app, sampleSaveInput("Dana"))
	if err != nil {
		t.Fatalf("SaveQuote() error = %v", err)
	}
	keep, _ := SaveQuote(app, sampleSaveInput("Avi"))

	if err := DeleteCustomer(app, saved.CustomerID); err != nil {
		t.Fatalf("DeleteCustomer() error = %v", err)
	}

	if _, err := app.FindRecordById("quotes", saved.QuoteID); err == nil {
		t.Error("expected the customer's quote to be deleted")
	}
	if _, err := app.FindRecordById("quotes", keep.QuoteID); err != nil {
		t.Error("another customer's quote was deleted")
	}
	if err := DeleteCustomer(app, saved.CustomerID); err == nil {
		t.Error("expected error deleting a missing customer")
	}
}

func TestDeleteQuote(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	saved, _ := SaveQuote(app, sampleSaveInput("Dana"))

	if err := DeleteQuote(app, saved.QuoteID); err != nil {
		t.Fatalf("DeleteQuote() error = %v", err)
	}
	if _, err := app.FindRecordById("customers", saved.CustomerID); err != nil {
		t.Error("deleting a quote must keep the customer")
	}
}

func TestListCustomers(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	SaveQuote(app, sampleSaveInput("Dana"))
	SaveQuote(app, sampleSaveInput("Dana"))
	testhelpers.CreateTestCustomer(t, app, "Avi")

	list, err := ListCustomers(app, "")
	if err != nil {
		t.Fatalf("ListCustomers() error = %v", err)
	}
	if len(list) != 2 || list[0].Name != "Avi" || list[1].Name != "Dana" {
		t.Fatalf("list = %+v, want Avi then Dana", list)
	}
	if list[1].QuoteCount != 2 || !approxEqual(list[1].Total, 2124) {
		t.Errorf("Dana summary = %+v", list[1])
	}
	if list[0].QuoteCount != 0 {
		t.Errorf("Avi summary = %+v", list[0])
	}

	found, err := ListCustomers(app, "dan")
	if err != nil {
		t.Fatalf("ListCustomers(search) error = %v", err)
	}
	if len(found) != 1 || found[0].Name != "Dana" {
		t.Errorf("search result = %+v", found)
	}

	c, err := GetCustomer(app, list[1].ID)
	if err != nil {
		t.Fatalf("GetCustomer() error = %v", err)
	}
	if c.QuoteCount != 2 {
		t.Errorf("GetCustomer().QuoteCount = %d", c.QuoteCount)
	}
}

func TestProfilesCRUD(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	p, err := SaveProfile(app, "", " Klil 4500 ", "850")
	if err != nil {
		t.Fatalf("SaveProfile(create) error = %v", err)
	}
	if p.Name != "Klil 4500" || p.UnitPrice != 850 {
		t.Errorf("created %+v", p)
	}

	p, err = SaveProfile(app, p.ID, "Klil 4500 Premium", "1,050")
	if err != nil {
		t.Fatalf("SaveProfile(update) error = %v", err)
	}
	got, err := GetProfile(app, p.ID)
	if err != nil {
		t.Fatalf("GetProfile() error = %v", err)
	}
	// "1,050" has no period, so the comma is the decimal separator
	if got.Name != "Klil 4500 Premium" || got.UnitPrice != 1.05 {
		t.Errorf("updated %+v", got)
	}

	var verr *ValidationError
	if _, err := SaveProfile(app, "", "  ", "10"); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for empty name, got %v", err)
	}
	if _, err := SaveProfile(app, "", "Bad", "-5"); !errors.As(err, &verr) {
		t.Errorf("expected ValidationError for negative price, got %v", err)
	}

	list, _ := ListProfiles(app)
	if len(list) != 1 {
		t.Fatalf("expected 1 profile, got %d", len(list))
	}

	if err := DeleteProfile(app, p.ID); err != nil {
		t.Fatalf("DeleteProfile() error = %v", err)
	}
	list, _ = ListProfiles(app)
	if len(list) != 0 {
		t.Errorf("expected no profiles after delete, got %d", len(list))
	}
}

func TestDeleteProfile_KeepsFrozenNames(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	p, _ := SaveProfile(app, "", "Klil", "500")

	in := sampleSaveInput("Dana")
	in.Items = []LineItem{CommitLineItem(ApplyProfile(LineItem{WidthCm: "100", HeightCm: "100", Qty: "1"}, p))}
	saved, err := SaveQuote(app, in)
	if err != nil {
		t.Fatalf("SaveQuote() error = %v", err)
	}

	if err := DeleteProfile(app, p.ID); err != nil {
		t.Fatalf("DeleteProfile() error = %v", err)
	}

	payload, err := LoadQuotePayload(app, saved.QuoteID)
	if err != nil {
		t.Fatalf("LoadQuotePayload() error = %v", err)
	}
	if payload.Items[0].ProfileName != "Klil" || payload.Items[0].Subtotal != 500 {
		t.Errorf("item = %+v, want the frozen profile name and price", payload.Items[0])
	}
}

func TestListQuotes_UnreadableItemsStillListed(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	customer := testhelpers.CreateTestCustomer(t, app, "Dana")
	quote := testhelpers.CreateTestQuote(t, app, customer.Id, map[string]any{"width": "not a list"})

	got, err := ListQuotes(app, customer.Id)
	if err != nil {
		t.Fatalf("ListQuotes() error = %v", err)
	}
	if len(got) != 1 || got[0].ID != quote.Id {
		t.Fatalf("expected the quote to be listed, got %+v", got)
	}
	if got[0].ItemCount != 0 || got[0].CustomerName != "Dana" {
		t.Errorf("summary = %+v", got[0])
	}
}
