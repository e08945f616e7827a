// Package testhelpers provides a throwaway PocketBase app and record
// factories for the quote tables.
package testhelpers

import (
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"aluquote/collections"
)

// NewTestApp bootstraps a PocketBase app in a temporary data dir with all
// collections created. The dir is removed when the test ends.
func NewTestApp(t *testing.T) *pocketbase.PocketBase {
	t.Helper()

	app := pocketbase.NewWithConfig(pocketbase.Config{DefaultDataDir: t.TempDir()})
	if err := app.Bootstrap(); err != nil {
		t.Fatalf("failed to bootstrap test app: %v", err)
	}
	collections.Setup(app)
	return app
}

// createRecord saves a record with fields into collection or fails the test.
func createRecord(t *testing.T, app *pocketbase.PocketBase, collection string, fields map[string]any) *core.Record {
	t.Helper()

	col, err := app.FindCollectionByNameOrId(collection)
	if err != nil {
		t.Fatalf("collection %s not found: %v", collection, err)
	}
	record := core.NewRecord(col)
	for k, v := range fields {
		record.Set(k, v)
	}
	if err := app.Save(record); err != nil {
		t.Fatalf("failed to save test %s record: %v", collection, err)
	}
	return record
}

// CreateTestProfile creates a profile priced per m².
func CreateTestProfile(t *testing.T, app *pocketbase.PocketBase, name string, unitPrice float64) *core.Record {
	t.Helper()
	return createRecord(t, app, "profiles", map[string]any{"name": name, "unit_price": unitPrice})
}

// CreateTestCustomer creates a customer with a fixed phone number.
func CreateTestCustomer(t *testing.T, app *pocketbase.PocketBase, name string) *core.Record {
	t.Helper()
	return createRecord(t, app, "customers", map[string]any{"name": name, "phone": "050-1234567"})
}

// CreateTestQuote stores items as given, bypassing pricing; totals stay zero.
func CreateTestQuote(t *testing.T, app *pocketbase.PocketBase, customerID string, items any) *core.Record {
	t.Helper()
	return createRecord(t, app, "quotes", map[string]any{
		"customer":    customerID,
		"title":       "Test quote",
		"tax_percent": "18",
		"items":       items,
	})
}

// AssertHTMLContains checks that body contains every fragment.
func AssertHTMLContains(t *testing.T, body string, fragments ...string) {
	t.Helper()

	for _, frag := range fragments {
		if !strings.Contains(body, frag) {
			t.Errorf("expected HTML to contain %q\nbody (first 500 chars): %s", frag, truncate(body, 500))
		}
	}
}

// AssertHXRedirect checks the HX-Redirect header value.
func AssertHXRedirect(t *testing.T, headerVal, expectedURL string) {
	t.Helper()
	if headerVal != expectedURL {
		t.Errorf("expected HX-Redirect %q, got %q", expectedURL, headerVal)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
