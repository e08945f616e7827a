package services

import (
	"strings"
	"testing"
	"time"

	"aluquote/testhelpers"
)

const legacyBlob = `{
  "profiles": [
    {"id": "p1", "name": "Klil 4500", "unitPrice": 850},
    {"id": "p2", "name": "Klil 7000", "unitPrice": "1,100.50"},
    {"id": "p3", "name": "  ", "unitPrice": 10}
  ],
  "customers": [
    {"id": "c1", "name": "Dana", "phone": "050-1234567", "notes": "second floor"},
    {"id": "c2", "name": "Avi"}
  ],
  "quotes": [
    {
      "id": "q1", "customerId": "c1", "title": "Kitchen", "date": "2024-11-03",
      "taxPercent": "17", "notes": "old quote",
      "items": [{"widthCm": "100", "heightCm": "200", "qty": "3", "unitPrice": "150", "profileId": "p1", "perItemPrice": 300, "subtotal": 900}],
      "totals": {"sub": 900, "tax": 153, "grand": 1053}
    },
    {
      "id": "q2", "customerName": "Moshe", "date": "2024-12-01T10:00:00Z",
      "items": [{"widthCm": "50", "heightCm": "100", "qty": 2, "unitPrice": 400}]
    },
    {"id": "q3", "customerId": "c2", "items": []}
  ]
}`

func TestImportLegacy(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	report, err := ImportLegacy(app, strings.NewReader(legacyBlob))
	if err != nil {
		t.Fatalf("ImportLegacy() error = %v", err)
	}
	if report.Profiles != 2 || report.Customers != 3 || report.Quotes != 2 {
		t.Errorf("report = %+v, want 2 profiles, 3 customers, 2 quotes", report)
	}
	if len(report.Skipped) != 2 {
		t.Errorf("Skipped = %v, want the blank profile and the empty quote", report.Skipped)
	}

	profiles, _ := ListProfiles(app)
	if len(profiles) != 2 || profiles[1].UnitPrice != 1100.5 {
		t.Errorf("profiles = %+v", profiles)
	}

	dana, err := app.FindFirstRecordByData("customers", "name", "Dana")
	if err != nil {
		t.Fatalf("customer Dana not imported: %v", err)
	}
	if dana.GetString("notes") != "second floor" {
		t.Errorf("notes = %q", dana.GetString("notes"))
	}

	quotes, _ := ListQuotes(app, dana.Id)
	if len(quotes) != 1 {
		t.Fatalf("expected one quote for Dana, got %d", len(quotes))
	}
	p, err := LoadQuotePayload(app, quotes[0].ID)
	if err != nil {
		t.Fatalf("LoadQuotePayload() error = %v", err)
	}
	if p.Totals == nil || p.Totals.Grand != 1053 {
		t.Errorf("Totals = %+v, want the stored snapshot", p.Totals)
	}
	if p.Items[0].ProfileName != "Klil 4500" || p.Items[0].ProfileID != profiles[0].ID {
		t.Errorf("item profile = %q %q", p.Items[0].ProfileName, p.Items[0].ProfileID)
	}
	if !p.Date.Equal(time.Date(2024, time.November, 3, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Date = %v", p.Date)
	}

	moshe, err := app.FindFirstRecordByData("customers", "name", "Moshe")
	if err != nil {
		t.Fatalf("customer from quote not created: %v", err)
	}
	mq, _ := ListQuotes(app, moshe.Id)
	if len(mq) != 1 {
		t.Fatalf("expected one quote for Moshe, got %d", len(mq))
	}
	// unpriced items are committed and the default tax applies
	if mq[0].Totals.Sub != 400 || !approxEqual(mq[0].Totals.Grand, 472) {
		t.Errorf("Moshe totals = %+v", mq[0].Totals)
	}
}

func TestImportLegacy_Twice(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	if _, err := ImportLegacy(app, strings.NewReader(legacyBlob)); err != nil {
		t.Fatalf("first import: %v", err)
	}
	report, err := ImportLegacy(app, strings.NewReader(legacyBlob))
	if err != nil {
		t.Fatalf("second import: %v", err)
	}
	if report.Profiles != 0 || report.Customers != 0 {
		t.Errorf("report = %+v, profiles and customers should be matched", report)
	}

	profiles, _ := app.FindAllRecords("profiles")
	customers, _ := app.FindAllRecords("customers")
	if len(profiles) != 2 || len(customers) != 3 {
		t.Errorf("got %d profiles and %d customers after re-import", len(profiles), len(customers))
	}
}

func TestImportLegacy_BadJSON(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	if _, err := ImportLegacy(app, strings.NewReader(`{"quotes": [`)); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestParseLegacyDate(t *testing.T) {
	tests := []struct {
		in   string
		want time.Time
	}{
		{"2024-11-03", time.Date(2024, 11, 3, 0, 0, 0, 0, time.UTC)},
		{"03/11/2024", time.Date(2024, 11, 3, 0, 0, 0, 0, time.UTC)},
		{"2024-11-03T08:30:00Z", time.Date(2024, 11, 3, 8, 30, 0, 0, time.UTC)},
		{"soon", time.Time{}},
	}
	for _, tt := range tests {
		if got := parseLegacyDate(tt.in); !got.Equal(tt.want) {
			t.Errorf("parseLegacyDate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
