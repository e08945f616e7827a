package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"aluquote/services"
)

func renderString(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func assertContains(t *testing.T, html string, want ...string) {
	t.Helper()
	for _, w := range want {
		if !strings.Contains(html, w) {
			t.Errorf("expected HTML to contain %q", w)
		}
	}
}

func TestPage_ShellAndNav(t *testing.T) {
	html := renderString(t, Page("לקוחות", NavData{Active: "customers", CustomerCount: 4}, LinePreview(services.LineCalc{})))
	assertContains(t, html,
		`<html lang="he" dir="rtl">`,
		`<title>לקוחות</title>`,
		`<a class="nav-link active" href="/customers">לקוחות <span class="badge">4</span></a>`,
		`id="line-preview"`,
	)
	if strings.Contains(html, `href="/profiles">פרופילים <span`) {
		t.Error("a zero count should not show a badge")
	}
}

func TestQuoteEditor(t *testing.T) {
	d := services.NewDraft("18")
	d.CustomerName = `Dana "D" <Levi>`
	d.Pending = services.LineItem{WidthCm: "100", Qty: "1", ProfileID: "p2"}
	d.Items = []services.LineItem{services.CommitLineItem(services.LineItem{
		WidthCm: "100", HeightCm: "200", Qty: "3", UnitPrice: "150", Location: "סלון",
	})}
	data := EditorData{
		Draft:    d,
		Profiles: []services.Profile{{ID: "p1", Name: "Klil 2000", UnitPrice: 650}, {ID: "p2", Name: "Klil 4500", UnitPrice: 850}},
	}

	html := renderString(t, QuoteEditor(data))
	assertContains(t, html,
		`value="Dana &#34;D&#34; &lt;Levi&gt;"`,
		`<option value="p2" selected>Klil 4500`,
		`hx-post="/draft/preview" hx-trigger="input, change"`,
		`hx-delete="/draft/items/0"`,
		`name="addon_name"`,
		"סלון",
		"1,062.00 ₪",
		"מע\"מ (18%)",
	)
	if n := strings.Count(html, `name="addon_name"`); n != minAddonRows {
		t.Errorf("addon rows = %d, want %d", n, minAddonRows)
	}
}

func TestQuoteItems_Empty(t *testing.T) {
	html := renderString(t, QuoteItems(nil, services.QuoteTotals{}, "17"))
	assertContains(t, html, "עדיין לא נוספו פריטים", "מע\"מ (17%)")
}

func TestQuoteListContent(t *testing.T) {
	html := renderString(t, QuoteListContent(QuoteListData{
		Quotes: []services.QuoteSummary{{ID: "q1", CustomerID: "c1", CustomerName: "Dana", Title: "Kitchen", ItemCount: 2, Totals: services.QuoteTotals{Grand: 1180}}},
	}))
	assertContains(t, html, `href="/quotes/q1/pdf"`, `hx-post="/quotes/q1/edit"`, "Kitchen", "1,180.00 ₪")

	empty := renderString(t, QuoteListContent(QuoteListData{Customer: &services.CustomerSummary{Name: "Avi"}}))
	assertContains(t, empty, "הצעות של Avi", "אין הצעות שמורות")
}

func TestCustomerListPage(t *testing.T) {
	html := renderString(t, CustomerListPage(CustomerListData{
		Search:    "<script>",
		Customers: []services.CustomerSummary{{ID: "c1", Name: "Dana", Phone: "050-1234567", QuoteCount: 2, Total: 2124}},
	}, NavData{Active: "customers"}))
	assertContains(t, html, `value="&lt;script&gt;"`, `href="/customers/c1/excel"`, `href="/customers/c1/statement"`, "2,124.00 ₪")
	if strings.Contains(html, "<script>\"") {
		t.Error("search value must be escaped")
	}
}

func TestProfileListContent(t *testing.T) {
	html := renderString(t, ProfileListContent(ProfileListData{
		Profiles: []services.Profile{{ID: "p1", Name: "Klil", UnitPrice: 850.5}},
		Form:     ProfileFormData{Name: "x", Error: "יש להזין שם פרופיל"},
	}))
	assertContains(t, html, `hx-post="/profiles/p1"`, `value="850.50"`, `<p class="error">יש להזין שם פרופיל</p>`)
}

type labelStringer struct{ s string }

func (l labelStringer) String() string { return l.s }

func TestHTMLWriter_EscapesStringLikeArgs(t *testing.T) {
	tests := []struct {
		name string
		arg  any
		want string
	}{
		{"string", "<b>", "&lt;b&gt;"},
		{"named string", services.RawText(`"><script>`), "&#34;&gt;&lt;script&gt;"},
		{"stringer", labelStringer{"<i>x</i>"}, "&lt;i&gt;x&lt;/i&gt;"},
		{"int", 42, "42"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			w := &htmlWriter{ctx: context.Background(), w: &buf}
			w.f(`<span>%v</span>`, tt.arg)
			if w.err != nil {
				t.Fatalf("write error = %v", w.err)
			}
			if got := buf.String(); got != "<span>"+tt.want+"</span>" {
				t.Errorf("got %q, want %q", got, "<span>"+tt.want+"</span>")
			}
		})
	}
}
