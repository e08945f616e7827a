package templates

import (
	"github.com/a-h/templ"

	"aluquote/services"
)

// QuoteListData is the saved quotes page, optionally for one customer.
type QuoteListData struct {
	Quotes   []services.QuoteSummary
	Customer *services.CustomerSummary
}

func QuoteListPage(data QuoteListData, nav NavData) templ.Component {
	return Page("הצעות שמורות", nav, QuoteListContent(data))
}

func QuoteListContent(data QuoteListData) templ.Component {
	return component(func(w *htmlWriter) {
		w.raw(`<section id="quote-list" class="card">`)
		if data.Customer != nil {
			w.f(`<h1>הצעות של %s</h1>`, data.Customer.Name)
		} else {
			w.raw(`<h1>הצעות שמורות</h1>`)
		}
		if len(data.Quotes) == 0 {
			w.raw(`<p class="empty">אין הצעות שמורות</p></section>`)
			return
		}
		w.raw(`<table class="table"><thead><tr><th>תאריך</th><th>לקוח</th><th>כותרת</th><th>פריטים</th><th>סה"כ</th><th></th></tr></thead><tbody>`)
		for _, q := range data.Quotes {
			w.f(`<tr id="quote-%s"><td>%s</td>`, q.ID, services.FormatDate(q.Date))
			w.f(`<td><a href="/quotes?customer=%s">%s</a></td>`, q.CustomerID, q.CustomerName)
			w.f(`<td>%s</td><td>%d</td><td>%s</td>`, q.Title, q.ItemCount, services.FormatMoney(q.Totals.Grand))
			w.raw(`<td class="row-actions">`)
			w.f(`<a class="btn" href="/quotes/%s/pdf" hx-boost="false">PDF</a>`, q.ID)
			w.f(`<button type="button" class="btn" hx-post="/quotes/%s/edit">פתח לעריכה</button>`, q.ID)
			w.f(`<button type="button" class="btn btn-ghost" hx-delete="/quotes/%s" hx-target="#quote-%s" hx-swap="outerHTML" hx-confirm="למחוק את ההצעה?">מחק</button>`, q.ID, q.ID)
			w.raw(`</td></tr>`)
		}
		w.raw(`</tbody></table></section>`)
	})
}

// CustomerListData is the customers page with its search box.
type CustomerListData struct {
	Customers []services.CustomerSummary
	Search    string
}

func CustomerListPage(data CustomerListData, nav NavData) templ.Component {
	return component(func(w *htmlWriter) {
		body := component(func(w *htmlWriter) {
			w.raw(`<h1>לקוחות</h1>`)
			w.f(`<input type="search" name="q" value="%s" placeholder="חיפוש לפי שם, טלפון או אימייל" hx-get="/customers" hx-trigger="input changed delay:300ms" hx-target="#customer-list" hx-swap="outerHTML">`, data.Search)
			w.render(CustomerListContent(data))
		})
		w.render(Page("לקוחות", nav, body))
	})
}

// CustomerListContent is the table swapped in by the search box.
func CustomerListContent(data CustomerListData) templ.Component {
	return component(func(w *htmlWriter) {
		w.raw(`<section id="customer-list" class="card">`)
		if len(data.Customers) == 0 {
			w.raw(`<p class="empty">לא נמצאו לקוחות</p></section>`)
			return
		}
		w.raw(`<table class="table"><thead><tr><th>שם</th><th>טלפון</th><th>אימייל</th><th>הצעות</th><th>סה"כ</th><th></th></tr></thead><tbody>`)
		for _, c := range data.Customers {
			w.f(`<tr id="customer-%s"><td><a href="/quotes?customer=%s">%s</a></td>`, c.ID, c.ID, c.Name)
			w.f(`<td dir="ltr">%s</td><td dir="ltr">%s</td><td>%d</td><td>%s</td>`, c.Phone, c.Email, c.QuoteCount, services.FormatMoney(c.Total))
			w.raw(`<td class="row-actions">`)
			w.f(`<a class="btn" href="/customers/%s/excel" hx-boost="false">Excel</a>`, c.ID)
			w.f(`<a class="btn" href="/customers/%s/statement" hx-boost="false">ריכוז PDF</a>`, c.ID)
			w.f(`<button type="button" class="btn btn-ghost" hx-delete="/customers/%s" hx-target="#customer-%s" hx-swap="outerHTML" hx-confirm="למחוק את הלקוח וכל ההצעות שלו?">מחק</button>`, c.ID, c.ID)
			w.raw(`</td></tr>`)
		}
		w.raw(`</tbody></table></section>`)
	})
}

// ProfileListData is the profiles page. Form holds the values of a rejected
// submission together with its error.
type ProfileListData struct {
	Profiles []services.Profile
	Form     ProfileFormData
	Import   *services.CatalogImportResult
}

type ProfileFormData struct {
	Name      string
	UnitPrice string
	Error     string
}

func ProfileListPage(data ProfileListData, nav NavData) templ.Component {
	return Page("פרופילים", nav, ProfileListContent(data))
}

func ProfileListContent(data ProfileListData) templ.Component {
	return component(func(w *htmlWriter) {
		w.raw(`<section id="profile-list" class="card"><h1>פרופילים</h1>`)
		w.raw(`<table class="table"><thead><tr><th>שם</th><th>מחיר למ"ר</th><th></th></tr></thead><tbody>`)
		for _, p := range data.Profiles {
			w.raw(`<tr>`)
			w.f(`<td><input type="text" name="name" value="%s"></td>`, p.Name)
			w.f(`<td><input type="text" name="unit_price" value="%s"></td>`, services.FormatQty(p.UnitPrice))
			w.f(`<td class="row-actions"><button type="button" class="btn" hx-post="/profiles/%s" hx-include="closest tr" hx-target="#profile-list" hx-swap="outerHTML">שמור</button>`, p.ID)
			w.f(`<button type="button" class="btn btn-ghost" hx-delete="/profiles/%s" hx-target="#profile-list" hx-swap="outerHTML" hx-confirm="למחוק את הפרופיל?">מחק</button>`, p.ID)
			w.raw(`</td></tr>`)
		}
		w.raw(`</tbody></table>`)
		w.render(ProfileForm(data.Form))
		w.render(CatalogImport(data.Import))
		w.raw(`</section>`)
	})
}

// ProfileForm adds a new profile.
func ProfileForm(f ProfileFormData) templ.Component {
	return component(func(w *htmlWriter) {
		w.raw(`<form class="profile-form" hx-post="/profiles" hx-target="#profile-list" hx-swap="outerHTML"><h2>פרופיל חדש</h2>`)
		if f.Error != "" {
			w.f(`<p class="error">%s</p>`, f.Error)
		}
		input(w, "name", "שם", "text", f.Name)
		input(w, "unit_price", "מחיר למ\"ר", "text", f.UnitPrice)
		w.raw(`<button type="submit" class="btn btn-primary">הוסף</button></form>`)
	})
}

// CatalogImport uploads a price list and links to the current one.
func CatalogImport(result *services.CatalogImportResult) templ.Component {
	return component(func(w *htmlWriter) {
		w.raw(`<form class="profile-form" hx-post="/profiles/import" hx-encoding="multipart/form-data" hx-target="#profile-list" hx-swap="outerHTML"><h2>מחירון</h2>`)
		if result != nil {
			w.f(`<p>נוספו %d, עודכנו %d</p>`, result.Created, result.Updated)
			if len(result.Errors) > 0 {
				w.raw(`<ul class="error">`)
				for _, rowErr := range result.Errors {
					w.f(`<li>שורה %d: %s</li>`, rowErr.Row, rowErr.Message)
				}
				w.raw(`</ul>`)
			}
		}
		w.raw(`<input type="file" name="file" accept=".csv,.xlsx">`)
		w.raw(`<button type="submit" class="btn">ייבוא</button>`)
		w.raw(`<a class="btn btn-ghost" href="/profiles/catalog" hx-boost="false">הורדת מחירון</a></form>`)
	})
}
