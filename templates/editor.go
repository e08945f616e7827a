package templates

import (
	"github.com/a-h/templ"

	"aluquote/services"
)

// EditorData is the state of the quote editor page.
type EditorData struct {
	Draft    services.Draft
	Profiles []services.Profile
	Preview  services.LineCalc
}

// minAddonRows is how many add-on rows the pending line form shows.
const minAddonRows = 3

// QuoteEditorPage is the full editor page.
func QuoteEditorPage(data EditorData, nav NavData) templ.Component {
	return Page("הצעת מחיר", nav, QuoteEditor(data))
}

// QuoteEditor is the editor section; adding or removing items swaps it whole.
func QuoteEditor(data EditorData) templ.Component {
	d := data.Draft
	return component(func(w *htmlWriter) {
		w.raw(`<section id="editor" class="editor">`)

		w.raw(`<form id="customer-form" class="card" hx-post="/draft" hx-trigger="change" hx-target="#quote-items" hx-swap="outerHTML">`)
		w.raw(`<h2>פרטי לקוח</h2>`)
		input(w, "customer_name", "שם לקוח", "text", d.CustomerName)
		input(w, "customer_phone", "טלפון", "tel", d.CustomerPhone)
		input(w, "customer_email", "אימייל", "email", d.CustomerEmail)
		input(w, "title", "כותרת", "text", d.Title)
		input(w, "tax_percent", "מע\"מ (%)", "text", string(d.TaxPercent))
		w.f(`<label>הערות<textarea name="notes" rows="3">%s</textarea></label>`, d.Notes)
		w.raw(`</form>`)

		w.raw(`<form id="line-form" class="card" hx-post="/draft/preview" hx-trigger="input, change" hx-target="#line-preview" hx-swap="outerHTML">`)
		w.raw(`<h2>פריט חדש</h2>`)
		p := d.Pending
		w.raw(`<label>פרופיל<select name="profile_id" hx-post="/draft/preview?full=1" hx-trigger="change" hx-target="#editor" hx-swap="outerHTML"><option value="">ללא פרופיל</option>`)
		for _, pr := range data.Profiles {
			w.f(`<option value="%s"%s>%s (%s למ"ר)</option>`, pr.ID, selected(pr.ID == p.ProfileID), pr.Name, services.FormatMoney(pr.UnitPrice))
		}
		w.raw(`</select></label>`)
		input(w, "width_cm", "רוחב (ס\"מ)", "text", string(p.WidthCm))
		input(w, "height_cm", "גובה (ס\"מ)", "text", string(p.HeightCm))
		input(w, "qty", "כמות", "text", string(p.Qty))
		input(w, "unit_price", "מחיר למ\"ר", "text", string(p.UnitPrice))
		input(w, "location", "מיקום", "text", p.Location)
		input(w, "details", "פרטים", "text", p.Details)

		w.raw(`<fieldset class="addons"><legend>תוספות</legend>`)
		rows := len(p.Addons) + 1
		if rows < minAddonRows {
			rows = minAddonRows
		}
		for i := 0; i < rows; i++ {
			var a services.Addon
			if i < len(p.Addons) {
				a = p.Addons[i]
			}
			w.raw(`<div class="addon-row">`)
			w.f(`<input type="checkbox" name="addon_checked" value="%d"%s>`, i, checked(a.Checked))
			w.f(`<input type="text" name="addon_name" placeholder="שם תוספת" value="%s">`, a.Name)
			w.f(`<input type="text" name="addon_price" placeholder="מחיר" value="%s">`, string(a.Price))
			w.raw(`</div>`)
		}
		w.raw(`</fieldset>`)

		w.render(LinePreview(data.Preview))
		w.raw(`<button type="button" class="btn btn-primary" hx-post="/draft/items" hx-target="#editor" hx-swap="outerHTML">הוסף פריט</button>`)
		w.raw(`</form>`)

		w.render(QuoteItems(d.Items, d.Totals(), d.TaxPercent))

		w.raw(`<div class="actions">`)
		w.raw(`<button type="button" class="btn btn-primary" hx-post="/quotes" hx-include="#customer-form">שמור הצעה</button>`)
		w.raw(`<a class="btn" href="/draft/pdf" hx-boost="false">ייצוא PDF</a>`)
		w.raw(`<button type="button" class="btn btn-ghost" hx-post="/draft/reset" hx-confirm="לנקות את ההצעה הנוכחית?">הצעה חדשה</button>`)
		w.raw(`</div></section>`)
	})
}

func input(w *htmlWriter, name, label, kind, value string) {
	w.f(`<label>%s<input type="%s" name="%s" value="%s"></label>`, label, kind, name, value)
}

// LinePreview shows the price of the line being typed.
func LinePreview(calc services.LineCalc) templ.Component {
	return component(func(w *htmlWriter) {
		w.raw(`<div id="line-preview" class="line-preview">`)
		w.f(`<span>שטח: %s מ"ר</span>`, services.FormatQty(calc.Area))
		w.f(`<span>מחיר ליחידה: %s</span>`, services.FormatMoney(calc.PerItemPrice))
		w.f(`<strong>סה"כ לשורה: %s</strong>`, services.FormatMoney(calc.Subtotal))
		w.raw(`</div>`)
	})
}

// QuoteItems lists the committed items of the draft with the quote totals.
func QuoteItems(items []services.LineItem, totals services.QuoteTotals, taxPercent services.RawText) templ.Component {
	return component(func(w *htmlWriter) {
		w.raw(`<section id="quote-items" class="card">`)
		if len(items) == 0 {
			w.raw(`<p class="empty">עדיין לא נוספו פריטים</p>`)
		} else {
			w.raw(`<table class="table"><thead><tr><th>#</th><th>מיקום</th><th>פרופיל</th><th>מידות</th><th>כמות</th><th>פרטים</th><th>מחיר ליחידה</th><th>סה"כ</th><th></th></tr></thead><tbody>`)
			for i, it := range items {
				w.f(`<tr><td>%d</td><td>%s</td><td>%s</td>`, i+1, it.Location, it.ProfileName)
				w.f(`<td>%s×%s</td><td>%s</td>`, string(it.WidthCm), string(it.HeightCm), string(it.Qty))
				w.f(`<td>%s</td><td>%s</td><td>%s</td>`, services.DetailsSummary(it), services.FormatMoney(it.PerItemPrice), services.FormatMoney(it.Subtotal))
				w.f(`<td><button type="button" class="btn btn-ghost" hx-delete="/draft/items/%d" hx-target="#editor" hx-swap="outerHTML">הסר</button></td></tr>`, i)
			}
			w.raw(`</tbody></table>`)
		}
		rate := services.NormalizeTaxPercent(taxPercent.Number())
		w.raw(`<dl class="totals">`)
		w.f(`<dt>סכום ביניים</dt><dd>%s</dd>`, services.FormatMoney(totals.Sub))
		w.f(`<dt>מע"מ (%s%%)</dt><dd>%s</dd>`, services.FormatQty(rate*100), services.FormatMoney(totals.Tax))
		w.f(`<dt>סה"כ לתשלום</dt><dd class="grand">%s</dd>`, services.FormatMoney(totals.Grand))
		w.raw(`</dl></section>`)
	})
}
