package handlers

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"aluquote/services"
	"aluquote/templates"
)

// editorData builds the editor view of a draft, pricing the pending line.
func editorData(app *pocketbase.PocketBase, d services.Draft) templates.EditorData {
	profiles, err := services.ListProfiles(app)
	if err != nil {
		log.Printf("editor: could not list profiles: %v", err)
	}
	return templates.EditorData{
		Draft:    d,
		Profiles: profiles,
		Preview:  services.ComputeLineTotal(d.Pending),
	}
}

// parseCustomerFields copies the customer form into d. Fields missing from
// the form are left unchanged.
func parseCustomerFields(r *http.Request, d *services.Draft) {
	set := func(name string, dst *string) {
		if _, ok := r.Form[name]; ok {
			*dst = r.Form.Get(name)
		}
	}
	set("customer_name", &d.CustomerName)
	set("customer_phone", &d.CustomerPhone)
	set("customer_email", &d.CustomerEmail)
	set("title", &d.Title)
	set("notes", &d.Notes)
	if _, ok := r.Form["tax_percent"]; ok {
		d.TaxPercent = services.RawText(r.Form.Get("tax_percent"))
	}
}

// parsePendingLine reads the line being typed. Add-on rows with neither a
// name nor a price are dropped.
func parsePendingLine(r *http.Request) services.LineItem {
	item := services.LineItem{
		WidthCm:   services.RawText(r.FormValue("width_cm")),
		HeightCm:  services.RawText(r.FormValue("height_cm")),
		Qty:       services.RawText(r.FormValue("qty")),
		UnitPrice: services.RawText(r.FormValue("unit_price")),
		ProfileID: strings.TrimSpace(r.FormValue("profile_id")),
		Location:  r.FormValue("location"),
		Details:   r.FormValue("details"),
	}

	checkedRows := map[int]bool{}
	for _, v := range r.Form["addon_checked"] {
		if i, err := strconv.Atoi(v); err == nil {
			checkedRows[i] = true
		}
	}
	names, prices := r.Form["addon_name"], r.Form["addon_price"]
	for i := 0; i < len(names) || i < len(prices); i++ {
		var a services.Addon
		if i < len(names) {
			a.Name = strings.TrimSpace(names[i])
		}
		if i < len(prices) {
			a.Price = services.RawText(prices[i])
		}
		if a.Name == "" && strings.TrimSpace(string(a.Price)) == "" {
			continue
		}
		a.Checked = checkedRows[i]
		item.Addons = append(item.Addons, a)
	}
	return item
}

// resolveProfile fills the profile name of item. Choosing a different profile,
// or leaving the price empty, takes the profile's price.
func resolveProfile(app *pocketbase.PocketBase, item, previous services.LineItem) services.LineItem {
	if item.ProfileID == "" {
		item.ProfileName = ""
		return item
	}
	p, err := services.GetProfile(app, item.ProfileID)
	if err != nil {
		log.Printf("editor: %v", err)
		item.ProfileID = ""
		item.ProfileName = ""
		return item
	}
	if item.ProfileID != previous.ProfileID || strings.TrimSpace(string(item.UnitPrice)) == "" {
		return services.ApplyProfile(item, p)
	}
	item.ProfileName = p.Name
	return item
}

// HandleEditor renders the quote editor with the stored draft.
func HandleEditor(app *pocketbase.PocketBase, env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		d := services.NewStateStore(app).LoadDraft(env.TaxPercent)
		data := editorData(app, d)
		return render(e, templates.QuoteEditorPage(data, GetNavData(e.Request, "editor")), templates.QuoteEditor(data))
	}
}

// HandleDraftUpdate stores the customer fields and returns the items with
// refreshed totals, since the tax rate may have changed.
func HandleDraftUpdate(app *pocketbase.PocketBase, env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "טופס לא תקין")
		}
		store := services.NewStateStore(app)
		d := store.LoadDraft(env.TaxPercent)
		parseCustomerFields(e.Request, &d)
		store.SaveDraft(d)
		return templates.QuoteItems(d.Items, d.Totals(), d.TaxPercent).Render(e.Request.Context(), e.Response)
	}
}

// HandleDraftPreview prices the line being typed. With ?full=1 it returns the
// whole editor so a newly chosen profile's price shows in the form.
func HandleDraftPreview(app *pocketbase.PocketBase, env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "טופס לא תקין")
		}
		store := services.NewStateStore(app)
		d := store.LoadDraft(env.TaxPercent)
		d.Pending = resolveProfile(app, parsePendingLine(e.Request), d.Pending)
		store.SaveDraft(d)

		if e.Request.URL.Query().Get("full") == "1" {
			return templates.QuoteEditor(editorData(app, d)).Render(e.Request.Context(), e.Response)
		}
		return templates.LinePreview(services.ComputeLineTotal(d.Pending)).Render(e.Request.Context(), e.Response)
	}
}

// HandleDraftAddItem commits the pending line to the draft.
func HandleDraftAddItem(app *pocketbase.PocketBase, env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "טופס לא תקין")
		}
		store := services.NewStateStore(app)
		d := store.LoadDraft(env.TaxPercent)
		d.Pending = resolveProfile(app, parsePendingLine(e.Request), d.Pending)

		if d.Pending.WidthCm.Number() <= 0 || d.Pending.HeightCm.Number() <= 0 {
			store.SaveDraft(d)
			return ErrorToast(e, http.StatusBadRequest, "יש להזין רוחב וגובה")
		}

		d.CommitPending()
		store.SaveDraft(d)
		return templates.QuoteEditor(editorData(app, d)).Render(e.Request.Context(), e.Response)
	}
}

// HandleDraftRemoveItem deletes the committed item at {index}.
func HandleDraftRemoveItem(app *pocketbase.PocketBase, env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		index, err := strconv.Atoi(e.Request.PathValue("index"))
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "פריט לא תקין")
		}
		store := services.NewStateStore(app)
		d := store.LoadDraft(env.TaxPercent)
		if !d.RemoveItem(index) {
			return ErrorToast(e, http.StatusNotFound, "הפריט לא נמצא")
		}
		store.SaveDraft(d)
		return templates.QuoteEditor(editorData(app, d)).Render(e.Request.Context(), e.Response)
	}
}

// HandleDraftReset starts a new, empty quote.
func HandleDraftReset(app *pocketbase.PocketBase, env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		services.NewStateStore(app).SaveDraft(services.NewDraft(env.TaxPercent))
		return redirect(e, "/")
	}
}

// HandleDraftExportPDF downloads the draft as a quote PDF.
func HandleDraftExportPDF(app *pocketbase.PocketBase, env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		d := services.NewStateStore(app).LoadDraft(env.TaxPercent)
		result, err := env.Exporter.ExportQuote(e.Request.Context(), d.Payload())
		if err != nil {
			return exportFailed(e, "draft_export", err)
		}
		return sendFile(e, "application/pdf", result.Filename, result.PDF)
	}
}
