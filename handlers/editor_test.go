package handlers

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"aluquote/services"
	"aluquote/testhelpers"
)

func TestHandleEditor_FullPage(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestProfile(t, app, "Klil 4500", 850)
	storeDraft(app, sampleDraft())

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := serve(t, app, HandleEditor(app, newTestEnv()), req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "<!DOCTYPE html>", `id="editor"`, "Dana Levi", "Klil 4500", "1,062.00 ₪")
}

func TestHandleDraftUpdate_RefreshesTotals(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	storeDraft(app, sampleDraft())

	form := url.Values{"customer_name": {"Avi"}, "tax_percent": {"17"}, "notes": {"second floor"}}
	rec := serve(t, app, HandleDraftUpdate(app, newTestEnv()), newFormRequest(http.MethodPost, "/draft", form))

	testhelpers.AssertHTMLContains(t, rec.Body.String(), `id="quote-items"`, "1,053.00 ₪", "מע\"מ (17%)")

	d := loadDraft(app)
	if d.CustomerName != "Avi" || d.TaxPercent != "17" || d.Notes != "second floor" {
		t.Errorf("draft = %+v", d)
	}
	if d.CustomerPhone != "050-1234567" {
		t.Errorf("phone = %q, fields missing from the form must be kept", d.CustomerPhone)
	}
}

func TestHandleDraftPreview(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := url.Values{
		"width_cm": {"100"}, "height_cm": {"200"}, "qty": {"2"}, "unit_price": {"100"},
		"addon_name": {"motor", "", "net"}, "addon_price": {"300", "", "50"}, "addon_checked": {"0"},
	}
	rec := serve(t, app, HandleDraftPreview(app, newTestEnv()), newFormRequest(http.MethodPost, "/draft/preview", form))

	body := rec.Body.String()
	// (2 m² × 100 + 300) × 2
	testhelpers.AssertHTMLContains(t, body, `id="line-preview"`, "500.00 ₪", "1,000.00 ₪")
	if strings.Contains(body, `id="editor"`) {
		t.Error("preview should only return the preview fragment")
	}

	d := loadDraft(app)
	if len(d.Pending.Addons) != 2 || !d.Pending.Addons[0].Checked || d.Pending.Addons[1].Checked {
		t.Errorf("pending addons = %+v", d.Pending.Addons)
	}
}

func TestHandleDraftPreview_ProfileSetsPrice(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	p := testhelpers.CreateTestProfile(t, app, "Klil 4500", 850)

	form := url.Values{"width_cm": {"100"}, "height_cm": {"100"}, "qty": {"1"}, "unit_price": {"10"}, "profile_id": {p.Id}}
	rec := serve(t, app, HandleDraftPreview(app, newTestEnv()), newFormRequest(http.MethodPost, "/draft/preview?full=1", form))

	testhelpers.AssertHTMLContains(t, rec.Body.String(), `id="editor"`, `name="unit_price" value="850"`)

	d := loadDraft(app)
	if d.Pending.ProfileName != "Klil 4500" || d.Pending.UnitPrice != "850" {
		t.Errorf("pending = %+v", d.Pending)
	}

	// the same profile keeps a price typed over it
	form.Set("unit_price", "900")
	serve(t, app, HandleDraftPreview(app, newTestEnv()), newFormRequest(http.MethodPost, "/draft/preview", form))
	if got := loadDraft(app).Pending.UnitPrice; got != "900" {
		t.Errorf("UnitPrice = %q, want the typed 900", got)
	}
}

func TestHandleDraftAddItem(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	storeDraft(app, services.NewDraft("18"))

	form := url.Values{"width_cm": {"100"}, "height_cm": {"200"}, "qty": {"3"}, "unit_price": {"150"}, "location": {"salon"}}
	rec := serve(t, app, HandleDraftAddItem(app, newTestEnv()), newFormRequest(http.MethodPost, "/draft/items", form))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "salon", "900.00 ₪", `hx-delete="/draft/items/0"`)

	d := loadDraft(app)
	if len(d.Items) != 1 || d.Items[0].Subtotal != 900 {
		t.Fatalf("items = %+v", d.Items)
	}
	if d.Pending.WidthCm != "" || d.Pending.Qty != "1" {
		t.Errorf("pending line not reset: %+v", d.Pending)
	}
}

func TestHandleDraftAddItem_RequiresDimensions(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := url.Values{"width_cm": {"100"}, "qty": {"1"}}
	rec := serve(t, app, HandleDraftAddItem(app, newTestEnv()), newFormRequest(http.MethodPost, "/draft/items", form))

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Error("expected HX-Reswap: none")
	}
	if len(loadDraft(app).Items) != 0 {
		t.Error("no item should be added")
	}
}

func TestHandleDraftRemoveItem(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	d := sampleDraft()
	d.Items = append(d.Items, services.LineItem{Location: "bedroom"})
	storeDraft(app, d)

	req := httptest.NewRequest(http.MethodDelete, "/draft/items/0", nil)
	req.SetPathValue("index", "0")
	serve(t, app, HandleDraftRemoveItem(app, newTestEnv()), req)

	got := loadDraft(app)
	if len(got.Items) != 1 || got.Items[0].Location != "bedroom" {
		t.Errorf("items = %+v", got.Items)
	}

	req = httptest.NewRequest(http.MethodDelete, "/draft/items/7", nil)
	req.SetPathValue("index", "7")
	rec := serve(t, app, HandleDraftRemoveItem(app, newTestEnv()), req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func TestHandleDraftReset(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	storeDraft(app, sampleDraft())

	req := httptest.NewRequest(http.MethodPost, "/draft/reset", nil)
	req.Header.Set("HX-Request", "true")
	rec := serve(t, app, HandleDraftReset(app, newTestEnv()), req)

	testhelpers.AssertHXRedirect(t, rec.Header().Get("HX-Redirect"), "/")
	if d := loadDraft(app); len(d.Items) != 0 || d.CustomerName != "" {
		t.Errorf("draft not reset: %+v", d)
	}
}

func TestHandleDraftExportPDF(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	storeDraft(app, sampleDraft())

	req := httptest.NewRequest(http.MethodGet, "/draft/pdf", nil)
	rec := serve(t, app, HandleDraftExportPDF(app, newTestEnv()), req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); !strings.HasPrefix(cd, "attachment;") || !strings.Contains(cd, "Dana_Levi_") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Error("body is not a PDF")
	}
}

func TestHandleDraftExportPDF_Validation(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	d := sampleDraft()
	d.CustomerName = " "
	storeDraft(app, d)

	req := httptest.NewRequest(http.MethodGet, "/draft/pdf", nil)
	rec := serve(t, app, HandleDraftExportPDF(app, newTestEnv()), req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Header().Get("HX-Trigger"), "showToast") {
		t.Error("expected an error toast")
	}
}

func TestHandleDraftExportPDF_EngineUnavailable(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	storeDraft(app, sampleDraft())

	env := newTestEnv()
	env.Exporter = services.NewExporter(services.ExportConfig{
		NewCanvas: func(services.FontSet) (services.Canvas, error) { return nil, services.ErrPDFUnavailable },
	})

	req := httptest.NewRequest(http.MethodGet, "/draft/pdf", nil)
	rec := serve(t, app, HandleDraftExportPDF(app, env), req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", rec.Code)
	}
}
