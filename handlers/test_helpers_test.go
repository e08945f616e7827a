package handlers

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"aluquote/services"
)

// newTestRequestEvent creates a RequestEvent suitable for handler tests.
func newTestRequestEvent(app *pocketbase.PocketBase, req *http.Request, rec *httptest.ResponseRecorder) *core.RequestEvent {
	e := &core.RequestEvent{}
	e.App = app
	e.Request = req
	e.Response = rec
	return e
}

func newTestEnv() *Env {
	return &Env{
		TaxPercent:   "18",
		CompanyLines: services.DefaultCompanyLines,
		Exporter:     services.NewExporter(services.ExportConfig{}),
	}
}

// newFormRequest builds a url-encoded request as HTMX sends it.
func newFormRequest(method, target string, form url.Values) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("HX-Request", "true")
	return req
}

// serve runs handler and fails the test on a returned error.
func serve(t *testing.T, app *pocketbase.PocketBase, handler func(*core.RequestEvent) error, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	if err := handler(newTestRequestEvent(app, req, rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec
}

// storeDraft saves d as the current draft.
func storeDraft(app *pocketbase.PocketBase, d services.Draft) {
	services.NewStateStore(app).SaveDraft(d)
}

func loadDraft(app *pocketbase.PocketBase) services.Draft {
	return services.NewStateStore(app).LoadDraft("18")
}

func sampleDraft() services.Draft {
	d := services.NewDraft("18")
	d.CustomerName = "Dana Levi"
	d.CustomerPhone = "050-1234567"
	d.Title = "Kitchen"
	d.Items = []services.LineItem{services.CommitLineItem(services.LineItem{
		WidthCm: "100", HeightCm: "200", Qty: "3", UnitPrice: "150", Location: "kitchen",
	})}
	return d
}
