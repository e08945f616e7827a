package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/xuri/excelize/v2"

	"aluquote/services"
	"aluquote/testhelpers"
)

func TestHandleProfileList(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestProfile(t, app, "Klil 4500", 850)

	req := httptest.NewRequest(http.MethodGet, "/profiles", nil)
	rec := serve(t, app, HandleProfileList(app), req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), "<!DOCTYPE html>", `value="Klil 4500"`, `value="850"`)
}

func TestHandleProfileSave(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := url.Values{"name": {"Klil 7000"}, "unit_price": {"1100"}}
	rec := serve(t, app, HandleProfileSave(app), newFormRequest(http.MethodPost, "/profiles", form))
	testhelpers.AssertHTMLContains(t, rec.Body.String(), `id="profile-list"`, `value="Klil 7000"`)

	profiles, _ := services.ListProfiles(app)
	if len(profiles) != 1 || profiles[0].UnitPrice != 1100 {
		t.Fatalf("profiles = %+v", profiles)
	}

	id := profiles[0].ID
	form = url.Values{"name": {"Klil 7000 Plus"}, "unit_price": {"1200"}}
	req := newFormRequest(http.MethodPost, "/profiles/"+id, form)
	req.SetPathValue("id", id)
	serve(t, app, HandleProfileSave(app), req)

	p, _ := services.GetProfile(app, id)
	if p.Name != "Klil 7000 Plus" || p.UnitPrice != 1200 {
		t.Errorf("updated profile = %+v", p)
	}
}

func TestHandleProfileSave_Invalid(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	form := url.Values{"name": {""}, "unit_price": {"100"}}
	rec := serve(t, app, HandleProfileSave(app), newFormRequest(http.MethodPost, "/profiles", form))

	testhelpers.AssertHTMLContains(t, rec.Body.String(), `class="error"`, "יש להזין שם פרופיל", `value="100"`)
	if profiles, _ := services.ListProfiles(app); len(profiles) != 0 {
		t.Error("an invalid profile must not be saved")
	}
}

func TestHandleProfileDelete(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	p := testhelpers.CreateTestProfile(t, app, "Klil", 500)

	req := httptest.NewRequest(http.MethodDelete, "/profiles/"+p.Id, nil)
	req.SetPathValue("id", p.Id)
	req.Header.Set("HX-Request", "true")
	rec := serve(t, app, HandleProfileDelete(app), req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
	if profiles, _ := services.ListProfiles(app); len(profiles) != 0 {
		t.Error("profile should be deleted")
	}

	rec = serve(t, app, HandleProfileDelete(app), req)
	if rec.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", rec.Code)
	}
}

func newUploadRequest(t *testing.T, target, fileName string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	part.Write(content)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("HX-Request", "true")
	return req
}

func TestHandleProfileCatalogImport(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	csv := "שם פרופיל,מחיר למ\"ר\nקליל 4500,850\n,100\n"
	rec := serve(t, app, HandleProfileCatalogImport(app), newUploadRequest(t, "/profiles/import", "prices.csv", []byte(csv)))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	testhelpers.AssertHTMLContains(t, rec.Body.String(), `id="profile-list"`, `value="קליל 4500"`, "נוספו 1, עודכנו 0", "שורה 3")

	if profiles, _ := services.ListProfiles(app); len(profiles) != 1 {
		t.Errorf("profiles = %+v", profiles)
	}
}

func TestHandleProfileCatalogImport_BadFile(t *testing.T) {
	app := testhelpers.NewTestApp(t)

	rec := serve(t, app, HandleProfileCatalogImport(app), newUploadRequest(t, "/profiles/import", "prices.pdf", []byte("%PDF")))
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
	if rec.Header().Get("HX-Reswap") != "none" {
		t.Error("expected HX-Reswap: none")
	}
}

func TestHandleProfileCatalogExport(t *testing.T) {
	app := testhelpers.NewTestApp(t)
	testhelpers.CreateTestProfile(t, app, "Klil 4500", 850)

	rec := serve(t, app, HandleProfileCatalogExport(app), httptest.NewRequest(http.MethodGet, "/profiles/catalog", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("Content-Type = %q", ct)
	}

	f, err := excelize.OpenReader(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("response is not a workbook: %v", err)
	}
	defer f.Close()
	name, _ := f.GetCellValue("Profiles", "A2")
	if name != "Klil 4500" {
		t.Errorf("A2 = %q", name)
	}
}
