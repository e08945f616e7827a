package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"aluquote/services"
	"aluquote/templates"
)

func profileListData(app *pocketbase.PocketBase, form templates.ProfileFormData) (templates.ProfileListData, error) {
	profiles, err := services.ListProfiles(app)
	if err != nil {
		return templates.ProfileListData{}, err
	}
	return templates.ProfileListData{Profiles: profiles, Form: form}, nil
}

func renderProfiles(app *pocketbase.PocketBase, e *core.RequestEvent, form templates.ProfileFormData) error {
	data, err := profileListData(app, form)
	if err != nil {
		log.Printf("profiles: %v", err)
		return ErrorToast(e, http.StatusInternalServerError, msgSomethingWrong)
	}
	return render(e, templates.ProfileListPage(data, GetNavData(e.Request, "profiles")), templates.ProfileListContent(data))
}

// HandleProfileList renders the profiles page.
func HandleProfileList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		return renderProfiles(app, e, templates.ProfileFormData{})
	}
}

// HandleProfileSave creates a profile, or updates {id} when present. A
// rejected form is shown again with its error.
func HandleProfileSave(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "טופס לא תקין")
		}
		id := e.Request.PathValue("id")
		name := e.Request.FormValue("name")
		price := e.Request.FormValue("unit_price")

		p, err := services.SaveProfile(app, id, name, services.RawText(price))
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			return renderProfiles(app, e, templates.ProfileFormData{Name: name, UnitPrice: price, Error: verr.Message})
		case err != nil:
			log.Printf("profile_save: %v", err)
			return ErrorToast(e, http.StatusNotFound, "הפרופיל לא נמצא")
		}

		log.Printf("profile_save: saved profile %s (%s)", p.ID, p.Name)
		SuccessToast(e, "הפרופיל נשמר")
		return renderProfiles(app, e, templates.ProfileFormData{})
	}
}

// HandleProfileDelete removes a profile; quotes keep the name they were
// priced with.
func HandleProfileDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := services.DeleteProfile(app, e.Request.PathValue("id")); err != nil {
			log.Printf("profile_delete: %v", err)
			return ErrorToast(e, http.StatusNotFound, "הפרופיל לא נמצא")
		}
		SuccessToast(e, "הפרופיל נמחק")
		return renderProfiles(app, e, templates.ProfileFormData{})
	}
}

// HandleProfileCatalogExport downloads the profile catalog as a workbook.
func HandleProfileCatalogExport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		profiles, err := services.ListProfiles(app)
		if err != nil {
			log.Printf("profile_catalog: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, msgSomethingWrong)
		}
		data, err := services.GenerateProfileCatalog(profiles)
		if err != nil {
			log.Printf("profile_catalog: failed to generate: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, msgSomethingWrong)
		}
		return sendFile(e, xlsxContentType, services.CatalogFilename(time.Now()), data)
	}
}

// HandleProfileCatalogImport upserts profiles from an uploaded .csv or .xlsx
// price list and shows which rows were rejected.
func HandleProfileCatalogImport(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseMultipartForm(10 << 20); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "הקובץ גדול מדי או שהטופס אינו תקין")
		}
		file, header, err := e.Request.FormFile("file")
		if err != nil {
			return ErrorToast(e, http.StatusBadRequest, "יש לבחור קובץ")
		}
		defer file.Close()

		result, err := services.ImportProfileCatalog(app, file, header.Filename)
		var verr *services.ValidationError
		switch {
		case errors.As(err, &verr):
			return ErrorToast(e, http.StatusBadRequest, verr.Message)
		case err != nil:
			log.Printf("profile_catalog: import failed: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, msgSomethingWrong)
		}

		data, err := profileListData(app, templates.ProfileFormData{})
		if err != nil {
			log.Printf("profile_catalog: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, msgSomethingWrong)
		}
		data.Import = &result
		SuccessToast(e, "המחירון יובא")
		return render(e, templates.ProfileListPage(data, GetNavData(e.Request, "profiles")), templates.ProfileListContent(data))
	}
}
