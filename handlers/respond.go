package handlers

import (
	"errors"
	"log"
	"mime"
	"net/http"

	"github.com/a-h/templ"
	"github.com/pocketbase/pocketbase/core"

	"aluquote/services"
)

// Env is what the quote handlers need besides the app.
type Env struct {
	TaxPercent   string
	CompanyLines []string
	Fonts        *services.FontLoader
	Exporter     *services.Exporter
}

// isHTMX reports whether the request swaps a fragment. Boosted navigation
// replaces the whole body and gets full pages.
func isHTMX(e *core.RequestEvent) bool {
	return e.Request.Header.Get("HX-Request") == "true" && e.Request.Header.Get("HX-Boosted") != "true"
}

// render writes a component, choosing the partial for HTMX requests.
func render(e *core.RequestEvent, full, partial templ.Component) error {
	c := full
	if isHTMX(e) && partial != nil {
		c = partial
	}
	return c.Render(e.Request.Context(), e.Response)
}

// redirect sends HTMX clients an HX-Redirect and everyone else a 302.
func redirect(e *core.RequestEvent, path string) error {
	if isHTMX(e) {
		e.Response.Header().Set("HX-Redirect", path)
		return e.String(http.StatusOK, "")
	}
	return e.Redirect(http.StatusFound, path)
}

// sendFile writes data as a download named filename.
func sendFile(e *core.RequestEvent, contentType, filename string, data []byte) error {
	e.Response.Header().Set("Content-Type", contentType)
	e.Response.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	e.Response.WriteHeader(http.StatusOK)
	_, err := e.Response.Write(data)
	return err
}

// exportFailed maps an export error to a toast: validation messages are shown
// as they are, the rest is logged.
func exportFailed(e *core.RequestEvent, component string, err error) error {
	var verr *services.ValidationError
	switch {
	case errors.As(err, &verr):
		return ErrorToast(e, http.StatusBadRequest, verr.Message)
	case errors.Is(err, services.ErrPDFUnavailable):
		log.Printf("%s: %v", component, err)
		return ErrorToast(e, http.StatusServiceUnavailable, msgPDFUnavailable)
	default:
		log.Printf("%s: %v", component, err)
		return ErrorToast(e, http.StatusInternalServerError, msgSomethingWrong)
	}
}
