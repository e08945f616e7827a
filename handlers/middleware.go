package handlers

import (
	"context"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"aluquote/services"
	"aluquote/templates"
)

type contextKey string

const NavDataKey contextKey = "navData"

// GetNavData extracts the NavData built by NavMiddleware from the request
// context and marks active as the current section.
func GetNavData(r *http.Request, active string) templates.NavData {
	nav, _ := r.Context().Value(NavDataKey).(templates.NavData)
	nav.Active = active
	return nav
}

// NavMiddleware counts the draft items, saved quotes and customers shown in
// the page header and stores them in the request context. HTMX partial
// requests skip the counting since they never render the header.
func NavMiddleware(app *pocketbase.PocketBase, env *Env) func(e *core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if isHTMX(e) {
			return e.Next()
		}

		var nav templates.NavData
		if n, err := app.CountRecords("quotes"); err == nil {
			nav.QuoteCount = int(n)
		} else {
			log.Printf("middleware: could not count quotes: %v", err)
		}
		if n, err := app.CountRecords("customers"); err == nil {
			nav.CustomerCount = int(n)
		} else {
			log.Printf("middleware: could not count customers: %v", err)
		}
		nav.DraftItems = len(services.NewStateStore(app).LoadDraft(env.TaxPercent).Items)

		ctx := context.WithValue(e.Request.Context(), NavDataKey, nav)
		e.Request = e.Request.WithContext(ctx)
		return e.Next()
	}
}
