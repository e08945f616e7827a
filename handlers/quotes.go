package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"aluquote/services"
	"aluquote/templates"
)

// HandleQuoteSave stores the draft as a quote and starts a new draft.
// Customer fields posted along with the request are applied first.
func HandleQuoteSave(app *pocketbase.PocketBase, env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		if err := e.Request.ParseForm(); err != nil {
			return ErrorToast(e, http.StatusBadRequest, "טופס לא תקין")
		}
		store := services.NewStateStore(app)
		d := store.LoadDraft(env.TaxPercent)
		parseCustomerFields(e.Request, &d)
		store.SaveDraft(d)

		saved, err := services.SaveQuote(app, d.SaveInput())
		if err != nil {
			var verr *services.ValidationError
			if errors.As(err, &verr) {
				return ErrorToast(e, http.StatusBadRequest, verr.Message)
			}
			log.Printf("quote_save: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, msgSomethingWrong)
		}

		store.SaveDraft(services.NewDraft(env.TaxPercent))
		log.Printf("quote_save: saved quote %s for customer %s (new=%v)", saved.QuoteID, saved.CustomerID, saved.CustomerCreated)

		SuccessToast(e, "ההצעה נשמרה")
		return redirect(e, "/quotes?customer="+saved.CustomerID)
	}
}

// HandleQuoteList lists saved quotes, optionally of the ?customer= given.
func HandleQuoteList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		var data templates.QuoteListData
		customerID := e.Request.URL.Query().Get("customer")
		if customerID != "" {
			c, err := services.GetCustomer(app, customerID)
			if err != nil {
				log.Printf("quote_list: %v", err)
				return ErrorToast(e, http.StatusNotFound, "הלקוח לא נמצא")
			}
			data.Customer = &c
		}

		quotes, err := services.ListQuotes(app, customerID)
		if err != nil {
			log.Printf("quote_list: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, msgSomethingWrong)
		}
		data.Quotes = quotes

		return render(e, templates.QuoteListPage(data, GetNavData(e.Request, "quotes")), templates.QuoteListContent(data))
	}
}

// HandleQuoteExportPDF downloads a saved quote, printed with its stored totals.
func HandleQuoteExportPDF(app *pocketbase.PocketBase, env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		p, err := services.LoadQuotePayload(app, e.Request.PathValue("id"))
		if err != nil {
			log.Printf("quote_export: %v", err)
			return ErrorToast(e, http.StatusNotFound, "ההצעה לא נמצאה")
		}
		result, err := env.Exporter.ExportQuote(e.Request.Context(), p)
		if err != nil {
			return exportFailed(e, "quote_export", err)
		}
		return sendFile(e, "application/pdf", result.Filename, result.PDF)
	}
}

// HandleQuoteEdit copies a saved quote into the draft and opens the editor.
// The saved quote itself is left unchanged.
func HandleQuoteEdit(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		p, err := services.LoadQuotePayload(app, e.Request.PathValue("id"))
		if err != nil {
			log.Printf("quote_edit: %v", err)
			return ErrorToast(e, http.StatusNotFound, "ההצעה לא נמצאה")
		}
		services.NewStateStore(app).SaveDraft(services.DraftFromPayload(p))
		return redirect(e, "/")
	}
}

// HandleQuoteDelete removes a saved quote. The swapped-out row is replaced
// by the empty response.
func HandleQuoteDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		quoteID := e.Request.PathValue("id")
		if err := services.DeleteQuote(app, quoteID); err != nil {
			log.Printf("quote_delete: %v", err)
			return ErrorToast(e, http.StatusNotFound, "ההצעה לא נמצאה")
		}
		log.Printf("quote_delete: deleted quote %s", quoteID)
		SuccessToast(e, "ההצעה נמחקה")
		return e.String(http.StatusOK, "")
	}
}
