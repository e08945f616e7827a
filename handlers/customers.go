package handlers

import (
	"log"
	"net/http"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"

	"aluquote/services"
	"aluquote/templates"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// HandleCustomerList lists customers; ?q= filters by name, phone or email.
func HandleCustomerList(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		search := e.Request.URL.Query().Get("q")
		customers, err := services.ListCustomers(app, search)
		if err != nil {
			log.Printf("customer_list: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, msgSomethingWrong)
		}
		data := templates.CustomerListData{Customers: customers, Search: search}
		return render(e, templates.CustomerListPage(data, GetNavData(e.Request, "customers")), templates.CustomerListContent(data))
	}
}

// HandleCustomerDelete removes a customer together with their quotes.
func HandleCustomerDelete(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		customerID := e.Request.PathValue("id")
		if err := services.DeleteCustomer(app, customerID); err != nil {
			log.Printf("customer_delete: %v", err)
			return ErrorToast(e, http.StatusNotFound, "הלקוח לא נמצא")
		}
		log.Printf("customer_delete: deleted customer %s", customerID)
		SuccessToast(e, "הלקוח נמחק")
		return e.String(http.StatusOK, "")
	}
}

// HandleCustomerExcel downloads the customer's quotes as a spreadsheet.
func HandleCustomerExcel(app *pocketbase.PocketBase) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.BuildCustomerExport(app, e.Request.PathValue("id"))
		if err != nil {
			log.Printf("customer_excel: %v", err)
			return ErrorToast(e, http.StatusNotFound, "הלקוח לא נמצא")
		}
		xlsx, err := services.GenerateExcel(data)
		if err != nil {
			log.Printf("customer_excel: failed to generate: %v", err)
			return ErrorToast(e, http.StatusInternalServerError, msgSomethingWrong)
		}
		return sendFile(e, xlsxContentType, services.CustomerExcelFilename(data.Customer.Name, data.Generated), xlsx)
	}
}

// HandleCustomerStatement downloads a PDF summary of the customer's quotes.
func HandleCustomerStatement(app *pocketbase.PocketBase, env *Env) func(*core.RequestEvent) error {
	return func(e *core.RequestEvent) error {
		data, err := services.BuildCustomerExport(app, e.Request.PathValue("id"))
		if err != nil {
			log.Printf("customer_statement: %v", err)
			return ErrorToast(e, http.StatusNotFound, "הלקוח לא נמצא")
		}

		var fonts services.FontSet
		if env.Fonts != nil {
			if fs, err := env.Fonts.Load(e.Request.Context()); err != nil {
				log.Printf("customer_statement: font unavailable, using default: %v", err)
			} else {
				fonts = fs
			}
		}

		pdf, err := services.GenerateStatementPDF(data, env.CompanyLines, fonts)
		if err != nil {
			log.Printf("customer_statement: failed to generate: %v", err)
			return ErrorToast(e, http.StatusServiceUnavailable, msgPDFUnavailable)
		}
		return sendFile(e, "application/pdf", services.StatementFilename(data.Customer.Name, data.Generated), pdf)
	}
}
