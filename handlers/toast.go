package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"net/url"

	"github.com/pocketbase/pocketbase/core"
)

// Messages shown when a request fails for reasons the user cannot fix.
const (
	msgSomethingWrong = "משהו השתבש, נסו שוב"
	msgPDFUnavailable = "לא ניתן להפיק PDF כרגע"
)

// SetToast sets the HX-Trigger response header to show a toast notification
// on the client via HTMX, merging into an existing HX-Trigger JSON object.
// It also sets a flash cookie so toasts survive regular (non-HTMX) redirects.
func SetToast(e *core.RequestEvent, toastType string, message string) {
	payload := map[string]string{"message": message, "type": toastType}

	trigger := map[string]any{}
	if existing := e.Response.Header().Get("HX-Trigger"); existing != "" {
		if err := json.Unmarshal([]byte(existing), &trigger); err != nil {
			log.Printf("toast: existing HX-Trigger is not valid JSON, overwriting: %v", err)
			trigger = map[string]any{}
		}
	}
	trigger["showToast"] = payload

	data, err := json.Marshal(trigger)
	if err != nil {
		log.Printf("toast: failed to marshal HX-Trigger JSON: %v", err)
		return
	}
	e.Response.Header().Set("HX-Trigger", string(data))

	cookieVal, err := json.Marshal(payload)
	if err == nil {
		http.SetCookie(e.Response, &http.Cookie{
			Name:     "flash_toast",
			Value:    url.QueryEscape(string(cookieVal)),
			Path:     "/",
			MaxAge:   10,
			HttpOnly: false, // read by toast.js
			SameSite: http.SameSiteLaxMode,
		})
	}
}

// SuccessToast shows a success toast.
func SuccessToast(e *core.RequestEvent, message string) {
	SetToast(e, "success", message)
}

// ErrorToast sets an error toast and prevents HTMX from swapping the error text into the DOM.
// HX-Reswap: none makes HTMX ignore the body while the HX-Trigger header still fires the toast.
func ErrorToast(e *core.RequestEvent, statusCode int, message string) error {
	SetToast(e, "error", message)
	e.Response.Header().Set("HX-Reswap", "none")
	return e.String(statusCode, message)
}
