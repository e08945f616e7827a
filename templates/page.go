package templates

import (
	"github.com/a-h/templ"
)

// NavData is shown in the page header on every full page render.
type NavData struct {
	Active        string // "editor", "quotes", "customers" or "profiles"
	DraftItems    int
	QuoteCount    int
	CustomerCount int
}

var navLinks = []struct {
	key, href, label string
}{
	{"editor", "/", "הצעה חדשה"},
	{"quotes", "/quotes", "הצעות שמורות"},
	{"customers", "/customers", "לקוחות"},
	{"profiles", "/profiles", "פרופילים"},
}

func (n NavData) badge(key string) int {
	switch key {
	case "editor":
		return n.DraftItems
	case "quotes":
		return n.QuoteCount
	case "customers":
		return n.CustomerCount
	}
	return 0
}

// Page is the right-to-left document shell around body.
func Page(title string, nav NavData, body templ.Component) templ.Component {
	return component(func(w *htmlWriter) {
		w.raw(`<!DOCTYPE html><html lang="he" dir="rtl"><head><meta charset="utf-8">`)
		w.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		w.f(`<title>%s</title>`, title)
		w.raw(`<link rel="stylesheet" href="/static/app.css">`)
		w.raw(`<script src="https://unpkg.com/htmx.org@2.0.4" defer></script>`)
		w.raw(`<script src="/static/toast.js" defer></script>`)
		w.raw(`</head><body hx-boost="true"><header class="navbar"><nav>`)
		for _, l := range navLinks {
			class := "nav-link"
			if l.key == nav.Active {
				class += " active"
			}
			w.f(`<a class="%s" href="%s">%s`, class, l.href, l.label)
			if n := nav.badge(l.key); n > 0 {
				w.f(` <span class="badge">%d</span>`, n)
			}
			w.raw(`</a>`)
		}
		w.raw(`</nav></header><main id="main">`)
		w.render(body)
		w.raw(`</main><div id="toast-container" aria-live="polite"></div></body></html>`)
	})
}
