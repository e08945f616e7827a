// Package templates holds the HTML views of the quote tool as templ components.
package templates

import (
	"context"
	"fmt"
	"io"
	"reflect"

	"github.com/a-h/templ"
)

// htmlWriter accumulates the first write error so views can be written as
// straight-line code.
type htmlWriter struct {
	ctx context.Context
	w   io.Writer
	err error
}

// component wraps a view function as a templ.Component.
func component(fn func(w *htmlWriter)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &htmlWriter{ctx: ctx, w: w}
		fn(hw)
		return hw.err
	})
}

// raw writes trusted markup.
func (w *htmlWriter) raw(s string) {
	if w.err != nil {
		return
	}
	_, w.err = io.WriteString(w.w, s)
}

// text writes escaped text.
func (w *htmlWriter) text(s string) {
	w.raw(templ.EscapeString(s))
}

// f formats trusted markup. String-kinded arguments and fmt.Stringers are
// escaped.
func (w *htmlWriter) f(format string, args ...any) {
	for i, a := range args {
		switch v := a.(type) {
		case string:
			args[i] = templ.EscapeString(v)
		case fmt.Stringer:
			args[i] = templ.EscapeString(v.String())
		default:
			if rv := reflect.ValueOf(a); rv.Kind() == reflect.String {
				args[i] = templ.EscapeString(rv.String())
			}
		}
	}
	w.raw(fmt.Sprintf(format, args...))
}

func (w *htmlWriter) render(c templ.Component) {
	if w.err != nil || c == nil {
		return
	}
	w.err = c.Render(w.ctx, w.w)
}

func checked(b bool) string {
	if b {
		return " checked"
	}
	return ""
}

func selected(b bool) string {
	if b {
		return " selected"
	}
	return ""
}
