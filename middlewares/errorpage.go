package middlewares

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"
)

// errorPage is the built-in error markup.
func errorPage(title string, detail ErrorDetail) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString("<h1>")
		b.WriteString(templ.EscapeString(title))
		b.WriteString("</h1>\n<p>")
		b.WriteString(templ.EscapeString(detail.Message))
		b.WriteString("</p>\n")
		if detail.Stack != "" {
			b.WriteString("<h2>Error Stack</h2>\n<pre>")
			b.WriteString(templ.EscapeString(detail.Stack))
			b.WriteString("</pre>\n")
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// fallbackErrorPage is errorPage with a note that the error view itself
// could not be rendered. renderErr is the render error's message, shown
// when non-empty; template errors carry no stack of their own.
func fallbackErrorPage(title string, detail ErrorDetail, renderErr string) templ.Component {
	page := errorPage(title, detail)
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := page.Render(ctx, w); err != nil {
			return err
		}
		var b strings.Builder
		b.WriteString("<hr/>\n<p>As well as the above error, the application was unable to render an &#34;error&#34; view.</p>\n")
		if renderErr != "" {
			b.WriteString("<pre>")
			b.WriteString(templ.EscapeString(renderErr))
			b.WriteString("</pre>\n")
		}
		_, err := io.WriteString(w, b.String())
		return err
	})
}
