package logs

import (
	"context"
	"html"
	"io"

	"github.com/a-h/templ"

	"pawtrack.dev/tracker-admin/internal/admin/templates/partials"
)

// Tail renders just the log pane. It is served standalone for htmx
// polling and embedded by Index for the full page.
func Tail(data PageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if err := partials.ErrorBanner(data.Error).Render(ctx, w); err != nil {
			return err
		}
		if data.Error != "" {
			return nil
		}
		if len(data.Lines) == 0 {
			_, err := io.WriteString(w, `<p class="empty-state">No log output.</p>`)
			return err
		}
		if _, err := io.WriteString(w, `<pre class="log-tail">`); err != nil {
			return err
		}
		for _, line := range data.Lines {
			if _, err := io.WriteString(w, html.EscapeString(line)+"\n"); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</pre>`)
		return err
	})
}

// Index renders the full log page with an auto-refreshing pane.
func Index(data PageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h1>Logs</h1>`); err != nil {
			return err
		}
		if _, err := io.WriteString(w, `<div id="log-pane" hx-get="`+html.EscapeString(data.FragmentPath)+`" hx-trigger="every 10s" hx-swap="innerHTML">`); err != nil {
			return err
		}
		if err := Tail(data).Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</div>`)
		return err
	})
	return partials.Page(data.Page, body)
}
