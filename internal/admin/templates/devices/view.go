package devices

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"pawtrack.dev/tracker-admin/internal/admin/templates/partials"
)

// Index renders the full device listing page.
func Index(data PageData) templ.Component {
	body := templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, `<h1>Devices</h1>`); err != nil {
			return err
		}
		if err := partials.ErrorBanner(data.Error).Render(ctx, w); err != nil {
			return err
		}
		if data.Error != "" {
			return nil
		}
		return partials.Table(Columns, Rows(data.Devices), "No devices registered.").Render(ctx, w)
	})
	return partials.Page(data.Page, body)
}
