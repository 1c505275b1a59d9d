package partials

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

// PageData carries the shared chrome state for every dashboard page.
type PageData struct {
	Title         string
	BasePath      string
	AuthPath      string
	CSRFToken     string
	Authenticated bool
	ActiveNav     string
}

type navItem struct {
	key   string
	label string
	path  string
}

func navItems(base string) []navItem {
	return []navItem{
		{key: "devices", label: "Devices", path: base + "/devices"},
		{key: "users", label: "Users", path: base + "/users"},
		{key: "logs", label: "Logs", path: base + "/logs"},
	}
}

// Page wraps body markup in the shared dashboard chrome.
func Page(data PageData, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><meta name="viewport" content="width=device-width, initial-scale=1"><title>%s · Tracker Admin</title><link rel="stylesheet" href="/public/static/admin.css"></head><body>`,
			html.EscapeString(data.Title)); err != nil {
			return err
		}

		if data.Authenticated {
			if err := renderTopbar(w, data); err != nil {
				return err
			}
		}

		if _, err := io.WriteString(w, `<main class="content">`); err != nil {
			return err
		}
		if body != nil {
			if err := body.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

func renderTopbar(w io.Writer, data PageData) error {
	if _, err := io.WriteString(w, `<header class="topbar"><span class="brand">Tracker Admin</span><nav>`); err != nil {
		return err
	}
	for _, item := range navItems(data.BasePath) {
		class := "nav-link"
		if item.key == data.ActiveNav {
			class = "nav-link active"
		}
		if _, err := fmt.Fprintf(w, `<a class="%s" href="%s">%s</a>`,
			class, html.EscapeString(item.path), html.EscapeString(item.label)); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w,
		`</nav><form class="logout" method="post" action="%s"><input type="hidden" name="action" value="logout"><input type="hidden" name="csrf_token" value="%s"><button type="submit">Sign out</button></form></header>`,
		html.EscapeString(data.AuthPath), html.EscapeString(data.CSRFToken))
	return err
}

// ErrorBanner renders a dismissible error callout above page content.
func ErrorBanner(message string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if message == "" {
			return nil
		}
		_, err := fmt.Fprintf(w,
			`<div class="banner banner-error"><span>%s</span><button type="button" class="banner-dismiss" onclick="this.parentElement.remove()">×</button></div>`,
			html.EscapeString(message))
		return err
	})
}

// Column is an explicit table column descriptor: the schema is declared, not
// inferred from the first row.
type Column struct {
	Key   string
	Label string
}

// Table renders tabular rows against a declared column set. An empty column
// set renders nothing but the empty-state text.
func Table(columns []Column, rows [][]string, emptyText string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if len(columns) == 0 || len(rows) == 0 {
			if emptyText == "" {
				emptyText = "No rows."
			}
			_, err := fmt.Fprintf(w, `<p class="empty-state">%s</p>`, html.EscapeString(emptyText))
			return err
		}

		if _, err := io.WriteString(w, `<table class="data-table"><thead><tr>`); err != nil {
			return err
		}
		for _, col := range columns {
			if _, err := fmt.Fprintf(w, `<th data-key="%s">%s</th>`,
				html.EscapeString(col.Key), html.EscapeString(col.Label)); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, `</tr></thead><tbody>`); err != nil {
			return err
		}
		for _, row := range rows {
			if _, err := io.WriteString(w, `<tr>`); err != nil {
				return err
			}
			for i := range columns {
				cell := ""
				if i < len(row) {
					cell = row[i]
				}
				if _, err := fmt.Fprintf(w, `<td>%s</td>`, html.EscapeString(cell)); err != nil {
					return err
				}
			}
			if _, err := io.WriteString(w, `</tr>`); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</tbody></table>`)
		return err
	})
}
