package auth

import (
	"context"
	"fmt"
	"html"
	"io"

	"github.com/a-h/templ"
)

// LoginPage renders the sign-in form. Flash errors from the previous
// submission surface once via Error; Message carries informational text such
// as a sign-out confirmation.
func LoginPage(data LoginPageData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w,
			`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8"><title>Sign in · Tracker Admin</title><link rel="stylesheet" href="/public/static/admin.css"></head><body><main class="login"><h1>Tracker Admin</h1>`); err != nil {
			return err
		}

		if data.Message != "" {
			if _, err := fmt.Fprintf(w, `<p class="notice">%s</p>`, html.EscapeString(data.Message)); err != nil {
				return err
			}
		}
		if data.Error != "" {
			if _, err := fmt.Fprintf(w, `<p class="error" role="alert">%s</p>`, html.EscapeString(data.Error)); err != nil {
				return err
			}
		}

		_, err := fmt.Fprintf(w,
			`<form method="post" action="%s">`+
				`<label for="email">Email</label><input id="email" type="email" name="email" value="%s" required autofocus>`+
				`<label for="password">Password</label><input id="password" type="password" name="password" required>`+
				`<input type="hidden" name="csrf_token" value="%s">`+
				`<button type="submit">Sign in</button>`+
				`</form></main></body></html>`,
			html.EscapeString(data.LoginPath),
			html.EscapeString(data.Email),
			html.EscapeString(data.CSRFToken))
		return err
	})
}
