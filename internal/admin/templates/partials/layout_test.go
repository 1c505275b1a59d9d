package partials

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, data PageData) *goquery.Document {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, Page(data, Table(nil, nil, "empty")).Render(context.Background(), &buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestPageMarksActiveNav(t *testing.T) {
	t.Parallel()

	doc := render(t, PageData{
		Title:         "Users",
		BasePath:      "/admin",
		AuthPath:      "/admin/auth",
		Authenticated: true,
		ActiveNav:     "users",
	})

	active := doc.Find("nav a.active")
	require.Equal(t, 1, active.Length())
	require.Equal(t, "Users", strings.TrimSpace(active.Text()))
	href, _ := active.Attr("href")
	require.Equal(t, "/admin/users", href)
}

func TestLogoutFormTargetsGateway(t *testing.T) {
	t.Parallel()

	doc := render(t, PageData{
		BasePath:      "/admin",
		AuthPath:      "/admin/auth",
		CSRFToken:     "tok-123",
		Authenticated: true,
	})

	form := doc.Find(`form[action="/admin/auth"]`)
	require.Equal(t, 1, form.Length())

	action, _ := form.Find(`input[name="action"]`).Attr("value")
	require.Equal(t, "logout", action)
	csrf, _ := form.Find(`input[name="csrf_token"]`).Attr("value")
	require.Equal(t, "tok-123", csrf)
}

func TestUnauthenticatedPageHidesNavigation(t *testing.T) {
	t.Parallel()

	doc := render(t, PageData{BasePath: "/admin", AuthPath: "/admin/auth"})
	require.Equal(t, 0, doc.Find("nav").Length())
	require.Equal(t, 0, doc.Find("form").Length())
}

func TestTableRendersColumnsAndEscapesCells(t *testing.T) {
	t.Parallel()

	columns := []Column{{Key: "id", Label: "ID"}, {Key: "name", Label: "Name"}}
	rows := [][]string{{"d1", "<script>alert(1)</script>"}}

	var buf bytes.Buffer
	require.NoError(t, Table(columns, rows, "empty").Render(context.Background(), &buf))

	html := buf.String()
	require.Contains(t, html, `<th data-key="id">ID</th>`)
	require.Contains(t, html, "&lt;script&gt;")
	require.NotContains(t, html, "<script>alert")
}

func TestTableEmptyState(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	columns := []Column{{Key: "id", Label: "ID"}}
	require.NoError(t, Table(columns, nil, "Nothing here.").Render(context.Background(), &buf))

	require.Contains(t, buf.String(), "Nothing here.")
	require.NotContains(t, buf.String(), "<table")
}
