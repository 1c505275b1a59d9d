package users

import (
	"pawtrack.dev/tracker-admin/internal/admin/templates/partials"
	"pawtrack.dev/tracker-admin/internal/admin/tracker"
)

// Columns is the fixed schema for the user listing. The table never
// infers it from the payload.
var Columns = []partials.Column{
	{Key: "uuid", Label: "UUID"},
	{Key: "email", Label: "Email"},
	{Key: "created_at", Label: "Created"},
	{Key: "last_seen", Label: "Last seen"},
	{Key: "role", Label: "Role"},
}

type PageData struct {
	Page  partials.PageData
	Users []tracker.User
	Error string
}

// Rows flattens users into the column order declared above.
func Rows(users []tracker.User) [][]string {
	rows := make([][]string, 0, len(users))
	for _, u := range users {
		rows = append(rows, []string{u.UID, u.Email, u.CreatedAt, u.LastSeen, u.Role})
	}
	return rows
}
