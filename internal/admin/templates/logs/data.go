package logs

import (
	"strings"

	"pawtrack.dev/tracker-admin/internal/admin/templates/partials"
)

type PageData struct {
	Page         partials.PageData
	Lines        []string
	Error        string
	FragmentPath string
}

// Lines splits the raw log payload into displayable lines, dropping a
// single trailing blank line left by the final newline.
func Lines(raw string) []string {
	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}
