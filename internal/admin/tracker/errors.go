package tracker

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// AuthError is a non-2xx response from the sign-in endpoint. Message carries
// the backend-provided text when the payload included one.
type AuthError struct {
	StatusCode int
	Message    string
}

func (e *AuthError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("tracker: sign-in rejected (%d): %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("tracker: sign-in rejected (%d)", e.StatusCode)
}

// FetchError is a non-2xx response from a protected resource. Viewers catch
// it and surface the status as a UI-level error string.
type FetchError struct {
	StatusCode int
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("tracker: backend returned status %d", e.StatusCode)
}

// errorMessage extracts the human-readable message from an error body. The
// backend emits {"message": ...}; its FastAPI lineage also produces
// {"detail": ...}, so both keys are honoured.
func errorMessage(body io.Reader) string {
	raw, _ := io.ReadAll(io.LimitReader(body, 1<<16))
	if len(raw) == 0 {
		return ""
	}

	var payload struct {
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return ""
	}
	if msg := strings.TrimSpace(payload.Message); msg != "" {
		return msg
	}
	return strings.TrimSpace(payload.Detail)
}

// BearerHeader builds the Authorization header set used by every protected
// call. The header is constructed even for an empty token; the backend is
// the final authority on whether the credential is real.
func BearerHeader(token string) http.Header {
	h := make(http.Header, 2)
	h.Set("Authorization", "Bearer "+token)
	h.Set("Content-Type", "application/json")
	return h
}
