package kalium

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrNotFound matches every 404 answer from the backend.
var ErrNotFound = errors.New("kalium resource not found")

// maxMessageLen bounds plain-text error bodies surfaced to operators.
const maxMessageLen = 512

// APIError is a non-2xx answer from the backend.
type APIError struct {
	Operation string
	Status    int
	// Message is the server-provided message, empty when none was sent.
	Message string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.Status)
	}
	return fmt.Sprintf("kalium %s: status %d: %s", e.Operation, e.Status, msg)
}

// Is lets errors.Is(err, ErrNotFound) match 404 answers.
func (e *APIError) Is(target error) bool {
	return target == ErrNotFound && e.Status == http.StatusNotFound
}

// errorMessage extracts the server message from a plain-text or JSON error body.
func errorMessage(body []byte) string {
	raw := strings.TrimSpace(string(body))
	if raw == "" {
		return ""
	}
	switch raw[0] {
	case '{':
		var payload errorResponse
		if err := json.Unmarshal([]byte(raw), &payload); err == nil {
			if payload.Message != nil {
				if msg := strings.TrimSpace(*payload.Message); msg != "" {
					return msg
				}
			}
			if payload.Error != nil {
				return strings.TrimSpace(*payload.Error)
			}
			return ""
		}
	case '"':
		var text string
		if err := json.Unmarshal([]byte(raw), &text); err == nil {
			return strings.TrimSpace(text)
		}
	case 't', 'f':
		// validation endpoints answer bare booleans on failure
		if raw == "true" || raw == "false" {
			return ""
		}
	}
	if runes := []rune(raw); len(runes) > maxMessageLen {
		raw = string(runes[:maxMessageLen])
	}
	return raw
}
