package gateway

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

const genericServerMessage = "The server returned an unexpected response. Please try again."

// kindFromStatus derives the failure kind for an error status that carried
// no field-level validation errors.
func kindFromStatus(status int) Kind {
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return KindUnauthorized
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= 500:
		return KindServer
	default:
		return KindValidation
	}
}

// errorEnvelope covers the error shapes the backend has been seen to emit:
// Laravel validation maps, a bare "error" string, or a bare "message".
type errorEnvelope struct {
	Errors  map[string][]string `json:"errors"`
	Error   string              `json:"error"`
	Message string              `json:"message"`
}

// normalizeFailure turns a non-2xx response body into a typed Error.
// Precedence: field validation errors, then "error", then "message", then
// the raw body text unless it looks like an HTML error page. It is a pure
// function of (status, body).
func normalizeFailure(status int, body []byte) *Error {
	text := strings.TrimSpace(string(body))

	if json.Valid(body) {
		var env errorEnvelope
		if err := json.Unmarshal(body, &env); err == nil {
			if msg, ok := firstFieldError(env.Errors); ok {
				return &Error{Kind: KindValidation, Status: status, Message: msg}
			}
			if env.Error != "" {
				return &Error{Kind: kindFromStatus(status), Status: status, Message: env.Error}
			}
			if env.Message != "" {
				return &Error{Kind: kindFromStatus(status), Status: status, Message: env.Message}
			}
		}
		// Parseable JSON that carries no recognisable message.
		return &Error{
			Kind:    kindFromStatus(status),
			Status:  status,
			Message: fmt.Sprintf("Request failed with status: %d", status),
		}
	}

	// Not JSON. An HTML error page must never reach the user verbatim.
	if text == "" || strings.HasPrefix(text, "<") {
		return &Error{Kind: KindMalformed, Status: status, Message: genericServerMessage}
	}
	return &Error{Kind: kindFromStatus(status), Status: status, Message: text}
}

// firstFieldError picks the first message of the first field in a Laravel
// style validation map. Field order inside a JSON object is not preserved
// by encoding/json, so fields are visited in sorted order to keep the
// choice deterministic.
func firstFieldError(fields map[string][]string) (string, bool) {
	if len(fields) == 0 {
		return "", false
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if msgs := fields[k]; len(msgs) > 0 && msgs[0] != "" {
			return msgs[0], true
		}
	}
	return "", false
}

// decodeSuccess parses a 2xx body into out. An empty body is a valid empty
// success (204, or 200 with no content). A non-JSON body on a success
// status is a malformed response.
func decodeSuccess(status int, body []byte, out any) *Error {
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil
	}
	if out == nil {
		out = &json.RawMessage{}
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &Error{
			Kind:    KindMalformed,
			Status:  status,
			Message: "Received an invalid response from the server.",
		}
	}
	return nil
}
