package api

import (
	"encoding/json"
	"fmt"

	"storefront/pkg/sentinel"
)

// errorEnvelope matches the upstream error body, which is inconsistent
// between {"error": "..."} and {"message": "..."} depending on the endpoint.
type errorEnvelope struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func (e errorEnvelope) text() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Error != "" {
		return e.Error
	}
	return "unknown error"
}

// statusError translates a non-2xx upstream response into a wrapped sentinel
// error. Services translate these into domain errors at their boundary.
func statusError(op string, status int, body []byte) error {
	var env errorEnvelope
	_ = json.Unmarshal(body, &env)

	var base error
	switch {
	case status == 401 || status == 403:
		base = sentinel.ErrUnauthorized
	case status == 404:
		base = sentinel.ErrNotFound
	case status == 409:
		base = sentinel.ErrConflict
	default:
		base = sentinel.ErrUnavailable
	}
	return fmt.Errorf("%s: %s (status %d): %w", op, env.text(), status, base)
}
