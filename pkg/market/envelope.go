package market

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// envelope is the wrapper most endpoints put around their payload.
// Body is usually a JSON-encoded string, sometimes an object.
type envelope struct {
	StatusCode *int            `json:"statusCode"`
	Body       json.RawMessage `json:"body"`
}

// UnwrapEnvelope returns the payload carried by an API answer.
//
// Three shapes are accepted:
//   - an envelope whose body is a JSON-encoded string (decoded a second time)
//   - an envelope whose body is already a JSON value
//   - a bare payload with no envelope (arrays, strings, objects without "body")
//
// An envelope statusCode >= 400 is returned as a *StatusError. Anything that is
// not valid JSON is returned as a *MalformedResponseError.
func UnwrapEnvelope(raw []byte) (json.RawMessage, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, &MalformedResponseError{Err: errors.New("empty response")}
	}

	if !json.Valid(trimmed) {
		return nil, &MalformedResponseError{Err: errors.New("response is not valid JSON")}
	}

	// Only objects can be envelopes
	if trimmed[0] != '{' {
		return json.RawMessage(trimmed), nil
	}

	var env envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		// An object whose statusCode is not a number is not our envelope
		return json.RawMessage(trimmed), nil
	}

	if env.Body == nil {
		return json.RawMessage(trimmed), nil
	}

	payload := env.Body
	if payload[0] == '"' {
		var inner string
		if err := json.Unmarshal(payload, &inner); err != nil {
			return nil, &MalformedResponseError{Err: fmt.Errorf("envelope body: %w", err)}
		}
		if json.Valid([]byte(inner)) {
			payload = json.RawMessage(inner)
		}
		// A body string that is not JSON stays a JSON string literal
	}

	if env.StatusCode != nil && *env.StatusCode >= 400 {
		return nil, &StatusError{StatusCode: *env.StatusCode, Message: errorMessage(payload)}
	}

	return payload, nil
}

// decodePayload unwraps raw and unmarshals the payload into out.
func decodePayload(raw []byte, out any) error {
	payload, err := UnwrapEnvelope(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(payload, out); err != nil {
		return &MalformedResponseError{Err: err}
	}
	return nil
}

// errorMessage extracts a human readable message from an error payload.
// The API uses "message", "error" and "details" inconsistently.
func errorMessage(payload []byte) string {
	var fields struct {
		Message string `json:"message"`
		Error   string `json:"error"`
		Details string `json:"details"`
	}
	if err := json.Unmarshal(payload, &fields); err != nil {
		var s string
		if json.Unmarshal(payload, &s) == nil {
			return s
		}
		return ""
	}

	parts := make([]string, 0, 2)
	for _, s := range []string{fields.Message, fields.Error} {
		if s != "" {
			parts = append(parts, s)
		}
	}
	msg := strings.Join(parts, ": ")
	if fields.Details != "" {
		if msg == "" {
			return fields.Details
		}
		msg += " (" + fields.Details + ")"
	}
	return msg
}
