package market

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError is a failure to reach the API or read its answer.
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a non-2xx answer, either as the HTTP status or as the
// statusCode inside an envelope.
type StatusError struct {
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: status %d", e.Path, e.StatusCode)
}

// MalformedResponseError is an answer that could not be decoded into the expected shape.
type MalformedResponseError struct {
	Path string
	Err  error
}

func (e *MalformedResponseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed response: %v", e.Err)
	}
	return fmt.Sprintf("malformed response from %s: %v", e.Path, e.Err)
}

func (e *MalformedResponseError) Unwrap() error {
	return e.Err
}

// IsTransport returns true if err is (or wraps) a TransportError.
func IsTransport(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}

// IsStatus returns true if err is (or wraps) a StatusError.
func IsStatus(err error) bool {
	var se *StatusError
	return errors.As(err, &se)
}

// IsMalformed returns true if err is (or wraps) a MalformedResponseError.
func IsMalformed(err error) bool {
	var me *MalformedResponseError
	return errors.As(err, &me)
}

// IsNotFound returns true if err is a 404 StatusError.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}
