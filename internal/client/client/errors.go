package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrNoResponse matches every *NetworkError.
	ErrNoResponse = errors.New("no response from server")
	// ErrAuthExpired is returned when a 401 could not be recovered by a
	// token refresh. The session has been cleared by the time it is seen.
	ErrAuthExpired = errors.New("session expired, please log in again")
)

// NetworkError reports a request that produced no HTTP response.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v: %v", e.Method, e.Path, ErrNoResponse, e.Err)
}

func (e *NetworkError) Unwrap() []error {
	return []error{ErrNoResponse, e.Err}
}

// APIError is a non-2xx response. Body is the raw server payload; Detail and
// FieldErrors are decoded from it when it has the usual
// {"detail": "..."} or {"field": ["msg", ...]} shape.
type APIError struct {
	Method      string
	Path        string
	StatusCode  int
	Body        []byte
	Detail      string
	FieldErrors map[string][]string
}

func newAPIError(method, path string, status int, body []byte) *APIError {
	e := &APIError{Method: method, Path: path, StatusCode: status, Body: body}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		return e
	}

	for k, raw := range fields {
		if k == "detail" {
			_ = json.Unmarshal(raw, &e.Detail)
			continue
		}

		var list []string
		if err := json.Unmarshal(raw, &list); err != nil {
			var one string
			if err := json.Unmarshal(raw, &one); err != nil {
				continue
			}
			list = []string{one}
		}
		if e.FieldErrors == nil {
			e.FieldErrors = make(map[string][]string)
		}
		e.FieldErrors[k] = list
	}
	return e
}

// Message returns the most specific human-readable description available.
func (e *APIError) Message() string {
	if e.Detail != "" {
		return e.Detail
	}

	if len(e.FieldErrors) > 0 {
		keys := make([]string, 0, len(e.FieldErrors))
		for k := range e.FieldErrors {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		parts := make([]string, 0, len(keys))
		for _, k := range keys {
			parts = append(parts, k+": "+strings.Join(e.FieldErrors[k], " "))
		}
		return strings.Join(parts, "; ")
	}

	return http.StatusText(e.StatusCode)
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Message())
}

// IsStatus reports whether err is an *APIError with the given status code.
func IsStatus(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
