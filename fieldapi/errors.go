package fieldapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// HTTPError is a non-2xx API response. Body holds up to 64 KiB of the
// response; Detail is the API's {"detail": ...} message when present.
type HTTPError struct {
	StatusCode int
	Method     string
	Path       string
	Detail     string
	Body       []byte
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

func (e *HTTPError) Is(target error) bool {
	switch target {
	case ErrUnauthorized:
		return e.StatusCode == http.StatusUnauthorized
	case ErrForbidden:
		return e.StatusCode == http.StatusForbidden
	case ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	}
	return false
}

func newHTTPError(method, path string, status int, body []byte) *HTTPError {
	e := &HTTPError{
		StatusCode: status,
		Method:     method,
		Path:       path,
		Body:       body,
	}

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil && len(payload.Detail) > 0 {
		var s string
		if json.Unmarshal(payload.Detail, &s) == nil {
			e.Detail = s
		} else {
			e.Detail = string(payload.Detail)
		}
	}
	return e
}
