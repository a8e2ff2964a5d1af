package api

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotFound is matched by errors.Is when the remote answered 404.
var ErrNotFound = errors.New("not found")

// StatusError is returned for every non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s returned %d; %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s returned %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
}

// Is reports whether the status error represents target. Only 404 matches
// ErrNotFound.
func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// IsNotFound reports whether err is, or wraps, a 404 from the remote.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// errorResponse is the JSON body the remote sends with error statuses.
type errorResponse struct {
	Error string `json:"error"`
}
