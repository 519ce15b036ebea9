package client

import (
	"errors"
	"net/http"
)

var (
	ErrUnavailable  = errors.New("server unavailable")
	ErrUnauthorized = errors.New("unauthorized")
	ErrNotFound     = errors.New("not found")
	ErrBadRequest   = errors.New("request rejected")
	ErrServer       = errors.New("server error")
)

// APIError carries the server's own message next to one of the sentinels
// above, so callers can both match with errors.Is and show the message.
type APIError struct {
	Status  int
	Message string
	Code    string
	Err     error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.Err.Error()
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func classifyStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return ErrUnauthorized
	case status == http.StatusNotFound:
		return ErrNotFound
	case status >= http.StatusInternalServerError:
		return ErrServer
	default:
		return ErrBadRequest
	}
}
