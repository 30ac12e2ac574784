package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain-level error discrimination.
// Services wrap these so handlers can map to HTTP status codes without leaking infrastructure details.
var (
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrBadRequest   = errors.New("bad request")

	// ErrUnreachable marks a request to the Authentication Service that never produced a response.
	ErrUnreachable = errors.New("authentication service unreachable")
	// ErrBusy is returned while a submit for the same gate is still in flight.
	ErrBusy = errors.New("request already in progress")
	// ErrGateClosed is returned by a gate after success or unmount.
	ErrGateClosed = errors.New("login gate closed")
)

// RejectedError is a non-2xx answer from the Authentication Service.
// Message is the server-provided text and may be empty.
type RejectedError struct {
	StatusCode int
	Message    string
}

func (e *RejectedError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("rejected with status %d", e.StatusCode)
	}
	return e.Message
}

func (e *RejectedError) Unwrap() error { return ErrUnauthorized }
