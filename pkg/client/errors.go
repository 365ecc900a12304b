package client

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorClass represents a classification of probe failures.
type ErrorClass string

const (
	// ErrorClassNetwork represents transport failures (origin or edge unreachable, timeouts).
	ErrorClassNetwork ErrorClass = "network"

	// ErrorClassClient represents 4xx responses.
	ErrorClassClient ErrorClass = "client"

	// ErrorClassServer represents 5xx responses.
	ErrorClassServer ErrorClass = "server"

	// ErrorClassDecode represents bodies that could not be decoded.
	ErrorClassDecode ErrorClass = "decode"
)

// ErrUnexpectedStatus is wrapped by Error for non-2xx responses.
var ErrUnexpectedStatus = errors.New("unexpected status")

// Error describes a failed probe.
type Error struct {
	Endpoint   string
	StatusCode int
	Class      ErrorClass
	Err        error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("probe %s: %s error (status %d): %v", e.Endpoint, e.Class, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("probe %s: %s error: %v", e.Endpoint, e.Class, e.Err)
}

// Unwrap implements error unwrapping for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Err
}

// classifyStatus maps a non-2xx status code to its ErrorClass.
func classifyStatus(code int) ErrorClass {
	if code >= http.StatusInternalServerError {
		return ErrorClassServer
	}
	return ErrorClassClient
}

// IsUnreachable reports whether err is a transport failure.
func IsUnreachable(err error) bool {
	var pe *Error
	return errors.As(err, &pe) && pe.Class == ErrorClassNetwork
}
