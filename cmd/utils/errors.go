package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies a service failure into the status category the
// boundary layer reports.
type ErrorKind int

const (
	KindValidation ErrorKind = iota
	KindAuth
	KindAuthorization
	KindNotFound
	KindConflict
	KindStorage
)

// Error is the only error type services return to handlers. Message is
// safe to show to clients.
type Error struct {
	Kind    ErrorKind
	Message string
	cause   error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.cause }

func Validation(message string) *Error {
	return &Error{Kind: KindValidation, Message: message}
}

func Unauthorized(message string) *Error {
	return &Error{Kind: KindAuth, Message: message}
}

func Forbidden(message string) *Error {
	return &Error{Kind: KindAuthorization, Message: message}
}

func NotFound(message string) *Error {
	return &Error{Kind: KindNotFound, Message: message}
}

func Conflict(message string) *Error {
	return &Error{Kind: KindConflict, Message: message}
}

func Storage(message string, cause error) *Error {
	return &Error{Kind: KindStorage, Message: message, cause: cause}
}

// StatusCode maps an error to its HTTP status. Unknown errors are
// treated as server faults.
func StatusCode(err error) int {
	var e *Error
	if !errors.As(err, &e) {
		return http.StatusInternalServerError
	}
	switch e.Kind {
	case KindValidation:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteJSON writes v as the JSON response body.
func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// WriteError reports a service failure to the client. Internal detail
// (wrapped causes) stays out of the response body.
func WriteError(w http.ResponseWriter, err error) {
	message := "internal server error"
	var e *Error
	if errors.As(err, &e) {
		message = e.Message
	}
	WriteJSON(w, StatusCode(err), map[string]string{"error": message})
}
