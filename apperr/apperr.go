// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package apperr defines the error taxonomy shared by the HTTP surface and
// its clients.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Code names one category of failure.
type Code string

const (
	NotAuthenticated  Code = "NotAuthenticated"
	AccessDenied      Code = "AccessDenied"
	InvalidInput      Code = "InvalidInput"
	NotFound          Code = "NotFound"
	DuplicateVote     Code = "DuplicateVote"
	SourceUnavailable Code = "SourceUnavailable"
	StorageFailure    Code = "StorageFailure"
)

// Status maps a code to its HTTP status.
func (c Code) Status() int {
	switch c {
	case NotAuthenticated:
		return http.StatusUnauthorized
	case AccessDenied:
		return http.StatusForbidden
	case InvalidInput:
		return http.StatusBadRequest
	case NotFound:
		return http.StatusNotFound
	case DuplicateVote:
		return http.StatusConflict
	case SourceUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// Retryable reports whether a caller may retry the same request unchanged.
func (c Code) Retryable() bool {
	return c == SourceUnavailable
}

// FromStatus is the inverse of Status, used by clients decoding a response
// that carries no code.
func FromStatus(status int) Code {
	switch status {
	case http.StatusUnauthorized:
		return NotAuthenticated
	case http.StatusForbidden:
		return AccessDenied
	case http.StatusBadRequest:
		return InvalidInput
	case http.StatusNotFound:
		return NotFound
	case http.StatusConflict:
		return DuplicateVote
	case http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return SourceUnavailable
	default:
		return StorageFailure
	}
}

// Error is a categorized failure with a user-facing message.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New returns a categorized error without a cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap returns a categorized error carrying err as its cause.
func Wrap(code Code, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

type classifier struct {
	target  error
	code    Code
	message string
}

var registry []classifier

// Register maps a sentinel error to a code and message. Packages call it
// from init so Classify can recognize their errors without importing them.
func Register(target error, code Code, message string) {
	registry = append(registry, classifier{target: target, code: code, message: message})
}

// Classify maps any error to its taxonomy entry. Unrecognized errors are
// storage failures.
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	for _, c := range registry {
		if errors.Is(err, c.target) {
			return &Error{Code: c.code, Message: c.message, Err: err}
		}
	}
	return &Error{Code: StorageFailure, Message: "Database error", Err: err}
}

// Is reports whether err classifies as code.
func Is(err error, code Code) bool {
	if err == nil {
		return false
	}
	return Classify(err).Code == code
}
