// Package domainerrors carries coded errors across the service/handler
// boundary so transport code can map domain failures to HTTP statuses
// without string matching.
package domainerrors

import (
	"errors"
	"net/http"
)

// Code identifies a class of domain failure.
type Code string

const (
	CodeBadRequest         Code = "bad_request"
	CodeInvalidCountry     Code = "invalid_country"
	CodeHoursOutOfRange    Code = "hours_out_of_range"
	CodeCaptchaRejected    Code = "captcha_rejected"
	CodeCaptchaUnreachable Code = "captcha_unreachable"
	CodeStoreUnavailable   Code = "store_unavailable"
	CodeNotFound           Code = "not_found"
	CodeInternal           Code = "internal_error"
)

// Error is a domain error with a stable code and a human-readable description.
type Error struct {
	Code        Code
	Description string
}

func (e *Error) Error() string {
	return string(e.Code) + ": " + e.Description
}

// New creates a coded domain error.
func New(code Code, description string) *Error {
	return &Error{Code: code, Description: description}
}

// Is reports whether err is a domain error carrying the given code.
func Is(err error, code Code) bool {
	var domainErr *Error
	if errors.As(err, &domainErr) {
		return domainErr.Code == code
	}
	return false
}

// ToHTTPStatus maps a domain error code to its HTTP status.
func ToHTTPStatus(code Code) int {
	switch code {
	case CodeBadRequest:
		return http.StatusBadRequest
	case CodeInvalidCountry, CodeHoursOutOfRange:
		return http.StatusUnprocessableEntity
	case CodeCaptchaRejected:
		return http.StatusForbidden
	case CodeNotFound:
		return http.StatusNotFound
	case CodeCaptchaUnreachable, CodeStoreUnavailable, CodeInternal:
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}
