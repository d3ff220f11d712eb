package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

type Error struct {
	Status int
	Code   string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Code != "" {
		return e.Code
	}
	if e.Status != 0 {
		return fmt.Sprintf("api error (%d)", e.Status)
	}
	return "api error"
}

func (e *Error) Unwrap() error { return e.Err }

func New(status int, code string, err error) *Error {
	return &Error{Status: status, Code: code, Err: err}
}

// Newf is New with a formatted message as the wrapped error.
func Newf(status int, code, format string, args ...any) *Error {
	return New(status, code, fmt.Errorf(format, args...))
}

func NotFound(code, msg string) *Error   { return New(http.StatusNotFound, code, errors.New(msg)) }
func BadRequest(code, msg string) *Error { return New(http.StatusBadRequest, code, errors.New(msg)) }
func Forbidden(code, msg string) *Error  { return New(http.StatusForbidden, code, errors.New(msg)) }
func Conflict(code, msg string) *Error   { return New(http.StatusConflict, code, errors.New(msg)) }
func Unauthorized(code, msg string) *Error {
	return New(http.StatusUnauthorized, code, errors.New(msg))
}
func BadGateway(code string, err error) *Error {
	return New(http.StatusBadGateway, code, err)
}
func PaymentRequired(code, msg string) *Error {
	return New(http.StatusPaymentRequired, code, errors.New(msg))
}
func TooManyRequests(code, msg string) *Error {
	return New(http.StatusTooManyRequests, code, errors.New(msg))
}
func Internal(code string, err error) *Error { return New(http.StatusInternalServerError, code, err) }

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var ae *Error
	if errors.As(err, &ae) && ae != nil {
		return ae, true
	}
	return nil, false
}

// StatusOf reports the HTTP status carried by err, or 500.
func StatusOf(err error) int {
	if ae, ok := As(err); ok && ae.Status != 0 {
		return ae.Status
	}
	return http.StatusInternalServerError
}
