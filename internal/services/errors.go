package services

import (
	"errors"
	"fmt"
	"net/http"

	"bpoc/internal/repositories"
)

type ErrorKind string

const (
	KindValidation   ErrorKind = "validation"
	KindUnauthorized ErrorKind = "unauthorized"
	KindForbidden    ErrorKind = "forbidden"
	KindConflict     ErrorKind = "conflict"
	KindNotFound     ErrorKind = "not_found"
	KindUpstream     ErrorKind = "upstream"
)

// Error is a failure the caller can act on. Anything else surfacing from a
// service is an internal error.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

func validationf(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func forbidden(message string) *Error {
	return &Error{Kind: KindForbidden, Message: message}
}

func conflict(message string, err error) *Error {
	return &Error{Kind: KindConflict, Message: message, Err: err}
}

func upstream(message string, err error) *Error {
	return &Error{Kind: KindUpstream, Message: message, Err: err}
}

// notFoundOr turns repository not-found sentinels into a typed error and
// passes anything else through.
func notFoundOr(err error, message string) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return &Error{Kind: KindNotFound, Message: message, Err: err}
	}
	return err
}

// HTTPStatus maps err to a response status and client-safe message.
func HTTPStatus(err error) (int, string) {
	var svcErr *Error
	if !errors.As(err, &svcErr) {
		return http.StatusInternalServerError, "internal server error"
	}
	switch svcErr.Kind {
	case KindValidation:
		return http.StatusBadRequest, svcErr.Message
	case KindUnauthorized:
		return http.StatusUnauthorized, svcErr.Message
	case KindForbidden:
		return http.StatusForbidden, svcErr.Message
	case KindConflict:
		return http.StatusConflict, svcErr.Message
	case KindNotFound:
		return http.StatusNotFound, svcErr.Message
	case KindUpstream:
		return http.StatusBadGateway, svcErr.Message
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}
