package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an AppError and decides its HTTP status.
type Kind string

const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "auth"
	KindForbidden  Kind = "forbidden"
	KindNotFound   Kind = "not_found"
	KindConflict   Kind = "conflict"
	KindSignature  Kind = "signature"
	KindRetryLimit Kind = "retry_limit"
	KindDownstream Kind = "downstream"
)

// AppError is the typed error services return to handlers.
type AppError struct {
	Kind    Kind
	Code    string
	Message string
	Fields  map[string]string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Is matches another AppError by kind and code, so sentinel values work with errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && (t.Code == "" || e.Code == t.Code)
}

// Status maps the kind to an HTTP status code.
func (e *AppError) Status() int {
	switch e.Kind {
	case KindValidation, KindSignature:
		return http.StatusBadRequest
	case KindAuth:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict, KindRetryLimit:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func NewValidation(fields map[string]string) *AppError {
	return &AppError{
		Kind:    KindValidation,
		Code:    ValidationInvalidInput,
		Message: "invalid input",
		Fields:  fields,
	}
}

func NewAuth(code, message string) *AppError {
	return &AppError{Kind: KindAuth, Code: code, Message: message}
}

func NewForbidden(code, message string) *AppError {
	return &AppError{Kind: KindForbidden, Code: code, Message: message}
}

// NewNotFound is also used when the row exists but belongs to someone else.
func NewNotFound(resource string) *AppError {
	return &AppError{Kind: KindNotFound, Code: ResourceNotFound, Message: resource + " not found"}
}

func NewConflict(code, message string) *AppError {
	return &AppError{Kind: KindConflict, Code: code, Message: message}
}

func NewSignature(message string) *AppError {
	return &AppError{Kind: KindSignature, Code: PaymentSignatureInvalid, Message: message}
}

func NewRetryLimit(message string) *AppError {
	return &AppError{Kind: KindRetryLimit, Code: EmailRetryLimitReached, Message: message}
}

// NewDownstream wraps a database or gateway failure. The cause is logged, never sent to clients.
func NewDownstream(code string, err error) *AppError {
	return &AppError{Kind: KindDownstream, Code: code, Message: "internal server error", Err: err}
}

// As extracts an *AppError from err.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsKind reports whether err is an AppError of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}
