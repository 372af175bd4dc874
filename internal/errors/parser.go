package errors

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ParseError converts a persistence error into an AppError.
// resource names the entity being touched ("invoice", "business"...).
func ParseError(err error, resource string) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := As(err); ok {
		return appErr
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewNotFound(resource)
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return parseDuplicateKeyError(err.Error(), resource)
	}

	errLower := strings.ToLower(err.Error())

	// postgres 23505 / sqlite UNIQUE
	if strings.Contains(errLower, "duplicate key") ||
		strings.Contains(errLower, "unique constraint") {
		return parseDuplicateKeyError(errLower, resource)
	}

	if strings.Contains(errLower, "foreign key constraint") {
		return &AppError{
			Kind:    KindNotFound,
			Code:    ResourceNotFound,
			Message: "referenced record not found",
			Err:     err,
		}
	}

	if strings.Contains(errLower, "connection refused") ||
		strings.Contains(errLower, "no such host") ||
		strings.Contains(errLower, "timeout") {
		return NewDownstream(InternalExternalAPI, err)
	}

	return NewDownstream(InternalDatabase, err)
}

func parseDuplicateKeyError(errStr string, resource string) *AppError {
	errLower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errLower, "invoice_number"):
		return NewConflict(InvoiceNumberExists, "invoice number already exists")
	case strings.Contains(errLower, "email"):
		return NewConflict(AuthEmailAlreadyExists, "email already in use")
	case strings.Contains(errLower, "single_primary"), strings.Contains(errLower, "businesses.user_id"):
		return NewConflict(ResourceConflict, "another primary business already exists")
	}
	return NewConflict(ResourceAlreadyExists, resource+" already exists")
}
