// Package apperr defines the error taxonomy shared by services and handlers.
package apperr

import (
	"errors"
	"net/http"
	"strings"

	"gorm.io/gorm"
)

// Kind classifies an application error.
type Kind string

const (
	KindNotFound             Kind = "not_found"
	KindDuplicateName        Kind = "duplicate_name"
	KindConflict             Kind = "conflict"
	KindDuplicateAssociation Kind = "duplicate_association"
	KindAssociationNotFound  Kind = "association_not_found"
	KindInvalidCursor        Kind = "invalid_cursor"
	KindInvalidFilter        Kind = "invalid_filter"
	KindValidation           Kind = "validation_error"
	KindUnauthorized         Kind = "unauthorized"
	KindForbidden            Kind = "forbidden"
	KindBadRequest           Kind = "bad_request"
)

// Error is a domain failure that is safe to show to the client.
type Error struct {
	Kind    Kind
	Message string
	Code    int
}

func (e *Error) Error() string {
	return string(e.Kind) + ": " + e.Message
}

func newError(kind Kind, code int, message string) *Error {
	return &Error{Kind: kind, Message: message, Code: code}
}

// NotFound reports a missing entity, e.g. NotFound("Category").
func NotFound(entity string) *Error {
	return newError(KindNotFound, http.StatusNotFound, entity+" not found")
}

func DuplicateName(entity string) *Error {
	return newError(KindDuplicateName, http.StatusBadRequest, entity+" with same name exists")
}

func Conflict(message string) *Error {
	return newError(KindConflict, http.StatusBadRequest, message)
}

func DuplicateAssociation(message string) *Error {
	return newError(KindDuplicateAssociation, http.StatusBadRequest, message)
}

func AssociationNotFound(message string) *Error {
	return newError(KindAssociationNotFound, http.StatusBadRequest, message)
}

func InvalidCursor() *Error {
	return newError(KindInvalidCursor, http.StatusBadRequest, "Invalid cursor")
}

func InvalidFilter(message string) *Error {
	return newError(KindInvalidFilter, http.StatusBadRequest, message)
}

func Validation(message string) *Error {
	return newError(KindValidation, http.StatusUnprocessableEntity, message)
}

func Unauthorized(message string) *Error {
	return newError(KindUnauthorized, http.StatusUnauthorized, message)
}

func Forbidden(message string) *Error {
	return newError(KindForbidden, http.StatusForbidden, message)
}

// BadRequest reports a request that could not be read at all.
func BadRequest(message string) *Error {
	return newError(KindBadRequest, http.StatusBadRequest, message)
}

// As extracts the *Error from err's chain.
func As(err error) (*Error, bool) {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// Is reports whether err carries an *Error of the given kind.
func Is(err error, kind Kind) bool {
	appErr, ok := As(err)
	return ok && appErr.Kind == kind
}

// Status maps err onto an HTTP status code. Unknown errors are 500.
func Status(err error) int {
	if appErr, ok := As(err); ok {
		return appErr.Code
	}
	return http.StatusInternalServerError
}

// Message is the client-facing text of err. Unknown errors are not exposed.
func Message(err error) string {
	if appErr, ok := As(err); ok {
		return appErr.Message
	}
	return "Internal server error"
}

// IsUniqueViolation checks whether err came from a unique constraint in the store.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	// PostgreSQL
	if strings.Contains(msg, "duplicate key") || strings.Contains(msg, "violates unique constraint") {
		return true
	}
	// SQLite
	return strings.Contains(msg, "UNIQUE constraint failed")
}
