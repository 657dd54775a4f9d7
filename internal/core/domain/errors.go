package domain

import (
	"errors"
	"fmt"
)

// ErrorCode classifies a domain error for every transport.
type ErrorCode string

const (
	ErrCodeUnauthenticated ErrorCode = "UNAUTHENTICATED"
	ErrCodeValidation      ErrorCode = "VALIDATION"
	ErrCodeNotFound        ErrorCode = "NOT_FOUND"
	ErrCodeStorage         ErrorCode = "STORAGE"
	ErrCodeInvalid         ErrorCode = "INVALID"
)

type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}

	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}

	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}

	return e.Err
}

func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// StorageError wraps a persistence fault.
func StorageError(message string, err error) *Error {
	return WrapError(ErrCodeStorage, message, err)
}

var (
	ErrUnauthenticated = NewError(ErrCodeUnauthenticated, "unauthenticated")
	ErrTitleRequired   = NewError(ErrCodeValidation, "title is required")
	ErrTodoNotFound    = NewError(ErrCodeNotFound, "Todo not found")
)

func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}

	return false
}

// CodeOf returns the code of the outermost domain error in err's chain.
func CodeOf(err error) (ErrorCode, bool) {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code, true
	}

	return "", false
}
