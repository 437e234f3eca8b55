package serverutils

import (
	"errors"
	"fmt"
)

type ErrorCode string

const (
	// CodeTransientDependency marks failures of an external dependency
	// (database, embedding provider, LLM) that a retry may resolve.
	CodeTransientDependency ErrorCode = "TRANSIENT_DEPENDENCY"
	// CodeNotFound marks lookups of entities that do not exist.
	CodeNotFound ErrorCode = "NOT_FOUND"
	// CodeMalformedQuery marks requests rejected before any work is done.
	CodeMalformedQuery ErrorCode = "MALFORMED_QUERY"
)

type AppError struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewTransientDependencyError(message string, err error) *AppError {
	return &AppError{Code: CodeTransientDependency, Message: message, Err: err}
}

func NewNotFoundError(message string) *AppError {
	return &AppError{Code: CodeNotFound, Message: message}
}

func NewMalformedQueryError(message string) *AppError {
	return &AppError{Code: CodeMalformedQuery, Message: message}
}

func IsCode(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
