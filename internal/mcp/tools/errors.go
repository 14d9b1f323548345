package tools

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/usestring/schemafill/pkg/completion"
)

// Error codes for MCP tool responses.
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeSchemaError  = "SCHEMA_ERROR"
	ErrCodeTypeMismatch = "TYPE_MISMATCH"
	ErrCodeNotFound     = "NOT_FOUND"
)

// CodedError is an error with an associated error code.
type CodedError struct {
	Code    string
	Message string
	Cause   error
}

func (e *CodedError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *CodedError) Unwrap() error {
	return e.Cause
}

// WrapCompletionError converts an error from parsing, decoding or completing
// into a coded error. Schema and shape errors keep their own codes; anything
// else is a problem with the caller's input.
func WrapCompletionError(message string, err error) error {
	if err == nil {
		return nil
	}

	var coded *CodedError
	if errors.As(err, &coded) {
		return coded
	}

	var schemaErr *completion.SchemaError
	var mismatch *completion.TypeMismatchError
	switch {
	case errors.As(err, &schemaErr):
		coded = &CodedError{Code: ErrCodeSchemaError, Message: message, Cause: err}
	case errors.As(err, &mismatch):
		coded = &CodedError{Code: ErrCodeTypeMismatch, Message: message, Cause: err}
	default:
		coded = &CodedError{Code: ErrCodeInvalidInput, Message: message, Cause: err}
	}

	slog.Warn("tool call failed",
		slog.String("code", coded.Code),
		slog.String("message", coded.Message),
		slog.String("cause", err.Error()),
	)

	return coded
}

// ErrNotFound creates a not found error.
func ErrNotFound(resource, id string) error {
	return &CodedError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found: %s", resource, id),
	}
}

// ErrInvalidInput creates an invalid input error.
func ErrInvalidInput(message string) error {
	return &CodedError{
		Code:    ErrCodeInvalidInput,
		Message: message,
	}
}
