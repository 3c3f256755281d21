package apperror

import "fmt"

// Code classifies a failure so the HTTP layer can pick a status
// without inspecting error strings.
type Code string

const (
	CodeValidation        Code = "validation"
	CodeInvalidTransition Code = "invalid_transition"
	CodeNotFound          Code = "not_found"
	CodeInternal          Code = "internal"
)

type AppError struct {
	Code    Code
	Message string
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func Validation(format string, args ...any) *AppError {
	return &AppError{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

func InvalidTransition(format string, args ...any) *AppError {
	return &AppError{Code: CodeInvalidTransition, Message: fmt.Sprintf(format, args...)}
}

func NotFound(kind, key string) *AppError {
	return &AppError{Code: CodeNotFound, Message: fmt.Sprintf("%s %q not found", kind, key)}
}

func Internal(message string, err error) *AppError {
	return &AppError{Code: CodeInternal, Message: message, Err: err}
}
