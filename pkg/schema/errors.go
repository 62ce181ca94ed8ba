package schema

import "fmt"

// Error codes for structured error reporting.
const (
	ErrCodeValidation = "VALIDATION_ERROR"
	ErrCodeNotFound   = "NOT_FOUND"
	ErrCodeRender     = "RENDER_ERROR"
	ErrCodeStore      = "STORE_ERROR"
	ErrCodeQuery      = "QUERY_ERROR"
	ErrCodeExport     = "EXPORT_ERROR"
	ErrCodeConflict   = "CONFLICT"
)

// FlowdocError is the structured error type for all flowdoc operations.
type FlowdocError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *FlowdocError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *FlowdocError) Unwrap() error {
	return e.Cause
}

// NewError creates a new FlowdocError.
func NewError(code, message string) *FlowdocError {
	return &FlowdocError{Code: code, Message: message}
}

// NewErrorf creates a new FlowdocError with a formatted message.
func NewErrorf(code, format string, args ...any) *FlowdocError {
	return &FlowdocError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause attaches an underlying cause.
func (e *FlowdocError) WithCause(err error) *FlowdocError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *FlowdocError) WithDetails(details map[string]any) *FlowdocError {
	e.Details = details
	return e
}
