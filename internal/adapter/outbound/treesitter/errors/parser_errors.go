package parsererrors

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrorCategory classifies parser errors by their origin.
type ErrorCategory string

const (
	// ErrorCategorySyntax marks errors raised for malformed source.
	ErrorCategorySyntax ErrorCategory = "syntax"

	// ErrorCategoryEncoding marks errors for input that is not valid text.
	ErrorCategoryEncoding ErrorCategory = "encoding"

	// ErrorCategoryResourceLimit marks errors for input exceeding size limits.
	ErrorCategoryResourceLimit ErrorCategory = "resource_limit"

	// ErrorCategoryTimeout marks errors for parses that ran out of time.
	ErrorCategoryTimeout ErrorCategory = "timeout"

	// ErrorCategoryTreeSitter marks failures inside the tree-sitter runtime.
	ErrorCategoryTreeSitter ErrorCategory = "tree_sitter"

	// ErrorCategoryLanguage marks requests for a language the parser does not
	// handle.
	ErrorCategoryLanguage ErrorCategory = "language"
)

// ErrorSeverity grades how badly an error affects the requested operation.
type ErrorSeverity string

const (
	ErrorSeverityLow      ErrorSeverity = "low"
	ErrorSeverityMedium   ErrorSeverity = "medium"
	ErrorSeverityHigh     ErrorSeverity = "high"
	ErrorSeverityCritical ErrorSeverity = "critical"
)

// ParserError is a structured parser error carrying enough context for
// callers to log, classify, and decide whether to continue with other input.
type ParserError struct {
	Message  string        `json:"message"`
	Category ErrorCategory `json:"category"`
	Severity ErrorSeverity `json:"severity"`

	Language     string `json:"language,omitempty"`
	Operation    string `json:"operation,omitempty"`
	SourceLength int    `json:"source_length,omitempty"`
	LineNumber   int    `json:"line_number,omitempty"`
	ColumnNumber int    `json:"column_number,omitempty"`

	Details map[string]any `json:"details,omitempty"`

	Timestamp time.Time `json:"timestamp"`
	ErrorID   string    `json:"error_id"`

	Cause error `json:"-"`
}

// NewParserError creates a parser error with the given category and message.
func NewParserError(category ErrorCategory, message string) *ParserError {
	return &ParserError{
		Message:   message,
		Category:  category,
		Severity:  ErrorSeverityMedium,
		Timestamp: time.Now(),
		ErrorID:   generateErrorID(),
	}
}

// NewSyntaxError creates an error for malformed source input.
func NewSyntaxError(message string) *ParserError {
	return NewParserError(ErrorCategorySyntax, message).
		WithSeverity(ErrorSeverityHigh)
}

// NewEncodingError creates an error for input that is not valid UTF-8.
func NewEncodingError(message string) *ParserError {
	return NewParserError(ErrorCategoryEncoding, message).
		WithSeverity(ErrorSeverityHigh)
}

// NewResourceLimitError creates an error for input exceeding a size limit.
func NewResourceLimitError(message string) *ParserError {
	return NewParserError(ErrorCategoryResourceLimit, message).
		WithSeverity(ErrorSeverityCritical)
}

// NewTimeoutError creates an error for a parse that exceeded its deadline.
func NewTimeoutError(message string, duration time.Duration) *ParserError {
	err := NewParserError(ErrorCategoryTimeout, message).
		WithSeverity(ErrorSeverityHigh)
	if duration > 0 {
		err = err.WithDetails("timeout_duration", duration.String())
	}
	return err
}

// NewTreeSitterError creates an error for a failure inside the tree-sitter
// runtime or grammar.
func NewTreeSitterError(message string) *ParserError {
	return NewParserError(ErrorCategoryTreeSitter, message).
		WithSeverity(ErrorSeverityCritical)
}

// NewLanguageError creates an error for a language the parser cannot handle.
func NewLanguageError(language, message string) *ParserError {
	return NewParserError(ErrorCategoryLanguage, message).
		WithLanguage(language).
		WithSeverity(ErrorSeverityHigh)
}

// Error implements the error interface.
func (e *ParserError) Error() string {
	if e.Language != "" && e.Operation != "" {
		return fmt.Sprintf("%s error in %s %s: %s", e.Category, e.Language, e.Operation, e.Message)
	}
	if e.Language != "" {
		return fmt.Sprintf("%s error in %s: %s", e.Category, e.Language, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Category, e.Message)
}

// Unwrap returns the underlying cause for error chain matching.
func (e *ParserError) Unwrap() error {
	return e.Cause
}

// WithCause attaches the underlying error.
func (e *ParserError) WithCause(cause error) *ParserError {
	e.Cause = cause
	return e
}

// WithDetails attaches a key-value detail for logging.
func (e *ParserError) WithDetails(key string, value any) *ParserError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithLocation records the source position the error refers to.
func (e *ParserError) WithLocation(line, column int) *ParserError {
	e.LineNumber = line
	e.ColumnNumber = column
	return e
}

// WithSeverity sets the error severity.
func (e *ParserError) WithSeverity(severity ErrorSeverity) *ParserError {
	e.Severity = severity
	return e
}

// WithLanguage sets the language context.
func (e *ParserError) WithLanguage(language string) *ParserError {
	e.Language = language
	return e
}

// WithOperation sets the operation context.
func (e *ParserError) WithOperation(operation string) *ParserError {
	e.Operation = operation
	return e
}

// WithSourceLength records the length of the offending input.
func (e *ParserError) WithSourceLength(length int) *ParserError {
	e.SourceLength = length
	return e
}

// IsTimeout reports whether the error is a timeout.
func (e *ParserError) IsTimeout() bool {
	return e.Category == ErrorCategoryTimeout
}

// IsResourceLimit reports whether the error is a resource limit rejection.
func (e *ParserError) IsResourceLimit() bool {
	return e.Category == ErrorCategoryResourceLimit
}

// IsRecoverable reports whether callers can reasonably continue with other
// input after this error.
func (e *ParserError) IsRecoverable() bool {
	return e.Severity == ErrorSeverityLow || e.Severity == ErrorSeverityMedium
}

// TimeoutFromContext converts a finished context into a timeout error, or
// returns nil when the context is still live.
func TimeoutFromContext(ctx context.Context, operation string) *ParserError {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return NewTimeoutError(
			fmt.Sprintf("operation timeout: %s exceeded maximum allowed time", operation),
			0,
		).WithOperation(operation)
	case errors.Is(ctx.Err(), context.Canceled):
		return NewParserError(ErrorCategoryTimeout, "operation canceled: "+operation).
			WithOperation(operation).
			WithSeverity(ErrorSeverityMedium)
	default:
		return nil
	}
}

// generateErrorID produces a timestamp-based identifier for log correlation.
func generateErrorID() string {
	return fmt.Sprintf("PE_%d", time.Now().UnixNano())
}
