package core

import (
	"errors"
	"fmt"
)

// ExecutionError is the error type returned by the driver, action and config
// layers. Code identifies the failure; copies made by the With* helpers keep
// it, so errors.Is matches them against the predefined values below.
type ExecutionError struct {
	Category ErrorCategory
	Code     string
	Message  string
	Details  map[string]interface{}
	Cause    error
}

func (e *ExecutionError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }

// Is matches any ExecutionError with the same non-empty code.
func (e *ExecutionError) Is(target error) bool {
	t, ok := target.(*ExecutionError)
	return ok && t.Code != "" && t.Code == e.Code
}

func (e *ExecutionError) clone() *ExecutionError {
	c := *e
	return &c
}

// WithCause returns a copy wrapping cause.
func (e *ExecutionError) WithCause(cause error) *ExecutionError {
	c := e.clone()
	c.Cause = cause
	return c
}

// WithMessage returns a copy with msg in place of the default message.
func (e *ExecutionError) WithMessage(msg string) *ExecutionError {
	c := e.clone()
	c.Message = msg
	return c
}

// WithDetails returns a copy whose details are e's merged with details;
// details wins on key clashes.
func (e *ExecutionError) WithDetails(details map[string]interface{}) *ExecutionError {
	c := e.clone()
	c.Details = make(map[string]interface{}, len(e.Details)+len(details))
	for _, src := range []map[string]interface{}{e.Details, details} {
		for k, v := range src {
			c.Details[k] = v
		}
	}
	return c
}

// Errors surfaced by the webdriver client (element, session) and by the
// wait engine, assertions and config loading.
var (
	ErrNoSuchElement = &ExecutionError{
		Category: ErrCategoryElement,
		Code:     "no_such_element",
		Message:  "no such element",
	}
	ErrStaleElement = &ExecutionError{
		Category: ErrCategoryElement,
		Code:     "stale_element",
		Message:  "stale element reference",
	}
	ErrElementNotFound = &ExecutionError{
		Category: ErrCategoryElement,
		Code:     "element_not_found",
		Message:  "element not found",
	}
	ErrElementNotInteractable = &ExecutionError{
		Category: ErrCategoryElement,
		Code:     "element_not_interactable",
		Message:  "element not interactable",
	}
	ErrInvalidSelector = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "invalid_selector",
		Message:  "invalid selector",
	}

	ErrAssertionFailed = &ExecutionError{
		Category: ErrCategoryAssertion,
		Code:     "assertion_failed",
		Message:  "validation failed",
	}

	ErrWaitTimeout = &ExecutionError{
		Category: ErrCategoryTimeout,
		Code:     "wait_timeout",
		Message:  "wait condition timed out",
	}

	ErrServerUnreachable = &ExecutionError{
		Category: ErrCategoryConnection,
		Code:     "server_unreachable",
		Message:  "could not connect to automation server",
	}
	ErrNoSession = &ExecutionError{
		Category: ErrCategoryConnection,
		Code:     "invalid_session",
		Message:  "no active session",
	}

	ErrInvalidConfig = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "invalid_config",
		Message:  "invalid configuration",
	}
	ErrMissingRequired = &ExecutionError{
		Category: ErrCategoryConfig,
		Code:     "missing_required",
		Message:  "missing required field",
	}
)

// NewExecutionError builds an error outside the predefined set, e.g. for an
// unrecognised W3C error string.
func NewExecutionError(category ErrorCategory, code, message string) *ExecutionError {
	return &ExecutionError{Category: category, Code: code, Message: message}
}

// IsTransient reports whether err is one of the element errors the wait
// engine retries: no such element, stale reference or a wait timeout.
// Anything else is treated as a genuine failure.
func IsTransient(err error) bool {
	return errors.Is(err, ErrNoSuchElement) ||
		errors.Is(err, ErrStaleElement) ||
		errors.Is(err, ErrWaitTimeout)
}

// Kind returns a short name for the error code, used in retry log lines.
func Kind(err error) string {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return fmt.Sprintf("%T", err)
}
