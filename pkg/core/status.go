// Package core provides the shared status and error model for wt-automation.
package core

// Status is the outcome of a test or step as rendered in the report.
type Status string

// Status values. Broken means an unrecoverable action error, failed means
// one or more soft assertions did not hold.
const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusBroken  Status = "broken"
	StatusSkipped Status = "skipped"
)

// IsSuccess returns true if the status indicates success.
func (s Status) IsSuccess() bool {
	return s == StatusPassed
}

// Worse returns the more severe of two statuses: broken > failed > skipped > passed.
func (s Status) Worse(other Status) Status {
	if severity(other) > severity(s) {
		return other
	}
	return s
}

func severity(s Status) int {
	switch s {
	case StatusBroken:
		return 3
	case StatusFailed:
		return 2
	case StatusSkipped:
		return 1
	default:
		return 0
	}
}

// ErrorCategory classifies the type of error for better debugging and reporting
type ErrorCategory int

const (
	ErrCategoryNone       ErrorCategory = iota // No error
	ErrCategoryElement                         // Element lookup or interaction failed
	ErrCategoryAssertion                       // Soft assertion mismatch
	ErrCategoryTimeout                         // Operation timed out
	ErrCategoryConnection                      // Driver/server connection lost
	ErrCategoryConfig                          // Invalid configuration, missing required field
)

// String returns the string representation of ErrorCategory
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryNone:
		return "none"
	case ErrCategoryElement:
		return "element"
	case ErrCategoryAssertion:
		return "assertion"
	case ErrCategoryTimeout:
		return "timeout"
	case ErrCategoryConnection:
		return "connection"
	case ErrCategoryConfig:
		return "config"
	default:
		return "unknown"
	}
}
