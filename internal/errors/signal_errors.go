package errors

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorCategory represents different types of errors that can occur
type ErrorCategory string

const (
	// Errors that fail the evaluation cycle
	ErrorCategoryMissingColumn ErrorCategory = "MISSING_COLUMN"
	ErrorCategoryConfiguration ErrorCategory = "CONFIG"
	ErrorCategoryData          ErrorCategory = "DATA"

	// Errors raised by collaborators around the core, usually retryable
	ErrorCategorySource   ErrorCategory = "SOURCE"
	ErrorCategoryDelivery ErrorCategory = "DELIVERY"
	ErrorCategoryNetwork  ErrorCategory = "NETWORK"
	ErrorCategoryTimeout  ErrorCategory = "TIMEOUT"
)

// SignalError represents a categorized error with context
type SignalError struct {
	Category   ErrorCategory
	Component  string
	Operation  string
	Message    string
	Underlying error
	Context    map[string]interface{}
	Retryable  bool
}

// Error implements the error interface
func (e *SignalError) Error() string {
	if e.Underlying != nil {
		return fmt.Sprintf("[%s:%s] %s: %s: %v", e.Category, e.Component, e.Operation, e.Message, e.Underlying)
	}
	return fmt.Sprintf("[%s:%s] %s: %s", e.Category, e.Component, e.Operation, e.Message)
}

// Unwrap returns the underlying error for error unwrapping
func (e *SignalError) Unwrap() error {
	return e.Underlying
}

// IsRetryable returns whether this error can be retried
func (e *SignalError) IsRetryable() bool {
	return e.Retryable
}

// IsFatal returns whether this error should abort the current cycle
func (e *SignalError) IsFatal() bool {
	return e.Category == ErrorCategoryMissingColumn ||
		e.Category == ErrorCategoryConfiguration ||
		e.Category == ErrorCategoryData
}

// NewSignalError creates a new categorized error
func NewSignalError(category ErrorCategory, component, operation, message string) *SignalError {
	return &SignalError{
		Category:  category,
		Component: component,
		Operation: operation,
		Message:   message,
		Context:   make(map[string]interface{}),
		Retryable: isRetryableCategory(category),
	}
}

// WrapError wraps an existing error with signal error context
func WrapError(err error, category ErrorCategory, component, operation string) *SignalError {
	if err == nil {
		return nil
	}

	return &SignalError{
		Category:   category,
		Component:  component,
		Operation:  operation,
		Message:    "operation failed",
		Underlying: err,
		Context:    make(map[string]interface{}),
		Retryable:  isRetryableCategory(category),
	}
}

// WithContext adds context information to the error
func (e *SignalError) WithContext(key string, value interface{}) *SignalError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// WithRetryable sets the retryable flag
func (e *SignalError) WithRetryable(retryable bool) *SignalError {
	e.Retryable = retryable
	return e
}

func isRetryableCategory(category ErrorCategory) bool {
	switch category {
	case ErrorCategorySource, ErrorCategoryDelivery, ErrorCategoryNetwork, ErrorCategoryTimeout:
		return true
	default:
		return false
	}
}

// CategorizeError attempts to categorize a generic error
func CategorizeError(err error, component, operation string) *SignalError {
	if err == nil {
		return nil
	}

	var sigErr *SignalError
	if errors.As(err, &sigErr) {
		return sigErr
	}

	var colErr *MissingColumnError
	if errors.As(err, &colErr) {
		return WrapError(err, ErrorCategoryMissingColumn, component, operation)
	}

	errMsg := strings.ToLower(err.Error())

	if strings.Contains(errMsg, "timeout") || strings.Contains(errMsg, "context deadline exceeded") {
		return WrapError(err, ErrorCategoryTimeout, component, operation)
	}

	if strings.Contains(errMsg, "connection") || strings.Contains(errMsg, "network") ||
		strings.Contains(errMsg, "dns") || strings.Contains(errMsg, "dial") {
		return WrapError(err, ErrorCategoryNetwork, component, operation)
	}

	if strings.Contains(errMsg, "invalid") || strings.Contains(errMsg, "validation") {
		return WrapError(err, ErrorCategoryConfiguration, component, operation)
	}

	return WrapError(err, ErrorCategorySource, component, operation)
}

// Common error constructors
func NewConfigurationError(component, operation, message string) *SignalError {
	return NewSignalError(ErrorCategoryConfiguration, component, operation, message)
}

func NewDataError(component, operation, message string) *SignalError {
	return NewSignalError(ErrorCategoryData, component, operation, message)
}

func NewSourceError(component, operation string, err error) *SignalError {
	return WrapError(err, ErrorCategorySource, component, operation)
}

func NewDeliveryError(component, operation string, err error) *SignalError {
	return WrapError(err, ErrorCategoryDelivery, component, operation)
}

// ErrorStats tracks error statistics
type ErrorStats struct {
	TotalErrors      int
	ErrorsByCategory map[ErrorCategory]int
	RecentErrors     []*SignalError
	MaxRecentErrors  int
}

// NewErrorStats creates a new error statistics tracker
func NewErrorStats(maxRecentErrors int) *ErrorStats {
	return &ErrorStats{
		ErrorsByCategory: make(map[ErrorCategory]int),
		RecentErrors:     make([]*SignalError, 0, maxRecentErrors),
		MaxRecentErrors:  maxRecentErrors,
	}
}

// RecordError records an error in the statistics
func (es *ErrorStats) RecordError(err *SignalError) {
	es.TotalErrors++
	es.ErrorsByCategory[err.Category]++

	es.RecentErrors = append(es.RecentErrors, err)
	if len(es.RecentErrors) > es.MaxRecentErrors {
		es.RecentErrors = es.RecentErrors[1:]
	}
}

// HasRecentErrors checks if there have been at least count errors of the
// category in the recent history
func (es *ErrorStats) HasRecentErrors(category ErrorCategory, count int) bool {
	recentCount := 0
	for _, err := range es.RecentErrors {
		if err.Category == category {
			recentCount++
		}
	}
	return recentCount >= count
}
