package bybit

import (
	"errors"
	"fmt"
	"net/http"

	sigerrors "github.com/ducminhle1904/directional-signals/internal/errors"
)

// BybitError represents a Bybit API error with additional context
type BybitError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *BybitError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("Bybit API error %d: %s (%s)", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("Bybit API error %d: %s", e.Code, e.Message)
}

// Bybit error codes seen on market data endpoints
const (
	ErrCodeInvalidParameter  = 10001
	ErrCodeInvalidAPIKey     = 10003
	ErrCodeInvalidSignature  = 10004
	ErrCodeRateLimitExceeded = 10006
	ErrCodeServerTimeout     = 10016
	ErrCodeSymbolNotFound    = 110009
)

// IsRetryableError determines if an error should be retried
func IsRetryableError(err error) bool {
	var bybitErr *BybitError
	if !errors.As(err, &bybitErr) {
		return false
	}
	switch bybitErr.Code {
	case ErrCodeRateLimitExceeded, ErrCodeServerTimeout,
		http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// IsRateLimitError checks if the error is due to rate limiting
func IsRateLimitError(err error) bool {
	var bybitErr *BybitError
	return errors.As(err, &bybitErr) && bybitErr.Code == ErrCodeRateLimitExceeded
}

// NewBybitError creates a new BybitError
func NewBybitError(code int, message string, details ...string) *BybitError {
	err := &BybitError{
		Code:    code,
		Message: message,
	}
	if len(details) > 0 {
		err.Details = details[0]
	}
	return err
}

// ParseAPIError extracts error information from the API response
func ParseAPIError(retCode int, retMsg string) error {
	if retCode == 0 {
		return nil
	}
	return NewBybitError(retCode, retMsg)
}

// toSignalError classifies a kline failure for the controller. API errors
// become SOURCE errors, retryable only when Bybit says so; transport
// failures go through the generic categorizer.
func toSignalError(err error, symbol, interval string) error {
	if err == nil {
		return nil
	}
	var bybitErr *BybitError
	if errors.As(err, &bybitErr) {
		return sigerrors.WrapError(err, sigerrors.ErrorCategorySource, "bybit", "get_klines").
			WithRetryable(IsRetryableError(err)).
			WithContext("symbol", symbol).
			WithContext("interval", interval)
	}
	return sigerrors.CategorizeError(err, "bybit", "get_klines").
		WithContext("symbol", symbol).
		WithContext("interval", interval)
}
