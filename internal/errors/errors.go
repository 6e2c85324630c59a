// Package errors provides custom error types for domain-specific errors.
package errors

import (
	"errors"
	"fmt"
)

// Standard sentinel errors
var (
	ErrMalformedRow        = errors.New("malformed row")
	ErrInvalidParameter    = errors.New("invalid parameter")
	ErrSymbolNotFound      = errors.New("symbol not found")
	ErrRateLimited         = errors.New("rate limited")
	ErrGatewayUnavailable  = errors.New("gateway unavailable")
	ErrConfigInvalid       = errors.New("invalid configuration")
	ErrSectionNotFound     = errors.New("context section not found")
	ErrDatabaseError       = errors.New("database error")
)

// RowError reports a malformed CSV row. It is row-scoped and recoverable:
// analysis skips the row and continues.
type RowError struct {
	Row     int
	Symbol  string
	Field   string
	Message string
}

func (e *RowError) Error() string {
	if e.Symbol != "" {
		return fmt.Sprintf("row %d (%s): %s: %s", e.Row, e.Symbol, e.Field, e.Message)
	}
	return fmt.Sprintf("row %d: %s: %s", e.Row, e.Field, e.Message)
}

func (e *RowError) Unwrap() error {
	return ErrMalformedRow
}

// NewRowError creates a new RowError.
func NewRowError(row int, symbol, field, message string) *RowError {
	return &RowError{Row: row, Symbol: symbol, Field: field, Message: message}
}

// ParameterError reports an invalid caller-supplied parameter. It fails the
// single call and is never retried.
type ParameterError struct {
	Name    string
	Value   interface{}
	Message string
}

func (e *ParameterError) Error() string {
	return fmt.Sprintf("invalid parameter %s (%v): %s", e.Name, e.Value, e.Message)
}

func (e *ParameterError) Unwrap() error {
	return ErrInvalidParameter
}

// NewParameterError creates a new ParameterError.
func NewParameterError(name string, value interface{}, message string) *ParameterError {
	return &ParameterError{Name: name, Value: value, Message: message}
}

// GatewayError represents an error from the market data gateway. Err carries
// one of the gateway sentinels so callers can distinguish a missing symbol
// from rate limiting from a transient outage.
type GatewayError struct {
	Symbol   string
	Endpoint string
	Status   int
	Err      error
}

func (e *GatewayError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("gateway error [%s] %s (HTTP %d): %v", e.Symbol, e.Endpoint, e.Status, e.Err)
	}
	return fmt.Sprintf("gateway error [%s] %s: %v", e.Symbol, e.Endpoint, e.Err)
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// NewGatewayError creates a new GatewayError.
func NewGatewayError(symbol, endpoint string, status int, err error) *GatewayError {
	return &GatewayError{Symbol: symbol, Endpoint: endpoint, Status: status, Err: err}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with formatted context.
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}
