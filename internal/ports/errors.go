package ports

import (
	"errors"
	"fmt"
)

// Common errors raised at the boundary between the engine and its
// collaborators.
var (
	// ErrUnknownValidatorType indicates that no factory is registered for
	// a validator type named in configuration.
	ErrUnknownValidatorType = errors.New("unknown validator type")

	// ErrValidatorPanicked indicates that a validator panicked while
	// scoring a drawing.
	ErrValidatorPanicked = errors.New("validator panicked")

	// ErrReportNotFound indicates that a report ID is not in the store.
	ErrReportNotFound = errors.New("report not found")

	// ErrConfigNotFound indicates that required configuration is missing.
	ErrConfigNotFound = errors.New("configuration not found")
)

// ValidatorFaultError records a validator that failed to execute. The
// engine isolates these faults: the validator is scored zero and the
// remaining validators are still aggregated.
type ValidatorFaultError struct {
	// Validator is the name of the validator that failed.
	Validator string

	// Err is the underlying error that occurred.
	Err error
}

// Error implements the error interface for ValidatorFaultError.
func (e *ValidatorFaultError) Error() string {
	return fmt.Sprintf("validator fault: validator=%s, err=%v", e.Validator, e.Err)
}

// Unwrap returns the underlying error.
func (e *ValidatorFaultError) Unwrap() error { return e.Err }

// NewValidatorFaultError creates a new ValidatorFaultError with the given details.
func NewValidatorFaultError(validator string, err error) *ValidatorFaultError {
	return &ValidatorFaultError{
		Validator: validator,
		Err:       err,
	}
}

// StoreError represents an error from report store operations.
// It includes the report ID and operation that failed.
type StoreError struct {
	// ReportID is the report involved in the failed operation.
	ReportID string

	// Operation is the name of the store operation that failed.
	Operation string

	// Err is the underlying error that caused the store operation to fail.
	Err error
}

// Error implements the error interface for StoreError.
func (e *StoreError) Error() string {
	return fmt.Sprintf("store error: operation=%s, report=%s, err=%v", e.Operation, e.ReportID, e.Err)
}

// Unwrap returns the underlying error.
func (e *StoreError) Unwrap() error { return e.Err }

// NewStoreError creates a new StoreError with the given details.
func NewStoreError(reportID, operation string, err error) *StoreError {
	return &StoreError{
		ReportID:  reportID,
		Operation: operation,
		Err:       err,
	}
}

// MetricsError represents an error from metrics collection operations.
type MetricsError struct {
	// Metric is the name of the metric that was being collected when the
	// error occurred.
	Metric string

	// Operation is the name of the metrics operation that failed.
	Operation string

	// Err is the underlying error that caused the metrics operation to fail.
	Err error
}

// Error implements the error interface for MetricsError.
func (e *MetricsError) Error() string {
	return fmt.Sprintf("metrics error: operation=%s, metric=%s, err=%v", e.Operation, e.Metric, e.Err)
}

// Unwrap returns the underlying error.
func (e *MetricsError) Unwrap() error { return e.Err }

// NewMetricsError creates a new MetricsError with the given details.
func NewMetricsError(metric, operation string, err error) *MetricsError {
	return &MetricsError{
		Metric:    metric,
		Operation: operation,
		Err:       err,
	}
}

// ConfigError represents an error from configuration operations. Every
// ConfigError is fatal at start-up: the engine refuses to run on a
// rubric it cannot trust.
type ConfigError struct {
	// ConfigKey is the configuration key that was involved in the failed
	// operation.
	ConfigKey string

	// Err is the underlying error that caused the configuration operation
	// to fail.
	Err error
}

// Error implements the error interface for ConfigError.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error: key=%s, err=%v", e.ConfigKey, e.Err)
}

// Unwrap returns the underlying error.
func (e *ConfigError) Unwrap() error { return e.Err }

// NewConfigError creates a new ConfigError with the given details.
func NewConfigError(key string, err error) *ConfigError {
	return &ConfigError{
		ConfigKey: key,
		Err:       err,
	}
}
