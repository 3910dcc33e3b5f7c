package helpers

import (
	"fmt"
	"time"
)

// -----------------------------------------------------------------------------
// Custom Error Types
// -----------------------------------------------------------------------------

type NotifierError struct {
	Message string
	Cause   error
}

func (e *NotifierError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *NotifierError) Unwrap() error {
	return e.Cause
}

// Distinct error categories for type assertions at component boundaries.
// A SourceError degrades a field; a PrimarySourceError aborts the cycle;
// a StorageError blocks the notify decision; a DispatchError stays inside
// the per-recipient accounting.
type SourceError struct{ NotifierError }
type PrimarySourceError struct{ NotifierError }
type StorageError struct{ NotifierError }
type DispatchError struct{ NotifierError }
type ConfigurationError struct{ NotifierError }

// -----------------------------------------------------------------------------

func NewPrimarySourceError(msg string, cause error) *PrimarySourceError {
	return &PrimarySourceError{NotifierError{Message: msg, Cause: cause}}
}

func NewSourceError(msg string, cause error) *SourceError {
	return &SourceError{NotifierError{Message: msg, Cause: cause}}
}

func NewStorageError(msg string, cause error) *StorageError {
	return &StorageError{NotifierError{Message: msg, Cause: cause}}
}

func NewDispatchError(msg string, cause error) *DispatchError {
	return &DispatchError{NotifierError{Message: msg, Cause: cause}}
}

func NewConfigurationError(msg string, cause error) *ConfigurationError {
	return &ConfigurationError{NotifierError{Message: msg, Cause: cause}}
}

// -----------------------------------------------------------------------------
// Retry Logic
// -----------------------------------------------------------------------------

// RetryWithBackoff attempts to execute the operation up to maxRetries times with exponential backoff.
func RetryWithBackoff(operation string, maxRetries int, baseDelay time.Duration, fn func() (interface{}, error)) (interface{}, error) {
	var lastErr error

	for attempt := 0; attempt < maxRetries; attempt++ {
		res, err := fn()
		if err == nil {
			return res, nil
		}

		lastErr = err
		if attempt == maxRetries-1 {
			break
		}

		delay := baseDelay * (1 << attempt)
		fmt.Printf("Warning: Attempt %d/%d failed for %s: %v. Retrying in %v\n", attempt+1, maxRetries, operation, err, delay)
		time.Sleep(delay)
	}

	return nil, lastErr
}
