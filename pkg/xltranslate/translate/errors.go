package translate

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidResponseShape indicates the provider reply is not a JSON object.
	ErrInvalidResponseShape = errors.New("response is not a JSON object")

	// ErrEmptyTranslationResult indicates the provider reply was an empty
	// object, so the batch produced no translations at all.
	ErrEmptyTranslationResult = errors.New("empty translation result")

	// ErrCancelled indicates the caller cancelled the operation. Errors
	// carrying it also match the context error that caused it.
	ErrCancelled = errors.New("translation cancelled")

	// ErrInvalidConfig indicates an engine configuration that cannot work.
	ErrInvalidConfig = errors.New("invalid engine config")
)

// APIError reports a failed batch: a transport or provider failure, or a
// response that broke the structural contract.
type APIError struct {
	// Batch is the 0-based batch number within the dispatch call.
	Batch int
	// Size is the number of strings in the failed batch.
	Size int
	Err  error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("translation API error in batch %d (%d strings): %v", e.Batch, e.Size, e.Err)
}

func (e *APIError) Unwrap() error {
	return e.Err
}

func cancelled(cause error) error {
	return fmt.Errorf("%w: %w", ErrCancelled, cause)
}
