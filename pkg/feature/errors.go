package feature

import "errors"

var (
	// ErrFlagNotFound indicates that the requested feature flag was not found.
	ErrFlagNotFound = errors.New("feature flag not found")

	// ErrInvalidFlag indicates that the provided flag parameters are invalid.
	ErrInvalidFlag = errors.New("invalid feature flag parameters")

	// ErrOperationFailed indicates a failure of the underlying storage.
	ErrOperationFailed = errors.New("feature operation failed")
)
