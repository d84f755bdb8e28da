package feature

import "errors"

// Predefined errors for the feature package.
var (
	// ErrFlagNotFound indicates that the requested feature flag does not exist.
	ErrFlagNotFound = errors.New("feature flag not found")

	// ErrFlagKeyExists indicates a create collided with an existing flag key.
	ErrFlagKeyExists = errors.New("feature flag key already exists")

	// ErrInvalidFlag indicates the flag definition failed validation.
	ErrInvalidFlag = errors.New("invalid feature flag definition")

	// ErrStoreFailure indicates the backing flag store could not serve a request.
	ErrStoreFailure = errors.New("feature flag store failure")
)
