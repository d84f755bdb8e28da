package audit

import "errors"

var (
	// ErrEntryValidation indicates an entry is missing required fields.
	ErrEntryValidation = errors.New("audit entry validation failed")

	// ErrStorageFailure indicates the backing storage rejected an operation.
	ErrStorageFailure = errors.New("audit storage failure")
)
