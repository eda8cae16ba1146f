package audit

import "errors"

var (
	// ErrEventValidation indicates the event is missing required fields.
	ErrEventValidation = errors.New("audit.event_validation")

	// ErrStorageNotAvailable indicates the storage backend is closed or
	// unreachable.
	ErrStorageNotAvailable = errors.New("audit.storage_not_available")
)
