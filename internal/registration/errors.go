package registration

import "errors"

// Sentinel errors for registration operations.
var (
	// ErrNotFound is returned when no registration matches the lookup.
	ErrNotFound = errors.New("registration not found")

	// ErrComputerIDExists is returned when a computer_id is already registered.
	ErrComputerIDExists = errors.New("computer_id already registered")

	// ErrNotPending is returned when a decision targets a registration that
	// does not exist or has already left Pending. The two cases are
	// deliberately not distinguished: by the time the caller could react,
	// the distinction may already be stale.
	ErrNotPending = errors.New("registration not found or already processed")

	// ErrInvalidAction is returned for a decision other than Approve or Reject.
	ErrInvalidAction = errors.New("invalid action")

	// ErrMissingComputerID is returned when a request omits the computer_id.
	ErrMissingComputerID = errors.New("computer_id is required")
)
