package registration

import "time"

// Status is the lifecycle state of a registration.
type Status string

const (
	// StatusPending is the initial state of every registration.
	StatusPending Status = "Pending"

	// StatusApproved is terminal: the machine holds a valid licence.
	StatusApproved Status = "Approved"

	// StatusRejected is terminal: the machine was denied.
	StatusRejected Status = "Rejected"
)

// IsTerminal returns true for states a registration can never leave.
func (s Status) IsTerminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Action is an admin decision on a pending registration.
type Action string

const (
	ActionApprove Action = "Approve"
	ActionReject  Action = "Reject"
)

// StatusFor returns the terminal status an action moves a registration to.
// The second return value is false for unknown actions.
func (a Action) StatusFor() (Status, bool) {
	switch a {
	case ActionApprove:
		return StatusApproved, true
	case ActionReject:
		return StatusRejected, true
	default:
		return "", false
	}
}

// Registration is one machine's licence request.
//
// ApprovalTimestamp is nil while the registration is Pending and records the
// moment it first left Pending; it is never changed afterwards.
type Registration struct {
	ID                int64      `json:"id"`
	ComputerID        string     `json:"computer_id"`
	Status            Status     `json:"status"`
	RequestTimestamp  time.Time  `json:"request_timestamp"`
	ApprovalTimestamp *time.Time `json:"approval_timestamp,omitempty"`
	Notes             string     `json:"notes,omitempty"`
}

// Event is a change notification emitted after a successful mutation.
type Event struct {
	Type      string    `json:"type"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// EventTypeUpdated marks a change to the registration list. Consumers treat
// it as a hint to refetch; the event intentionally carries no row data.
const EventTypeUpdated = "registration.updated"

// Stats holds per-status registration counts for the admin console.
type Stats struct {
	Pending  int `json:"pending"`
	Approved int `json:"approved"`
	Rejected int `json:"rejected"`
	Total    int `json:"total"`
}
