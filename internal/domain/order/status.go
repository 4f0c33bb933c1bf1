package order

import "fmt"

// Status is the lifecycle state of an order.
type Status string

const (
	StatusPending       Status = "pending"
	StatusReceived      Status = "received"
	StatusInPreparation Status = "in_preparation"
	StatusReady         Status = "ready"
	StatusCompleted     Status = "completed"
	StatusCancelled     Status = "cancelled"
	// StatusInvalid marks an order written off by an administrative
	// correction; no normal flow produces it.
	StatusInvalid Status = "invalid"
)

// ParseStatus maps a status name to its enum value. Unknown names fail here,
// before any mutation is attempted.
func ParseStatus(name string) (Status, error) {
	switch s := Status(name); s {
	case StatusPending, StatusReceived, StatusInPreparation, StatusReady,
		StatusCompleted, StatusCancelled, StatusInvalid:
		return s, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownStatus, name)
}

// Terminal reports whether no transition may leave the status.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled || s == StatusInvalid
}

// forward holds the single outgoing edge of the happy path.
var forward = map[Status]Status{
	StatusPending:       StatusReceived,
	StatusReceived:      StatusInPreparation,
	StatusInPreparation: StatusReady,
	StatusReady:         StatusCompleted,
}

// CanTransition reports whether an order in status s may move to target. The
// happy path advances one step at a time; cancelled and invalid are reachable
// from any non-terminal state.
func (s Status) CanTransition(target Status) bool {
	if s.Terminal() {
		return false
	}
	if target == StatusCancelled || target == StatusInvalid {
		return true
	}
	return forward[s] == target
}
