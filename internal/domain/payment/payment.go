package payment

import (
	"errors"
	"time"
)

var (
	ErrNotFound = errors.New("payment: not found")
	ErrRejected = errors.New("payment: declined by gateway")
	ErrAdapter  = errors.New("payment: webhook adapter failure")
)

// State of a payment record.
type State string

const (
	StatePending  State = "pending"
	StateApproved State = "approved"
	StateFailed   State = "failed"
)

// Outcome is the gateway's synchronous answer to a charge. Deferred means the
// processor recorded intent and will confirm through the webhook path.
type Outcome string

const (
	OutcomeApproved Outcome = "approved"
	OutcomeDeclined Outcome = "declined"
	OutcomeDeferred Outcome = "deferred"
)

// Payment exists only alongside its order and shares the order's identity.
type Payment struct {
	OrderID   int64
	State     State
	Reference string
	Amount    float64
	Method    string
	CreatedAt time.Time
}

// New returns a pending payment for the order's current total.
func New(orderID int64, amount float64) *Payment {
	return &Payment{
		OrderID:   orderID,
		State:     StatePending,
		Amount:    amount,
		CreatedAt: time.Now().UTC(),
	}
}

func (p *Payment) Clone() *Payment {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
