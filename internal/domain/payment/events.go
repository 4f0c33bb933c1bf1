package payment

import "time"

// ApprovedEvent is emitted when a confirmation lands for an order's payment,
// whether from the synchronous gateway or a webhook callback. The order
// worker reacts to it.
type ApprovedEvent struct {
	OrderID    int64
	Reference  string
	OccurredAt time.Time
}

func (ApprovedEvent) EventName() string { return "payment.approved" }

func NewApprovedEvent(p *Payment) ApprovedEvent {
	return ApprovedEvent{
		OrderID:    p.OrderID,
		Reference:  p.Reference,
		OccurredAt: time.Now().UTC(),
	}
}
