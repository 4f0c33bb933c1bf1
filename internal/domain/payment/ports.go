package payment

import "context"

// Processor is the gateway port the core uses to request a charge,
// independent of which concrete processor fulfills it.
type Processor interface {
	Charge(ctx context.Context, orderID int64, amount float64) (Outcome, error)
}

// WebhookAdapter registers a callback URL with the remote processor and
// interprets the processor's inbound notifications.
type WebhookAdapter interface {
	// Register issues the registration call for the payment's order and
	// stores the processor-assigned payment code as the reference.
	Register(ctx context.Context, p *Payment) (*Payment, error)
	// Ingest never fails: payloads carrying no recognizable signal leave the
	// payment unchanged.
	Ingest(payload map[string]any, p *Payment) *Payment
}
