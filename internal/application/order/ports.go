package order

import "context"

// StatusCache is a best-effort read model for order status. Write failures
// are logged and never surfaced to callers.
type StatusCache interface {
	SetStatus(ctx context.Context, orderID int64, status string) error
	GetStatus(ctx context.Context, orderID int64) (string, error)
}
