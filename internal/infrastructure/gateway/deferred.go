package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Zhima-Mochi/snackhouse/internal/domain/payment"
	"github.com/Zhima-Mochi/snackhouse/internal/observability"

	"github.com/google/uuid"
)

// Notifier receives the simulated processor callback once the delay elapses.
type Notifier interface {
	HandleNotification(ctx context.Context, orderID int64, payload map[string]any) *payment.Payment
}

// Deferred is a processor that acknowledges the charge immediately and
// confirms it later through the notification path, imitating a processor
// that settles via webhook.
type Deferred struct {
	mu       sync.RWMutex
	notifier Notifier
	delay    time.Duration
	log      observability.Logger
}

func NewDeferred(delay time.Duration, logger observability.Logger) *Deferred {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Deferred{delay: delay, log: logger}
}

// Bind wires the notifier after construction; the notification target itself
// depends on the facade holding this gateway.
func (d *Deferred) Bind(notifier Notifier) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.notifier = notifier
}

func (d *Deferred) Charge(ctx context.Context, orderID int64, amount float64) (payment.Outcome, error) {
	if orderID <= 0 {
		return "", fmt.Errorf("gateway: invalid order id %d", orderID)
	}
	if amount < 0 {
		return "", fmt.Errorf("gateway: negative amount %.2f", amount)
	}

	d.mu.RLock()
	notifier := d.notifier
	d.mu.RUnlock()
	if notifier == nil {
		return "", fmt.Errorf("gateway: no notifier bound")
	}

	// Outlive the request: the confirmation arrives after the caller's
	// context is gone.
	detached := context.WithoutCancel(ctx)
	go func() {
		time.Sleep(d.delay)
		payload := map[string]any{
			"action": "payment.approved",
			"id":     uuid.NewString(),
		}
		notifier.HandleNotification(detached, orderID, payload)
		d.log.Debug("deferred_charge_confirmed",
			observability.F("order_id", orderID))
	}()

	return payment.OutcomeDeferred, nil
}

var _ payment.Processor = (*Deferred)(nil)
