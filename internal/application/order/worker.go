package order

import (
	"context"

	"github.com/Zhima-Mochi/snackhouse/internal/application/access"
	domain "github.com/Zhima-Mochi/snackhouse/internal/domain/order"
	"github.com/Zhima-Mochi/snackhouse/internal/domain/outbox"
	"github.com/Zhima-Mochi/snackhouse/internal/domain/payment"
	"github.com/Zhima-Mochi/snackhouse/internal/observability"
)

// Worker advances orders in reaction to payment confirmations published on
// the event bus. It is replay tolerant: confirmations for orders that already
// moved past pending are ignored.
type Worker struct {
	access     *access.Facade
	subscriber outbox.Subscriber
	cache      StatusCache
	log        observability.Logger
}

func NewWorker(facade *access.Facade, subscriber outbox.Subscriber, cache StatusCache, tel observability.Telemetry) *Worker {
	if tel == nil {
		tel = observability.NopTelemetry()
	}
	return &Worker{
		access:     facade,
		subscriber: subscriber,
		cache:      cache,
		log:        tel.Logger().With(observability.F("worker", "order-payment")),
	}
}

func (w *Worker) Start() {
	w.subscriber.Subscribe(payment.ApprovedEvent{}.EventName(), w.handlePaymentApproved)
}

func (w *Worker) handlePaymentApproved(ctx context.Context, event outbox.Event) error {
	approved, ok := event.(payment.ApprovedEvent)
	if !ok {
		w.log.Warn("unexpected_event_payload", observability.F("event", event.EventName()))
		return nil
	}
	logger := w.log.With(observability.F("order_id", approved.OrderID))

	var confirmed bool
	err := w.access.WithOrders(func(orders domain.Repository) error {
		current, getErr := orders.Get(ctx, approved.OrderID)
		if getErr != nil {
			return getErr
		}
		if current.Status != domain.StatusPending {
			logger.Debug("payment_approved_skipped",
				observability.F("status", string(current.Status)))
			return nil
		}
		if approved.Reference != "" {
			if _, refErr := orders.UpdatePaymentRef(ctx, approved.OrderID, approved.Reference); refErr != nil {
				return refErr
			}
		}
		if _, updateErr := orders.UpdateStatus(ctx, approved.OrderID, domain.StatusReceived); updateErr != nil {
			return updateErr
		}
		confirmed = true
		return nil
	})
	if err != nil {
		logger.Error("payment_approved_handling_failed", observability.F("error", err.Error()))
		return err
	}

	if confirmed && w.cache != nil {
		if cacheErr := w.cache.SetStatus(ctx, approved.OrderID, string(domain.StatusReceived)); cacheErr != nil {
			logger.Warn("status_cache_set_failed", observability.F("error", cacheErr.Error()))
		}
	}

	logger.Info("order_confirmed_by_payment")
	return nil
}
