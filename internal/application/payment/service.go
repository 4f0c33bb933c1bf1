package payment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/snackhouse/internal/application/access"
	domorder "github.com/Zhima-Mochi/snackhouse/internal/domain/order"
	"github.com/Zhima-Mochi/snackhouse/internal/domain/outbox"
	domain "github.com/Zhima-Mochi/snackhouse/internal/domain/payment"
	"github.com/Zhima-Mochi/snackhouse/internal/observability"
	"github.com/Zhima-Mochi/snackhouse/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	serviceName = "payment-service"
	spanPrefix  = "UC."

	useCaseRealize  = "payment.realize"
	useCaseInitiate = "payment.initiate"
	useCaseNotify   = "payment.notify"
	useCaseGet      = "payment.get"

	processorPeer    = "payment_processor"
	registerEndpoint = "register"
)

// Service orchestrates payment capture for orders, both the synchronous
// charge path and the register-then-webhook path.
type Service struct {
	access    *access.Facade
	payments  domain.Repository
	adapter   domain.WebhookAdapter
	publisher outbox.Publisher
	tel       observability.Telemetry
	log       observability.Logger
}

func NewService(
	facade *access.Facade,
	payments domain.Repository,
	adapter domain.WebhookAdapter,
	publisher outbox.Publisher,
	tel observability.Telemetry,
) *Service {
	if tel == nil {
		tel = observability.NopTelemetry()
	}
	return &Service{
		access:    facade,
		payments:  payments,
		adapter:   adapter,
		publisher: publisher,
		tel:       tel,
		log:       tel.Logger().With(observability.F("service", serviceName)),
	}
}

func (s *Service) observe(ctx context.Context, useCase string) (context.Context, func(err error)) {
	ctx, span := s.tel.Tracer().Start(ctx, spanPrefix+useCase,
		attribute.String("use_case", useCase),
	)
	start := time.Now()
	return ctx, func(err error) {
		outcome := "success"
		if err != nil {
			outcome = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else {
			span.SetStatus(codes.Ok, "OK")
		}
		span.End()
		s.tel.Counter(observability.MUsecaseRequests).Add(1,
			observability.L("use_case", useCase),
			observability.L("outcome", outcome),
		)
		s.tel.Histogram(observability.MUsecaseDuration).Observe(time.Since(start).Seconds(),
			observability.L("use_case", useCase),
		)
	}
}

// RealizePayment charges the order total through the gateway while holding
// both the order store and the gateway. On approval the order moves to
// received, but the snapshot taken before the update is what callers get
// back; existing clients key off that shape.
func (s *Service) RealizePayment(ctx context.Context, orderID int64) (snapshot *domorder.Order, err error) {
	ctx, done := s.observe(ctx, useCaseRealize)
	defer func() { done(err) }()
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCaseRealize),
		observability.F("order_id", orderID),
	)

	err = s.access.WithOrdersAndGateway(func(orders domorder.Repository, gateway domain.Processor) error {
		current, getErr := orders.Get(ctx, orderID)
		if getErr != nil {
			return getErr
		}
		snapshot = current

		amount := current.Total()
		outcome, chargeErr := gateway.Charge(ctx, orderID, amount)
		if chargeErr != nil {
			return chargeErr
		}

		record := s.paymentRecord(ctx, orderID, amount)
		switch outcome {
		case domain.OutcomeApproved:
			record.State = domain.StateApproved
			if saveErr := s.payments.Save(ctx, record); saveErr != nil {
				return saveErr
			}
			_, updateErr := orders.UpdateStatus(ctx, orderID, domorder.StatusReceived)
			return updateErr
		case domain.OutcomeDeferred:
			if saveErr := s.payments.Save(ctx, record); saveErr != nil {
				return saveErr
			}
			return nil
		default:
			record.State = domain.StateFailed
			if saveErr := s.payments.Save(ctx, record); saveErr != nil {
				logger.Warn("failed_payment_save_failed",
					observability.F("error", saveErr.Error()))
			}
			return fmt.Errorf("%w: order %d", domain.ErrRejected, orderID)
		}
	})
	if err != nil {
		logger.Warn("payment_realize_failed", observability.F("error", err.Error()))
		return nil, err
	}

	logger.Info("payment_realized", observability.F("total", snapshot.Total()))
	return snapshot, nil
}

// paymentRecord reuses a stored payment when one exists so retries don't
// reset CreatedAt.
func (s *Service) paymentRecord(ctx context.Context, orderID int64, amount float64) *domain.Payment {
	record, err := s.payments.GetByOrderID(ctx, orderID)
	if err != nil {
		return domain.New(orderID, amount)
	}
	record.Amount = amount
	return record
}

// InitiatePayment registers a webhook callback with the external processor
// and records the pending payment. The remote call runs outside the facade
// locks; only the reads and the final reference write take them.
func (s *Service) InitiatePayment(ctx context.Context, orderID int64) (pending *domain.Payment, err error) {
	ctx, done := s.observe(ctx, useCaseInitiate)
	defer func() { done(err) }()
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCaseInitiate),
		observability.F("order_id", orderID),
	)

	var amount float64
	err = s.access.WithOrders(func(orders domorder.Repository) error {
		current, getErr := orders.Get(ctx, orderID)
		if getErr != nil {
			return getErr
		}
		amount = current.Total()
		return nil
	})
	if err != nil {
		logger.Warn("payment_initiate_failed", observability.F("error", err.Error()))
		return nil, err
	}

	record := s.paymentRecord(ctx, orderID, amount)
	registerStart := time.Now()
	registered, err := s.adapter.Register(ctx, record)
	s.recordExternal(registerEndpoint, registerStart, err)
	if err != nil {
		logger.Warn("webhook_register_failed", observability.F("error", err.Error()))
		return nil, err
	}

	if saveErr := s.payments.Save(ctx, registered); saveErr != nil {
		logger.Error("payment_save_failed", observability.F("error", saveErr.Error()))
		return nil, saveErr
	}
	if registered.Reference != "" {
		err = s.access.WithOrders(func(orders domorder.Repository) error {
			_, refErr := orders.UpdatePaymentRef(ctx, orderID, registered.Reference)
			return refErr
		})
		if err != nil {
			logger.Warn("payment_ref_update_failed", observability.F("error", err.Error()))
			return nil, err
		}
	}

	logger.Info("payment_initiated", observability.F("reference", registered.Reference))
	return registered, nil
}

func (s *Service) recordExternal(endpoint string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	s.tel.Counter(observability.MExternalRequests).Add(1,
		observability.L("peer", processorPeer),
		observability.L("endpoint", endpoint),
		observability.L("outcome", outcome),
	)
	s.tel.Histogram(observability.MExternalRequestDuration).Observe(time.Since(start).Seconds(),
		observability.L("peer", processorPeer),
		observability.L("endpoint", endpoint),
	)
}

// HandleNotification ingests a processor callback. It never fails: unknown
// payloads leave the record untouched, and a missing record is created on the
// spot so out-of-order callbacks still land. A transition to approved is
// published for the order worker to pick up.
func (s *Service) HandleNotification(ctx context.Context, orderID int64, payload map[string]any) *domain.Payment {
	ctx, done := s.observe(ctx, useCaseNotify)
	defer done(nil)
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCaseNotify),
		observability.F("order_id", orderID),
	)

	record, err := s.payments.GetByOrderID(ctx, orderID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logger.Warn("payment_lookup_failed", observability.F("error", err.Error()))
		}
		record = domain.New(orderID, 0)
	}
	wasApproved := record.State == domain.StateApproved

	record = s.adapter.Ingest(payload, record)

	if saveErr := s.payments.Save(ctx, record); saveErr != nil {
		logger.Warn("payment_save_failed", observability.F("error", saveErr.Error()))
	}

	if record.State == domain.StateApproved && !wasApproved && s.publisher != nil {
		event := domain.NewApprovedEvent(record)
		if pubErr := s.publisher.Publish(ctx, event); pubErr != nil {
			logger.Warn("approved_event_publish_failed", observability.F("error", pubErr.Error()))
		}
	}

	logger.Info("notification_ingested", observability.F("state", string(record.State)))
	return record
}

func (s *Service) GetByOrderID(ctx context.Context, orderID int64) (found *domain.Payment, err error) {
	ctx, done := s.observe(ctx, useCaseGet)
	defer func() { done(err) }()

	found, err = s.payments.GetByOrderID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return found, nil
}
