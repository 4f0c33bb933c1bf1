package order

import (
	"context"
	"fmt"
	"time"

	"github.com/Zhima-Mochi/snackhouse/internal/application/access"
	domcustomer "github.com/Zhima-Mochi/snackhouse/internal/domain/customer"
	domain "github.com/Zhima-Mochi/snackhouse/internal/domain/order"
	domproduct "github.com/Zhima-Mochi/snackhouse/internal/domain/product"
	"github.com/Zhima-Mochi/snackhouse/internal/observability"
	"github.com/Zhima-Mochi/snackhouse/internal/observability/logctx"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	serviceName = "order-service"
	spanPrefix  = "UC."

	useCaseCreate         = "order.create"
	useCaseGet            = "order.get"
	useCaseList           = "order.list"
	useCaseListByStatus   = "order.list_by_status"
	useCaseAttachSnack    = "order.attach_snack"
	useCaseAttachSide     = "order.attach_side"
	useCaseAttachDrink    = "order.attach_drink"
	useCaseAttachCustomer = "order.attach_customer"
	useCaseUpdateStatus   = "order.update_status"
	useCaseGetStatus      = "order.get_status"
	useCaseListProducts   = "order.list_products"
)

// Service is the order lifecycle orchestrator: creation, composition, and
// status transitions. All store access goes through the access facade.
type Service struct {
	access *access.Facade
	cache  StatusCache
	tel    observability.Telemetry
	log    observability.Logger
}

func NewService(facade *access.Facade, cache StatusCache, tel observability.Telemetry) *Service {
	if tel == nil {
		tel = observability.NopTelemetry()
	}
	return &Service{
		access: facade,
		cache:  cache,
		tel:    tel,
		log:    tel.Logger().With(observability.F("service", serviceName)),
	}
}

// observe opens a use-case span and returns a closer recording outcome,
// RED metrics, and span status.
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

type CreateOrderInput struct {
	// CustomerID is optional; nil creates an anonymous order.
	CustomerID *int64
}

// Create builds a fresh pending order, resolving the customer first when one
// is named. The store's persisted record, id assigned, is the result.
func (s *Service) Create(ctx context.Context, input CreateOrderInput) (created *domain.Order, err error) {
	ctx, done := s.observe(ctx, useCaseCreate)
	defer func() { done(err) }()
	logger := logctx.FromOr(ctx, s.log).With(observability.F("use_case", useCaseCreate))

	var cust *domcustomer.Customer
	if input.CustomerID != nil {
		err = s.access.WithCustomers(func(customers domcustomer.Repository) error {
			var lookupErr error
			cust, lookupErr = customers.GetByID(ctx, *input.CustomerID)
			return lookupErr
		})
		if err != nil {
			logger.Warn("customer_lookup_failed",
				observability.F("customer_id", *input.CustomerID),
				observability.F("error", err.Error()),
			)
			return nil, err
		}
	}

	draft := domain.New(cust)
	err = s.access.WithOrders(func(orders domain.Repository) error {
		var createErr error
		created, createErr = orders.Create(ctx, draft)
		return createErr
	})
	if err != nil {
		logger.Error("order_create_failed", observability.F("error", err.Error()))
		return nil, err
	}

	logger.Info("order_created", observability.F("order_id", created.ID))
	return created, nil
}

func (s *Service) Get(ctx context.Context, id int64) (found *domain.Order, err error) {
	ctx, done := s.observe(ctx, useCaseGet)
	defer func() { done(err) }()

	err = s.access.WithOrders(func(orders domain.Repository) error {
		var getErr error
		found, getErr = orders.Get(ctx, id)
		return getErr
	})
	if err != nil {
		return nil, err
	}
	return found, nil
}

func (s *Service) List(ctx context.Context) (listed []*domain.Order, err error) {
	ctx, done := s.observe(ctx, useCaseList)
	defer func() { done(err) }()

	err = s.access.WithOrders(func(orders domain.Repository) error {
		var listErr error
		listed, listErr = orders.List(ctx)
		return listErr
	})
	if err != nil {
		return nil, err
	}
	return listed, nil
}

// ListByStatus parses the status name before touching the store.
func (s *Service) ListByStatus(ctx context.Context, statusName string) (listed []*domain.Order, err error) {
	ctx, done := s.observe(ctx, useCaseListByStatus)
	defer func() { done(err) }()

	status, err := domain.ParseStatus(statusName)
	if err != nil {
		return nil, err
	}

	err = s.access.WithOrders(func(orders domain.Repository) error {
		var listErr error
		listed, listErr = orders.ListByStatus(ctx, status)
		return listErr
	})
	if err != nil {
		return nil, err
	}
	return listed, nil
}

func (s *Service) AttachSnack(ctx context.Context, orderID, productID int64) (*domain.Order, error) {
	return s.attachProduct(ctx, useCaseAttachSnack, orderID, productID, domproduct.CategorySnack)
}

func (s *Service) AttachSide(ctx context.Context, orderID, productID int64) (*domain.Order, error) {
	return s.attachProduct(ctx, useCaseAttachSide, orderID, productID, domproduct.CategorySide)
}

func (s *Service) AttachDrink(ctx context.Context, orderID, productID int64) (*domain.Order, error) {
	return s.attachProduct(ctx, useCaseAttachDrink, orderID, productID, domproduct.CategoryDrink)
}

// AttachProduct routes to the slot operation matching the category.
func (s *Service) AttachProduct(ctx context.Context, orderID, productID int64, category domproduct.Category) (*domain.Order, error) {
	switch category {
	case domproduct.CategorySnack:
		return s.AttachSnack(ctx, orderID, productID)
	case domproduct.CategorySide:
		return s.AttachSide(ctx, orderID, productID)
	case domproduct.CategoryDrink:
		return s.AttachDrink(ctx, orderID, productID)
	}
	return nil, fmt.Errorf("%w: %q", domproduct.ErrUnknownCategory, category)
}

// attachProduct resolves the product, verifies its category against the
// operation's expected one, and replaces the order's slot. No partial
// mutation survives a failed step.
func (s *Service) attachProduct(ctx context.Context, useCase string, orderID, productID int64, want domproduct.Category) (updated *domain.Order, err error) {
	ctx, done := s.observe(ctx, useCase)
	defer func() { done(err) }()
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCase),
		observability.F("order_id", orderID),
		observability.F("product_id", productID),
	)

	err = s.access.WithOrdersAndProducts(func(orders domain.Repository, products domproduct.Repository) error {
		item, lookupErr := products.GetByID(ctx, productID)
		if lookupErr != nil {
			return lookupErr
		}
		if item.Category != want {
			return fmt.Errorf("%w: product %d is %s, want %s",
				domproduct.ErrCategoryMismatch, item.ID, item.Category, want)
		}
		var attachErr error
		updated, attachErr = orders.AttachItem(ctx, orderID, item)
		return attachErr
	})
	if err != nil {
		logger.Warn("attach_product_failed", observability.F("error", err.Error()))
		return nil, err
	}

	logger.Info("product_attached", observability.F("total", updated.Total()))
	return updated, nil
}

func (s *Service) AttachCustomer(ctx context.Context, orderID, customerID int64) (updated *domain.Order, err error) {
	ctx, done := s.observe(ctx, useCaseAttachCustomer)
	defer func() { done(err) }()
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCaseAttachCustomer),
		observability.F("order_id", orderID),
		observability.F("customer_id", customerID),
	)

	err = s.access.WithOrdersAndCustomers(func(orders domain.Repository, customers domcustomer.Repository) error {
		cust, lookupErr := customers.GetByID(ctx, customerID)
		if lookupErr != nil {
			return lookupErr
		}
		var attachErr error
		updated, attachErr = orders.AttachCustomer(ctx, orderID, cust)
		return attachErr
	})
	if err != nil {
		logger.Warn("attach_customer_failed", observability.F("error", err.Error()))
		return nil, err
	}

	logger.Info("customer_attached")
	return updated, nil
}

// UpdateStatus parses the requested status name and validates the transition
// against the current record before persisting.
func (s *Service) UpdateStatus(ctx context.Context, orderID int64, statusName string) (updated *domain.Order, err error) {
	ctx, done := s.observe(ctx, useCaseUpdateStatus)
	defer func() { done(err) }()
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCaseUpdateStatus),
		observability.F("order_id", orderID),
		observability.F("status", statusName),
	)

	status, err := domain.ParseStatus(statusName)
	if err != nil {
		logger.Warn("status_parse_failed")
		return nil, err
	}

	err = s.access.WithOrders(func(orders domain.Repository) error {
		current, getErr := orders.Get(ctx, orderID)
		if getErr != nil {
			return getErr
		}
		if !current.Status.CanTransition(status) {
			return fmt.Errorf("%w: %s -> %s", domain.ErrTransitionNotAllowed, current.Status, status)
		}
		var updateErr error
		updated, updateErr = orders.UpdateStatus(ctx, orderID, status)
		return updateErr
	})
	if err != nil {
		logger.Warn("status_update_failed", observability.F("error", err.Error()))
		return nil, err
	}

	if s.cache != nil {
		if cacheErr := s.cache.SetStatus(ctx, orderID, string(status)); cacheErr != nil {
			logger.Warn("status_cache_set_failed", observability.F("error", cacheErr.Error()))
		}
	}

	logger.Info("status_updated")
	return updated, nil
}

// GetStatus serves status polls. The cache answers first; on a miss the store
// is consulted and the cache backfilled.
func (s *Service) GetStatus(ctx context.Context, orderID int64) (status domain.Status, err error) {
	ctx, done := s.observe(ctx, useCaseGetStatus)
	defer func() { done(err) }()
	logger := logctx.FromOr(ctx, s.log).With(
		observability.F("use_case", useCaseGetStatus),
		observability.F("order_id", orderID),
	)

	if s.cache != nil {
		if cached, cacheErr := s.cache.GetStatus(ctx, orderID); cacheErr == nil {
			if status, err = domain.ParseStatus(cached); err == nil {
				return status, nil
			}
			logger.Warn("status_cache_corrupt", observability.F("value", cached))
			err = nil
		}
	}

	var found *domain.Order
	err = s.access.WithOrders(func(orders domain.Repository) error {
		var getErr error
		found, getErr = orders.Get(ctx, orderID)
		return getErr
	})
	if err != nil {
		return "", err
	}

	if s.cache != nil {
		if cacheErr := s.cache.SetStatus(ctx, orderID, string(found.Status)); cacheErr != nil {
			logger.Warn("status_cache_set_failed", observability.F("error", cacheErr.Error()))
		}
	}
	return found.Status, nil
}

// ListProducts enumerates the catalog for one category, e.g. to present the
// available drinks while composing an order.
func (s *Service) ListProducts(ctx context.Context, categoryName string) (listed []*domproduct.Product, err error) {
	ctx, done := s.observe(ctx, useCaseListProducts)
	defer func() { done(err) }()

	category, err := domproduct.ParseCategory(categoryName)
	if err != nil {
		return nil, err
	}

	err = s.access.WithProducts(func(products domproduct.Repository) error {
		var listErr error
		listed, listErr = products.ListByCategory(ctx, category)
		return listErr
	})
	if err != nil {
		return nil, err
	}
	return listed, nil
}
