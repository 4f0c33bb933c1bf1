package payment_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Zhima-Mochi/snackhouse/internal/application/access"
	apporder "github.com/Zhima-Mochi/snackhouse/internal/application/order"
	apppayment "github.com/Zhima-Mochi/snackhouse/internal/application/payment"
	"github.com/Zhima-Mochi/snackhouse/internal/domain/order"
	"github.com/Zhima-Mochi/snackhouse/internal/domain/payment"
	"github.com/Zhima-Mochi/snackhouse/internal/domain/product"
	"github.com/Zhima-Mochi/snackhouse/internal/infrastructure/memory"
	infraoutbox "github.com/Zhima-Mochi/snackhouse/internal/infrastructure/outbox"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedProcessor returns a fixed outcome for every charge.
type scriptedProcessor struct {
	outcome payment.Outcome
	charges int
}

func (p *scriptedProcessor) Charge(_ context.Context, _ int64, _ float64) (payment.Outcome, error) {
	p.charges++
	return p.outcome, nil
}

// fakeAdapter registers with a canned reference and ingests like the real one.
type fakeAdapter struct {
	reference   string
	registerErr error
}

func (a *fakeAdapter) Register(_ context.Context, p *payment.Payment) (*payment.Payment, error) {
	if a.registerErr != nil {
		return nil, a.registerErr
	}
	p.Reference = a.reference
	return p, nil
}

func (a *fakeAdapter) Ingest(payload map[string]any, p *payment.Payment) *payment.Payment {
	if action, ok := payload["action"].(string); ok && action == "payment.approved" {
		p.State = payment.StateApproved
	}
	if id, ok := payload["id"].(string); ok {
		p.Reference = id
	}
	return p
}

// recordingCache stands in for the Redis status cache.
type recordingCache struct {
	mu   sync.Mutex
	vals map[int64]string
}

func newRecordingCache() *recordingCache {
	return &recordingCache{vals: make(map[int64]string)}
}

func (c *recordingCache) SetStatus(_ context.Context, orderID int64, status string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vals[orderID] = status
	return nil
}

func (c *recordingCache) GetStatus(_ context.Context, orderID int64) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vals[orderID], nil
}

func (c *recordingCache) get(orderID int64) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vals[orderID]
}

type fixture struct {
	payments  *apppayment.Service
	orders    *memory.OrderRepository
	records   *memory.PaymentRepository
	processor *scriptedProcessor
	adapter   *fakeAdapter
	bus       *infraoutbox.Bus
	facade    *access.Facade
}

func newFixture(t *testing.T, outcome payment.Outcome) *fixture {
	t.Helper()

	orders := memory.NewOrderRepository()
	products := memory.NewProductRepository(
		&product.Product{ID: 1, Category: product.CategorySnack, Price: 18.90},
		&product.Product{ID: 2, Category: product.CategoryDrink, Price: 6.00},
	)
	customers := memory.NewCustomerRepository()
	records := memory.NewPaymentRepository()
	processor := &scriptedProcessor{outcome: outcome}
	adapter := &fakeAdapter{reference: "pay-abc"}

	facade := access.New(orders, products, customers, processor)

	bus := infraoutbox.NewBus(nil)
	bus.Start(context.Background())
	t.Cleanup(func() { bus.Stop(context.Background()) })

	return &fixture{
		payments:  apppayment.NewService(facade, records, adapter, bus, nil),
		orders:    orders,
		records:   records,
		processor: processor,
		adapter:   adapter,
		bus:       bus,
		facade:    facade,
	}
}

func (f *fixture) createOrderWithItems(t *testing.T) *order.Order {
	t.Helper()
	ctx := context.Background()

	created, err := f.orders.Create(ctx, order.New(nil))
	require.NoError(t, err)
	_, err = f.orders.AttachItem(ctx, created.ID, &product.Product{ID: 1, Category: product.CategorySnack, Price: 18.90})
	require.NoError(t, err)
	withDrink, err := f.orders.AttachItem(ctx, created.ID, &product.Product{ID: 2, Category: product.CategoryDrink, Price: 6.00})
	require.NoError(t, err)
	return withDrink
}

func TestRealizePaymentApproved(t *testing.T) {
	f := newFixture(t, payment.OutcomeApproved)
	ctx := context.Background()
	created := f.createOrderWithItems(t)

	snapshot, err := f.payments.RealizePayment(ctx, created.ID)
	require.NoError(t, err)

	// the caller gets the order as it was before the confirmation landed
	assert.Equal(t, order.StatusPending, snapshot.Status)
	assert.InDelta(t, 24.90, snapshot.Total(), 1e-9)

	stored, err := f.orders.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusReceived, stored.Status)

	record, err := f.records.GetByOrderID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StateApproved, record.State)
	assert.InDelta(t, 24.90, record.Amount, 1e-9)
}

func TestRealizePaymentDeclined(t *testing.T) {
	f := newFixture(t, payment.OutcomeDeclined)
	ctx := context.Background()
	created := f.createOrderWithItems(t)

	_, err := f.payments.RealizePayment(ctx, created.ID)
	assert.ErrorIs(t, err, payment.ErrRejected)

	stored, err := f.orders.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, stored.Status)

	record, err := f.records.GetByOrderID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StateFailed, record.State)
}

func TestRealizePaymentDeferred(t *testing.T) {
	f := newFixture(t, payment.OutcomeDeferred)
	ctx := context.Background()
	created := f.createOrderWithItems(t)

	_, err := f.payments.RealizePayment(ctx, created.ID)
	require.NoError(t, err)

	stored, err := f.orders.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, stored.Status)

	record, err := f.records.GetByOrderID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatePending, record.State)
}

func TestRealizePaymentUnknownOrder(t *testing.T) {
	f := newFixture(t, payment.OutcomeApproved)

	_, err := f.payments.RealizePayment(context.Background(), 99)
	assert.ErrorIs(t, err, order.ErrNotFound)
	assert.Zero(t, f.processor.charges)
}

func TestInitiatePaymentRegistersWebhook(t *testing.T) {
	f := newFixture(t, payment.OutcomeApproved)
	ctx := context.Background()
	created := f.createOrderWithItems(t)

	pending, err := f.payments.InitiatePayment(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StatePending, pending.State)
	assert.Equal(t, "pay-abc", pending.Reference)
	assert.InDelta(t, 24.90, pending.Amount, 1e-9)

	stored, err := f.orders.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "pay-abc", stored.PaymentRef)
	assert.Equal(t, order.StatusPending, stored.Status)
}

func TestInitiatePaymentAdapterFailure(t *testing.T) {
	f := newFixture(t, payment.OutcomeApproved)
	f.adapter.registerErr = payment.ErrAdapter
	created := f.createOrderWithItems(t)

	_, err := f.payments.InitiatePayment(context.Background(), created.ID)
	assert.ErrorIs(t, err, payment.ErrAdapter)

	_, err = f.records.GetByOrderID(context.Background(), created.ID)
	assert.ErrorIs(t, err, payment.ErrNotFound)
}

func TestHandleNotificationApprovesAndConfirmsOrder(t *testing.T) {
	f := newFixture(t, payment.OutcomeApproved)
	ctx := context.Background()
	created := f.createOrderWithItems(t)

	_, err := f.payments.InitiatePayment(ctx, created.ID)
	require.NoError(t, err)

	cache := newRecordingCache()
	worker := apporder.NewWorker(f.facade, f.bus, cache, nil)
	worker.Start()

	record := f.payments.HandleNotification(ctx, created.ID, map[string]any{
		"action": "payment.approved",
		"id":     "pay-final",
	})
	assert.Equal(t, payment.StateApproved, record.State)
	assert.Equal(t, "pay-final", record.Reference)

	require.Eventually(t, func() bool {
		stored, getErr := f.orders.Get(ctx, created.ID)
		return getErr == nil && stored.Status == order.StatusReceived
	}, 2*time.Second, 10*time.Millisecond)

	stored, err := f.orders.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "pay-final", stored.PaymentRef)

	// the status cache follows the confirmation so polls don't serve stale state
	require.Eventually(t, func() bool {
		return cache.get(created.ID) == "received"
	}, 2*time.Second, 10*time.Millisecond)
}

func TestHandleNotificationIgnoresUnknownPayload(t *testing.T) {
	f := newFixture(t, payment.OutcomeApproved)
	ctx := context.Background()
	created := f.createOrderWithItems(t)

	_, err := f.payments.InitiatePayment(ctx, created.ID)
	require.NoError(t, err)

	record := f.payments.HandleNotification(ctx, created.ID, map[string]any{})
	assert.Equal(t, payment.StatePending, record.State)
	assert.Equal(t, "pay-abc", record.Reference)

	stored, err := f.orders.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPending, stored.Status)
}

func TestHandleNotificationWithoutPriorRecord(t *testing.T) {
	f := newFixture(t, payment.OutcomeApproved)
	ctx := context.Background()
	created := f.createOrderWithItems(t)

	record := f.payments.HandleNotification(ctx, created.ID, map[string]any{
		"action": "payment.approved",
		"id":     "pay-surprise",
	})
	assert.Equal(t, payment.StateApproved, record.State)
	assert.Equal(t, "pay-surprise", record.Reference)

	stored, err := f.records.GetByOrderID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, payment.StateApproved, stored.State)
}

func TestWorkerSkipsNonPendingOrders(t *testing.T) {
	f := newFixture(t, payment.OutcomeApproved)
	ctx := context.Background()
	created := f.createOrderWithItems(t)

	// already past pending: a replayed confirmation must not regress it
	_, err := f.orders.UpdateStatus(ctx, created.ID, order.StatusReceived)
	require.NoError(t, err)
	_, err = f.orders.UpdateStatus(ctx, created.ID, order.StatusInPreparation)
	require.NoError(t, err)

	worker := apporder.NewWorker(f.facade, f.bus, nil, nil)
	worker.Start()

	f.payments.HandleNotification(ctx, created.ID, map[string]any{
		"action": "payment.approved",
		"id":     "pay-replay",
	})

	// give the bus time to fan out, then confirm nothing moved
	assert.Never(t, func() bool {
		stored, getErr := f.orders.Get(ctx, created.ID)
		return getErr != nil || stored.Status != order.StatusInPreparation
	}, 300*time.Millisecond, 25*time.Millisecond)
}
