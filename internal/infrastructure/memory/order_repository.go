package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/Zhima-Mochi/snackhouse/internal/domain/customer"
	"github.com/Zhima-Mochi/snackhouse/internal/domain/order"
	"github.com/Zhima-Mochi/snackhouse/internal/domain/product"
)

// OrderRepository is the in-memory order store. Ids are assigned sequentially
// from 1; records are cloned on the way in and out so callers never share
// state with the store.
type OrderRepository struct {
	mu     sync.RWMutex
	seq    int64
	orders map[int64]*order.Order
}

func NewOrderRepository() *OrderRepository {
	return &OrderRepository{orders: make(map[int64]*order.Order)}
}

func (r *OrderRepository) Create(ctx context.Context, o *order.Order) (*order.Order, error) {
	_ = ctx
	if o == nil {
		return nil, fmt.Errorf("order repository: order is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.seq++
	stored := o.Clone()
	stored.ID = r.seq
	r.orders[stored.ID] = stored
	return stored.Clone(), nil
}

func (r *OrderRepository) Get(ctx context.Context, id int64) (*order.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	return stored.Clone(), nil
}

func (r *OrderRepository) List(ctx context.Context) ([]*order.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*order.Order, 0, len(r.orders))
	for _, stored := range r.orders {
		out = append(out, stored.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *OrderRepository) ListByStatus(ctx context.Context, status order.Status) ([]*order.Order, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*order.Order, 0)
	for _, stored := range r.orders {
		if stored.Status == status {
			out = append(out, stored.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *OrderRepository) UpdateStatus(ctx context.Context, id int64, status order.Status) (*order.Order, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	stored.Status = status
	stored.Touch()
	return stored.Clone(), nil
}

func (r *OrderRepository) AttachItem(ctx context.Context, id int64, item *product.Product) (*order.Order, error) {
	_ = ctx
	if item == nil {
		return nil, fmt.Errorf("order repository: item is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	if err := stored.AttachItem(item.Clone()); err != nil {
		return nil, err
	}
	return stored.Clone(), nil
}

func (r *OrderRepository) AttachCustomer(ctx context.Context, id int64, c *customer.Customer) (*order.Order, error) {
	_ = ctx
	if c == nil {
		return nil, fmt.Errorf("order repository: customer is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	stored.Customer = c.Clone()
	stored.Touch()
	return stored.Clone(), nil
}

func (r *OrderRepository) UpdatePaymentRef(ctx context.Context, id int64, ref string) (*order.Order, error) {
	_ = ctx

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.orders[id]
	if !ok {
		return nil, order.ErrNotFound
	}
	stored.PaymentRef = ref
	stored.Touch()
	return stored.Clone(), nil
}
