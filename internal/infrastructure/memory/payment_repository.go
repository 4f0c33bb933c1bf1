package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/Zhima-Mochi/snackhouse/internal/domain/payment"
)

// PaymentRepository keys payments by order id; a payment never exists
// independent of its order.
type PaymentRepository struct {
	mu       sync.RWMutex
	payments map[int64]*payment.Payment
}

func NewPaymentRepository() *PaymentRepository {
	return &PaymentRepository{payments: make(map[int64]*payment.Payment)}
}

func (r *PaymentRepository) Save(ctx context.Context, p *payment.Payment) error {
	_ = ctx
	if p == nil || p.OrderID == 0 {
		return fmt.Errorf("payment repository: order id is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.payments[p.OrderID] = p.Clone()
	return nil
}

func (r *PaymentRepository) GetByOrderID(ctx context.Context, orderID int64) (*payment.Payment, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.payments[orderID]
	if !ok {
		return nil, payment.ErrNotFound
	}
	return stored.Clone(), nil
}
