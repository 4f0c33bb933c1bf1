package memory

import (
	"context"
	"sync"

	"github.com/Zhima-Mochi/snackhouse/internal/domain/customer"
)

type CustomerRepository struct {
	mu        sync.RWMutex
	customers map[int64]*customer.Customer
}

func NewCustomerRepository(seed ...*customer.Customer) *CustomerRepository {
	r := &CustomerRepository{customers: make(map[int64]*customer.Customer, len(seed))}
	for _, c := range seed {
		if c != nil {
			r.customers[c.ID] = c.Clone()
		}
	}
	return r
}

func (r *CustomerRepository) GetByID(ctx context.Context, id int64) (*customer.Customer, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.customers[id]
	if !ok {
		return nil, customer.ErrNotFound
	}
	return stored.Clone(), nil
}
