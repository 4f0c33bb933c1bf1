package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/Zhima-Mochi/snackhouse/internal/domain/product"
)

// ProductRepository is a seedable in-memory catalog.
type ProductRepository struct {
	mu       sync.RWMutex
	products map[int64]*product.Product
}

func NewProductRepository(seed ...*product.Product) *ProductRepository {
	r := &ProductRepository{products: make(map[int64]*product.Product, len(seed))}
	for _, p := range seed {
		if p != nil {
			r.products[p.ID] = p.Clone()
		}
	}
	return r
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (*product.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	stored, ok := r.products[id]
	if !ok {
		return nil, product.ErrNotFound
	}
	return stored.Clone(), nil
}

func (r *ProductRepository) ListByCategory(ctx context.Context, category product.Category) ([]*product.Product, error) {
	_ = ctx

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*product.Product, 0)
	for _, stored := range r.products {
		if stored.Category == category {
			out = append(out, stored.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}
