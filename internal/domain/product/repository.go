package product

import "context"

// Repository is the catalog lookup contract. The core only reads from it.
type Repository interface {
	GetByID(ctx context.Context, id int64) (*Product, error)
	ListByCategory(ctx context.Context, category Category) ([]*Product, error)
}
