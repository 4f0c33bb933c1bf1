package order

import (
	"context"

	"github.com/Zhima-Mochi/snackhouse/internal/domain/customer"
	"github.com/Zhima-Mochi/snackhouse/internal/domain/product"
)

// Repository is the order store contract. Create assigns the id and returns
// the persisted record; every mutation returns the record as stored.
type Repository interface {
	Create(ctx context.Context, o *Order) (*Order, error)
	Get(ctx context.Context, id int64) (*Order, error)
	List(ctx context.Context) ([]*Order, error)
	ListByStatus(ctx context.Context, status Status) ([]*Order, error)
	UpdateStatus(ctx context.Context, id int64, status Status) (*Order, error)
	AttachItem(ctx context.Context, id int64, item *product.Product) (*Order, error)
	AttachCustomer(ctx context.Context, id int64, c *customer.Customer) (*Order, error)
	UpdatePaymentRef(ctx context.Context, id int64, ref string) (*Order, error)
}
