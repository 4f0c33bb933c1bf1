package customer

import "context"

type Repository interface {
	GetByID(ctx context.Context, id int64) (*Customer, error)
}
