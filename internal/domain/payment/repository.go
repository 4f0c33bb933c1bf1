package payment

import "context"

type Repository interface {
	Save(ctx context.Context, p *Payment) error
	GetByOrderID(ctx context.Context, orderID int64) (*Payment, error)
}
