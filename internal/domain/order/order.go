package order

import (
	"errors"
	"time"

	"github.com/Zhima-Mochi/snackhouse/internal/domain/customer"
	"github.com/Zhima-Mochi/snackhouse/internal/domain/product"
)

var (
	ErrNotFound             = errors.New("order: not found")
	ErrUnknownStatus        = errors.New("order: unknown status")
	ErrTransitionNotAllowed = errors.New("order: status transition not allowed")
)

// Order is a customer's purchase: at most one catalog item per category plus
// payment and status metadata. Attached items are value snapshots, not live
// catalog references.
type Order struct {
	ID         int64
	Customer   *customer.Customer
	Snack      *product.Product
	Side       *product.Product
	Drink      *product.Product
	PaymentRef string
	Status     Status
	CreatedAt  string
	UpdatedAt  string
}

// New returns an unpersisted pending order with no selections. The id stays 0
// until the store assigns one.
func New(c *customer.Customer) *Order {
	today := DateStamp()
	return &Order{
		Customer:  c,
		Status:    StatusPending,
		CreatedAt: today,
		UpdatedAt: today,
	}
}

// DateStamp returns the current UTC date; order timestamps are date-granular.
func DateStamp() string {
	return time.Now().UTC().Format(time.DateOnly)
}

// Total sums the prices of the current selections. An order with no
// selections totals zero.
func (o *Order) Total() float64 {
	var total float64
	for _, p := range []*product.Product{o.Snack, o.Side, o.Drink} {
		if p != nil {
			total += p.Price
		}
	}
	return total
}

// AttachItem places the item on the slot matching its category, replacing any
// prior selection there. Attaching the same item twice is a no-op.
func (o *Order) AttachItem(p *product.Product) error {
	switch p.Category {
	case product.CategorySnack:
		o.Snack = p
	case product.CategorySide:
		o.Side = p
	case product.CategoryDrink:
		o.Drink = p
	default:
		return product.ErrUnknownCategory
	}
	o.Touch()
	return nil
}

func (o *Order) Touch() {
	o.UpdatedAt = DateStamp()
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Customer = o.Customer.Clone()
	clone.Snack = o.Snack.Clone()
	clone.Side = o.Side.Clone()
	clone.Drink = o.Drink.Clone()
	return &clone
}
