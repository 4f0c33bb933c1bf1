package access

import (
	"sync"

	"github.com/Zhima-Mochi/snackhouse/internal/domain/customer"
	"github.com/Zhima-Mochi/snackhouse/internal/domain/order"
	"github.com/Zhima-Mochi/snackhouse/internal/domain/payment"
	"github.com/Zhima-Mochi/snackhouse/internal/domain/product"
)

// Facade serializes access to the shared stores and the payment gateway so a
// multi-step orchestrator operation is not torn by concurrent callers. Each
// collaborator sits behind its own mutex, held only for the duration of one
// operation and released on every exit path. When an operation needs more
// than one collaborator, locks are acquired in a fixed order — orders,
// products, customers, gateway — so two operations can never deadlock.
//
// Operations on the same order are not serialized beyond what these locks
// provide; the last writer wins on the stored record.
type Facade struct {
	ordersMu sync.Mutex
	orders   order.Repository

	productsMu sync.Mutex
	products   product.Repository

	customersMu sync.Mutex
	customers   customer.Repository

	gatewayMu sync.Mutex
	gateway   payment.Processor
}

func New(orders order.Repository, products product.Repository, customers customer.Repository, gateway payment.Processor) *Facade {
	return &Facade{
		orders:    orders,
		products:  products,
		customers: customers,
		gateway:   gateway,
	}
}

func (f *Facade) WithOrders(fn func(order.Repository) error) error {
	f.ordersMu.Lock()
	defer f.ordersMu.Unlock()
	return fn(f.orders)
}

func (f *Facade) WithProducts(fn func(product.Repository) error) error {
	f.productsMu.Lock()
	defer f.productsMu.Unlock()
	return fn(f.products)
}

func (f *Facade) WithCustomers(fn func(customer.Repository) error) error {
	f.customersMu.Lock()
	defer f.customersMu.Unlock()
	return fn(f.customers)
}

func (f *Facade) WithOrdersAndProducts(fn func(order.Repository, product.Repository) error) error {
	f.ordersMu.Lock()
	defer f.ordersMu.Unlock()
	f.productsMu.Lock()
	defer f.productsMu.Unlock()
	return fn(f.orders, f.products)
}

func (f *Facade) WithOrdersAndCustomers(fn func(order.Repository, customer.Repository) error) error {
	f.ordersMu.Lock()
	defer f.ordersMu.Unlock()
	f.customersMu.Lock()
	defer f.customersMu.Unlock()
	return fn(f.orders, f.customers)
}

func (f *Facade) WithOrdersAndGateway(fn func(order.Repository, payment.Processor) error) error {
	f.ordersMu.Lock()
	defer f.ordersMu.Unlock()
	f.gatewayMu.Lock()
	defer f.gatewayMu.Unlock()
	return fn(f.orders, f.gateway)
}
