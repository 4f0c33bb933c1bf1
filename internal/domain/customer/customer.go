package customer

import "errors"

var ErrNotFound = errors.New("customer: not found")

// Customer is attached to an order by reference-copy; the core never edits
// customer records.
type Customer struct {
	ID    int64
	Name  string
	Email string
}

func (c *Customer) Clone() *Customer {
	if c == nil {
		return nil
	}
	clone := *c
	return &clone
}
