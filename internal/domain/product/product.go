package product

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound         = errors.New("product: not found")
	ErrUnknownCategory  = errors.New("product: unknown category")
	ErrCategoryMismatch = errors.New("product: category mismatch")
)

// Category partitions the catalog and decides which order slot an item may occupy.
type Category string

const (
	CategorySnack Category = "snack"
	CategorySide  Category = "side"
	CategoryDrink Category = "drink"
)

// ParseCategory maps a category name to its enum value, rejecting anything
// outside the three fixed partitions.
func ParseCategory(name string) (Category, error) {
	switch c := Category(name); c {
	case CategorySnack, CategorySide, CategoryDrink:
		return c, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCategory, name)
}

// Product is a catalog item. Once fetched it is treated as an immutable
// snapshot; an order keeps its own copy, so later catalog changes do not
// alter an already placed order.
type Product struct {
	ID          int64
	Name        string
	Category    Category
	Price       float64
	Description string
	ImageURL    string
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}
