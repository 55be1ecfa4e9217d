package storage

import (
	"context"
	"time"
)

// Product is the catalog row shape exposed by the product store. Catalog
// business logic lives outside this service; products exist here only as the
// resource protected by the role-gated routes.
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Price       float64   `json:"price"`
	Featured    bool      `json:"featured"`
	SellerID    string    `json:"sellerId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// NewProduct carries the fields accepted at product creation
type NewProduct struct {
	Name        string
	Description string
	Price       float64
	Featured    bool
	SellerID    string
}

// ProductStore is the narrow catalog contract consumed by the HTTP surface.
// A nil product with a nil error means "no such product".
type ProductStore interface {
	List(ctx context.Context, featuredOnly bool) ([]*Product, error)
	Get(ctx context.Context, id string) (*Product, error)
	Create(ctx context.Context, product NewProduct) (*Product, error)
}
