package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/velora/storefront/pkg/storage"
)

const productColumns = `id, name, description, price, featured, seller_id, created_at`

// ProductStore implements storage.ProductStore on PostgreSQL
type ProductStore struct {
	db *sql.DB
}

// NewProductStore creates a PostgreSQL-backed product store
func NewProductStore(db *sql.DB) *ProductStore {
	return &ProductStore{db: db}
}

// List returns products newest first, optionally only featured ones
func (s *ProductStore) List(ctx context.Context, featuredOnly bool) ([]*storage.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products`
	if featuredOnly {
		query += ` WHERE featured = true`
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	products := make([]*storage.Product, 0)
	for rows.Next() {
		p := &storage.Product{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Featured, &p.SellerID, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// Get returns the product with the given id, or nil when absent
func (s *ProductStore) Get(ctx context.Context, id string) (*storage.Product, error) {
	p := &storage.Product{}
	err := s.db.QueryRowContext(ctx, `
		SELECT `+productColumns+`
		FROM products WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Featured, &p.SellerID, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	return p, nil
}

// Create inserts a new product
func (s *ProductStore) Create(ctx context.Context, in storage.NewProduct) (*storage.Product, error) {
	p := &storage.Product{}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (id, name, description, price, featured, seller_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING `+productColumns+`
	`, uuid.NewString(), in.Name, in.Description, in.Price, in.Featured, in.SellerID).
		Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.Featured, &p.SellerID, &p.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}
