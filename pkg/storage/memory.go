package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/velora/storefront/pkg/auth"
)

// MemoryUserStore is an in-memory auth.UserStore for tests and single-process
// development. All operations honor context cancellation before touching
// state so timed-out lookups fail closed like the real store.
type MemoryUserStore struct {
	mu      sync.RWMutex
	users   map[string]*auth.User
	byEmail map[string]string
}

// NewMemoryUserStore creates an empty in-memory user store
func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{
		users:   make(map[string]*auth.User),
		byEmail: make(map[string]string),
	}
}

// FindByEmail returns the user with the given email, or nil when absent
func (s *MemoryUserStore) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byEmail[email]
	if !ok {
		return nil, nil
	}
	return copyUser(s.users[id]), nil
}

// FindByID returns the user with the given id, or nil when absent
func (s *MemoryUserStore) FindByID(ctx context.Context, id string) (*auth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return copyUser(user), nil
}

// Create inserts a new active user, enforcing email uniqueness
func (s *MemoryUserStore) Create(ctx context.Context, in auth.NewUser) (*auth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byEmail[in.Email]; exists {
		return nil, auth.ErrDuplicateEmail
	}

	user := &auth.User{
		ID:           uuid.NewString(),
		Email:        in.Email,
		PasswordHash: in.PasswordHash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Status:       auth.StatusActive,
		Role:         in.Role,
		CreatedAt:    time.Now(),
	}
	s.users[user.ID] = user
	s.byEmail[user.Email] = user.ID
	return copyUser(user), nil
}

// UpdateStatus sets the account status, returning nil when the id is unknown
func (s *MemoryUserStore) UpdateStatus(ctx context.Context, id string, status auth.Status) (*auth.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	user.Status = status
	return copyUser(user), nil
}

// UpdateLastLogin records a successful login timestamp
func (s *MemoryUserStore) UpdateLastLogin(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.users[id]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return nil
}

func copyUser(u *auth.User) *auth.User {
	c := *u
	if u.LastLoginAt != nil {
		t := *u.LastLoginAt
		c.LastLoginAt = &t
	}
	return &c
}

// MemoryProductStore is an in-memory ProductStore counterpart
type MemoryProductStore struct {
	mu       sync.RWMutex
	products map[string]*Product
}

// NewMemoryProductStore creates an empty in-memory product store
func NewMemoryProductStore() *MemoryProductStore {
	return &MemoryProductStore{products: make(map[string]*Product)}
}

// List returns products sorted newest first, optionally only featured ones
func (s *MemoryProductStore) List(ctx context.Context, featuredOnly bool) ([]*Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Product, 0, len(s.products))
	for _, p := range s.products {
		if featuredOnly && !p.Featured {
			continue
		}
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

// Get returns the product with the given id, or nil when absent
func (s *MemoryProductStore) Get(ctx context.Context, id string) (*Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	if !ok {
		return nil, nil
	}
	c := *p
	return &c, nil
}

// Create inserts a new product
func (s *MemoryProductStore) Create(ctx context.Context, in NewProduct) (*Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	p := &Product{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Featured:    in.Featured,
		SellerID:    in.SellerID,
		CreatedAt:   time.Now(),
	}
	s.products[p.ID] = p
	c := *p
	return &c, nil
}
