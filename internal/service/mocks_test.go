package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/comandero/comandero/internal/domain"
	"github.com/comandero/comandero/internal/domain/menu"
	"github.com/comandero/comandero/internal/domain/order"
	"github.com/comandero/comandero/internal/domain/sale"
	"github.com/comandero/comandero/internal/domain/tenant"
	"github.com/comandero/comandero/internal/domain/user"
)

// mockStore is an in-memory database.Store for service tests.
type mockStore struct {
	mu            sync.Mutex
	tenants       map[string]*tenant.Tenant
	users         map[string]*user.User
	refreshTokens map[string]*user.RefreshToken
	orders        map[string]*order.Order
	sales         map[string]*sale.Sale
	menuItems     map[string]*menu.Item
}

func newMockStore() *mockStore {
	return &mockStore{
		tenants:       make(map[string]*tenant.Tenant),
		users:         make(map[string]*user.User),
		refreshTokens: make(map[string]*user.RefreshToken),
		orders:        make(map[string]*order.Order),
		sales:         make(map[string]*sale.Sale),
		menuItems:     make(map[string]*menu.Item),
	}
}

func (m *mockStore) ListTenants(_ context.Context) ([]tenant.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []tenant.Tenant
	for _, t := range m.tenants {
		out = append(out, *t)
	}
	return out, nil
}

func (m *mockStore) GetTenant(_ context.Context, id string) (*tenant.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[id]
	if !ok {
		return nil, fmt.Errorf("get tenant %s: %w", id, domain.ErrNotFound)
	}
	cp := *t
	return &cp, nil
}

func (m *mockStore) GetTenantBySlug(_ context.Context, slug string) (*tenant.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range m.tenants {
		if t.Slug == slug {
			cp := *t
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get tenant by slug %s: %w", slug, domain.ErrNotFound)
}

func (m *mockStore) CreateTenant(_ context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t := &tenant.Tenant{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Slug:      req.Slug,
		Enabled:   true,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	m.tenants[t.ID] = t
	cp := *t
	return &cp, nil
}

func (m *mockStore) UpdateTenant(_ context.Context, id string, req tenant.UpdateRequest) (*tenant.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[id]
	if !ok {
		return nil, fmt.Errorf("update tenant %s: %w", id, domain.ErrNotFound)
	}
	if req.Name != "" {
		t.Name = req.Name
	}
	if req.Enabled != nil {
		t.Enabled = *req.Enabled
	}
	cp := *t
	return &cp, nil
}

func (m *mockStore) ListUsers(_ context.Context) ([]user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []user.User
	for _, u := range m.users {
		out = append(out, *u)
	}
	return out, nil
}

func (m *mockStore) GetUser(_ context.Context, id string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return nil, fmt.Errorf("get user %s: %w", id, domain.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (m *mockStore) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("get user by email: %w", domain.ErrNotFound)
}

func (m *mockStore) CreateUser(_ context.Context, u *user.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.users[u.ID] = &cp
	return nil
}

func (m *mockStore) StoreRefreshToken(_ context.Context, rt *user.RefreshToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *rt
	m.refreshTokens[rt.TokenHash] = &cp
	return nil
}

func (m *mockStore) GetRefreshToken(_ context.Context, tokenHash string) (*user.RefreshToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rt, ok := m.refreshTokens[tokenHash]
	if !ok {
		return nil, fmt.Errorf("get refresh token: %w", domain.ErrNotFound)
	}
	cp := *rt
	return &cp, nil
}

func (m *mockStore) RevokeRefreshToken(_ context.Context, tokenHash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.refreshTokens, tokenHash)
	return nil
}

func (m *mockStore) RevokeUserRefreshTokens(_ context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for hash, rt := range m.refreshTokens {
		if rt.UserID == userID {
			delete(m.refreshTokens, hash)
		}
	}
	return nil
}

func (m *mockStore) ListOrders(_ context.Context, status order.Status, _ int) ([]order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []order.Order
	for _, o := range m.orders {
		if status == "" || o.Status == status {
			out = append(out, *o)
		}
	}
	return out, nil
}

func (m *mockStore) GetOrder(_ context.Context, id string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("get order %s: %w", id, domain.ErrNotFound)
	}
	cp := *o
	return &cp, nil
}

func (m *mockStore) CreateOrder(_ context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *o
	m.orders[o.ID] = &cp
	return nil
}

func (m *mockStore) UpdateOrderStatus(_ context.Context, id string, status order.Status, version int) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.orders[id]
	if !ok {
		return nil, fmt.Errorf("update order status %s: %w", id, domain.ErrNotFound)
	}
	if o.Version != version {
		return nil, fmt.Errorf("update order status %s: %w", id, domain.ErrConflict)
	}
	o.Status = status
	o.Version++
	cp := *o
	return &cp, nil
}

func (m *mockStore) ListSales(_ context.Context, _, _ time.Time) ([]sale.Sale, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []sale.Sale
	for _, s := range m.sales {
		out = append(out, *s)
	}
	return out, nil
}

func (m *mockStore) CreateSale(_ context.Context, s *sale.Sale) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sales[s.ID] = &cp
	return nil
}

func (m *mockStore) ListMenuItems(_ context.Context) ([]menu.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []menu.Item
	for _, it := range m.menuItems {
		out = append(out, *it)
	}
	return out, nil
}

func (m *mockStore) GetMenuItem(_ context.Context, id string) (*menu.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.menuItems[id]
	if !ok {
		return nil, fmt.Errorf("get menu item %s: %w", id, domain.ErrNotFound)
	}
	cp := *it
	return &cp, nil
}

func (m *mockStore) CreateMenuItem(_ context.Context, req menu.CreateRequest) (*menu.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it := &menu.Item{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Category:  req.Category,
		Price:     req.Price,
		Available: true,
	}
	m.menuItems[it.ID] = it
	cp := *it
	return &cp, nil
}

func (m *mockStore) UpdateMenuItem(_ context.Context, id string, req menu.UpdateRequest) (*menu.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.menuItems[id]
	if !ok {
		return nil, fmt.Errorf("update menu item %s: %w", id, domain.ErrNotFound)
	}
	if req.Name != "" {
		it.Name = req.Name
	}
	if req.Category != "" {
		it.Category = req.Category
	}
	if req.Price != nil {
		it.Price = *req.Price
	}
	if req.Available != nil {
		it.Available = *req.Available
	}
	cp := *it
	return &cp, nil
}

func (m *mockStore) DeleteMenuItem(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.menuItems[id]; !ok {
		return fmt.Errorf("delete menu item %s: %w", id, domain.ErrNotFound)
	}
	delete(m.menuItems, id)
	return nil
}

func (m *mockStore) Close() {}
