// Package database defines the database store port (interface).
package database

import (
	"context"
	"time"

	"github.com/comandero/comandero/internal/domain/menu"
	"github.com/comandero/comandero/internal/domain/order"
	"github.com/comandero/comandero/internal/domain/sale"
	"github.com/comandero/comandero/internal/domain/tenant"
	"github.com/comandero/comandero/internal/domain/user"
)

// Store is the port interface for database operations.
// Tenant-scoped methods resolve the tenant from the request context.
type Store interface {
	// Tenants
	ListTenants(ctx context.Context) ([]tenant.Tenant, error)
	GetTenant(ctx context.Context, id string) (*tenant.Tenant, error)
	GetTenantBySlug(ctx context.Context, slug string) (*tenant.Tenant, error)
	CreateTenant(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error)
	UpdateTenant(ctx context.Context, id string, req tenant.UpdateRequest) (*tenant.Tenant, error)

	// Users
	ListUsers(ctx context.Context) ([]user.User, error)
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	CreateUser(ctx context.Context, u *user.User) error

	// Refresh tokens
	StoreRefreshToken(ctx context.Context, t *user.RefreshToken) error
	GetRefreshToken(ctx context.Context, tokenHash string) (*user.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenHash string) error
	RevokeUserRefreshTokens(ctx context.Context, userID string) error

	// Orders
	ListOrders(ctx context.Context, status order.Status, limit int) ([]order.Order, error)
	GetOrder(ctx context.Context, id string) (*order.Order, error)
	CreateOrder(ctx context.Context, o *order.Order) error
	UpdateOrderStatus(ctx context.Context, id string, status order.Status, version int) (*order.Order, error)

	// Sales
	ListSales(ctx context.Context, from, to time.Time) ([]sale.Sale, error)
	CreateSale(ctx context.Context, s *sale.Sale) error

	// Menu
	ListMenuItems(ctx context.Context) ([]menu.Item, error)
	GetMenuItem(ctx context.Context, id string) (*menu.Item, error)
	CreateMenuItem(ctx context.Context, req menu.CreateRequest) (*menu.Item, error)
	UpdateMenuItem(ctx context.Context, id string, req menu.UpdateRequest) (*menu.Item, error)
	DeleteMenuItem(ctx context.Context, id string) error

	// Close releases the underlying connection pool.
	Close()
}
