package service

import (
	"context"
	"fmt"

	"github.com/comandero/comandero/internal/domain"
	"github.com/comandero/comandero/internal/domain/tenant"
	"github.com/comandero/comandero/internal/port/database"
)

// TenantService manages restaurant tenants.
type TenantService struct {
	store database.Store
}

// NewTenantService creates a new TenantService.
func NewTenantService(store database.Store) *TenantService {
	return &TenantService{store: store}
}

// List returns all tenants.
func (s *TenantService) List(ctx context.Context) ([]tenant.Tenant, error) {
	return s.store.ListTenants(ctx)
}

// Get returns a tenant by ID.
func (s *TenantService) Get(ctx context.Context, id string) (*tenant.Tenant, error) {
	return s.store.GetTenant(ctx, id)
}

// Create registers a new tenant.
func (s *TenantService) Create(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	return s.store.CreateTenant(ctx, req)
}

// Update changes a tenant's name or enabled flag.
func (s *TenantService) Update(ctx context.Context, id string, req tenant.UpdateRequest) (*tenant.Tenant, error) {
	return s.store.UpdateTenant(ctx, id, req)
}
