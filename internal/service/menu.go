package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/comandero/comandero/internal/domain"
	"github.com/comandero/comandero/internal/domain/menu"
	"github.com/comandero/comandero/internal/port/cache"
	"github.com/comandero/comandero/internal/port/database"
)

// MenuService manages the menu catalog with a read-through cache. The menu
// is read on every order placement, so list reads are served from cache and
// invalidated on any write.
type MenuService struct {
	store database.Store
	cache cache.Cache
	ttl   time.Duration
}

// NewMenuService creates a new MenuService. cache may be nil to bypass
// caching entirely.
func NewMenuService(store database.Store, c cache.Cache, ttl time.Duration) *MenuService {
	return &MenuService{store: store, cache: c, ttl: ttl}
}

func menuCacheKey(tenantID string) string {
	return "menu:" + tenantID
}

// List returns the tenant's menu, from cache when fresh.
func (s *MenuService) List(ctx context.Context, tenantID string) ([]menu.Item, error) {
	key := menuCacheKey(tenantID)

	if s.cache != nil {
		if data, ok, err := s.cache.Get(ctx, key); err == nil && ok {
			var items []menu.Item
			if err := json.Unmarshal(data, &items); err == nil {
				return items, nil
			}
			// Corrupt entry: fall through to the store and rewrite it.
		}
	}

	items, err := s.store.ListMenuItems(ctx)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if data, err := json.Marshal(items); err == nil {
			if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
				slog.Debug("menu cache set failed", "tenant_id", tenantID, "error", err)
			}
		}
	}
	return items, nil
}

// Get returns a single menu item.
func (s *MenuService) Get(ctx context.Context, id string) (*menu.Item, error) {
	return s.store.GetMenuItem(ctx, id)
}

// Create adds a menu item and invalidates the tenant's cached menu.
func (s *MenuService) Create(ctx context.Context, tenantID string, req menu.CreateRequest) (*menu.Item, error) {
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrValidation, err)
	}
	item, err := s.store.CreateMenuItem(ctx, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID)
	return item, nil
}

// Update modifies a menu item and invalidates the tenant's cached menu.
func (s *MenuService) Update(ctx context.Context, tenantID, id string, req menu.UpdateRequest) (*menu.Item, error) {
	item, err := s.store.UpdateMenuItem(ctx, id, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, tenantID)
	return item, nil
}

// Delete removes a menu item and invalidates the tenant's cached menu.
func (s *MenuService) Delete(ctx context.Context, tenantID, id string) error {
	if err := s.store.DeleteMenuItem(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, tenantID)
	return nil
}

func (s *MenuService) invalidate(ctx context.Context, tenantID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, menuCacheKey(tenantID)); err != nil {
		slog.Debug("menu cache invalidation failed", "tenant_id", tenantID, "error", err)
	}
}
