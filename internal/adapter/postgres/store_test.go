package postgres_test

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/comandero/comandero/internal/adapter/postgres"
	"github.com/comandero/comandero/internal/domain"
	"github.com/comandero/comandero/internal/domain/menu"
	"github.com/comandero/comandero/internal/domain/order"
	"github.com/comandero/comandero/internal/domain/sale"
	"github.com/comandero/comandero/internal/domain/tenant"
	"github.com/comandero/comandero/internal/middleware"
)

// ctxWithTenant builds a context scoped to the given tenant, the way the
// TenantID middleware would for an HTTP request.
func ctxWithTenant(t *testing.T, tenantID string) context.Context {
	t.Helper()
	return middleware.WithTenantID(context.Background(), tenantID)
}

// setupStore creates a pgxpool connection, runs all migrations, and returns a
// ready-to-use Store. The pool is closed via t.Cleanup.
func setupStore(t *testing.T) *postgres.Store {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("requires DATABASE_URL")
	}

	ctx := context.Background()

	if err := postgres.RunMigrations(ctx, dsn); err != nil {
		t.Fatalf("run migrations: %v", err)
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	t.Cleanup(pool.Close)

	return postgres.NewStore(pool)
}

// createTestTenant creates a tenant with a random slug and returns its ID.
func createTestTenant(t *testing.T, s *postgres.Store) string {
	t.Helper()
	tn, err := s.CreateTenant(context.Background(), tenant.CreateRequest{
		Name: "Test Restaurant",
		Slug: "test-" + uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	return tn.ID
}

func TestTenantCRUD(t *testing.T) {
	s := setupStore(t)
	ctx := context.Background()

	tn, err := s.CreateTenant(ctx, tenant.CreateRequest{
		Name: "La Esquina",
		Slug: "la-esquina-" + uuid.NewString(),
	})
	if err != nil {
		t.Fatalf("CreateTenant: %v", err)
	}
	if !tn.Enabled {
		t.Error("new tenant should be enabled")
	}

	got, err := s.GetTenant(ctx, tn.ID)
	if err != nil {
		t.Fatalf("GetTenant: %v", err)
	}
	if got.Name != "La Esquina" {
		t.Errorf("name = %q", got.Name)
	}

	bySlug, err := s.GetTenantBySlug(ctx, tn.Slug)
	if err != nil {
		t.Fatalf("GetTenantBySlug: %v", err)
	}
	if bySlug.ID != tn.ID {
		t.Errorf("slug lookup returned %s, want %s", bySlug.ID, tn.ID)
	}

	disabled := false
	updated, err := s.UpdateTenant(ctx, tn.ID, tenant.UpdateRequest{Enabled: &disabled})
	if err != nil {
		t.Fatalf("UpdateTenant: %v", err)
	}
	if updated.Enabled {
		t.Error("tenant should be disabled after update")
	}

	if _, err := s.GetTenant(ctx, uuid.NewString()); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestOrderLifecycle(t *testing.T) {
	s := setupStore(t)
	tenantID := createTestTenant(t, s)
	ctx := ctxWithTenant(t, tenantID)

	o := &order.Order{
		ID:       uuid.NewString(),
		TenantID: tenantID,
		Items: []order.Item{
			{MenuItemID: uuid.NewString(), Name: "Tacos", Quantity: 2, UnitPrice: 4.50},
		},
		Status: order.StatusPending,
		Total:  9.00,
	}
	if err := s.CreateOrder(ctx, o); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	got, err := s.GetOrder(ctx, o.ID)
	if err != nil {
		t.Fatalf("GetOrder: %v", err)
	}
	if len(got.Items) != 1 || got.Items[0].Name != "Tacos" {
		t.Errorf("items round-trip failed: %+v", got.Items)
	}

	updated, err := s.UpdateOrderStatus(ctx, o.ID, order.StatusPreparing, got.Version)
	if err != nil {
		t.Fatalf("UpdateOrderStatus: %v", err)
	}
	if updated.Status != order.StatusPreparing {
		t.Errorf("status = %s", updated.Status)
	}
	if updated.Version != got.Version+1 {
		t.Errorf("version = %d, want %d", updated.Version, got.Version+1)
	}

	// Stale version loses the race.
	if _, err := s.UpdateOrderStatus(ctx, o.ID, order.StatusReady, got.Version); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("expected ErrConflict for stale version, got %v", err)
	}

	list, err := s.ListOrders(ctx, order.StatusPreparing, 10)
	if err != nil {
		t.Fatalf("ListOrders: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 preparing order, got %d", len(list))
	}
}

func TestOrderTenantIsolation(t *testing.T) {
	s := setupStore(t)
	tenantA := createTestTenant(t, s)
	tenantB := createTestTenant(t, s)

	ctxA := ctxWithTenant(t, tenantA)
	ctxB := ctxWithTenant(t, tenantB)

	o := &order.Order{
		ID:       uuid.NewString(),
		TenantID: tenantA,
		Items:    []order.Item{{MenuItemID: uuid.NewString(), Name: "Flan", Quantity: 1, UnitPrice: 3}},
		Status:   order.StatusPending,
		Total:    3,
	}
	if err := s.CreateOrder(ctxA, o); err != nil {
		t.Fatalf("CreateOrder: %v", err)
	}

	// The other tenant cannot see or modify the order.
	if _, err := s.GetOrder(ctxB, o.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("cross-tenant GetOrder should be ErrNotFound, got %v", err)
	}
	if _, err := s.UpdateOrderStatus(ctxB, o.ID, order.StatusPreparing, 0); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("cross-tenant UpdateOrderStatus should be ErrNotFound, got %v", err)
	}
}

func TestSaleCreateAndList(t *testing.T) {
	s := setupStore(t)
	tenantID := createTestTenant(t, s)
	ctx := ctxWithTenant(t, tenantID)

	sl := &sale.Sale{
		ID:            uuid.NewString(),
		TenantID:      tenantID,
		Total:         25.50,
		PaymentMethod: sale.PaymentCard,
	}
	if err := s.CreateSale(ctx, sl); err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	list, err := s.ListSales(ctx, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	if err != nil {
		t.Fatalf("ListSales: %v", err)
	}
	if len(list) != 1 {
		t.Fatalf("expected 1 sale, got %d", len(list))
	}
	if list[0].PaymentMethod != sale.PaymentCard {
		t.Errorf("payment method = %s", list[0].PaymentMethod)
	}
}

func TestMenuCRUD(t *testing.T) {
	s := setupStore(t)
	tenantID := createTestTenant(t, s)
	ctx := ctxWithTenant(t, tenantID)

	m, err := s.CreateMenuItem(ctx, menu.CreateRequest{
		Name:     "Quesadilla",
		Category: "mains",
		Price:    6.75,
	})
	if err != nil {
		t.Fatalf("CreateMenuItem: %v", err)
	}
	if !m.Available {
		t.Error("new menu item should be available")
	}

	unavailable := false
	updated, err := s.UpdateMenuItem(ctx, m.ID, menu.UpdateRequest{Available: &unavailable})
	if err != nil {
		t.Fatalf("UpdateMenuItem: %v", err)
	}
	if updated.Available {
		t.Error("menu item should be unavailable after update")
	}

	items, err := s.ListMenuItems(ctx)
	if err != nil {
		t.Fatalf("ListMenuItems: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 menu item, got %d", len(items))
	}

	if err := s.DeleteMenuItem(ctx, m.ID); err != nil {
		t.Fatalf("DeleteMenuItem: %v", err)
	}
	if err := s.DeleteMenuItem(ctx, m.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("double delete should be ErrNotFound, got %v", err)
	}
}
