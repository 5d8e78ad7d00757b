package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/comandero/comandero/internal/domain"
	"github.com/comandero/comandero/internal/domain/tenant"
)

const tenantColumns = `id, name, slug, enabled, settings, created_at, updated_at`

func scanTenant(row pgx.Row) (*tenant.Tenant, error) {
	var t tenant.Tenant
	var settingsJSON []byte
	err := row.Scan(&t.ID, &t.Name, &t.Slug, &t.Enabled, &settingsJSON, &t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if settingsJSON != nil {
		_ = json.Unmarshal(settingsJSON, &t.Settings)
	}
	return &t, nil
}

func (s *Store) CreateTenant(ctx context.Context, req tenant.CreateRequest) (*tenant.Tenant, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO tenants (name, slug) VALUES ($1, $2)
		 RETURNING `+tenantColumns,
		req.Name, req.Slug)
	t, err := scanTenant(row)
	if err != nil {
		return nil, fmt.Errorf("create tenant: %w", err)
	}
	return t, nil
}

func (s *Store) GetTenant(ctx context.Context, id string) (*tenant.Tenant, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE id = $1`, id)
	t, err := scanTenant(row)
	if err != nil {
		return nil, notFoundWrap(err, "get tenant %s", id)
	}
	return t, nil
}

func (s *Store) GetTenantBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+tenantColumns+` FROM tenants WHERE slug = $1`, slug)
	t, err := scanTenant(row)
	if err != nil {
		return nil, notFoundWrap(err, "get tenant by slug %s", slug)
	}
	return t, nil
}

func (s *Store) ListTenants(ctx context.Context) ([]tenant.Tenant, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+tenantColumns+` FROM tenants ORDER BY created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}
	defer rows.Close()

	var tenants []tenant.Tenant
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, fmt.Errorf("scan tenant: %w", err)
		}
		tenants = append(tenants, *t)
	}
	return tenants, rows.Err()
}

func (s *Store) UpdateTenant(ctx context.Context, id string, req tenant.UpdateRequest) (*tenant.Tenant, error) {
	row := s.pool.QueryRow(ctx,
		`UPDATE tenants SET
			name = COALESCE(NULLIF($2, ''), name),
			enabled = COALESCE($3, enabled),
			updated_at = now()
		 WHERE id = $1
		 RETURNING `+tenantColumns,
		id, req.Name, req.Enabled)
	t, err := scanTenant(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("update tenant %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update tenant %s: %w", id, err)
	}
	return t, nil
}
