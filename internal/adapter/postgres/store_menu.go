package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/comandero/comandero/internal/domain"
	"github.com/comandero/comandero/internal/domain/menu"
)

const menuColumns = `id, tenant_id, name, category, price, available, created_at, updated_at`

func scanMenuItem(row pgx.Row) (*menu.Item, error) {
	var m menu.Item
	err := row.Scan(&m.ID, &m.TenantID, &m.Name, &m.Category, &m.Price, &m.Available, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *Store) CreateMenuItem(ctx context.Context, req menu.CreateRequest) (*menu.Item, error) {
	row := s.pool.QueryRow(ctx, `
		INSERT INTO menu_items (tenant_id, name, category, price)
		VALUES ($1, $2, $3, $4)
		RETURNING `+menuColumns,
		tenantFromCtx(ctx), req.Name, req.Category, req.Price)
	m, err := scanMenuItem(row)
	if err != nil {
		return nil, fmt.Errorf("create menu item: %w", err)
	}
	return m, nil
}

func (s *Store) GetMenuItem(ctx context.Context, id string) (*menu.Item, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+menuColumns+` FROM menu_items WHERE id = $1 AND tenant_id = $2`,
		id, tenantFromCtx(ctx))
	m, err := scanMenuItem(row)
	if err != nil {
		return nil, notFoundWrap(err, "get menu item %s", id)
	}
	return m, nil
}

func (s *Store) ListMenuItems(ctx context.Context) ([]menu.Item, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+menuColumns+` FROM menu_items WHERE tenant_id = $1 ORDER BY category, name`,
		tenantFromCtx(ctx))
	if err != nil {
		return nil, fmt.Errorf("list menu items: %w", err)
	}
	defer rows.Close()

	var items []menu.Item
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan menu item: %w", err)
		}
		items = append(items, *m)
	}
	return items, rows.Err()
}

func (s *Store) UpdateMenuItem(ctx context.Context, id string, req menu.UpdateRequest) (*menu.Item, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE menu_items SET
			name = COALESCE(NULLIF($3, ''), name),
			category = COALESCE(NULLIF($4, ''), category),
			price = COALESCE($5, price),
			available = COALESCE($6, available),
			updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING `+menuColumns,
		id, tenantFromCtx(ctx), req.Name, req.Category, req.Price, req.Available)
	m, err := scanMenuItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("update menu item %s: %w", id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("update menu item %s: %w", id, err)
	}
	return m, nil
}

func (s *Store) DeleteMenuItem(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM menu_items WHERE id = $1 AND tenant_id = $2`,
		id, tenantFromCtx(ctx))
	if err != nil {
		return fmt.Errorf("delete menu item %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("delete menu item %s: %w", id, domain.ErrNotFound)
	}
	return nil
}
