package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/comandero/comandero/internal/domain"
	"github.com/comandero/comandero/internal/domain/order"
)

const orderColumns = `id, tenant_id, customer_id, table_no, items, status, total, notes, version, created_at, updated_at`

func scanOrder(row pgx.Row) (*order.Order, error) {
	var o order.Order
	var customerID *string
	var itemsJSON []byte
	err := row.Scan(&o.ID, &o.TenantID, &customerID, &o.TableNo, &itemsJSON,
		&o.Status, &o.Total, &o.Notes, &o.Version, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if customerID != nil {
		o.CustomerID = *customerID
	}
	if err := json.Unmarshal(itemsJSON, &o.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}
	return &o, nil
}

func (s *Store) CreateOrder(ctx context.Context, o *order.Order) error {
	itemsJSON, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("marshal order items: %w", err)
	}

	now := time.Now().UTC()
	o.CreatedAt = now
	o.UpdatedAt = now

	_, err = s.pool.Exec(ctx, `
		INSERT INTO orders (id, tenant_id, customer_id, table_no, items, status, total, notes, version, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		o.ID, o.TenantID, nullIfEmpty(o.CustomerID), o.TableNo, itemsJSON,
		o.Status, o.Total, o.Notes, o.Version, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("create order: %w", err)
	}
	return nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1 AND tenant_id = $2`,
		id, tenantFromCtx(ctx))
	o, err := scanOrder(row)
	if err != nil {
		return nil, notFoundWrap(err, "get order %s", id)
	}
	return o, nil
}

func (s *Store) ListOrders(ctx context.Context, status order.Status, limit int) ([]order.Order, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE tenant_id = $1`
	args := []any{tenantFromCtx(ctx)}
	if status != "" {
		query += ` AND status = $2`
		args = append(args, status)
	}
	query += fmt.Sprintf(` ORDER BY created_at DESC LIMIT %d`, limit)

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []order.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

// UpdateOrderStatus moves an order to a new status using optimistic
// concurrency: the update only applies if the stored version matches.
// A version mismatch on an existing order returns domain.ErrConflict.
func (s *Store) UpdateOrderStatus(ctx context.Context, id string, status order.Status, version int) (*order.Order, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE orders SET status = $3, version = version + 1, updated_at = now()
		WHERE id = $1 AND tenant_id = $2 AND version = $4
		RETURNING `+orderColumns,
		id, tenantFromCtx(ctx), status, version)
	o, err := scanOrder(row)
	if err == nil {
		return o, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("update order status %s: %w", id, err)
	}

	// Distinguish a missing order from a lost version race.
	if _, getErr := s.GetOrder(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, fmt.Errorf("update order status %s: %w", id, domain.ErrConflict)
}
