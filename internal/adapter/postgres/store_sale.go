package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/comandero/comandero/internal/domain/sale"
)

func (s *Store) CreateSale(ctx context.Context, sl *sale.Sale) error {
	sl.CreatedAt = time.Now().UTC()

	_, err := s.pool.Exec(ctx, `
		INSERT INTO sales (id, tenant_id, order_id, total, payment_method, cashier_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		sl.ID, sl.TenantID, nullIfEmpty(sl.OrderID), sl.Total, sl.PaymentMethod,
		nullIfEmpty(sl.CashierID), sl.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("create sale: %w", err)
	}
	return nil
}

func (s *Store) ListSales(ctx context.Context, from, to time.Time) ([]sale.Sale, error) {
	query := `SELECT id, tenant_id, order_id, total, payment_method, cashier_id, created_at
		 FROM sales WHERE tenant_id = $1`
	args := []any{tenantFromCtx(ctx)}
	if !from.IsZero() {
		args = append(args, from)
		query += fmt.Sprintf(` AND created_at >= $%d`, len(args))
	}
	if !to.IsZero() {
		args = append(args, to)
		query += fmt.Sprintf(` AND created_at < $%d`, len(args))
	}
	query += ` ORDER BY created_at DESC`

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	defer rows.Close()

	var sales []sale.Sale
	for rows.Next() {
		var sl sale.Sale
		var orderID, cashierID *string
		if err := rows.Scan(&sl.ID, &sl.TenantID, &orderID, &sl.Total, &sl.PaymentMethod, &cashierID, &sl.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan sale: %w", err)
		}
		if orderID != nil {
			sl.OrderID = *orderID
		}
		if cashierID != nil {
			sl.CashierID = *cashierID
		}
		sales = append(sales, sl)
	}
	return sales, rows.Err()
}
