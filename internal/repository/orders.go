package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/velora/storefront/internal/domain"
)

const orderColumns = `id, user_id, customer_name, customer_email, phone, address,
	payment_method, status, total_amount, currency, items, reference, stripe_session_id,
	created_at, updated_at`

func (r *Repository) CreateOrder(ctx context.Context, order *domain.Order) error {
	itemsJSON, err := json.Marshal(order.Items)
	if err != nil {
		return fmt.Errorf("failed to marshal order items: %w", err)
	}

	query := `INSERT INTO orders (id, user_id, customer_name, customer_email, phone, address,
	          payment_method, status, total_amount, currency, items, reference, stripe_session_id,
	          created_at, updated_at)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())`

	_, insertErr := r.db.ExecContext(ctx, query,
		order.ID,
		order.UserID,
		order.CustomerName,
		order.CustomerEmail,
		order.Phone,
		order.Address,
		order.PaymentMethod,
		order.Status,
		order.TotalAmount,
		order.Currency,
		itemsJSON,
		nullString(order.Reference),
		nullString(order.SessionID))

	if insertErr != nil {
		return fmt.Errorf("insert order: %w", insertErr)
	}
	return nil
}

func (r *Repository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}
	return order, nil
}

func (r *Repository) ListOrdersByUserID(ctx context.Context, userID string) ([]*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("query orders by user id: %w", err)
	}
	defer rows.Close()

	var orders []*domain.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order row: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

// MarkPaidBySession flips the pending order for the given payment session to
// paid. If no pending order carries that session id (a submission whose insert
// failed after the session was created), a bare paid record is inserted so the
// confirmation is never lost.
func (r *Repository) MarkPaidBySession(ctx context.Context, sessionID, payerEmail string, amount float64) (*domain.Order, error) {
	query := `UPDATE orders SET status = $2, updated_at = NOW()
	          WHERE stripe_session_id = $1
	          RETURNING ` + orderColumns

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, sessionID, domain.OrderStatusPaid))
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("mark order paid: %w", err)
	}

	recovered := &domain.Order{
		ID:            uuid.New(),
		CustomerEmail: payerEmail,
		PaymentMethod: domain.PaymentMethodCard,
		Status:        domain.OrderStatusPaid,
		TotalAmount:   amount,
		SessionID:     sessionID,
	}
	if errInsert := r.CreateOrder(ctx, recovered); errInsert != nil {
		return nil, fmt.Errorf("insert recovered paid order: %w", errInsert)
	}
	return recovered, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	var itemsJSON []byte
	var reference, sessionID sql.NullString

	if err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.Phone,
		&order.Address,
		&order.PaymentMethod,
		&order.Status,
		&order.TotalAmount,
		&order.Currency,
		&itemsJSON,
		&reference,
		&sessionID,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		return nil, err
	}

	order.Reference = reference.String
	order.SessionID = sessionID.String

	if err := json.Unmarshal(itemsJSON, &order.Items); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}

	return &order, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
