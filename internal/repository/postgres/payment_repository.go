package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CameronXie/canteen-admin/internal/domain"
)

// PaymentRepository provides database operations for gateway payments
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository instance
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

// CreatePayment records a payment
func (r *PaymentRepository) CreatePayment(ctx context.Context, payment *domain.Payment) error {
	query := `
INSERT INTO payments (id, amount, method, status, paid_at, user_id, razorpay_order_id, razorpay_payment_id, verified)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(
		ctx,
		query,
		payment.ID,
		payment.Amount,
		payment.Method,
		payment.Status,
		payment.Timestamp,
		payment.UserID,
		payment.RazorpayOrderID,
		payment.RazorpayPaymentID,
		payment.Verified,
	)
	if err != nil {
		return fmt.Errorf("failed to create payment: %w", err)
	}

	return nil
}

// ListPayments returns every payment, newest first
func (r *PaymentRepository) ListPayments(ctx context.Context) ([]domain.Payment, error) {
	query := `
SELECT id, amount, method, status, paid_at, user_id, razorpay_order_id, razorpay_payment_id, verified
FROM payments
ORDER BY paid_at DESC`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query payments: %w", err)
	}

	payments, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Payment])
	if err != nil {
		return nil, fmt.Errorf("scan payments: %w", err)
	}

	return payments, nil
}
