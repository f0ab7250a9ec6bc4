package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/CameronXie/canteen-admin/internal/domain"
	"github.com/CameronXie/canteen-admin/internal/repository"
)

const (
	OrderResource = "order"

	orderColumns = `id, order_number, token_number, user_id, items, total_amount, status, placed_at,
       collection_slot, block_until, razorpay_order_id`
)

// OrderRepository provides database operations for orders
type OrderRepository struct {
	pool *pgxpool.Pool
}

// NewOrderRepository creates a new OrderRepository instance
func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{
		pool: pool,
	}
}

// CreateOrder inserts an order and stores the generated order number back on it.
func (r *OrderRepository) CreateOrder(ctx context.Context, order *domain.Order) error {
	if order.Items == nil {
		order.Items = []domain.OrderItem{}
	}
	if order.Timestamp.IsZero() {
		order.Timestamp = time.Now()
	}

	query := `
INSERT INTO orders (id, token_number, user_id, items, total_amount, status, placed_at,
                    collection_slot, block_until, razorpay_order_id)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
RETURNING order_number`

	err := r.pool.QueryRow(
		ctx,
		query,
		order.ID,
		order.TokenNumber,
		order.UserID,
		order.Items,
		order.TotalAmount,
		string(order.Status),
		order.Timestamp,
		order.CollectionTimeSlot,
		order.BlockUntil,
		order.RazorpayOrderID,
	).Scan(&order.OrderNumber)
	if err != nil {
		return fmt.Errorf("failed to create order: %w", err)
	}

	return nil
}

// GetOrderByID retrieves an order by its ID from the database
func (r *OrderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE id = $1"

	order, err := scanOrder(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &repository.NotFoundError{
				Resource: OrderResource,
				Key:      "id",
				Value:    id.String(),
			}
		}
		return nil, fmt.Errorf("failed to retrieve order with id %s: %w", id, err)
	}

	return order, nil
}

// ListOrders returns every order, newest first.
func (r *OrderRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders ORDER BY placed_at DESC"

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}

	return collectOrders(rows)
}

// ListOrdersBetween returns orders placed in [from, to), newest first.
func (r *OrderRepository) ListOrdersBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	query := "SELECT " + orderColumns + " FROM orders WHERE placed_at >= $1 AND placed_at < $2 ORDER BY placed_at DESC"

	rows, err := r.pool.Query(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("query orders between %s and %s: %w", from, to, err)
	}

	return collectOrders(rows)
}

// UpdateOrderStatus moves an order from one status to another.
// The write only applies when the stored status still matches from, so concurrent
// updates surface as a ConflictError instead of silently overwriting each other.
func (r *OrderRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error {
	query := "UPDATE orders SET status = $3 WHERE id = $1 AND lower(btrim(status)) = ANY($2)"

	tag, err := r.pool.Exec(ctx, query, id, from.Aliases(), string(to))
	if err != nil {
		return fmt.Errorf("update status for order %s: %w", id, err)
	}

	if tag.RowsAffected() > 0 {
		return nil
	}

	current, err := r.GetOrderByID(ctx, id)
	if err != nil {
		return err
	}

	return &repository.ConflictError{
		Resource: OrderResource,
		ID:       id.String(),
		Reason:   fmt.Sprintf("status is %s, expected %s", current.Status, from),
	}
}

func collectOrders(rows pgx.Rows) ([]domain.Order, error) {
	orders, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (domain.Order, error) {
		order, err := scanOrder(row)
		if err != nil {
			return domain.Order{}, err
		}
		return *order, nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan orders: %w", err)
	}

	return orders, nil
}

func scanOrder(row pgx.Row) (*domain.Order, error) {
	var (
		order  domain.Order
		status string
	)

	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.TokenNumber,
		&order.UserID,
		&order.Items,
		&order.TotalAmount,
		&status,
		&order.Timestamp,
		&order.CollectionTimeSlot,
		&order.BlockUntil,
		&order.RazorpayOrderID,
	)
	if err != nil {
		return nil, err
	}

	if order.Items == nil {
		order.Items = []domain.OrderItem{}
	}
	order.Status = domain.NormalizeOrderStatus(strings.TrimSpace(status))

	return &order, nil
}
