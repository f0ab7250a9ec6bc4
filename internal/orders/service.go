// Package orders applies status transitions to canteen orders.
package orders

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/CameronXie/canteen-admin/internal/domain"
)

// Repository defines the order storage operations used by the service
type Repository interface {
	GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	ListOrders(ctx context.Context) ([]domain.Order, error)
	ListOrdersBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error
}

// Service handles order reads and status changes
type Service struct {
	repo   Repository
	logger *slog.Logger
}

// NewService creates a new order Service
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:   repo,
		logger: logger,
	}
}

// Get returns a single order
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.repo.GetOrderByID(ctx, id)
}

// List returns all orders, newest first
func (s *Service) List(ctx context.Context) ([]domain.Order, error) {
	return s.repo.ListOrders(ctx)
}

// OrdersOn returns the orders placed on the calendar day of day in loc.
func (s *Service) OrdersOn(ctx context.Context, day time.Time, loc *time.Location) ([]domain.Order, error) {
	local := day.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return s.repo.ListOrdersBetween(ctx, start, start.AddDate(0, 0, 1))
}

// UpdateStatus moves an order to the given status.
// Setting the status an order already has is a no-op.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Order, error) {
	to, err := domain.ParseOrderStatus(status)
	if err != nil {
		return nil, domain.NewValidationError("status", err.Error())
	}

	order, err := s.repo.GetOrderByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if order.Status == to {
		return order, nil
	}

	if !domain.CanTransition(order.Status, to) {
		return nil, fmt.Errorf("%w: order %s from %s to %s", domain.ErrInvalidTransition, id, order.Status, to)
	}

	if err := s.repo.UpdateOrderStatus(ctx, id, order.Status, to); err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "order_status_updated", "order_id", id, "from", order.Status, "to", to)
	order.Status = to
	return order, nil
}

// MarkDelivered marks an order as handed over to the student
func (s *Service) MarkDelivered(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	return s.UpdateStatus(ctx, id, string(domain.StatusDelivered))
}
