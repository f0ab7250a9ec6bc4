package orders

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/CameronXie/canteen-admin/internal/domain"
	"github.com/CameronXie/canteen-admin/internal/repository"
)

type mockRepository struct {
	mock.Mock
}

func (m *mockRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Order), args.Error(1)
}

func (m *mockRepository) ListOrders(ctx context.Context) ([]domain.Order, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockRepository) ListOrdersBetween(ctx context.Context, from, to time.Time) ([]domain.Order, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]domain.Order), args.Error(1)
}

func (m *mockRepository) UpdateOrderStatus(ctx context.Context, id uuid.UUID, from, to domain.OrderStatus) error {
	args := m.Called(ctx, id, from, to)
	return args.Error(0)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestService_UpdateStatus(t *testing.T) {
	orderID := uuid.New()

	testCases := map[string]struct {
		status         string
		stored         *domain.Order
		getErr         error
		updateErr      error
		expectUpdate   bool
		expectedStatus domain.OrderStatus
		checkErr       func(t *testing.T, err error)
	}{
		"should move preparing order to ready": {
			status:         "Ready",
			stored:         &domain.Order{ID: orderID, Status: domain.StatusPreparing},
			expectUpdate:   true,
			expectedStatus: domain.StatusReady,
		},
		"should accept legacy status literal": {
			status:         "Order Delivered",
			stored:         &domain.Order{ID: orderID, Status: domain.StatusReady},
			expectUpdate:   true,
			expectedStatus: domain.StatusDelivered,
		},
		"should not write when status is unchanged": {
			status:         "ready",
			stored:         &domain.Order{ID: orderID, Status: domain.StatusReady},
			expectedStatus: domain.StatusReady,
		},
		"should reject unknown status": {
			status: "Cancelled",
			checkErr: func(t *testing.T, err error) {
				assert.True(t, domain.IsValidation(err))
			},
		},
		"should reject backward transition": {
			status: "Preparing",
			stored: &domain.Order{ID: orderID, Status: domain.StatusDelivered},
			checkErr: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, domain.ErrInvalidTransition)
			},
		},
		"should propagate not found": {
			status: "Ready",
			getErr: &repository.NotFoundError{Resource: "order", Key: "id", Value: orderID.String()},
			checkErr: func(t *testing.T, err error) {
				var notFoundErr *repository.NotFoundError
				assert.True(t, errors.As(err, &notFoundErr))
			},
		},
		"should propagate write conflict": {
			status:       "Ready",
			stored:       &domain.Order{ID: orderID, Status: domain.StatusPreparing},
			updateErr:    &repository.ConflictError{Resource: "order", ID: orderID.String(), Reason: "changed"},
			expectUpdate: true,
			checkErr: func(t *testing.T, err error) {
				var conflictErr *repository.ConflictError
				assert.True(t, errors.As(err, &conflictErr))
			},
		},
	}

	for name, tc := range testCases {
		t.Run(name, func(t *testing.T) {
			repo := new(mockRepository)
			if tc.stored != nil || tc.getErr != nil {
				var stored any
				if tc.stored != nil {
					stored = tc.stored
				}
				repo.On("GetOrderByID", mock.Anything, orderID).Return(stored, tc.getErr)
			}
			if tc.expectUpdate {
				repo.On("UpdateOrderStatus", mock.Anything, orderID, tc.stored.Status, mock.Anything).Return(tc.updateErr)
			}

			order, err := NewService(repo, discardLogger()).UpdateStatus(context.Background(), orderID, tc.status)

			if tc.checkErr != nil {
				require.Error(t, err)
				tc.checkErr(t, err)
				assert.Nil(t, order)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tc.expectedStatus, order.Status)
			}

			if !tc.expectUpdate {
				repo.AssertNotCalled(t, "UpdateOrderStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_MarkDelivered(t *testing.T) {
	orderID := uuid.New()
	repo := new(mockRepository)
	repo.On("GetOrderByID", mock.Anything, orderID).Return(&domain.Order{ID: orderID, Status: domain.StatusPreparing}, nil)
	repo.On("UpdateOrderStatus", mock.Anything, orderID, domain.StatusPreparing, domain.StatusDelivered).Return(nil)

	order, err := NewService(repo, discardLogger()).MarkDelivered(context.Background(), orderID)

	require.NoError(t, err)
	assert.Equal(t, domain.StatusDelivered, order.Status)
	repo.AssertExpectations(t)
}

func TestService_OrdersOn(t *testing.T) {
	loc := time.FixedZone("IST", 5*60*60+30*60)
	day := time.Date(2026, 10, 18, 22, 0, 0, 0, time.UTC) // 19 Oct 03:30 IST

	expectedFrom := time.Date(2026, 10, 19, 0, 0, 0, 0, loc)
	expectedTo := time.Date(2026, 10, 20, 0, 0, 0, 0, loc)

	repo := new(mockRepository)
	repo.On("ListOrdersBetween", mock.Anything, expectedFrom, expectedTo).Return([]domain.Order{{ID: uuid.New()}}, nil)

	orders, err := NewService(repo, discardLogger()).OrdersOn(context.Background(), day, loc)

	require.NoError(t, err)
	assert.Len(t, orders, 1)
	repo.AssertExpectations(t)
}
