package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/CameronXie/canteen-admin/internal/domain"
	"github.com/CameronXie/canteen-admin/internal/reconcile"
)

var ist = time.FixedZone("IST", 5*60*60+30*60)

func openSheet(t *testing.T, buf *bytes.Buffer, sheet string) (*excelize.File, [][]string) {
	t.Helper()

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })

	rows, err := f.GetRows(sheet)
	require.NoError(t, err)

	return f, rows
}

func TestDailyOrders(t *testing.T) {
	orderID := uuid.MustParse("0b7e5a4c-1d2e-4f30-9a8b-7c6d5e4f3a21")
	orders := []domain.Order{
		{
			ID:     orderID,
			UserID: "asha@campus.edu",
			Items: []domain.OrderItem{
				{Name: "Masala Dosa", Qty: 2},
				{Name: "Filter Coffee", Qty: 1},
			},
			TotalAmount: 150.5,
			Status:      domain.StatusReady,
			Timestamp:   time.Date(2026, 10, 19, 7, 45, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, DailyOrders(&buf, orders, ist))

	f, rows := openSheet(t, &buf, OrdersSheet)

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Order ID", "User Email", "Items Ordered", "Amount (₹)", "Date", "Time", "Status"}, rows[0])
	assert.Equal(t, []string{
		orderID.String(),
		"asha@campus.edu",
		"Masala Dosa (x2), Filter Coffee (x1)",
		"150.5",
		"19/10/2026",
		"13:15",
		"Ready",
	}, rows[1])

	widths := map[string]float64{"A": 20, "B": 30, "C": 50, "D": 15, "E": 15, "F": 15, "G": 25}
	for col, expected := range widths {
		width, err := f.GetColWidth(OrdersSheet, col)
		require.NoError(t, err)
		assert.InDelta(t, expected, width, 0.01, "column %s", col)
	}
}

func TestDailyOrders_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, DailyOrders(&buf, nil, ist))

	_, rows := openSheet(t, &buf, OrdersSheet)

	require.Len(t, rows, 1)
	assert.Len(t, rows[0], 7)
}

func TestPayments(t *testing.T) {
	orderID := uuid.MustParse("5d0b1f8e-2c3a-4b7d-8e9f-0a1b2c3d4e5f")
	rows := []reconcile.Row{
		{
			Payment: domain.Payment{
				Amount:            90,
				Method:            "upi",
				Status:            "captured",
				Timestamp:         time.Date(2026, 10, 19, 6, 30, 0, 0, time.UTC),
				UserID:            "asha@campus.edu",
				RazorpayOrderID:   "order_A",
				RazorpayPaymentID: "pay_A",
				Verified:          true,
			},
			Order: &domain.Order{ID: orderID, OrderNumber: 77},
			User:  &domain.User{Name: "Asha", Email: "asha@campus.edu"},
		},
		{
			Payment: domain.Payment{Amount: 40, Method: "card", Status: "failed", UserID: "21CS0001"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, Payments(&buf, rows, ist))

	_, got := openSheet(t, &buf, PaymentsSheet)

	require.Len(t, got, 3)
	assert.Equal(t, "Razorpay Payment ID", got[0][8])
	assert.Equal(t, []string{
		"90", "upi", "captured", "19/10/2026 12:00", "Asha (asha@campus.edu)",
		orderID.String(), "77", "order_A", "pay_A", "Yes",
	}, got[1])
	assert.Equal(t, []string{"40", "card", "failed", "-", "21CS0001", "-", "-", "", "", "No"}, got[2])
}

func TestFilenames(t *testing.T) {
	day := time.Date(2026, 3, 7, 23, 0, 0, 0, ist)

	assert.Equal(t, "canteen-orders-2026-03-07.xlsx", DailyOrdersFilename(day))
	assert.Equal(t, "canteen-payments-2026-03-07.xlsx", PaymentsFilename(day))
}

func TestItemsSummary(t *testing.T) {
	assert.Equal(t, "", ItemsSummary(nil))
	assert.Equal(t, "Idli (x3)", ItemsSummary([]domain.OrderItem{{Name: "Idli", Qty: 3}}))
}
