// Package export renders orders and payments as xlsx workbooks.
package export

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/CameronXie/canteen-admin/internal/domain"
	"github.com/CameronXie/canteen-admin/internal/reconcile"
)

const (
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	OrdersSheet   = "Orders"
	PaymentsSheet = "Payments"

	dateLayout = "02/01/2006"
	timeLayout = "15:04"
)

type column struct {
	title string
	width float64
}

var orderColumns = []column{
	{"Order ID", 20},
	{"User Email", 30},
	{"Items Ordered", 50},
	{"Amount (₹)", 15},
	{"Date", 15},
	{"Time", 15},
	{"Status", 25},
}

var paymentColumns = []column{
	{"Amount (₹)", 15},
	{"Method", 12},
	{"Status", 12},
	{"Timestamp", 22},
	{"User", 40},
	{"Order ID", 38},
	{"Order #", 10},
	{"Razorpay Order ID", 25},
	{"Razorpay Payment ID", 25},
	{"Verified", 10},
}

// DailyOrdersFilename returns the download name of the orders workbook for day
func DailyOrdersFilename(day time.Time) string {
	return "canteen-orders-" + day.Format(time.DateOnly) + ".xlsx"
}

// PaymentsFilename returns the download name of the payments workbook generated at now
func PaymentsFilename(now time.Time) string {
	return "canteen-payments-" + now.Format(time.DateOnly) + ".xlsx"
}

// ItemsSummary renders order lines as "name (xQTY)" joined by ", "
func ItemsSummary(items []domain.OrderItem) string {
	parts := make([]string, 0, len(items))
	for _, item := range items {
		parts = append(parts, fmt.Sprintf("%s (x%d)", item.Name, item.Qty))
	}
	return strings.Join(parts, ", ")
}

// DailyOrders writes the orders workbook to w
func DailyOrders(w io.Writer, orders []domain.Order, loc *time.Location) error {
	rows := make([][]any, 0, len(orders))
	for _, order := range orders {
		placed := order.Timestamp.In(loc)
		rows = append(rows, []any{
			order.ID.String(),
			order.UserID,
			ItemsSummary(order.Items),
			order.TotalAmount,
			placed.Format(dateLayout),
			placed.Format(timeLayout),
			string(order.Status),
		})
	}

	return writeWorkbook(w, OrdersSheet, orderColumns, rows)
}

// Payments writes the reconciled payments workbook to w
func Payments(w io.Writer, payments []reconcile.Row, loc *time.Location) error {
	rows := make([][]any, 0, len(payments))
	for i := range payments {
		row := &payments[i]

		timestamp := "-"
		if !row.Payment.Timestamp.IsZero() {
			timestamp = row.Payment.Timestamp.In(loc).Format(dateLayout + " " + timeLayout)
		}

		orderID, orderNumber := "-", "-"
		if row.Order != nil {
			orderID = row.Order.ID.String()
			if row.Order.OrderNumber != 0 {
				orderNumber = strconv.FormatInt(row.Order.OrderNumber, 10)
			}
		}

		verified := "No"
		if row.Payment.Verified {
			verified = "Yes"
		}

		rows = append(rows, []any{
			row.Payment.Amount,
			row.Payment.Method,
			row.Payment.Status,
			timestamp,
			row.UserLabel(),
			orderID,
			orderNumber,
			row.Payment.RazorpayOrderID,
			row.Payment.RazorpayPaymentID,
			verified,
		})
	}

	return writeWorkbook(w, PaymentsSheet, paymentColumns, rows)
}

func writeWorkbook(w io.Writer, sheet string, columns []column, rows [][]any) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	if err = f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("open stream writer: %w", err)
	}

	header := make([]any, 0, len(columns))
	for i, col := range columns {
		if err = sw.SetColWidth(i+1, i+1, col.width); err != nil {
			return fmt.Errorf("set width of column %q: %w", col.title, err)
		}
		header = append(header, excelize.Cell{StyleID: headerStyle, Value: col.title})
	}

	if err = sw.SetRow("A1", header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	for i, row := range rows {
		cell, cellErr := excelize.CoordinatesToCellName(1, i+2)
		if cellErr != nil {
			return cellErr
		}
		if err = sw.SetRow(cell, row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err = sw.Flush(); err != nil {
		return fmt.Errorf("flush sheet: %w", err)
	}

	if err = f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}

	return nil
}
