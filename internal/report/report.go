// Package report aggregates orders into the figures shown on the admin dashboard.
package report

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/CameronXie/canteen-admin/internal/domain"
)

const monthLayout = "2006-01"

// MonthOption is an entry of the month selector
type MonthOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// Earnings is the revenue of one month
type Earnings struct {
	Amount float64 `json:"amount"`
	Orders int     `json:"orders"`
}

// Summary holds the dashboard cards for a selected month.
// Change is the percentage change of Amount over the previous calendar month.
type Summary struct {
	Month     string  `json:"month"`
	Amount    float64 `json:"amount"`
	Orders    int     `json:"orders"`
	Change    float64 `json:"change"`
	Preparing int     `json:"preparing"`
	Ready     int     `json:"ready"`
	Delivered int     `json:"delivered"`
}

// OrderFilter narrows the order list. Empty fields match everything.
type OrderFilter struct {
	Query      string
	Month      string
	CategoryID string
}

// MonthKey returns the YYYY-MM key of t in loc
func MonthKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(monthLayout)
}

// ParseMonth validates a YYYY-MM key
func ParseMonth(month string) (time.Time, error) {
	t, err := time.Parse(monthLayout, month)
	if err != nil {
		return time.Time{}, domain.NewValidationError("month", "month must be formatted as YYYY-MM")
	}
	return t, nil
}

// RecentMonths returns the n months up to and including the month of now, newest first.
// A negative n yields no months.
func RecentMonths(now time.Time, n int, loc *time.Location) []MonthOption {
	n = max(n, 0)
	now = now.In(loc)
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, loc)

	options := make([]MonthOption, 0, n)
	for i := 0; i < n; i++ {
		m := first.AddDate(0, -i, 0)
		options = append(options, MonthOption{
			Value: m.Format(monthLayout),
			Label: m.Format("January 2006"),
		})
	}

	return options
}

// MonthlyEarnings groups order totals by month
func MonthlyEarnings(orders []domain.Order, loc *time.Location) map[string]Earnings {
	earnings := make(map[string]Earnings)
	for _, order := range orders {
		key := MonthKey(order.Timestamp, loc)
		e := earnings[key]
		e.Amount += order.TotalAmount
		e.Orders++
		earnings[key] = e
	}

	return earnings
}

// Summarize computes the dashboard figures for month. Status counts cover every order, not only the month.
func Summarize(orders []domain.Order, month string, loc *time.Location) (Summary, error) {
	start, err := ParseMonth(month)
	if err != nil {
		return Summary{}, err
	}

	earnings := MonthlyEarnings(orders, loc)
	current := earnings[month]
	previous := earnings[start.AddDate(0, -1, 0).Format(monthLayout)]

	summary := Summary{
		Month:  month,
		Amount: round2(current.Amount),
		Orders: current.Orders,
		Change: PercentChange(previous.Amount, current.Amount),
	}

	for _, order := range orders {
		switch order.Status {
		case domain.StatusPreparing:
			summary.Preparing++
		case domain.StatusReady:
			summary.Ready++
		case domain.StatusDelivered:
			summary.Delivered++
		}
	}

	return summary, nil
}

// PercentChange returns the change from previous to current in percent, rounded to two decimals.
// It is 0 when previous is not positive.
func PercentChange(previous, current float64) float64 {
	if previous <= 0 {
		return 0
	}
	return round2((current - previous) / previous * 100)
}

// FilterOrders keeps the orders matching f
func FilterOrders(orders []domain.Order, f OrderFilter, loc *time.Location) []domain.Order {
	query := strings.ToLower(strings.TrimSpace(f.Query))

	filtered := make([]domain.Order, 0, len(orders))
	for _, order := range orders {
		if query != "" && !matchesQuery(&order, query) {
			continue
		}
		if f.Month != "" && MonthKey(order.Timestamp, loc) != f.Month {
			continue
		}
		if !matchesCategory(&order, f.CategoryID) {
			continue
		}
		filtered = append(filtered, order)
	}

	return filtered
}

// OrdersOn keeps the orders placed on the calendar day of day in loc
func OrdersOn(orders []domain.Order, day time.Time, loc *time.Location) []domain.Order {
	y, m, d := day.In(loc).Date()

	filtered := make([]domain.Order, 0)
	for _, order := range orders {
		oy, om, od := order.Timestamp.In(loc).Date()
		if oy == y && om == m && od == d {
			filtered = append(filtered, order)
		}
	}

	return filtered
}

func matchesQuery(order *domain.Order, query string) bool {
	if strings.Contains(strings.ToLower(order.ID.String()), query) ||
		strings.Contains(strings.ToLower(order.UserID), query) ||
		strings.Contains(strings.ToLower(order.TokenNumber), query) {
		return true
	}

	if order.OrderNumber != 0 && strings.Contains(strconv.FormatInt(order.OrderNumber, 10), query) {
		return true
	}

	for _, item := range order.Items {
		if strings.Contains(strings.ToLower(item.Name), query) {
			return true
		}
	}

	return false
}

func matchesCategory(order *domain.Order, categoryID string) bool {
	if categoryID == "" || categoryID == "all" {
		return true
	}

	for _, item := range order.Items {
		if item.CategoryID == categoryID {
			return true
		}
	}

	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
