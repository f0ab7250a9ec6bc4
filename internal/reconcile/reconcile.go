// Package reconcile links gateway payments to the orders and users they belong to.
package reconcile

import (
	"strconv"
	"strings"
	"time"

	"github.com/CameronXie/canteen-admin/internal/domain"
)

// MatchWindow is the largest gap between a payment and an order of the same user that still counts as a match.
const MatchWindow = 5 * time.Minute

// Row is a payment with the order and user it was matched to. Order and User are nil when nothing matched.
type Row struct {
	Payment domain.Payment `json:"payment"`
	Order   *domain.Order  `json:"order,omitempty"`
	User    *domain.User   `json:"user,omitempty"`
}

// UserLabel renders the payer as "Name (email)", or the raw payment user id when no user matched.
func (r *Row) UserLabel() string {
	if r.User == nil {
		return r.Payment.UserID
	}
	return r.User.Name + " (" + r.User.Email + ")"
}

// MatchOrder returns the first order paid by p: either the gateway order ids agree, or the order
// belongs to the same user and was placed within MatchWindow of the payment.
func MatchOrder(p *domain.Payment, orders []domain.Order) *domain.Order {
	for i := range orders {
		o := &orders[i]
		if p.RazorpayOrderID != "" && o.RazorpayOrderID == p.RazorpayOrderID {
			return o
		}
		if o.UserID == p.UserID && absDuration(o.Timestamp.Sub(p.Timestamp)) < MatchWindow {
			return o
		}
	}

	return nil
}

// MatchUser returns the user whose email or roll number equals the payment's user id
func MatchUser(p *domain.Payment, users []domain.User) *domain.User {
	if p.UserID == "" {
		return nil
	}

	for i := range users {
		u := &users[i]
		if u.Email == p.UserID || (u.RollNo != "" && u.RollNo == p.UserID) {
			return u
		}
	}

	return nil
}

// Reconcile matches every payment. A non-empty search keeps only rows whose matched order id
// or order number contains it.
func Reconcile(payments []domain.Payment, orders []domain.Order, users []domain.User, search string) []Row {
	search = strings.ToLower(strings.TrimSpace(search))

	rows := make([]Row, 0, len(payments))
	for _, p := range payments {
		row := Row{
			Payment: p,
			Order:   MatchOrder(&p, orders),
			User:    MatchUser(&p, users),
		}

		if search != "" && !row.matches(search) {
			continue
		}
		rows = append(rows, row)
	}

	return rows
}

func (r *Row) matches(search string) bool {
	if r.Order == nil {
		return false
	}

	if strings.Contains(strings.ToLower(r.Order.ID.String()), search) {
		return true
	}

	return r.Order.OrderNumber != 0 && strings.Contains(strconv.FormatInt(r.Order.OrderNumber, 10), search)
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
