package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/CameronXie/canteen-admin/internal/api/rest/response"
	"github.com/CameronXie/canteen-admin/internal/domain"
	"github.com/CameronXie/canteen-admin/internal/export"
	"github.com/CameronXie/canteen-admin/internal/reconcile"
)

type PaymentLister interface {
	ListPayments(ctx context.Context) ([]domain.Payment, error)
}

type UserLister interface {
	ListUsers(ctx context.Context) ([]domain.User, error)
}

// PaymentRow is a reconciled payment as returned to the dashboard
type PaymentRow struct {
	domain.Payment
	User  string        `json:"user"`
	Order *domain.Order `json:"order,omitempty"`
}

// PaymentHandler serves the payment reconciliation endpoints
type PaymentHandler struct {
	payments PaymentLister
	orders   OrderLister
	users    UserLister
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// List returns every payment matched to its order and user, filtered by the q query parameter.
func (h *PaymentHandler) List(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reconcile(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(r.Context(), w, h.logger, err, "failed to reconcile payments")
		return
	}

	result := make([]PaymentRow, 0, len(rows))
	for i := range rows {
		result = append(result, PaymentRow{
			Payment: rows[i].Payment,
			User:    rows[i].UserLabel(),
			Order:   rows[i].Order,
		})
	}

	response.JSONResponse(w, http.StatusOK, result)
}

// Export downloads the reconciled payments as a spreadsheet
func (h *PaymentHandler) Export(w http.ResponseWriter, r *http.Request) {
	rows, err := h.reconcile(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeError(r.Context(), w, h.logger, err, "failed to reconcile payments")
		return
	}

	var buf bytes.Buffer
	if err := export.Payments(&buf, rows, h.location); err != nil {
		writeError(r.Context(), w, h.logger, err, "failed to write payments workbook")
		return
	}

	h.logger.InfoContext(r.Context(), "payments_exported", "count", len(rows))
	response.AttachmentHeaders(w, export.ContentType, export.PaymentsFilename(h.now().In(h.location)))
	w.Header().Set(ExportCountHeader, strconv.Itoa(len(rows)))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// reconcile loads payments, orders and users concurrently and matches them
func (h *PaymentHandler) reconcile(ctx context.Context, search string) ([]reconcile.Row, error) {
	var (
		payments []domain.Payment
		orders   []domain.Order
		users    []domain.User
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		payments, err = h.payments.ListPayments(gctx)
		return err
	})
	g.Go(func() (err error) {
		orders, err = h.orders.List(gctx)
		return err
	})
	g.Go(func() (err error) {
		users, err = h.users.ListUsers(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return reconcile.Reconcile(payments, orders, users, search), nil
}

func NewPaymentHandler(
	payments PaymentLister,
	orders OrderLister,
	users UserLister,
	loc *time.Location,
	logger *slog.Logger,
) *PaymentHandler {
	return &PaymentHandler{
		payments: payments,
		orders:   orders,
		users:    users,
		location: loc,
		now:      time.Now,
		logger:   logger,
	}
}
