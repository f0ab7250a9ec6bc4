package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/CameronXie/canteen-admin/internal/api/rest/response"
	"github.com/CameronXie/canteen-admin/internal/domain"
	"github.com/CameronXie/canteen-admin/internal/report"
)

// MonthOptions is the number of months offered by the month selector
const MonthOptions = 12

// OrderLister lists every order
type OrderLister interface {
	List(ctx context.Context) ([]domain.Order, error)
}

// DashboardHandler serves the dashboard cards
type DashboardHandler struct {
	orders   OrderLister
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// Summary returns the earnings and status counts for the month query parameter, the current month by default.
func (h *DashboardHandler) Summary(w http.ResponseWriter, r *http.Request) {
	month := r.URL.Query().Get("month")
	if month == "" {
		month = report.MonthKey(h.now(), h.location)
	}

	orders, err := h.orders.List(r.Context())
	if err != nil {
		writeError(r.Context(), w, h.logger, err, "failed to list orders")
		return
	}

	summary, err := report.Summarize(orders, month, h.location)
	if err != nil {
		writeError(r.Context(), w, h.logger, err, "failed to summarize orders", "month", month)
		return
	}

	response.JSONResponse(w, http.StatusOK, summary)
}

func (h *DashboardHandler) Months(w http.ResponseWriter, _ *http.Request) {
	response.JSONResponse(w, http.StatusOK, report.RecentMonths(h.now(), MonthOptions, h.location))
}

func NewDashboardHandler(orders OrderLister, loc *time.Location, logger *slog.Logger) *DashboardHandler {
	return &DashboardHandler{
		orders:   orders,
		location: loc,
		now:      time.Now,
		logger:   logger,
	}
}
