package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/CameronXie/canteen-admin/internal/api/rest/response"
	"github.com/CameronXie/canteen-admin/internal/domain"
	"github.com/CameronXie/canteen-admin/internal/export"
	"github.com/CameronXie/canteen-admin/internal/report"
)

const (
	ExportCountHeader = "X-Export-Count"
	exportDateLayout  = "2006-01-02"

	invalidDateMessage = "date must be formatted as YYYY-MM-DD"
)

// OrderService defines the order operations used by the order handlers
type OrderService interface {
	Get(ctx context.Context, id uuid.UUID) (*domain.Order, error)
	List(ctx context.Context) ([]domain.Order, error)
	OrdersOn(ctx context.Context, day time.Time, loc *time.Location) ([]domain.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*domain.Order, error)
	MarkDelivered(ctx context.Context, id uuid.UUID) (*domain.Order, error)
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// OrderHandler serves the order management endpoints
type OrderHandler struct {
	service  OrderService
	location *time.Location
	now      func() time.Time
	logger   *slog.Logger
}

// List returns the orders matching the q, month and category query parameters.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := report.OrderFilter{
		Query:      query.Get("q"),
		Month:      query.Get("month"),
		CategoryID: query.Get("category"),
	}

	if filter.Month != "" {
		if _, err := report.ParseMonth(filter.Month); err != nil {
			writeError(r.Context(), w, h.logger, err, "invalid month filter")
			return
		}
	}

	orders, err := h.service.List(r.Context())
	if err != nil {
		writeError(r.Context(), w, h.logger, err, "failed to list orders")
		return
	}

	response.JSONResponse(w, http.StatusOK, report.FilterOrders(orders, filter, h.location))
}

func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.JSONErrorResponse(w, http.StatusBadRequest, invalidIDMessage)
		return
	}

	order, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, h.logger, err, "failed to get order", "order_id", id)
		return
	}

	response.JSONResponse(w, http.StatusOK, order)
}

// UpdateStatus applies a status transition. Illegal or stale transitions answer 409.
func (h *OrderHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.JSONErrorResponse(w, http.StatusBadRequest, invalidIDMessage)
		return
	}

	req := new(UpdateStatusRequest)
	if err := decodeBody(r, req); err != nil {
		response.JSONErrorResponse(w, http.StatusBadRequest, invalidRequestBodyMessage)
		return
	}

	order, err := h.service.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		writeError(r.Context(), w, h.logger, err, "failed to update order status", "order_id", id, "status", req.Status)
		return
	}

	response.JSONResponse(w, http.StatusOK, order)
}

func (h *OrderHandler) Deliver(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.JSONErrorResponse(w, http.StatusBadRequest, invalidIDMessage)
		return
	}

	order, err := h.service.MarkDelivered(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, h.logger, err, "failed to mark order delivered", "order_id", id)
		return
	}

	response.JSONResponse(w, http.StatusOK, order)
}

// Export downloads the orders of one day as a spreadsheet. The day defaults to today.
func (h *OrderHandler) Export(w http.ResponseWriter, r *http.Request) {
	day := h.now().In(h.location)
	if raw := r.URL.Query().Get("date"); raw != "" {
		parsed, err := time.ParseInLocation(exportDateLayout, raw, h.location)
		if err != nil {
			response.JSONErrorResponse(w, http.StatusBadRequest, invalidDateMessage)
			return
		}
		day = parsed
	}

	orders, err := h.service.OrdersOn(r.Context(), day, h.location)
	if err != nil {
		writeError(r.Context(), w, h.logger, err, "failed to list orders for export")
		return
	}

	var buf bytes.Buffer
	if err := export.DailyOrders(&buf, orders, h.location); err != nil {
		writeError(r.Context(), w, h.logger, err, "failed to write orders workbook")
		return
	}

	h.logger.InfoContext(r.Context(), "orders_exported", "date", day.Format(exportDateLayout), "count", len(orders))
	response.AttachmentHeaders(w, export.ContentType, export.DailyOrdersFilename(day))
	w.Header().Set(ExportCountHeader, strconv.Itoa(len(orders)))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// NewOrderHandler creates an OrderHandler reporting dates in loc
func NewOrderHandler(service OrderService, loc *time.Location, logger *slog.Logger) *OrderHandler {
	return &OrderHandler{
		service:  service,
		location: loc,
		now:      time.Now,
		logger:   logger,
	}
}
