package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/CameronXie/canteen-admin/internal/api/rest/response"
	"github.com/CameronXie/canteen-admin/internal/catalog"
	"github.com/CameronXie/canteen-admin/internal/domain"
)

// CatalogService defines the product and category operations used by the catalog handlers
type CatalogService interface {
	GetProduct(ctx context.Context, id uuid.UUID) (*domain.Item, error)
	ListProducts(ctx context.Context, query, categoryID string) ([]domain.Item, error)
	CreateProduct(ctx context.Context, in *catalog.ProductInput) (*domain.Item, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, in *catalog.ProductInput) (*domain.Item, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context) ([]domain.Category, error)
	CreateCategory(ctx context.Context, name string) (*domain.Category, error)
	RenameCategory(ctx context.Context, id uuid.UUID, name string) (*domain.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) (int64, error)
}

// Product is a catalog item with its stock label
type Product struct {
	domain.Item
	Availability string `json:"availability"`
}

func newProduct(item *domain.Item) Product {
	return Product{Item: *item, Availability: catalog.Availability(item.Quantity)}
}

// ProductHandler serves the product endpoints
type ProductHandler struct {
	service CatalogService
	logger  *slog.Logger
}

// List returns the products filtered by the q and category query parameters.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.ListProducts(r.Context(), r.URL.Query().Get("q"), r.URL.Query().Get("category"))
	if err != nil {
		writeError(r.Context(), w, h.logger, err, "failed to list products")
		return
	}

	products := make([]Product, 0, len(items))
	for i := range items {
		products = append(products, newProduct(&items[i]))
	}

	response.JSONResponse(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.JSONErrorResponse(w, http.StatusBadRequest, invalidIDMessage)
		return
	}

	item, err := h.service.GetProduct(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, h.logger, err, "failed to get product", "item_id", id)
		return
	}

	response.JSONResponse(w, http.StatusOK, newProduct(item))
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	in := new(catalog.ProductInput)
	if err := decodeBody(r, in); err != nil {
		response.JSONErrorResponse(w, http.StatusBadRequest, invalidRequestBodyMessage)
		return
	}

	item, err := h.service.CreateProduct(r.Context(), in)
	if err != nil {
		writeError(r.Context(), w, h.logger, err, "failed to create product")
		return
	}

	response.JSONResponse(w, http.StatusCreated, newProduct(item))
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.JSONErrorResponse(w, http.StatusBadRequest, invalidIDMessage)
		return
	}

	in := new(catalog.ProductInput)
	if err := decodeBody(r, in); err != nil {
		response.JSONErrorResponse(w, http.StatusBadRequest, invalidRequestBodyMessage)
		return
	}

	item, err := h.service.UpdateProduct(r.Context(), id, in)
	if err != nil {
		writeError(r.Context(), w, h.logger, err, "failed to update product", "item_id", id)
		return
	}

	response.JSONResponse(w, http.StatusOK, newProduct(item))
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.JSONErrorResponse(w, http.StatusBadRequest, invalidIDMessage)
		return
	}

	if err := h.service.DeleteProduct(r.Context(), id); err != nil {
		writeError(r.Context(), w, h.logger, err, "failed to delete product", "item_id", id)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func NewProductHandler(service CatalogService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{service: service, logger: logger}
}
