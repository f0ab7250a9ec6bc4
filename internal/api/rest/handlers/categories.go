package handlers

import (
	"log/slog"
	"net/http"

	"github.com/CameronXie/canteen-admin/internal/api/rest/response"
)

type CategoryRequest struct {
	Name string `json:"name"`
}

type DeleteCategoryResponse struct {
	ID           string `json:"id"`
	DeletedItems int64  `json:"deletedItems"`
}

// CategoryHandler serves the category endpoints. Renames and deletes cascade to the products of the category.
type CategoryHandler struct {
	service CatalogService
	logger  *slog.Logger
}

func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		writeError(r.Context(), w, h.logger, err, "failed to list categories")
		return
	}

	response.JSONResponse(w, http.StatusOK, categories)
}

func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	req := new(CategoryRequest)
	if err := decodeBody(r, req); err != nil {
		response.JSONErrorResponse(w, http.StatusBadRequest, invalidRequestBodyMessage)
		return
	}

	category, err := h.service.CreateCategory(r.Context(), req.Name)
	if err != nil {
		writeError(r.Context(), w, h.logger, err, "failed to create category")
		return
	}

	response.JSONResponse(w, http.StatusCreated, category)
}

func (h *CategoryHandler) Rename(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.JSONErrorResponse(w, http.StatusBadRequest, invalidIDMessage)
		return
	}

	req := new(CategoryRequest)
	if err := decodeBody(r, req); err != nil {
		response.JSONErrorResponse(w, http.StatusBadRequest, invalidRequestBodyMessage)
		return
	}

	category, err := h.service.RenameCategory(r.Context(), id, req.Name)
	if err != nil {
		writeError(r.Context(), w, h.logger, err, "failed to rename category", "category_id", id)
		return
	}

	response.JSONResponse(w, http.StatusOK, category)
}

func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		response.JSONErrorResponse(w, http.StatusBadRequest, invalidIDMessage)
		return
	}

	deleted, err := h.service.DeleteCategory(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, h.logger, err, "failed to delete category", "category_id", id)
		return
	}

	response.JSONResponse(w, http.StatusOK, DeleteCategoryResponse{ID: id.String(), DeletedItems: deleted})
}

func NewCategoryHandler(service CatalogService, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{service: service, logger: logger}
}
