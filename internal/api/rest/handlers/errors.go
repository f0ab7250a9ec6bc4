package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/CameronXie/canteen-admin/internal/api/rest/response"
	"github.com/CameronXie/canteen-admin/internal/domain"
	"github.com/CameronXie/canteen-admin/internal/repository"
)

const (
	invalidRequestBodyMessage  = "invalid request body"
	invalidIDMessage           = "id must be a valid UUID"
	internalServerErrorMessage = "internal server error"
)

// writeError maps service errors onto status codes. Unexpected errors are logged and hidden from the client.
func writeError(ctx context.Context, w http.ResponseWriter, logger *slog.Logger, err error, msg string, attrs ...any) {
	var (
		validationErr *domain.ValidationError
		notFoundErr   *repository.NotFoundError
		conflictErr   *repository.ConflictError
	)

	switch {
	case errors.As(err, &validationErr):
		response.JSONErrorResponse(w, http.StatusBadRequest, validationErr.Message)
	case errors.As(err, &notFoundErr):
		logger.WarnContext(ctx, msg, append(attrs, "error", err)...)
		response.JSONErrorResponse(w, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &conflictErr):
		logger.WarnContext(ctx, msg, append(attrs, "error", err)...)
		response.JSONErrorResponse(w, http.StatusConflict, conflictErr.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		response.JSONErrorResponse(w, http.StatusConflict, err.Error())
	default:
		logger.ErrorContext(ctx, msg, append(attrs, "error", err)...)
		response.JSONErrorResponse(w, http.StatusInternalServerError, internalServerErrorMessage)
	}
}

func pathID(r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	return id, err == nil
}

func decodeBody(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
