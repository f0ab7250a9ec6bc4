package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"

	"github.com/CameronXie/canteen-admin/internal/api/rest/middlewares"
	"github.com/CameronXie/canteen-admin/internal/api/rest/response"
	"github.com/CameronXie/canteen-admin/internal/domain"
)

const unauthorizedMessage = "unauthorized"

type UserGetter interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// MeHandler returns the profile of the signed-in user
type MeHandler struct {
	users  UserGetter
	logger *slog.Logger
}

func (h *MeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	subject, ok := middlewares.GetUserIDFromContext(r.Context())
	if !ok {
		response.JSONErrorResponse(w, http.StatusUnauthorized, unauthorizedMessage)
		return
	}

	id, err := uuid.Parse(subject)
	if err != nil {
		h.logger.WarnContext(r.Context(), "token subject is not a user id", "subject", subject)
		response.JSONErrorResponse(w, http.StatusUnauthorized, unauthorizedMessage)
		return
	}

	user, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		writeError(r.Context(), w, h.logger, err, "failed to get current user", "user_id", id)
		return
	}

	response.JSONResponse(w, http.StatusOK, user)
}

func NewMeHandler(users UserGetter, logger *slog.Logger) *MeHandler {
	return &MeHandler{users: users, logger: logger}
}
