package handlers

import (
	"net/http"

	"github.com/CameronXie/canteen-admin/internal/api/rest/response"
	"github.com/CameronXie/canteen-admin/internal/version"
)

// HealthHandler reports liveness
type HealthHandler struct{}

func (HealthHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	response.JSONResponse(w, http.StatusOK, map[string]string{"status": "ok", "version": version.Version})
}
