package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"reminer-backend/internal/catalog"
	"reminer-backend/internal/pagination"
	"reminer-backend/pkg/api"

	"go.uber.org/zap"
)

// AppHandler handles /apps requests
type AppHandler struct {
	svc      catalog.Service
	pageSize int
	logger   *zap.Logger
}

// NewAppHandler creates a new app handler
func NewAppHandler(svc catalog.Service, pageSize int, logger *zap.Logger) *AppHandler {
	return &AppHandler{svc: svc, pageSize: pageSize, logger: logger}
}

// CreateAppsRequest is the body of POST /apps. user_id may also be passed
// as a query parameter.
type CreateAppsRequest struct {
	UserID string              `json:"user_id"`
	Apps   []catalog.AppFields `json:"apps"`
}

// CreateApps handles POST /apps
func (h *AppHandler) CreateApps(w http.ResponseWriter, r *http.Request) {
	var req CreateAppsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	userID := strings.TrimSpace(req.UserID)
	if userID == "" {
		userID = strings.TrimSpace(r.URL.Query().Get("user_id"))
	}
	if userID == "" {
		api.Error(w, http.StatusBadRequest, "missing required parameter(s): user_id")
		return
	}

	ids, err := h.svc.CreateApps(r.Context(), userID, req.Apps)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{
		"message": "Apps created successfully",
		"ids":     ids,
	})
}

// ListApps handles GET /apps
func (h *AppHandler) ListApps(w http.ResponseWriter, r *http.Request) {
	params, err := requireQuery(r, "user_id")
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	page, err := pagination.ParseParams(r.URL.Query(), h.pageSize)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	result, err := h.svc.ListApps(r.Context(), params[0], page)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{
		"apps":        result.Items,
		"total_pages": result.TotalPages,
	})
}

// ListAppNames handles GET /apps/names
func (h *AppHandler) ListAppNames(w http.ResponseWriter, r *http.Request) {
	params, err := requireQuery(r, "user_id")
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	names, err := h.svc.ListAppNames(r.Context(), params[0])
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{"apps": names})
}

// UpdateApp handles PUT /apps
func (h *AppHandler) UpdateApp(w http.ResponseWriter, r *http.Request) {
	params, err := requireQuery(r, "user_id", "app_id")
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	var fields catalog.AppFields
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		api.Error(w, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	app, err := h.svc.UpdateApp(r.Context(), params[0], params[1], fields)
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]interface{}{
		"message": "App updated successfully",
		"app":     app,
	})
}

// DeleteApp handles DELETE /apps
func (h *AppHandler) DeleteApp(w http.ResponseWriter, r *http.Request) {
	params, err := requireQuery(r, "user_id", "app_id")
	if err != nil {
		handleServiceError(w, h.logger, err)
		return
	}

	if err := h.svc.DeleteApp(r.Context(), params[0], params[1]); err != nil {
		handleServiceError(w, h.logger, err)
		return
	}
	api.Success(w, http.StatusOK, map[string]string{"message": "App deleted successfully"})
}
