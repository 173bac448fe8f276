package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/utafrali/catalog/internal/admin"
	"github.com/utafrali/catalog/internal/service"
	apperrors "github.com/utafrali/catalog/pkg/errors"
	"github.com/utafrali/catalog/pkg/httputil"
	"github.com/utafrali/catalog/pkg/pagination"
)

// AdminHandler serves the read-only back-office listings.
type AdminHandler struct {
	service *service.AdminService
	logger  *slog.Logger
}

// NewAdminHandler creates a new admin HTTP handler.
func NewAdminHandler(svc *service.AdminService, logger *slog.Logger) *AdminHandler {
	return &AdminHandler{service: svc, logger: logger}
}

// ListModels handles GET /api/v1/admin/
// @Summary List admin models
// @Tags admin
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 403 {object} map[string]interface{}
// @Router /api/v1/admin/ [get]
func (h *AdminHandler) ListModels(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: h.service.Models()})
}

// ListRows handles GET /api/v1/admin/{model}?q=&page=
// @Summary List rows of an admin model
// @Description Returns one page of the model's rows, newest first, filtered by its search fields
// @Tags admin
// @Produce json
// @Param model path string true "Registered model name"
// @Param q query string false "Case-insensitive search over the model's search fields"
// @Param page query int false "Page number" default(1)
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 401 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/admin/{model} [get]
func (h *AdminHandler) ListRows(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.FromRequest(r, admin.DefaultPerPage)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidParameter("page", err), h.logger)
		return
	}

	result, err := h.service.List(r.Context(), chi.URLParam(r, "model"), r.URL.Query().Get("q"), page)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}
