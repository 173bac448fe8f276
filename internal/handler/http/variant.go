package http

import (
	"log/slog"
	"net/http"

	"github.com/utafrali/catalog/internal/service"
	"github.com/utafrali/catalog/pkg/httputil"
)

// VariantHandler serves variant categories.
type VariantHandler struct {
	service *service.VariantService
	logger  *slog.Logger
}

// NewVariantHandler creates a new variant HTTP handler.
func NewVariantHandler(svc *service.VariantService, logger *slog.Logger) *VariantHandler {
	return &VariantHandler{service: svc, logger: logger}
}

type variantResponse struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ListVariants handles GET /api/v1/variants
// @Summary List variant categories
// @Description Returns the active variant categories ordered by title
// @Tags variants
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/variants [get]
func (h *VariantHandler) ListVariants(w http.ResponseWriter, r *http.Request) {
	variants, err := h.service.ListActive(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	out := make([]variantResponse, len(variants))
	for i, v := range variants {
		out[i] = variantResponse{ID: v.ID, Title: v.Title}
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: out})
}

// VariantOptions handles GET /api/v1/variants/options
// @Summary Variant facet map
// @Description Maps every active variant category to the sorted distinct values recorded under it
// @Tags variants
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/v1/variants/options [get]
func (h *VariantHandler) VariantOptions(w http.ResponseWriter, r *http.Request) {
	opts, err := h.service.Options(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: opts})
}
