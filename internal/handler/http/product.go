package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/utafrali/catalog/internal/domain"
	"github.com/utafrali/catalog/internal/service"
	apperrors "github.com/utafrali/catalog/pkg/errors"
	"github.com/utafrali/catalog/pkg/httputil"
	"github.com/utafrali/catalog/pkg/pagination"
	"github.com/utafrali/catalog/pkg/validator"
)

// ProductHandler handles HTTP requests for product endpoints.
type ProductHandler struct {
	service *service.ProductService
	logger  *slog.Logger
}

// NewProductHandler creates a new product HTTP handler.
func NewProductHandler(svc *service.ProductService, logger *slog.Logger) *ProductHandler {
	return &ProductHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Request DTOs ---

// CreateProductRequest is the JSON request body for creating a product.
type CreateProductRequest struct {
	Title       string                `json:"title" validate:"required,notblank,max=255"`
	SKU         string                `json:"sku" validate:"required,notblank,max=255"`
	Description string                `json:"description"`
	Images      []string              `json:"product_image" validate:"omitempty,dive,notblank"`
	Variants    []VariantRequest      `json:"product_variant" validate:"omitempty,dive"`
	Prices      []VariantPriceRequest `json:"product_variant_prices" validate:"omitempty,dive"`
}

// VariantRequest lists the values offered under one variant category.
type VariantRequest struct {
	Option string   `json:"option" validate:"required,uuid"`
	Tags   []string `json:"tags" validate:"required,min=1,dive,notblank"`
}

// VariantPriceRequest prices the combination named by Title, e.g. "Red/S/".
// Price accepts a JSON number or string.
type VariantPriceRequest struct {
	Title string          `json:"title" validate:"required,notblank"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock" validate:"gte=0"`
}

func (req *CreateProductRequest) toInput() *service.CreateProductInput {
	input := &service.CreateProductInput{
		Title:       req.Title,
		SKU:         req.SKU,
		Description: req.Description,
		Images:      req.Images,
		Variants:    make([]service.VariantInput, len(req.Variants)),
		Prices:      make([]service.PriceInput, len(req.Prices)),
	}
	for i, v := range req.Variants {
		input.Variants[i] = service.VariantInput{OptionID: v.Option, Tags: v.Tags}
	}
	for i, p := range req.Prices {
		input.Prices[i] = service.PriceInput{Title: p.Title, Price: p.Price, Stock: p.Stock}
	}
	return input
}

// --- Handlers ---

// ListProducts handles GET /api/v1/products
// @Summary List products
// @Description Returns products newest first, ten per page, with the variant facet map
// @Tags products
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param title query string false "Case-insensitive title substring"
// @Param variant query string false "Variant value on any price row"
// @Param price_from query number false "Minimum price row price"
// @Param price_to query number false "Maximum price row price"
// @Param date query string false "Creation day, YYYY-MM-DD"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/v1/products [get]
func (h *ProductHandler) ListProducts(w http.ResponseWriter, r *http.Request) {
	page, err := pagination.FromRequest(r, domain.ListPageSize)
	if err != nil {
		httputil.WriteError(w, r, apperrors.InvalidParameter("page", err), h.logger)
		return
	}

	q, err := domain.ParseProductQuery(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	result, err := h.service.ListProducts(r.Context(), q, page)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, result)
}

// GetProduct handles GET /api/v1/products/{id}
// @Summary Get product by ID
// @Tags products
// @Produce json
// @Param id path string true "Product UUID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} map[string]interface{}
// @Router /api/v1/products/{id} [get]
func (h *ProductHandler) GetProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParseUUID(w, chi.URLParam(r, "id"))
	if !ok {
		return
	}

	detail, err := h.service.GetProduct(r.Context(), id.String())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: detail})
}

// CreateProduct handles POST /api/v1/products
// @Summary Create a product
// @Description Creates a product with its images, variant values and priced combinations in one transaction
// @Tags products
// @Accept json
// @Produce json
// @Param request body CreateProductRequest true "Product to create"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Failure 409 {object} map[string]interface{}
// @Router /api/v1/products [post]
func (h *ProductHandler) CreateProduct(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req CreateProductRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	detail, err := h.service.CreateProduct(r.Context(), req.toInput())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: detail})
}
