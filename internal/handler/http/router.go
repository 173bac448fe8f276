package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/utafrali/catalog/internal/service"
	"github.com/utafrali/catalog/pkg/health"
	"github.com/utafrali/catalog/pkg/middleware"
)

// variantsMaxAge is how long clients may cache the variant category list.
const variantsMaxAge = 5 * time.Minute

// RouterConfig carries the settings the router needs beyond its services.
type RouterConfig struct {
	ServiceName string
	CORS        middleware.CORSConfig
	PprofCIDRs  []string
	// CreateRateLimitPerMin limits product creates per client IP; 0 disables
	// the limit.
	CreateRateLimitPerMin int
	// AdminJWTSecret signs admin tokens. Admin routes are not mounted
	// without it.
	AdminJWTSecret string
	Registry       *prometheus.Registry
}

// NewRouter creates a chi router with all catalog routes registered.
func NewRouter(
	cfg RouterConfig,
	productService *service.ProductService,
	variantService *service.VariantService,
	adminService *service.AdminService,
	healthHandler *health.Handler,
	logger *slog.Logger,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(middleware.CORS(cfg.CORS))
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestLogging(logger))
	r.Use(middleware.NewHTTPMetrics(cfg.Registry, cfg.ServiceName).Middleware)
	r.Use(middleware.Tracing(cfg.ServiceName))
	r.Use(middleware.RequestLogger(logger))

	// Health check and operational endpoints
	r.Get("/health/live", healthHandler.LivenessHandler())
	r.Get("/health/ready", healthHandler.ReadinessHandler())
	r.Handle("/metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{Registry: cfg.Registry}))
	middleware.RegisterPprof(r, cfg.PprofCIDRs, logger)

	// Product API endpoints
	productHandler := NewProductHandler(productService, logger)

	r.Route("/api/v1/products", func(r chi.Router) {
		r.Use(ContentTypeJSON)

		r.Get("/", productHandler.ListProducts)
		r.Get("/{id}", productHandler.GetProduct)
		if cfg.CreateRateLimitPerMin > 0 {
			r.With(httprate.LimitByIP(cfg.CreateRateLimitPerMin, time.Minute)).Post("/", productHandler.CreateProduct)
		} else {
			r.Post("/", productHandler.CreateProduct)
		}
	})

	// Variant API endpoints
	variantHandler := NewVariantHandler(variantService, logger)

	r.Route("/api/v1/variants", func(r chi.Router) {
		r.With(middleware.CacheControl(variantsMaxAge)).Get("/", variantHandler.ListVariants)
		r.Get("/options", variantHandler.VariantOptions)
	})

	// Admin API endpoints
	if cfg.AdminJWTSecret == "" {
		logger.Warn("ADMIN_JWT_SECRET not set, admin endpoints disabled")
		return r
	}
	adminHandler := NewAdminHandler(adminService, logger)

	r.Route("/api/v1/admin", func(r chi.Router) {
		r.Use(middleware.Auth(middleware.HS256Validator([]byte(cfg.AdminJWTSecret))))
		r.Use(middleware.RequireRole("admin"))

		r.Get("/", adminHandler.ListModels)
		r.Get("/{model}", adminHandler.ListRows)
	})

	return r
}
