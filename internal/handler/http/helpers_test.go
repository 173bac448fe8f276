package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/catalog/internal/admin"
	"github.com/utafrali/catalog/internal/domain"
	"github.com/utafrali/catalog/internal/repository"
	"github.com/utafrali/catalog/internal/service"
	"github.com/utafrali/catalog/pkg/health"
	"github.com/utafrali/catalog/pkg/httputil"
	"github.com/utafrali/catalog/pkg/middleware"
	"github.com/utafrali/catalog/pkg/pagination"
)

// =============================================================================
// Mock repositories
// =============================================================================

type mockProductRepo struct {
	mock.Mock
}

func (m *mockProductRepo) Create(ctx context.Context, np *repository.NewProduct) error {
	args := m.Called(ctx, np)
	return args.Error(0)
}

func (m *mockProductRepo) GetByID(ctx context.Context, id string) (*domain.ProductDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductDetail), args.Error(1)
}

func (m *mockProductRepo) List(ctx context.Context, filter repository.ProductFilter) ([]domain.ProductListItem, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.ProductListItem), args.Int(1), args.Error(2)
}

type mockVariantRepo struct {
	mock.Mock
}

func (m *mockVariantRepo) ListActive(ctx context.Context) ([]domain.Variant, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Variant), args.Error(1)
}

func (m *mockVariantRepo) Options(ctx context.Context) (domain.VariantOptions, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.VariantOptions), args.Error(1)
}

type mockAdminRepo struct {
	mock.Mock
}

func (m *mockAdminRepo) List(ctx context.Context, model *admin.ModelAdmin, search string, page pagination.Params) ([]admin.Row, int, error) {
	args := m.Called(ctx, model, search, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]admin.Row), args.Int(1), args.Error(2)
}

// =============================================================================
// Test helpers
// =============================================================================

const testAdminSecret = "test-admin-secret"

type testEnv struct {
	router   http.Handler
	products *mockProductRepo
	variants *mockVariantRepo
	admin    *mockAdminRepo
	registry *prometheus.Registry
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEnv(t *testing.T, mutate ...func(*RouterConfig)) *testEnv {
	t.Helper()
	env := &testEnv{
		products: new(mockProductRepo),
		variants: new(mockVariantRepo),
		admin:    new(mockAdminRepo),
		registry: prometheus.NewRegistry(),
	}

	logger := testLogger()
	metrics := service.NewMetrics(env.registry)
	variantSvc := service.NewVariantService(env.variants, nil, time.Minute, metrics, logger)
	productSvc := service.NewProductService(env.products, variantSvc, nil, metrics, logger)
	adminSvc := service.NewAdminService(admin.CatalogRegistry(), env.admin)

	cfg := RouterConfig{
		ServiceName:    "catalog",
		CORS:           middleware.CORSConfig{AllowedOrigins: []string{"*"}},
		AdminJWTSecret: testAdminSecret,
		Registry:       env.registry,
	}
	for _, fn := range mutate {
		fn(&cfg)
	}

	env.router = NewRouter(cfg, productSvc, variantSvc, adminSvc, health.NewHandler(), logger)
	return env
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func adminToken(t *testing.T, role string) string {
	t.Helper()
	claims := middleware.Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "staff-1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testAdminSecret))
	require.NoError(t, err)
	return s
}
