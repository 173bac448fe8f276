package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/utafrali/catalog/internal/domain"
	"github.com/utafrali/catalog/internal/repository"
	apperrors "github.com/utafrali/catalog/pkg/errors"
	"github.com/utafrali/catalog/pkg/pagination"
)

var (
	colorID = uuid.NewString()
	sizeID  = uuid.NewString()
)

type productFixture struct {
	svc     *ProductService
	repo    *mockProductRepository
	cache   *mockOptionsCache
	vrepo   *mockVariantRepository
	writer  *fakeWriter
	metrics *Metrics
}

func newProductFixture() *productFixture {
	f := &productFixture{
		repo:    new(mockProductRepository),
		cache:   new(mockOptionsCache),
		vrepo:   new(mockVariantRepository),
		writer:  &fakeWriter{},
		metrics: NewMetrics(prometheus.NewRegistry()),
	}
	variants := NewVariantService(f.vrepo, f.cache, testTTL, f.metrics, newTestLogger())
	f.svc = NewProductService(f.repo, variants, newTestProducer(f.writer), f.metrics, newTestLogger())
	return f
}

func shirtInput() *CreateProductInput {
	return &CreateProductInput{
		Title:       "Shirt",
		SKU:         "SH-1",
		Description: "cotton",
		Images:      []string{"/media/a.png", "/media/b.png"},
		Variants: []VariantInput{
			{OptionID: colorID, Tags: []string{"Red", "Blue"}},
			{OptionID: sizeID, Tags: []string{"S", "M"}},
		},
		Prices: []PriceInput{
			{Title: "Red/S/", Price: decimal.RequireFromString("10.50"), Stock: 3},
			{Title: "Blue/M", Price: decimal.RequireFromString("12"), Stock: 0},
		},
	}
}

func variantIDByTag(variants []domain.ProductVariant) map[string]string {
	out := make(map[string]string, len(variants))
	for _, v := range variants {
		out[v.VariantTitle] = v.ID
	}
	return out
}

func TestCreateProduct_Success(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	var stored *repository.NewProduct
	f.repo.On("Create", ctx, mock.AnythingOfType("*repository.NewProduct")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*repository.NewProduct) }).
		Return(nil)
	f.cache.On("Invalidate", ctx).Return(nil)

	detail, err := f.svc.CreateProduct(ctx, shirtInput())
	require.NoError(t, err)
	require.NotNil(t, stored)

	assert.Equal(t, "Shirt", detail.Title)
	assert.Equal(t, detail.CreatedAt, detail.UpdatedAt)
	assert.Equal(t, time.UTC, detail.CreatedAt.Location())

	require.Len(t, stored.Images, 2)
	assert.Equal(t, "/media/a.png", stored.Images[0].FilePath)
	assert.Equal(t, "/media/b.png", stored.Images[1].FilePath)

	require.Len(t, stored.Variants, 4)
	for _, v := range stored.Variants {
		assert.Equal(t, stored.Product.ID, v.ProductID)
	}
	ids := variantIDByTag(stored.Variants)

	require.Len(t, stored.Prices, 2)
	assert.Equal(t, []string{ids["Red"], ids["S"]}, stored.Prices[0].VariantIDs)
	assert.Equal(t, []string{"Red", "S"}, stored.Prices[0].VariantTitles)
	assert.Equal(t, []string{ids["Blue"], ids["M"]}, stored.Prices[1].VariantIDs)
	assert.True(t, decimal.RequireFromString("10.5").Equal(stored.Prices[0].Price))

	f.cache.AssertExpectations(t)
	assert.Len(t, f.writer.msgs, 1)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.productsCreated))
}

func TestCreateProduct_NoChildren(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	f.repo.On("Create", ctx, mock.AnythingOfType("*repository.NewProduct")).Return(nil)
	f.cache.On("Invalidate", ctx).Return(nil)

	detail, err := f.svc.CreateProduct(ctx, &CreateProductInput{Title: "Mug", SKU: "MUG"})
	require.NoError(t, err)
	assert.Empty(t, detail.Images)
	assert.Empty(t, detail.Variants)
	assert.Empty(t, detail.Prices)
}

func TestCreateProduct_ValidationErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(in *CreateProductInput)
	}{
		{"missing title", func(in *CreateProductInput) { in.Title = "  " }},
		{"missing sku", func(in *CreateProductInput) { in.SKU = "" }},
		{"empty image path", func(in *CreateProductInput) { in.Images = []string{""} }},
		{"bad option id", func(in *CreateProductInput) { in.Variants[0].OptionID = "color" }},
		{"empty tag", func(in *CreateProductInput) { in.Variants[0].Tags = []string{" "} }},
		{"negative price", func(in *CreateProductInput) { in.Prices[0].Price = decimal.NewFromInt(-1) }},
		{"negative stock", func(in *CreateProductInput) { in.Prices[0].Stock = -1 }},
		{"unknown tag", func(in *CreateProductInput) { in.Prices[0].Title = "Green/S" }},
		{"empty title", func(in *CreateProductInput) { in.Prices[0].Title = " / " }},
		{"too many components", func(in *CreateProductInput) { in.Prices[0].Title = "Red/S/Blue/M" }},
		{"ambiguous tag reference", func(in *CreateProductInput) { in.Variants[1].Tags = []string{"Red", "S"} }},
		{"tag twice in one option", func(in *CreateProductInput) { in.Variants[0].Tags = []string{"Red", "Red"} }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newProductFixture()
			in := shirtInput()
			tt.mutate(in)

			_, err := f.svc.CreateProduct(context.Background(), in)
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))

			var appErr *apperrors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, "INVALID_INPUT", appErr.Code)

			f.repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
			assert.Empty(t, f.writer.msgs)
		})
	}
}

func TestCreateProduct_CombinationErrorKeepsCause(t *testing.T) {
	f := newProductFixture()
	in := shirtInput()
	in.Prices[0].Title = "Green"

	_, err := f.svc.CreateProduct(context.Background(), in)
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidCombination))
}

func TestCreateProduct_SharedTagAcrossOptions(t *testing.T) {
	styleID := uuid.NewString()
	in := shirtInput()
	in.Variants = append(in.Variants, VariantInput{OptionID: styleID, Tags: []string{"Red", "Slim"}})
	in.Prices = []PriceInput{{Title: "Blue / M / Slim", Price: decimal.NewFromInt(15), Stock: 2}}

	np, err := buildProduct(in, time.Now().UTC())
	require.NoError(t, err)
	require.Len(t, np.Variants, 6)

	require.Len(t, np.Prices, 1)
	assert.Equal(t, []string{"Blue", "M", "Slim"}, np.Prices[0].VariantTitles)
	assert.Len(t, np.Prices[0].VariantIDs, 3)
}

func TestCreateProduct_ThreeAxes(t *testing.T) {
	styleID := uuid.NewString()
	in := shirtInput()
	in.Variants = append(in.Variants, VariantInput{OptionID: styleID, Tags: []string{"Slim"}})
	in.Prices = []PriceInput{{Title: "Red / S / Slim", Price: decimal.NewFromInt(20), Stock: 1}}

	np, err := buildProduct(in, time.Now().UTC())
	require.NoError(t, err)

	ids := variantIDByTag(np.Variants)
	require.Len(t, np.Prices, 1)
	assert.Equal(t, []string{ids["Red"], ids["S"], ids["Slim"]}, np.Prices[0].VariantIDs)
}

func TestCreateProduct_RepositoryError(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	f.repo.On("Create", ctx, mock.AnythingOfType("*repository.NewProduct")).
		Return(apperrors.AlreadyExists("product", "sku", "SH-1"))

	_, err := f.svc.CreateProduct(ctx, shirtInput())
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrAlreadyExists))

	f.cache.AssertNotCalled(t, "Invalidate", mock.Anything)
	assert.Empty(t, f.writer.msgs)
	assert.Equal(t, 0.0, testutil.ToFloat64(f.metrics.productsCreated))
}

func TestCreateProduct_PublishFailureDoesNotFail(t *testing.T) {
	f := newProductFixture()
	f.writer.err = errors.New("broker down")
	ctx := context.Background()

	f.repo.On("Create", ctx, mock.AnythingOfType("*repository.NewProduct")).Return(nil)
	f.cache.On("Invalidate", ctx).Return(errors.New("redis down"))

	detail, err := f.svc.CreateProduct(ctx, shirtInput())
	require.NoError(t, err)
	assert.NotEmpty(t, detail.ID)
}

func TestGetProduct(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	want := &domain.ProductDetail{Product: domain.Product{ID: "p-1", Title: "Shirt"}}
	f.repo.On("GetByID", ctx, "p-1").Return(want, nil)

	got, err := f.svc.GetProduct(ctx, "p-1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGetProduct_NotFound(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	f.repo.On("GetByID", ctx, "missing").Return(nil, apperrors.NotFound("product", "missing"))

	_, err := f.svc.GetProduct(ctx, "missing")
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestListProducts(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	q := domain.ProductQuery{Title: "shirt"}
	page := pagination.New(1, domain.ListPageSize)
	items := []domain.ProductListItem{{Product: domain.Product{ID: "p-2"}}, {Product: domain.Product{ID: "p-1"}}}
	opts := domain.VariantOptions{"Color": {"Red"}, "Size": {}}

	f.repo.On("List", ctx, repository.ProductFilter{ProductQuery: q, Params: page}).Return(items, 11, nil)
	f.cache.On("Get", ctx).Return(opts, int64(0), true, nil)

	got, err := f.svc.ListProducts(ctx, q, page)
	require.NoError(t, err)
	assert.Equal(t, items, got.Data)
	assert.Equal(t, 11, got.TotalCount)
	assert.Equal(t, 2, got.TotalPages)
	assert.True(t, got.HasNext)
	assert.False(t, got.HasPrev)
	assert.Equal(t, opts, got.VariantOptions)
}

func TestListProducts_EmptyResult(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	page := pagination.New(3, domain.ListPageSize)
	f.repo.On("List", ctx, mock.Anything).Return([]domain.ProductListItem{}, 0, nil)
	f.cache.On("Get", ctx).Return(domain.VariantOptions{}, int64(0), true, nil)

	got, err := f.svc.ListProducts(ctx, domain.ProductQuery{}, page)
	require.NoError(t, err)
	assert.Empty(t, got.Data)
	assert.NotNil(t, got.Data)
	assert.False(t, got.HasNext)
}

func TestListProducts_RepoError(t *testing.T) {
	f := newProductFixture()
	ctx := context.Background()

	f.repo.On("List", ctx, mock.Anything).Return([]domain.ProductListItem(nil), 0, errors.New("db down"))

	_, err := f.svc.ListProducts(ctx, domain.ProductQuery{}, pagination.New(1, domain.ListPageSize))
	require.Error(t, err)
	f.cache.AssertNotCalled(t, "Get", mock.Anything)
}
