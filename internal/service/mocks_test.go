package service

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/mock"

	"github.com/utafrali/catalog/internal/admin"
	"github.com/utafrali/catalog/internal/domain"
	"github.com/utafrali/catalog/internal/event"
	"github.com/utafrali/catalog/internal/repository"
	pkgkafka "github.com/utafrali/catalog/pkg/kafka"
	"github.com/utafrali/catalog/pkg/pagination"
)

// --- Mock Repositories ---

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Create(ctx context.Context, np *repository.NewProduct) error {
	args := m.Called(ctx, np)
	return args.Error(0)
}

func (m *mockProductRepository) GetByID(ctx context.Context, id string) (*domain.ProductDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ProductDetail), args.Error(1)
}

func (m *mockProductRepository) List(ctx context.Context, filter repository.ProductFilter) ([]domain.ProductListItem, int, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.ProductListItem), args.Int(1), args.Error(2)
}

type mockVariantRepository struct {
	mock.Mock
}

func (m *mockVariantRepository) ListActive(ctx context.Context) ([]domain.Variant, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Variant), args.Error(1)
}

func (m *mockVariantRepository) Options(ctx context.Context) (domain.VariantOptions, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(domain.VariantOptions), args.Error(1)
}

type mockOptionsCache struct {
	mock.Mock
}

func (m *mockOptionsCache) Get(ctx context.Context) (domain.VariantOptions, int64, bool, error) {
	args := m.Called(ctx)
	gen := args.Get(1).(int64)
	if args.Get(0) == nil {
		return nil, gen, args.Bool(2), args.Error(3)
	}
	return args.Get(0).(domain.VariantOptions), gen, args.Bool(2), args.Error(3)
}

func (m *mockOptionsCache) Set(ctx context.Context, gen int64, opts domain.VariantOptions, ttl time.Duration) error {
	args := m.Called(ctx, gen, opts, ttl)
	return args.Error(0)
}

func (m *mockOptionsCache) Invalidate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockAdminRepository struct {
	mock.Mock
}

func (m *mockAdminRepository) List(ctx context.Context, model *admin.ModelAdmin, search string, page pagination.Params) ([]admin.Row, int, error) {
	args := m.Called(ctx, model, search, page)
	if args.Get(0) == nil {
		return nil, args.Int(1), args.Error(2)
	}
	return args.Get(0).([]admin.Row), args.Int(1), args.Error(2)
}

// --- Kafka fake ---

type fakeWriter struct {
	msgs []kafka.Message
	err  error
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestProducer(w *fakeWriter) *event.Producer {
	l := newTestLogger()
	return event.NewProducer(pkgkafka.NewProducerWithWriter(w, []string{"localhost:9092"}, l), l)
}
