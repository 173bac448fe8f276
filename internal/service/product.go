package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/utafrali/catalog/internal/domain"
	"github.com/utafrali/catalog/internal/event"
	"github.com/utafrali/catalog/internal/repository"
	apperrors "github.com/utafrali/catalog/pkg/errors"
	"github.com/utafrali/catalog/pkg/pagination"
)

// ProductService implements the business logic for product operations.
type ProductService struct {
	repo     repository.ProductRepository
	variants *VariantService
	producer *event.Producer
	metrics  *Metrics
	logger   *slog.Logger
}

// NewProductService creates a new product service.
func NewProductService(
	repo repository.ProductRepository,
	variants *VariantService,
	producer *event.Producer,
	metrics *Metrics,
	logger *slog.Logger,
) *ProductService {
	return &ProductService{
		repo:     repo,
		variants: variants,
		producer: producer,
		metrics:  metrics,
		logger:   logger,
	}
}

// VariantInput lists the values a product offers under one variant
// category.
type VariantInput struct {
	OptionID string
	Tags     []string
}

// PriceInput prices one combination, named by a title such as "Red/S/".
type PriceInput struct {
	Title string
	Price decimal.Decimal
	Stock int
}

// CreateProductInput holds the parameters for creating a product.
type CreateProductInput struct {
	Title       string
	SKU         string
	Description string
	Images      []string
	Variants    []VariantInput
	Prices      []PriceInput
}

// ProductPage is one page of the product list together with the variant
// facet map.
type ProductPage struct {
	pagination.Result[domain.ProductListItem]
	VariantOptions domain.VariantOptions `json:"variant_options"`
}

// CreateProduct validates input, resolves every price title to the
// product's variant values and stores the product with all of its rows in a
// single transaction.
func (s *ProductService) CreateProduct(ctx context.Context, input *CreateProductInput) (*domain.ProductDetail, error) {
	np, err := buildProduct(input, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, np); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	detail := &domain.ProductDetail{
		Product:  *np.Product,
		Images:   np.Images,
		Variants: np.Variants,
		Prices:   np.Prices,
	}

	s.metrics.productCreated()
	if s.variants != nil {
		s.variants.InvalidateOptions(ctx)
	}
	if s.producer != nil {
		if err := s.producer.PublishProductCreated(ctx, detail); err != nil {
			s.logger.ErrorContext(ctx, "failed to publish product.created event",
				slog.String("product_id", detail.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	s.logger.InfoContext(ctx, "product created",
		slog.String("product_id", detail.ID),
		slog.String("sku", detail.SKU),
		slog.Int("images", len(detail.Images)),
		slog.Int("variants", len(detail.Variants)),
		slog.Int("prices", len(detail.Prices)),
	)

	return detail, nil
}

// buildProduct turns input into the rows Create inserts. All checks run
// here, before any transaction is opened.
func buildProduct(input *CreateProductInput, now time.Time) (*repository.NewProduct, error) {
	title := strings.TrimSpace(input.Title)
	sku := strings.TrimSpace(input.SKU)
	if title == "" {
		return nil, apperrors.InvalidInput("product title is required")
	}
	if sku == "" {
		return nil, apperrors.InvalidInput("product sku is required")
	}

	product := &domain.Product{
		ID:          uuid.New().String(),
		Title:       title,
		SKU:         sku,
		Description: input.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	np := &repository.NewProduct{
		Product:  product,
		Images:   make([]domain.ProductImage, 0, len(input.Images)),
		Variants: []domain.ProductVariant{},
		Prices:   make([]domain.ProductVariantPrice, 0, len(input.Prices)),
	}

	for _, path := range input.Images {
		if strings.TrimSpace(path) == "" {
			return nil, apperrors.InvalidInput("image path must not be empty")
		}
		np.Images = append(np.Images, domain.ProductImage{
			ID:        uuid.New().String(),
			ProductID: product.ID,
			FilePath:  path,
			CreatedAt: now,
		})
	}

	for _, v := range input.Variants {
		if _, err := uuid.Parse(v.OptionID); err != nil {
			return nil, apperrors.InvalidInput(fmt.Sprintf("variant option %q is not a valid id", v.OptionID))
		}
		for _, tag := range v.Tags {
			tag = strings.TrimSpace(tag)
			if tag == "" {
				return nil, apperrors.InvalidInput("variant tag must not be empty")
			}
			np.Variants = append(np.Variants, domain.ProductVariant{
				ID:           uuid.New().String(),
				VariantTitle: tag,
				VariantID:    v.OptionID,
				ProductID:    product.ID,
				CreatedAt:    now,
			})
		}
	}

	index, err := domain.NewCombinationIndex(np.Variants)
	if err != nil {
		return nil, combinationError(err)
	}

	for _, p := range input.Prices {
		if p.Price.IsNegative() {
			return nil, apperrors.InvalidInput(fmt.Sprintf("price of %q must not be negative", p.Title))
		}
		if p.Stock < 0 {
			return nil, apperrors.InvalidInput(fmt.Sprintf("stock of %q must not be negative", p.Title))
		}
		ids, err := index.Resolve(p.Title)
		if err != nil {
			return nil, combinationError(err)
		}
		np.Prices = append(np.Prices, domain.ProductVariantPrice{
			ID:            uuid.New().String(),
			ProductID:     product.ID,
			VariantIDs:    ids,
			Price:         p.Price,
			Stock:         p.Stock,
			CreatedAt:     now,
			VariantTitles: domain.ParseCombinationTitle(p.Title),
		})
	}

	return np, nil
}

func combinationError(err error) error {
	if errors.Is(err, domain.ErrInvalidCombination) {
		e := apperrors.InvalidInput(err.Error())
		e.Err = fmt.Errorf("%w: %w", apperrors.ErrInvalidInput, err)
		return e
	}
	return err
}

// GetProduct retrieves a product with images, variants and prices.
func (s *ProductService) GetProduct(ctx context.Context, id string) (*domain.ProductDetail, error) {
	detail, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product by id: %w", err)
	}
	return detail, nil
}

// ListProducts returns one page of products matching q, newest first, with
// the variant facet map of the whole catalog.
func (s *ProductService) ListProducts(ctx context.Context, q domain.ProductQuery, page pagination.Params) (*ProductPage, error) {
	items, total, err := s.repo.List(ctx, repository.ProductFilter{ProductQuery: q, Params: page})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	var opts domain.VariantOptions
	if s.variants != nil {
		if opts, err = s.variants.Options(ctx); err != nil {
			return nil, fmt.Errorf("list products: %w", err)
		}
	}
	if opts == nil {
		opts = domain.VariantOptions{}
	}

	return &ProductPage{
		Result:         pagination.NewResult(items, total, page),
		VariantOptions: opts,
	}, nil
}
