package repository

import (
	"context"
	"time"

	"github.com/utafrali/catalog/internal/admin"
	"github.com/utafrali/catalog/internal/domain"
	"github.com/utafrali/catalog/pkg/pagination"
)

// ProductFilter selects one page of the product list.
type ProductFilter struct {
	domain.ProductQuery
	pagination.Params
}

// NewProduct is a product with all rows created together with it.
type NewProduct struct {
	Product  *domain.Product
	Images   []domain.ProductImage
	Variants []domain.ProductVariant
	Prices   []domain.ProductVariantPrice
}

// ProductRepository persists products and their children.
type ProductRepository interface {
	// Create inserts the product and every child row in one transaction.
	Create(ctx context.Context, p *NewProduct) error

	// GetByID returns the product with images, variants and prices.
	GetByID(ctx context.Context, id string) (*domain.ProductDetail, error)

	// List returns one page of matching products, newest first, with their
	// price rows, and the total number of matches.
	List(ctx context.Context, filter ProductFilter) ([]domain.ProductListItem, int, error)
}

// VariantRepository reads variant categories.
type VariantRepository interface {
	// ListActive returns active variants ordered by title.
	ListActive(ctx context.Context) ([]domain.Variant, error)

	// Options computes the variant facet map.
	Options(ctx context.Context) (domain.VariantOptions, error)
}

// VariantOptionsCache stores the computed facet map under a generation.
// Invalidate starts a new generation; a Set for an older one is never read.
type VariantOptionsCache interface {
	// Get returns the cached map, the generation it was looked up under and
	// whether it was present.
	Get(ctx context.Context) (domain.VariantOptions, int64, bool, error)
	Set(ctx context.Context, gen int64, opts domain.VariantOptions, ttl time.Duration) error
	Invalidate(ctx context.Context) error
}

// AdminRepository lists rows of registered models.
type AdminRepository interface {
	List(ctx context.Context, m *admin.ModelAdmin, search string, page pagination.Params) ([]admin.Row, int, error)
}
