package postgres

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/jackc/pgx/v5"

	"github.com/utafrali/catalog/internal/domain"
	"github.com/utafrali/catalog/internal/repository"
	"github.com/utafrali/catalog/pkg/database"
	apperrors "github.com/utafrali/catalog/pkg/errors"
)

const (
	insertProductSQL = `
		INSERT INTO products (id, title, sku, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)`

	insertImageSQL = `
		INSERT INTO product_images (id, product_id, file_path, created_at)
		VALUES ($1, $2, $3, $4)`

	insertVariantSQL = `
		INSERT INTO product_variants (id, variant_title, variant_id, product_id, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	insertPriceSQL = `
		INSERT INTO product_variant_prices
			(id, product_id, product_variant_one, product_variant_two, product_variant_three, price, stock, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	selectProductSQL = `
		SELECT id, title, sku, description, created_at, updated_at
		FROM products
		WHERE id = $1`

	selectImagesSQL = `
		SELECT id, product_id, file_path, created_at
		FROM product_images
		WHERE product_id = $1
		ORDER BY created_at, id`

	selectVariantsSQL = `
		SELECT id, variant_title, variant_id, product_id, created_at
		FROM product_variants
		WHERE product_id = $1
		ORDER BY created_at, id`

	selectPricesSQL = `
		SELECT pvp.id, pvp.product_id,
		       pvp.product_variant_one, pvp.product_variant_two, pvp.product_variant_three,
		       v1.variant_title, v2.variant_title, v3.variant_title,
		       pvp.price, pvp.stock, pvp.created_at
		FROM product_variant_prices pvp
		LEFT JOIN product_variants v1 ON v1.id = pvp.product_variant_one
		LEFT JOIN product_variants v2 ON v2.id = pvp.product_variant_two
		LEFT JOIN product_variants v3 ON v3.id = pvp.product_variant_three
		WHERE pvp.product_id = ANY($1)
		ORDER BY pvp.created_at, pvp.id`
)

// ProductRepository implements repository.ProductRepository using PostgreSQL.
type ProductRepository struct {
	pool database.DBTX
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool database.DBTX) *ProductRepository {
	return &ProductRepository{pool: pool}
}

// Create inserts the product, then its images, variant values and price
// rows, all in one transaction. Nothing is written if any insert fails.
func (r *ProductRepository) Create(ctx context.Context, np *repository.NewProduct) (err error) {
	ctx, end := database.TraceQuery(ctx, "CreateProduct", insertProductSQL)
	defer func() { end(err) }()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	p := np.Product
	if _, err = tx.Exec(ctx, insertProductSQL,
		p.ID, p.Title, p.SKU, p.Description, p.CreatedAt, p.UpdatedAt,
	); err != nil {
		if database.IsUniqueViolation(err) {
			return apperrors.AlreadyExists("product", "sku", p.SKU)
		}
		return fmt.Errorf("insert product: %w", err)
	}

	for _, img := range np.Images {
		if _, err = tx.Exec(ctx, insertImageSQL, img.ID, img.ProductID, img.FilePath, img.CreatedAt); err != nil {
			return fmt.Errorf("insert product image: %w", err)
		}
	}

	for _, v := range np.Variants {
		if _, err = tx.Exec(ctx, insertVariantSQL, v.ID, v.VariantTitle, v.VariantID, v.ProductID, v.CreatedAt); err != nil {
			if database.IsForeignKeyViolation(err) {
				return apperrors.InvalidInput(fmt.Sprintf("unknown variant option %s", v.VariantID))
			}
			return fmt.Errorf("insert product variant: %w", err)
		}
	}

	for _, pr := range np.Prices {
		one, two, three := slots(pr.VariantIDs)
		if _, err = tx.Exec(ctx, insertPriceSQL,
			pr.ID, pr.ProductID, one, two, three, pr.Price, pr.Stock, pr.CreatedAt,
		); err != nil {
			return fmt.Errorf("insert product variant price: %w", err)
		}
	}

	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// slots spreads an ordered combination over the three slot columns.
func slots(ids []string) (one, two, three *string) {
	out := [domain.MaxCombinationAxes]*string{}
	for i := 0; i < len(ids) && i < domain.MaxCombinationAxes; i++ {
		out[i] = &ids[i]
	}
	return out[0], out[1], out[2]
}

// GetByID returns a product with its images, variant values and prices.
func (r *ProductRepository) GetByID(ctx context.Context, id string) (_ *domain.ProductDetail, err error) {
	ctx, end := database.TraceQuery(ctx, "GetProduct", selectProductSQL)
	defer func() { end(err) }()

	var detail domain.ProductDetail
	p := &detail.Product
	err = r.pool.QueryRow(ctx, selectProductSQL, id).
		Scan(&p.ID, &p.Title, &p.SKU, &p.Description, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("product", id)
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	if detail.Images, err = r.images(ctx, id); err != nil {
		return nil, err
	}
	if detail.Variants, err = r.variants(ctx, id); err != nil {
		return nil, err
	}
	prices, err := r.pricesFor(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	detail.Prices = prices[id]
	if detail.Prices == nil {
		detail.Prices = []domain.ProductVariantPrice{}
	}

	return &detail, nil
}

func (r *ProductRepository) images(ctx context.Context, productID string) ([]domain.ProductImage, error) {
	rows, err := r.pool.Query(ctx, selectImagesSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("query product images: %w", err)
	}
	defer rows.Close()

	images := []domain.ProductImage{}
	for rows.Next() {
		var img domain.ProductImage
		if err := rows.Scan(&img.ID, &img.ProductID, &img.FilePath, &img.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product image: %w", err)
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product images: %w", err)
	}
	return images, nil
}

func (r *ProductRepository) variants(ctx context.Context, productID string) ([]domain.ProductVariant, error) {
	rows, err := r.pool.Query(ctx, selectVariantsSQL, productID)
	if err != nil {
		return nil, fmt.Errorf("query product variants: %w", err)
	}
	defer rows.Close()

	variants := []domain.ProductVariant{}
	for rows.Next() {
		var v domain.ProductVariant
		if err := rows.Scan(&v.ID, &v.VariantTitle, &v.VariantID, &v.ProductID, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan product variant: %w", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product variants: %w", err)
	}
	return variants, nil
}

// List returns one page of products matching the filter, newest first, with
// their price rows. EXISTS sub-predicates keep each product to one row no
// matter how many price rows match.
func (r *ProductRepository) List(ctx context.Context, filter repository.ProductFilter) (_ []domain.ProductListItem, _ int, err error) {
	pred := productPredicate(filter.ProductQuery)
	where := pred.where()
	countArgs := slices.Clone(pred.args)
	query := fmt.Sprintf(`
		SELECT p.id, p.title, p.sku, p.description, p.created_at, p.updated_at,
		       count(*) OVER() AS total_count
		FROM products p
		%s
		ORDER BY p.created_at DESC, p.id DESC
		LIMIT %s OFFSET %s`,
		where, pred.arg(filter.PerPage), pred.arg(filter.Offset),
	)

	ctx, end := database.TraceQuery(ctx, "ListProducts", query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, pred.args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var (
		items      []domain.ProductListItem
		ids        []string
		totalCount int
	)
	for rows.Next() {
		var item domain.ProductListItem
		p := &item.Product
		if err := rows.Scan(&p.ID, &p.Title, &p.SKU, &p.Description, &p.CreatedAt, &p.UpdatedAt, &totalCount); err != nil {
			return nil, 0, fmt.Errorf("scan product row: %w", err)
		}
		items = append(items, item)
		ids = append(ids, p.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate product rows: %w", err)
	}
	rows.Close()

	if len(items) == 0 {
		// The window count is only carried by returned rows, so a page past
		// the end needs its own count.
		if filter.Offset > 0 {
			countQuery := "SELECT count(*) FROM products p " + where
			if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&totalCount); err != nil {
				return nil, 0, fmt.Errorf("count products: %w", err)
			}
		}
		return []domain.ProductListItem{}, totalCount, nil
	}

	prices, err := r.pricesFor(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	for i := range items {
		items[i].Prices = prices[items[i].ID]
		if items[i].Prices == nil {
			items[i].Prices = []domain.ProductVariantPrice{}
		}
	}

	return items, totalCount, nil
}

// pricesFor loads the price rows of all productIDs in one query, grouped by
// product.
func (r *ProductRepository) pricesFor(ctx context.Context, productIDs []string) (map[string][]domain.ProductVariantPrice, error) {
	rows, err := r.pool.Query(ctx, selectPricesSQL, productIDs)
	if err != nil {
		return nil, fmt.Errorf("query product variant prices: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]domain.ProductVariantPrice, len(productIDs))
	for rows.Next() {
		var (
			pr         domain.ProductVariantPrice
			slotIDs    [domain.MaxCombinationAxes]*string
			slotTitles [domain.MaxCombinationAxes]*string
		)
		if err := rows.Scan(
			&pr.ID, &pr.ProductID,
			&slotIDs[0], &slotIDs[1], &slotIDs[2],
			&slotTitles[0], &slotTitles[1], &slotTitles[2],
			&pr.Price, &pr.Stock, &pr.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan product variant price: %w", err)
		}

		pr.VariantIDs = []string{}
		pr.VariantTitles = []string{}
		for i, id := range slotIDs {
			if id == nil {
				continue
			}
			pr.VariantIDs = append(pr.VariantIDs, *id)
			if slotTitles[i] != nil {
				pr.VariantTitles = append(pr.VariantTitles, *slotTitles[i])
			}
		}
		out[pr.ProductID] = append(out[pr.ProductID], pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate product variant prices: %w", err)
	}
	return out, nil
}
