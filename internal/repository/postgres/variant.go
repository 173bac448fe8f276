package postgres

import (
	"context"
	"fmt"

	"github.com/utafrali/catalog/internal/domain"
	"github.com/utafrali/catalog/pkg/database"
)

const (
	selectActiveVariantsSQL = `
		SELECT id, title, description, active, created_at, updated_at
		FROM variants
		WHERE active
		ORDER BY title`

	// Variants without values still yield one row with a NULL value, so
	// every active variant shows up in the facet map.
	selectVariantOptionsSQL = `
		SELECT DISTINCT v.title, pv.variant_title
		FROM variants v
		LEFT JOIN product_variants pv ON pv.variant_id = v.id
		WHERE v.active
		ORDER BY v.title, pv.variant_title`
)

// VariantRepository implements repository.VariantRepository using PostgreSQL.
type VariantRepository struct {
	pool database.DBTX
}

// NewVariantRepository creates a new PostgreSQL-backed variant repository.
func NewVariantRepository(pool database.DBTX) *VariantRepository {
	return &VariantRepository{pool: pool}
}

// ListActive returns active variants ordered by title.
func (r *VariantRepository) ListActive(ctx context.Context) (_ []domain.Variant, err error) {
	ctx, end := database.TraceQuery(ctx, "ListActiveVariants", selectActiveVariantsSQL)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, selectActiveVariantsSQL)
	if err != nil {
		return nil, fmt.Errorf("list variants: %w", err)
	}
	defer rows.Close()

	variants := []domain.Variant{}
	for rows.Next() {
		var v domain.Variant
		if err := rows.Scan(&v.ID, &v.Title, &v.Description, &v.Active, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		variants = append(variants, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variants: %w", err)
	}
	return variants, nil
}

// Options returns, per active variant, the sorted distinct values recorded
// under it across all products.
func (r *VariantRepository) Options(ctx context.Context) (_ domain.VariantOptions, err error) {
	ctx, end := database.TraceQuery(ctx, "VariantOptions", selectVariantOptionsSQL)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, selectVariantOptionsSQL)
	if err != nil {
		return nil, fmt.Errorf("query variant options: %w", err)
	}
	defer rows.Close()

	opts := domain.VariantOptions{}
	for rows.Next() {
		var (
			variant string
			value   *string
		)
		if err := rows.Scan(&variant, &value); err != nil {
			return nil, fmt.Errorf("scan variant option: %w", err)
		}
		if _, ok := opts[variant]; !ok {
			opts[variant] = []string{}
		}
		if value != nil {
			opts[variant] = append(opts[variant], *value)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate variant options: %w", err)
	}
	return opts, nil
}
