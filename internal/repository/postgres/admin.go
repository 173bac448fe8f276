package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/utafrali/catalog/internal/admin"
	"github.com/utafrali/catalog/pkg/database"
	"github.com/utafrali/catalog/pkg/pagination"
)

// AdminRepository lists registered models for the back office.
type AdminRepository struct {
	pool database.DBTX
}

// NewAdminRepository creates a new PostgreSQL-backed admin repository.
func NewAdminRepository(pool database.DBTX) *AdminRepository {
	return &AdminRepository{pool: pool}
}

// adminSearch builds the search condition of m. search is ignored for
// models without search fields.
func adminSearch(m *admin.ModelAdmin, search string) *predicate {
	pred := &predicate{}
	if search != "" && m.Searchable() {
		pattern := pred.arg(containsPattern(search))
		ors := make([]string, len(m.SearchFields))
		for i, f := range m.SearchFields {
			ors[i] = f.Expr + " ILIKE " + pattern
		}
		pred.and("(" + strings.Join(ors, " OR ") + ")")
	}
	return pred
}

// adminListQuery renders the listing query of m.
func adminListQuery(m *admin.ModelAdmin, search string, page pagination.Params) (string, []any) {
	cols := make([]string, 0, len(m.ListDisplay)+1)
	for _, f := range m.ListDisplay {
		cols = append(cols, fmt.Sprintf("%s AS %q", f.Expr, f.Name))
	}
	cols = append(cols, "count(*) OVER() AS total_count")

	pred := adminSearch(m, search)
	query := fmt.Sprintf(`
		SELECT %s
		FROM %s t
		%s
		%s
		ORDER BY t.created_at DESC, t.id DESC
		LIMIT %s OFFSET %s`,
		strings.Join(cols, ", "), m.Table, strings.Join(m.Joins, "\n\t\t"), pred.where(),
		pred.arg(page.PerPage), pred.arg(page.Offset),
	)
	return query, pred.args
}

// adminCountQuery renders the query counting every match of search in m.
func adminCountQuery(m *admin.ModelAdmin, search string) (string, []any) {
	pred := adminSearch(m, search)
	query := fmt.Sprintf(`
		SELECT count(*)
		FROM %s t
		%s
		%s`,
		m.Table, strings.Join(m.Joins, "\n\t\t"), pred.where(),
	)
	return query, pred.args
}

// List returns one page of m's rows keyed by display field, and the total
// number of matches.
func (r *AdminRepository) List(ctx context.Context, m *admin.ModelAdmin, search string, page pagination.Params) (_ []admin.Row, _ int, err error) {
	query, args := adminListQuery(m, search, page)

	ctx, end := database.TraceQuery(ctx, "AdminList."+m.Name, query)
	defer func() { end(err) }()

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", m.Name, err)
	}
	defer rows.Close()

	names := m.Columns()
	out := []admin.Row{}
	total := 0
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, 0, fmt.Errorf("read %s row: %w", m.Name, err)
		}
		if len(vals) != len(names)+1 {
			return nil, 0, fmt.Errorf("read %s row: got %d columns, want %d", m.Name, len(vals), len(names)+1)
		}
		row := make(admin.Row, len(names))
		for i, name := range names {
			row[name] = vals[i]
		}
		if n, ok := vals[len(names)].(int64); ok {
			total = int(n)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate %s rows: %w", m.Name, err)
	}
	rows.Close()

	if len(out) == 0 && page.Offset > 0 {
		countQuery, countArgs := adminCountQuery(m, search)
		if err := r.pool.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
			return nil, 0, fmt.Errorf("count %s: %w", m.Name, err)
		}
	}
	return out, total, nil
}
