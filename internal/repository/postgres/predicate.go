package postgres

import (
	"fmt"
	"strings"

	"github.com/utafrali/catalog/internal/domain"
)

// predicate accumulates AND-ed SQL conditions and their positional
// arguments.
type predicate struct {
	conds []string
	args  []any
}

// arg appends v and returns its placeholder.
func (p *predicate) arg(v any) string {
	p.args = append(p.args, v)
	return fmt.Sprintf("$%d", len(p.args))
}

func (p *predicate) and(cond string) {
	p.conds = append(p.conds, cond)
}

// where renders "WHERE a AND b", or "" when there are no conditions.
func (p *predicate) where() string {
	if len(p.conds) == 0 {
		return ""
	}
	return "WHERE " + strings.Join(p.conds, " AND ")
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds an ILIKE pattern matching s anywhere, with LIKE
// wildcards in s taken literally.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// productPredicate translates q into conditions over products aliased "p".
// The variant and price filters must hold for the same price row, so they
// share one EXISTS.
func productPredicate(q domain.ProductQuery) *predicate {
	p := &predicate{}

	if q.Title != "" {
		p.and("p.title ILIKE " + p.arg(containsPattern(q.Title)))
	}

	if q.HasPriceRowFilter() {
		var row []string
		if q.Variant != "" {
			row = append(row, `EXISTS (
				SELECT 1 FROM product_variants pv
				WHERE pv.variant_title = `+p.arg(q.Variant)+`
				  AND pv.id IN (pvp.product_variant_one, pvp.product_variant_two, pvp.product_variant_three))`)
		}
		if q.PriceFrom != nil {
			row = append(row, "pvp.price >= "+p.arg(*q.PriceFrom))
		}
		if q.PriceTo != nil {
			row = append(row, "pvp.price <= "+p.arg(*q.PriceTo))
		}
		p.and(`EXISTS (
			SELECT 1 FROM product_variant_prices pvp
			WHERE pvp.product_id = p.id AND ` + strings.Join(row, " AND ") + `)`)
	}

	if q.Date != nil {
		start, end := q.DayRange()
		p.and("p.created_at >= " + p.arg(start))
		p.and("p.created_at < " + p.arg(end))
	}

	return p
}
