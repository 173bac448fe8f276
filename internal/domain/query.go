package domain

import (
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apperrors "github.com/utafrali/catalog/pkg/errors"
)

// ListPageSize is the fixed page size of the product list.
const ListPageSize = 10

// DateLayout is the accepted format of the date filter.
const DateLayout = "2006-01-02"

// ProductQuery holds the optional filters of the product list. Zero values
// mean "not filtered".
type ProductQuery struct {
	Title     string
	Variant   string
	PriceFrom *decimal.Decimal
	PriceTo   *decimal.Decimal
	// Date is midnight UTC of the requested creation day.
	Date *time.Time
}

// HasPriceRowFilter reports whether any filter applies to price rows.
func (q ProductQuery) HasPriceRowFilter() bool {
	return q.Variant != "" || q.PriceFrom != nil || q.PriceTo != nil
}

// DayRange returns the half-open [start, end) interval of the date filter.
func (q ProductQuery) DayRange() (time.Time, time.Time) {
	return *q.Date, q.Date.Add(24 * time.Hour)
}

// ParseProductQuery reads title, variant, price_from, price_to and date from
// values. Blank parameters are ignored; malformed ones yield an
// INVALID_PARAMETER error.
func ParseProductQuery(values url.Values) (ProductQuery, error) {
	q := ProductQuery{
		Title:   strings.TrimSpace(values.Get("title")),
		Variant: strings.TrimSpace(values.Get("variant")),
	}

	var err error
	if q.PriceFrom, err = parseDecimal(values, "price_from"); err != nil {
		return ProductQuery{}, err
	}
	if q.PriceTo, err = parseDecimal(values, "price_to"); err != nil {
		return ProductQuery{}, err
	}

	if raw := strings.TrimSpace(values.Get("date")); raw != "" {
		day, err := time.ParseInLocation(DateLayout, raw, time.UTC)
		if err != nil {
			return ProductQuery{}, apperrors.InvalidParameter("date", err)
		}
		q.Date = &day
	}

	return q, nil
}

func parseDecimal(values url.Values, name string) (*decimal.Decimal, error) {
	raw := strings.TrimSpace(values.Get(name))
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, apperrors.InvalidParameter(name, err)
	}
	return &d, nil
}
