package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MaxCombinationAxes is the number of variant values a price row can combine.
const MaxCombinationAxes = 3

// Product is a catalog entry.
type Product struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	SKU         string    `json:"sku"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ProductImage is a stored image path attached to a product.
type ProductImage struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	FilePath  string    `json:"file_path"`
	CreatedAt time.Time `json:"created_at"`
}

// ProductVariant is one value (for example "Red") a product offers under a
// variant category (for example Color).
type ProductVariant struct {
	ID           string    `json:"id"`
	VariantTitle string    `json:"variant_title"`
	VariantID    string    `json:"variant_id"`
	ProductID    string    `json:"product_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// ProductVariantPrice prices one combination of a product's variant values.
// VariantIDs is ordered: index 0 is slot one, and so on. It holds at most
// MaxCombinationAxes ids, each a ProductVariant of the same product.
type ProductVariantPrice struct {
	ID         string          `json:"id"`
	ProductID  string          `json:"product_id"`
	VariantIDs []string        `json:"variant_ids"`
	Price      decimal.Decimal `json:"price"`
	Stock      int             `json:"stock"`
	CreatedAt  time.Time       `json:"created_at"`

	// VariantTitles mirrors VariantIDs with the values' titles. Filled on
	// reads only.
	VariantTitles []string `json:"variant_titles,omitempty"`
}

// Title renders the combination as "Red/S", the format price titles are
// submitted in.
func (p ProductVariantPrice) Title() string {
	return JoinCombinationTitle(p.VariantTitles)
}

// ProductDetail is a product with all of its children.
type ProductDetail struct {
	Product
	Images   []ProductImage        `json:"images"`
	Variants []ProductVariant      `json:"variants"`
	Prices   []ProductVariantPrice `json:"prices"`
}

// ProductListItem is a product row of the list endpoint with its price rows
// loaded eagerly.
type ProductListItem struct {
	Product
	Prices []ProductVariantPrice `json:"prices"`
}
