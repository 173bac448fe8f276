package domain

import "time"

// Variant is a variant category such as Color or Size.
type Variant struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Active      bool      `json:"active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// VariantOptions maps each active variant title to the sorted distinct
// values products have recorded under it. Variants without values map to an
// empty slice.
type VariantOptions map[string][]string
