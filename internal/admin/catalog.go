package admin

const (
	joinProduct = "JOIN products p ON p.id = t.product_id"
	joinVariant = "JOIN variants v ON v.id = t.variant_id"
)

var (
	fieldID           = Field{Name: "id", Expr: "t.id::text"}
	fieldTitle        = Field{Name: "title", Expr: "t.title"}
	fieldProductTitle = Field{Name: "product", Expr: "p.title"}
)

// CatalogRegistry returns the registrations of every catalog model.
func CatalogRegistry() *Registry {
	r := NewRegistry()

	r.MustRegister(&ModelAdmin{
		Name:         "product",
		Table:        "products",
		ListDisplay:  []Field{fieldID, fieldTitle, {Name: "sku", Expr: "t.sku"}},
		SearchFields: []Field{fieldTitle},
	})

	r.MustRegister(&ModelAdmin{
		Name:         "variant",
		Table:        "variants",
		ListDisplay:  []Field{fieldID, fieldTitle, {Name: "active", Expr: "t.active"}},
		SearchFields: []Field{fieldTitle},
	})

	r.MustRegister(&ModelAdmin{
		Name:  "productvariantprice",
		Table: "product_variant_prices",
		Joins: []string{joinProduct},
		ListDisplay: []Field{
			fieldID,
			fieldProductTitle,
			{Name: "price", Expr: "t.price::text"},
			{Name: "stock", Expr: "t.stock"},
		},
	})

	r.MustRegister(&ModelAdmin{
		Name:        "productimage",
		Table:       "product_images",
		Joins:       []string{joinProduct},
		ListDisplay: []Field{fieldID, fieldProductTitle},
	})

	r.MustRegister(&ModelAdmin{
		Name:  "productvariant",
		Table: "product_variants",
		Joins: []string{joinProduct, joinVariant},
		ListDisplay: []Field{
			fieldID,
			{Name: "variant_title", Expr: "t.variant_title"},
			fieldProductTitle,
			{Name: "variant", Expr: "v.title"},
		},
	})

	return r
}
