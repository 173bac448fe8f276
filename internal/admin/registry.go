// Package admin holds the list and search configuration of the catalog's
// back-office model listings.
package admin

import (
	"fmt"
	"slices"
	"strings"
)

// DefaultPerPage is the page size of admin listings.
const DefaultPerPage = 20

// Field is one column of a listing together with the SQL expression that
// produces it. Expressions refer to the model table as "t" and to joined
// tables by the aliases declared in ModelAdmin.Joins.
type Field struct {
	Name string
	Expr string
}

// ModelAdmin describes how one model is listed and searched.
type ModelAdmin struct {
	Name         string
	Table        string
	Joins        []string
	ListDisplay  []Field
	SearchFields []Field
}

// Row is one listed record keyed by display field name.
type Row map[string]any

// Searchable reports whether the model declares search fields.
func (m *ModelAdmin) Searchable() bool {
	return len(m.SearchFields) > 0
}

// Columns returns the display field names in order.
func (m *ModelAdmin) Columns() []string {
	cols := make([]string, len(m.ListDisplay))
	for i, f := range m.ListDisplay {
		cols[i] = f.Name
	}
	return cols
}

// Summary is the JSON description of a registration.
type Summary struct {
	Name         string   `json:"name"`
	ListDisplay  []string `json:"list_display"`
	SearchFields []string `json:"search_fields"`
}

// Summary describes m for the registry listing.
func (m *ModelAdmin) Summary() Summary {
	search := make([]string, len(m.SearchFields))
	for i, f := range m.SearchFields {
		search[i] = f.Name
	}
	return Summary{Name: m.Name, ListDisplay: m.Columns(), SearchFields: search}
}

// Registry maps model names to their configuration.
type Registry struct {
	models map[string]*ModelAdmin
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]*ModelAdmin)}
}

// Register adds m. Names are case-insensitive and must be unique; a model
// needs at least one display field.
func (r *Registry) Register(m *ModelAdmin) error {
	key := strings.ToLower(m.Name)
	if key == "" {
		return fmt.Errorf("admin: model name is required")
	}
	if len(m.ListDisplay) == 0 {
		return fmt.Errorf("admin: model %s has no list_display fields", key)
	}
	if _, dup := r.models[key]; dup {
		return fmt.Errorf("admin: model %s already registered", key)
	}
	m.Name = key
	r.models[key] = m
	return nil
}

// MustRegister is Register that panics on error.
func (r *Registry) MustRegister(m *ModelAdmin) {
	if err := r.Register(m); err != nil {
		panic(err)
	}
}

// Get looks up a model by name.
func (r *Registry) Get(name string) (*ModelAdmin, bool) {
	m, ok := r.models[strings.ToLower(name)]
	return m, ok
}

// Models returns every registration ordered by name.
func (r *Registry) Models() []*ModelAdmin {
	out := make([]*ModelAdmin, 0, len(r.models))
	for _, m := range r.models {
		out = append(out, m)
	}
	slices.SortFunc(out, func(a, b *ModelAdmin) int { return strings.Compare(a.Name, b.Name) })
	return out
}
