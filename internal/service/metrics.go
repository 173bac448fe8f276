package service

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the catalog business counters.
type Metrics struct {
	productsCreated prometheus.Counter
	optionsLookups  *prometheus.CounterVec
}

// NewMetrics registers the catalog collectors on reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		productsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "catalog_products_created_total",
			Help: "Products committed by the create operation.",
		}),
		optionsLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "catalog_variant_options_lookups_total",
			Help: "Variant facet lookups by cache outcome.",
		}, []string{"result"}),
	}
	reg.MustRegister(m.productsCreated, m.optionsLookups)
	return m
}

func (m *Metrics) productCreated() {
	if m != nil {
		m.productsCreated.Inc()
	}
}

func (m *Metrics) optionsLookup(result string) {
	if m != nil {
		m.optionsLookups.WithLabelValues(result).Inc()
	}
}
