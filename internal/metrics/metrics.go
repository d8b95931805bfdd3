package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Collector tracks storefront counters on a Prometheus registry.
type Collector struct {
	ordersPlaced  prometheus.Counter
	orderRevenue  prometheus.Counter
	statusChanges *prometheus.CounterVec
	signUps       prometheus.Counter
	catalogErrors prometheus.Counter
	policyDenials *prometheus.CounterVec
}

func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		ordersPlaced: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_orders_placed_total",
			Help: "Orders written to the order store.",
		}),
		orderRevenue: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_order_revenue_total",
			Help: "Sum of order totals at placement time.",
		}),
		statusChanges: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_order_status_changes_total",
			Help: "Admin order status updates by target status.",
		}, []string{"status"}),
		signUps: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_signups_total",
			Help: "Accounts created.",
		}),
		catalogErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_catalog_errors_total",
			Help: "Failed upstream catalog requests.",
		}),
		policyDenials: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_policy_denials_total",
			Help: "Access decisions denied by the policy engine, by reason.",
		}, []string{"reason"}),
	}

	reg.MustRegister(
		c.ordersPlaced,
		c.orderRevenue,
		c.statusChanges,
		c.signUps,
		c.catalogErrors,
		c.policyDenials,
	)

	return c
}

func (c *Collector) RecordOrderPlaced(total string) {
	c.ordersPlaced.Inc()
	if d, err := decimal.NewFromString(total); err == nil {
		f, _ := d.Float64()
		c.orderRevenue.Add(f)
	}
}

func (c *Collector) RecordStatusChange(status string) {
	c.statusChanges.WithLabelValues(status).Inc()
}

func (c *Collector) RecordSignUp() {
	c.signUps.Inc()
}

func (c *Collector) RecordCatalogError() {
	c.catalogErrors.Inc()
}

func (c *Collector) RecordPolicyDenial(reason string) {
	c.policyDenials.WithLabelValues(reason).Inc()
}

// Handler returns the scrape endpoint for the given gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
