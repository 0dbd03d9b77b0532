package prometheus

import (
	"strconv"
	"time"

	"order-service/internal/model"
	"order-service/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the service collectors. A nil *Metrics records nothing.
type Metrics struct {
	// HTTP request metrics
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec

	// Authentication metrics
	AuthAttemptsCounter *prometheus.CounterVec

	// Database operation metrics
	DbOperationDuration *prometheus.HistogramVec

	// Order metrics
	OrderOperationsCounter *prometheus.CounterVec
	OrderAmountHistogram   *prometheus.HistogramVec
	MembershipUpgrades     *prometheus.CounterVec

	// Catalog metrics
	ProductOperationsCounter  *prometheus.CounterVec
	CustomerOperationsCounter *prometheus.CounterVec
	ProductInventoryGauge     *prometheus.GaugeVec
}

// InitMetrics registers the service metrics with the default registry
func InitMetrics(cfg *config.Config) *Metrics {
	return NewMetrics(cfg.Metrics.Prefix, prometheus.DefaultRegisterer)
}

// NewMetrics creates the service metrics and registers them with reg
func NewMetrics(prefix string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HttpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HttpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		AuthAttemptsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_auth_attempts_total",
				Help: "Total number of authentication attempts by outcome",
			},
			[]string{"outcome"},
		),
		DbOperationDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_db_operation_duration_seconds",
				Help:    "Duration of database operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation_type"},
		),
		OrderOperationsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_order_operations_total",
				Help: "Total number of order operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		OrderAmountHistogram: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_order_final_amount",
				Help:    "Final amount of created orders",
				Buckets: prometheus.ExponentialBuckets(10_000, 4, 10),
			},
			[]string{"tier"},
		),
		MembershipUpgrades: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_membership_upgrades_total",
				Help: "Total number of membership tier upgrades",
			},
			[]string{"tier"},
		),
		ProductOperationsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_product_operations_total",
				Help: "Total number of product operations",
			},
			[]string{"operation"},
		),
		CustomerOperationsCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_customer_operations_total",
				Help: "Total number of customer operations",
			},
			[]string{"operation"},
		),
		ProductInventoryGauge: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: prefix + "_product_inventory",
				Help: "Current inventory level for products",
			},
			[]string{"product_id", "product_name", "category"},
		),
	}
}

// TrackDBOperation returns a function that records the duration of a database operation
func (m *Metrics) TrackDBOperation(operationType string) func(startTime time.Time) {
	return func(startTime time.Time) {
		if m == nil {
			return
		}
		m.DbOperationDuration.WithLabelValues(operationType).Observe(time.Since(startTime).Seconds())
	}
}

// RecordHTTPRequest records one served request
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.HttpRequestsTotal.WithLabelValues(method, path, code).Inc()
	m.HttpRequestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
}

// RecordAuthAttempt increments the authentication counter for outcome
func (m *Metrics) RecordAuthAttempt(outcome string) {
	if m == nil {
		return
	}
	m.AuthAttemptsCounter.WithLabelValues(outcome).Inc()
}

// RecordOrderOperation increments the counter for order operations
func (m *Metrics) RecordOrderOperation(operation, outcome string) {
	if m == nil {
		return
	}
	m.OrderOperationsCounter.WithLabelValues(operation, outcome).Inc()
}

// ObserveOrder records the final amount of a newly created order
func (m *Metrics) ObserveOrder(order *model.Order, tier model.Tier) {
	if m == nil {
		return
	}
	amount, _ := order.FinalAmount.Float64()
	m.OrderAmountHistogram.WithLabelValues(string(tier)).Observe(amount)
}

// RecordMembershipUpgrade counts a customer reaching tier
func (m *Metrics) RecordMembershipUpgrade(tier model.Tier) {
	if m == nil {
		return
	}
	m.MembershipUpgrades.WithLabelValues(string(tier)).Inc()
}

// RecordProductOperation increments the counter for product operations
func (m *Metrics) RecordProductOperation(operation string) {
	if m == nil {
		return
	}
	m.ProductOperationsCounter.WithLabelValues(operation).Inc()
}

// RecordCustomerOperation increments the counter for customer operations
func (m *Metrics) RecordCustomerOperation(operation string) {
	if m == nil {
		return
	}
	m.CustomerOperationsCounter.WithLabelValues(operation).Inc()
}

// UpdateProductInventory updates the gauge for product inventory
func (m *Metrics) UpdateProductInventory(product *model.Product) {
	if m == nil {
		return
	}
	m.ProductInventoryGauge.
		WithLabelValues(strconv.FormatUint(uint64(product.ID), 10), product.Name, string(product.Category)).
		Set(float64(product.Stock))
}
