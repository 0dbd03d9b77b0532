package handler

import (
	mid "order-service/internal/middleware"
	"order-service/internal/repository"
	"order-service/internal/service"
	"order-service/pkg/logger"
	"order-service/prometheus"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterOptions configures NewRouter
type RouterOptions struct {
	Store       repository.Store
	Metrics     *prometheus.Metrics
	Gatherer    prom.Gatherer
	AuthEnabled bool
}

// NewRouter wires the services over opts.Store and registers every route
func NewRouter(opts RouterOptions) *echo.Echo {
	customers := NewCustomerHandler(service.NewCustomerService(opts.Store, opts.Metrics))
	products := NewProductHandler(service.NewProductService(opts.Store, opts.Metrics))
	orders := NewOrderHandler(service.NewOrderService(opts.Store, opts.Metrics))
	health := NewHealthHandler(opts.Store)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.Recover())
	e.Use(mid.RequestIDMiddleware)
	e.Use(logger.Middleware())
	e.Use(mid.MetricsMiddleware(opts.Metrics))

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prom.DefaultGatherer
	}
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/health", health.Check)

	api := e.Group("/api")
	if opts.AuthEnabled {
		api.Use(mid.AuthMiddleware(opts.Metrics))
	}

	api.POST("/customers", customers.Create)
	api.GET("/customers/:id", customers.Get)

	api.GET("/products", products.List)
	api.GET("/products/:id", products.Get)
	api.POST("/products", products.Create)
	api.PUT("/products/:id", products.Update)
	api.DELETE("/products/:id", products.Delete)

	api.POST("/orders", orders.Create)
	api.GET("/orders/:id", orders.Get)
	api.POST("/orders/:id/pay", orders.Pay)
	api.POST("/orders/:id/cancel", orders.Cancel)

	return e
}
