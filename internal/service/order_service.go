package service

import (
	"context"
	"time"

	"order-service/internal/apperr"
	"order-service/internal/inventory"
	"order-service/internal/model"
	"order-service/internal/pricing"
	"order-service/internal/repository"
	"order-service/pkg/logger"
	"order-service/prometheus"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// OrderResult is an order together with the customer who placed it
type OrderResult struct {
	Order    *model.Order
	Customer *model.Customer
}

// OrderService creates, pays, cancels and reads orders
type OrderService struct {
	store   repository.Store
	metrics *prometheus.Metrics
}

// NewOrderService creates an OrderService
func NewOrderService(store repository.Store, metrics *prometheus.Metrics) *OrderService {
	return &OrderService{store: store, metrics: metrics}
}

// CreateOrder reserves stock for the requested lines and records a priced order
// in CREATED status. Lines for the same product are merged first. Nothing is
// persisted when any line fails.
func (s *OrderService) CreateOrder(ctx context.Context, customerID uint, lines []inventory.Line) (*OrderResult, error) {
	log := logger.FromContext(ctx)
	defer s.metrics.TrackDBOperation("create_order")(time.Now())

	var (
		result  *OrderResult
		touched []*model.Product
	)
	err := s.store.Transact(ctx, func(tx repository.Store) error {
		customer, err := tx.Customers().FindByID(ctx, customerID)
		if err != nil {
			return notFound(err, "customer", customerID)
		}

		merged := inventory.Consolidate(lines)
		log.Debug("Merged order lines",
			zap.Int("requested", len(lines)),
			zap.Int("unique_products", len(merged)))

		// locks are taken in ascending id order; lines are processed in request order
		products, err := tx.Products().LockByIDs(ctx, inventory.ProductIDs(merged))
		if err != nil {
			return err
		}

		order := &model.Order{
			CustomerID: customer.ID,
			Status:     model.OrderStatusCreated,
			Items:      make([]model.OrderItem, 0, len(merged)),
		}
		total := decimal.Zero
		for _, line := range merged {
			product, ok := products[line.ProductID]
			if !ok {
				return apperr.NotFound("product", line.ProductID)
			}
			if err := inventory.Reserve(product, line.Quantity); err != nil {
				log.Warn("Stock reservation rejected",
					zap.Uint("product_id", product.ID),
					zap.Int("available", product.Stock),
					zap.Int("requested", line.Quantity),
					zap.Error(err))
				return err
			}
			if err := tx.Products().Save(ctx, product); err != nil {
				return err
			}
			touched = append(touched, product)

			item := model.OrderItem{
				ProductID:       product.ID,
				ProductName:     product.Name,
				Quantity:        line.Quantity,
				PriceAtPurchase: product.Price,
			}
			order.Items = append(order.Items, item)
			total = total.Add(item.Subtotal())
		}

		quote := pricing.Price(customer.Tier, total)
		order.TotalAmount = quote.Total
		order.DiscountAmount = quote.Discount
		order.FinalAmount = quote.Final

		if err := tx.Orders().Save(ctx, order); err != nil {
			return err
		}
		result = &OrderResult{Order: order, Customer: customer}
		return nil
	})
	s.metrics.RecordOrderOperation("create", outcome(err))
	if err != nil {
		return nil, err
	}

	for _, product := range touched {
		s.metrics.UpdateProductInventory(product)
	}
	s.metrics.ObserveOrder(result.Order, result.Customer.Tier)

	log.Info("Order created",
		zap.Uint("order_id", result.Order.ID),
		zap.Uint("customer_id", result.Customer.ID),
		zap.Int("items", len(result.Order.Items)),
		zap.String("total", result.Order.TotalAmount.StringFixed(2)),
		zap.String("discount", result.Order.DiscountAmount.StringFixed(2)),
		zap.String("final", result.Order.FinalAmount.StringFixed(2)))
	return result, nil
}

// PayOrder settles a CREATED order and accrues its final amount to the customer
func (s *OrderService) PayOrder(ctx context.Context, orderID uint) (*OrderResult, error) {
	return s.advance(ctx, orderID, model.OrderStatusPaid, "pay")
}

// CancelOrder cancels a CREATED order and returns its items to stock
func (s *OrderService) CancelOrder(ctx context.Context, orderID uint) (*OrderResult, error) {
	return s.advance(ctx, orderID, model.OrderStatusCancelled, "cancel")
}

func (s *OrderService) advance(ctx context.Context, orderID uint, target model.OrderStatus, operation string) (*OrderResult, error) {
	log := logger.FromContext(ctx)
	defer s.metrics.TrackDBOperation(operation + "_order")(time.Now())

	var (
		result   *OrderResult
		restored []*model.Product
	)
	err := s.store.Transact(ctx, func(tx repository.Store) error {
		order, err := tx.Orders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return notFound(err, "order", orderID)
		}
		result, restored, err = s.transition(ctx, tx, order, target)
		return err
	})
	s.metrics.RecordOrderOperation(operation, outcome(err))
	if err != nil {
		return nil, err
	}

	for _, product := range restored {
		s.metrics.UpdateProductInventory(product)
	}

	log.Info("Order status changed",
		zap.Uint("order_id", result.Order.ID),
		zap.String("status", string(result.Order.Status)),
		zap.String("final", result.Order.FinalAmount.StringFixed(2)))
	return result, nil
}

// GetOrder returns an order and its customer without side effects
func (s *OrderService) GetOrder(ctx context.Context, orderID uint) (*OrderResult, error) {
	defer s.metrics.TrackDBOperation("get_order")(time.Now())

	order, err := s.store.Orders().FindByID(ctx, orderID)
	if err != nil {
		return nil, notFound(err, "order", orderID)
	}
	customer, err := s.store.Customers().FindByID(ctx, order.CustomerID)
	if err != nil {
		return nil, notFound(err, "customer", order.CustomerID)
	}

	logger.FromContext(ctx).Debug("Order retrieved",
		zap.Uint("order_id", order.ID),
		zap.String("status", string(order.Status)))
	return &OrderResult{Order: order, Customer: customer}, nil
}
