package service

import (
	"context"

	"order-service/internal/apperr"
	"order-service/internal/inventory"
	"order-service/internal/model"
	"order-service/internal/pricing"
	"order-service/internal/repository"
	"order-service/pkg/logger"

	"go.uber.org/zap"
)

// transition moves order to target inside tx and applies the side effect of the
// move. The move is validated before anything is written. It returns the
// products whose stock changed.
func (s *OrderService) transition(ctx context.Context, tx repository.Store, order *model.Order, target model.OrderStatus) (*OrderResult, []*model.Product, error) {
	if !order.Status.CanTransitionTo(target) {
		logger.FromContext(ctx).Warn("Invalid order status transition",
			zap.Uint("order_id", order.ID),
			zap.String("current", string(order.Status)),
			zap.String("target", string(target)))
		return nil, nil, apperr.InvalidOrderState(order, target)
	}

	var (
		customer *model.Customer
		restored []*model.Product
		err      error
	)
	switch target {
	case model.OrderStatusPaid:
		customer, err = s.settle(ctx, tx, order)
	case model.OrderStatusCancelled:
		restored, err = s.restock(ctx, tx, order)
		if err == nil {
			customer, err = tx.Customers().FindByID(ctx, order.CustomerID)
			err = notFound(err, "customer", order.CustomerID)
		}
	}
	if err != nil {
		return nil, nil, err
	}

	order.Status = target
	if err := tx.Orders().Save(ctx, order); err != nil {
		return nil, nil, err
	}
	return &OrderResult{Order: order, Customer: customer}, restored, nil
}

// settle accrues the order's final amount to its customer
func (s *OrderService) settle(ctx context.Context, tx repository.Store, order *model.Order) (*model.Customer, error) {
	customer, err := tx.Customers().FindByIDForUpdate(ctx, order.CustomerID)
	if err != nil {
		return nil, notFound(err, "customer", order.CustomerID)
	}

	previous := customer.Tier
	if pricing.ApplyPayment(customer, order.FinalAmount) {
		s.metrics.RecordMembershipUpgrade(customer.Tier)
		logger.FromContext(ctx).Info("Customer membership upgraded",
			zap.Uint("customer_id", customer.ID),
			zap.String("from", string(previous)),
			zap.String("to", string(customer.Tier)))
	}
	if err := tx.Customers().Save(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// restock releases every item of the order back to its product
func (s *OrderService) restock(ctx context.Context, tx repository.Store, order *model.Order) ([]*model.Product, error) {
	products, err := tx.Products().LockByIDs(ctx, order.ProductIDs())
	if err != nil {
		return nil, err
	}

	restored := make([]*model.Product, 0, len(products))
	for _, item := range order.Items {
		product, ok := products[item.ProductID]
		if !ok {
			return nil, apperr.NotFound("product", item.ProductID)
		}
		inventory.Release(product, item.Quantity)
		if err := tx.Products().Save(ctx, product); err != nil {
			return nil, err
		}
		restored = append(restored, product)
		logger.FromContext(ctx).Debug("Stock restored",
			zap.Uint("product_id", product.ID),
			zap.Int("quantity", item.Quantity),
			zap.Int("stock", product.Stock))
	}
	return restored, nil
}
