package inventory

import (
	"order-service/internal/apperr"
	"order-service/internal/model"
)

// Reserve debits quantity from the product's stock. It fails without touching
// the product when the product is inactive or holds less than quantity.
// Quantity must be positive.
func Reserve(product *model.Product, quantity int) error {
	if quantity <= 0 {
		return apperr.Rule("order.quantity.invalid", quantity)
	}
	if !product.Active {
		return apperr.ProductInactive(product)
	}
	if product.Stock < quantity {
		return apperr.InsufficientStock(product, quantity)
	}
	product.Stock -= quantity
	return nil
}

// Release credits quantity back to the product's stock. It is only used to
// reverse an earlier reservation.
func Release(product *model.Product, quantity int) {
	product.Stock += quantity
}
