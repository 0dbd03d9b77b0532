// Package service implements the order engine and the catalog operations on
// top of the repository Store. Every mutating operation runs in one unit of work.
package service

import (
	"order-service/internal/apperr"
	"order-service/internal/repository"

	"github.com/pkg/errors"
)

// notFound converts a repository miss into a NotFoundError for resource
func notFound(err error, resource string, id uint) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperr.NotFound(resource, id)
	}
	return err
}

// outcome labels an operation result for metrics
func outcome(err error) string {
	if err == nil {
		return "success"
	}
	switch apperr.KindOf(err) {
	case apperr.KindNotFound:
		return "not_found"
	case apperr.KindDuplicate:
		return "duplicate"
	case apperr.KindBusinessRule:
		return "business_rule"
	case apperr.KindProductInactive:
		return "product_inactive"
	case apperr.KindInsufficientStock:
		return "insufficient_stock"
	case apperr.KindInvalidOrderState:
		return "invalid_order_state"
	default:
		return "error"
	}
}
