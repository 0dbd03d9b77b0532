// Package apperr defines the error kinds raised by the order engine and the
// catalog services. Each error carries a message key with positional arguments
// so the HTTP boundary can localize it.
package apperr

import (
	"errors"
	"fmt"
	"strconv"

	"order-service/internal/model"
)

// Kind classifies an error for the boundary
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindDuplicate
	KindBusinessRule
	KindProductInactive
	KindInsufficientStock
	KindInvalidOrderState
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "RESOURCE_NOT_FOUND"
	case KindDuplicate:
		return "DUPLICATE_RESOURCE"
	case KindBusinessRule, KindProductInactive:
		return "BUSINESS_ERROR"
	case KindInsufficientStock:
		return "INSUFFICIENT_STOCK"
	case KindInvalidOrderState:
		return "INVALID_ORDER_STATE"
	case KindUnauthorized:
		return "UNAUTHORIZED"
	default:
		return "INTERNAL_ERROR"
	}
}

// Error is implemented by every classified error
type Error interface {
	error
	Kind() Kind
	MessageKey() string
	MessageArgs() []any
}

// KindOf returns the kind of err, or KindInternal when err is not classified
func KindOf(err error) Kind {
	var e Error
	if errors.As(err, &e) {
		return e.Kind()
	}
	return KindInternal
}

// NotFoundError reports a missing customer, product or order
type NotFoundError struct {
	Resource string
	ID       uint
}

// NotFound builds a NotFoundError; resource is "customer", "product" or "order"
func NotFound(resource string, id uint) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Kind() Kind { return KindNotFound }
func (e *NotFoundError) MessageKey() string { return e.Resource + ".not.found" }
// MessageArgs renders the id as text so it is not grouped like a quantity
func (e *NotFoundError) MessageArgs() []any {
	return []any{strconv.FormatUint(uint64(e.ID), 10)}
}

// DuplicateError reports a violated uniqueness constraint
type DuplicateError struct {
	Resource string
	Field    string
	Value    string
}

// Duplicate builds a DuplicateError
func Duplicate(resource, field, value string) *DuplicateError {
	return &DuplicateError{Resource: resource, Field: field, Value: value}
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Resource, e.Field, e.Value)
}

func (e *DuplicateError) Kind() Kind { return KindDuplicate }
func (e *DuplicateError) MessageKey() string {
	return e.Resource + "." + e.Field + ".duplicate"
}
func (e *DuplicateError) MessageArgs() []any { return []any{e.Value} }

// BusinessRuleError reports a catalog rule violation
type BusinessRuleError struct {
	Key  string
	Args []any
}

// Rule builds a BusinessRuleError
func Rule(key string, args ...any) *BusinessRuleError {
	return &BusinessRuleError{Key: key, Args: args}
}

func (e *BusinessRuleError) Error() string {
	if len(e.Args) == 0 {
		return "business rule violated: " + e.Key
	}
	return fmt.Sprintf("business rule violated: %s %v", e.Key, e.Args)
}

func (e *BusinessRuleError) Kind() Kind { return KindBusinessRule }
func (e *BusinessRuleError) MessageKey() string { return e.Key }
func (e *BusinessRuleError) MessageArgs() []any { return e.Args }

// ProductInactiveError reports an order line for a deactivated product
type ProductInactiveError struct {
	ProductID uint
	Name      string
}

// ProductInactive builds a ProductInactiveError
func ProductInactive(product *model.Product) *ProductInactiveError {
	return &ProductInactiveError{ProductID: product.ID, Name: product.Name}
}

func (e *ProductInactiveError) Error() string {
	return fmt.Sprintf("product %q is not active", e.Name)
}

func (e *ProductInactiveError) Kind() Kind { return KindProductInactive }
func (e *ProductInactiveError) MessageKey() string { return "order.product.not.active" }
func (e *ProductInactiveError) MessageArgs() []any { return []any{e.Name} }

// InsufficientStockError reports a reservation larger than the available stock
type InsufficientStockError struct {
	ProductID uint
	Name      string
	Available int
	Requested int
}

// InsufficientStock builds an InsufficientStockError
func InsufficientStock(product *model.Product, requested int) *InsufficientStockError {
	return &InsufficientStockError{
		ProductID: product.ID,
		Name:      product.Name,
		Available: product.Stock,
		Requested: requested,
	}
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %q: available %d, requested %d",
		e.Name, e.Available, e.Requested)
}

func (e *InsufficientStockError) Kind() Kind { return KindInsufficientStock }
func (e *InsufficientStockError) MessageKey() string { return "order.insufficient.stock" }
func (e *InsufficientStockError) MessageArgs() []any {
	return []any{e.Name, e.Available, e.Requested}
}

// InvalidOrderStateError reports a lifecycle transition that is not permitted
type InvalidOrderStateError struct {
	OrderID uint
	Current model.OrderStatus
	Target  model.OrderStatus
}

// InvalidOrderState builds an InvalidOrderStateError
func InvalidOrderState(order *model.Order, target model.OrderStatus) *InvalidOrderStateError {
	return &InvalidOrderStateError{OrderID: order.ID, Current: order.Status, Target: target}
}

func (e *InvalidOrderStateError) Error() string {
	return fmt.Sprintf("order %d cannot move from %s to %s", e.OrderID, e.Current, e.Target)
}

func (e *InvalidOrderStateError) Kind() Kind { return KindInvalidOrderState }

func (e *InvalidOrderStateError) MessageKey() string {
	switch e.Target {
	case model.OrderStatusPaid:
		return "order.pay.invalid.status"
	case model.OrderStatusCancelled:
		return "order.cancel.invalid.status"
	default:
		return "order.invalid.status"
	}
}

func (e *InvalidOrderStateError) MessageArgs() []any { return []any{string(e.Current)} }

// UnauthorizedError reports a missing or rejected bearer token
type UnauthorizedError struct {
	Reason string
}

// Unauthorized builds an UnauthorizedError
func Unauthorized(reason string) *UnauthorizedError {
	return &UnauthorizedError{Reason: reason}
}

func (e *UnauthorizedError) Error() string { return "unauthorized: " + e.Reason }
func (e *UnauthorizedError) Kind() Kind { return KindUnauthorized }
func (e *UnauthorizedError) MessageKey() string { return "auth.unauthorized" }
func (e *UnauthorizedError) MessageArgs() []any { return nil }
