// Package repository holds the persistence contracts of the service and their
// gorm and in-memory implementations.
package repository

import (
	"context"

	"order-service/internal/model"

	"github.com/pkg/errors"
)

var (
	// ErrNotFound is returned when a looked-up record does not exist
	ErrNotFound = errors.New("record not found")
	// ErrDuplicate is returned when a write violates a unique constraint
	ErrDuplicate = errors.New("duplicate record")
)

// ProductRepository persists products
type ProductRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Product, error)
	// FindByIDForUpdate loads a product and holds it against concurrent writers
	// until the surrounding unit of work ends.
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Product, error)
	// LockByIDs loads and locks the given products in ascending id order.
	// Missing ids are absent from the result.
	LockByIDs(ctx context.Context, ids []uint) (map[uint]*model.Product, error)
	Save(ctx context.Context, product *model.Product) error
	ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error)
	ListActive(ctx context.Context, offset, limit int) ([]model.Product, int64, error)
}

// CustomerRepository persists customers
type CustomerRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Customer, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Customer, error)
	Save(ctx context.Context, customer *model.Customer) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// OrderRepository persists orders together with their items
type OrderRepository interface {
	FindByID(ctx context.Context, id uint) (*model.Order, error)
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Order, error)
	// Save inserts a new order with its items, or updates the order row of an
	// existing one. Items are never rewritten.
	Save(ctx context.Context, order *model.Order) error
	ExistsWithProductAndStatus(ctx context.Context, productID uint, status model.OrderStatus) (bool, error)
}

// Store groups the repositories and runs units of work across them
type Store interface {
	Products() ProductRepository
	Customers() CustomerRepository
	Orders() OrderRepository
	// Transact runs fn in a single atomic unit of work. Every write made through
	// the Store passed to fn commits when fn returns nil and is discarded otherwise.
	Transact(ctx context.Context, fn func(tx Store) error) error
	Ping(ctx context.Context) error
}
