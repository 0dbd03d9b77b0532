package repository

import (
	"context"

	"order-service/internal/model"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormStore is the postgres-backed Store. Row locks are taken with
// SELECT ... FOR UPDATE and held until the enclosing transaction ends.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store on top of an open gorm connection
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Products() ProductRepository { return &gormProductRepository{db: s.db} }
func (s *GormStore) Customers() CustomerRepository { return &gormCustomerRepository{db: s.db} }
func (s *GormStore) Orders() OrderRepository { return &gormOrderRepository{db: s.db} }

// Transact runs fn inside a database transaction
func (s *GormStore) Transact(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&GormStore{db: tx})
	})
}

// Ping checks the database connection
func (s *GormStore) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return errors.Wrap(err, "get database handle")
	}
	return sqlDB.PingContext(ctx)
}

func forUpdate(db *gorm.DB) *gorm.DB {
	return db.Clauses(clause.Locking{Strength: "UPDATE"})
}

func translate(err error, format string, args ...any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return ErrNotFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return ErrDuplicate
	default:
		return errors.Wrapf(err, format, args...)
	}
}

type gormProductRepository struct {
	db *gorm.DB
}

func (r *gormProductRepository) FindByID(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := r.db.WithContext(ctx).First(&product, id).Error; err != nil {
		return nil, translate(err, "find product %d", id)
	}
	return &product, nil
}

func (r *gormProductRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Product, error) {
	var product model.Product
	if err := forUpdate(r.db.WithContext(ctx)).First(&product, id).Error; err != nil {
		return nil, translate(err, "lock product %d", id)
	}
	return &product, nil
}

func (r *gormProductRepository) LockByIDs(ctx context.Context, ids []uint) (map[uint]*model.Product, error) {
	locked := make(map[uint]*model.Product, len(ids))
	if len(ids) == 0 {
		return locked, nil
	}

	var products []model.Product
	err := forUpdate(r.db.WithContext(ctx)).
		Where("id IN ?", ids).
		Order("id").
		Find(&products).Error
	if err != nil {
		return nil, translate(err, "lock products %v", ids)
	}

	for i := range products {
		locked[products[i].ID] = &products[i]
	}
	return locked, nil
}

func (r *gormProductRepository) Save(ctx context.Context, product *model.Product) error {
	return translate(r.db.WithContext(ctx).Save(product).Error, "save product %d", product.ID)
}

func (r *gormProductRepository) ExistsByName(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&model.Product{}).Where("name = ?", name)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, translate(err, "count products named %q", name)
	}
	return count > 0, nil
}

func (r *gormProductRepository) ListActive(ctx context.Context, offset, limit int) ([]model.Product, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&model.Product{}).Where("active = ?", true)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, translate(err, "count active products")
	}

	products := make([]model.Product, 0, limit)
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("id").
		Offset(offset).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, translate(err, "list active products")
	}
	return products, total, nil
}

type gormCustomerRepository struct {
	db *gorm.DB
}

func (r *gormCustomerRepository) FindByID(ctx context.Context, id uint) (*model.Customer, error) {
	var customer model.Customer
	if err := r.db.WithContext(ctx).First(&customer, id).Error; err != nil {
		return nil, translate(err, "find customer %d", id)
	}
	return &customer, nil
}

func (r *gormCustomerRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Customer, error) {
	var customer model.Customer
	if err := forUpdate(r.db.WithContext(ctx)).First(&customer, id).Error; err != nil {
		return nil, translate(err, "lock customer %d", id)
	}
	return &customer, nil
}

func (r *gormCustomerRepository) Save(ctx context.Context, customer *model.Customer) error {
	return translate(r.db.WithContext(ctx).Save(customer).Error, "save customer %d", customer.ID)
}

func (r *gormCustomerRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Customer{}).Where("email = ?", email).Count(&count).Error
	if err != nil {
		return false, translate(err, "count customers with email %q", email)
	}
	return count > 0, nil
}

type gormOrderRepository struct {
	db *gorm.DB
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("order_items.id")
	})
}

func (r *gormOrderRepository) FindByID(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	if err := preloadItems(r.db.WithContext(ctx)).First(&order, id).Error; err != nil {
		return nil, translate(err, "find order %d", id)
	}
	return &order, nil
}

func (r *gormOrderRepository) FindByIDForUpdate(ctx context.Context, id uint) (*model.Order, error) {
	var order model.Order
	if err := preloadItems(forUpdate(r.db.WithContext(ctx))).First(&order, id).Error; err != nil {
		return nil, translate(err, "lock order %d", id)
	}
	return &order, nil
}

func (r *gormOrderRepository) Save(ctx context.Context, order *model.Order) error {
	db := r.db.WithContext(ctx)
	if order.ID == 0 {
		return translate(db.Create(order).Error, "create order for customer %d", order.CustomerID)
	}
	return translate(db.Omit(clause.Associations).Save(order).Error, "save order %d", order.ID)
}

func (r *gormOrderRepository) ExistsWithProductAndStatus(ctx context.Context, productID uint, status model.OrderStatus) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.OrderItem{}).
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("order_items.product_id = ? AND orders.status = ?", productID, status).
		Count(&count).Error
	if err != nil {
		return false, translate(err, "count %s orders with product %d", status, productID)
	}
	return count > 0, nil
}
