package service

import (
	"context"
	"time"

	"order-service/internal/apperr"
	"order-service/internal/model"
	"order-service/internal/repository"
	"order-service/pkg/logger"
	"order-service/prometheus"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// FoodMaxPrice is the highest unit price a FOOD product may carry
var FoodMaxPrice = decimal.NewFromInt(1_000_000)

// Page size bounds for product listings
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ProductInput carries the writable fields of a product
type ProductInput struct {
	Name     string
	Category model.Category
	Price    decimal.Decimal
	Stock    int
	Active   bool
}

// ProductPage is one page of active products
type ProductPage struct {
	Items      []model.Product `json:"items"`
	Page       int             `json:"page"`
	Size       int             `json:"size"`
	TotalItems int64           `json:"total_items"`
	TotalPages int             `json:"total_pages"`
}

// ProductService manages the product catalog
type ProductService struct {
	store   repository.Store
	metrics *prometheus.Metrics
}

// NewProductService creates a ProductService
func NewProductService(store repository.Store, metrics *prometheus.Metrics) *ProductService {
	return &ProductService{store: store, metrics: metrics}
}

func checkFoodPrice(in ProductInput) error {
	if in.Category == model.CategoryFood && in.Price.GreaterThan(FoodMaxPrice) {
		return apperr.Rule("product.food.price.exceeded")
	}
	return nil
}

func duplicateName(err error, name string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return apperr.Duplicate("product", "name", name)
	}
	return err
}

// CreateProduct adds an active product. Names are unique across active and
// inactive products.
func (s *ProductService) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	log := logger.FromContext(ctx)
	s.metrics.RecordProductOperation("create")
	defer s.metrics.TrackDBOperation("create_product")(time.Now())

	product := &model.Product{
		Name:     in.Name,
		Category: in.Category,
		Price:    in.Price,
		Stock:    in.Stock,
		Active:   true,
	}
	err := s.store.Transact(ctx, func(tx repository.Store) error {
		exists, err := tx.Products().ExistsByName(ctx, in.Name, 0)
		if err != nil {
			return err
		}
		if exists {
			log.Warn("Duplicate product name", zap.String("name", in.Name))
			return apperr.Duplicate("product", "name", in.Name)
		}
		if err := checkFoodPrice(in); err != nil {
			log.Warn("FOOD product price exceeds limit", zap.String("price", in.Price.String()))
			return err
		}
		return duplicateName(tx.Products().Save(ctx, product), in.Name)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.UpdateProductInventory(product)
	log.Info("Product created",
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name),
		zap.String("category", string(product.Category)),
		zap.Int("stock", product.Stock))
	return product, nil
}

// UpdateProduct replaces the writable fields of a product. A price change is
// refused once the product appears in a paid order, and deactivation is refused
// while it appears in an unpaid one.
func (s *ProductService) UpdateProduct(ctx context.Context, id uint, in ProductInput) (*model.Product, error) {
	log := logger.FromContext(ctx)
	s.metrics.RecordProductOperation("update")
	defer s.metrics.TrackDBOperation("update_product")(time.Now())

	var product *model.Product
	err := s.store.Transact(ctx, func(tx repository.Store) error {
		var err error
		product, err = tx.Products().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "product", id)
		}

		exists, err := tx.Products().ExistsByName(ctx, in.Name, id)
		if err != nil {
			return err
		}
		if exists {
			log.Warn("Duplicate product name on update", zap.String("name", in.Name))
			return apperr.Duplicate("product", "name", in.Name)
		}
		if err := checkFoodPrice(in); err != nil {
			return err
		}

		if !in.Price.Equal(product.Price) {
			paid, err := tx.Orders().ExistsWithProductAndStatus(ctx, id, model.OrderStatusPaid)
			if err != nil {
				return err
			}
			if paid {
				log.Warn("Price change refused, product has paid orders", zap.Uint("product_id", id))
				return apperr.Rule("product.price.update.completed.orders")
			}
		}

		if product.Active && !in.Active {
			pending, err := tx.Orders().ExistsWithProductAndStatus(ctx, id, model.OrderStatusCreated)
			if err != nil {
				return err
			}
			if pending {
				log.Warn("Deactivation refused, product has pending orders", zap.Uint("product_id", id))
				return apperr.Rule("product.deactivate.pending.orders")
			}
		}

		product.Name = in.Name
		product.Category = in.Category
		product.Price = in.Price
		product.Stock = in.Stock
		product.Active = in.Active
		return duplicateName(tx.Products().Save(ctx, product), in.Name)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.UpdateProductInventory(product)
	log.Info("Product updated",
		zap.Uint("product_id", product.ID),
		zap.String("name", product.Name),
		zap.String("price", product.Price.String()),
		zap.Bool("active", product.Active))
	return product, nil
}

// ListProducts returns a page of active products ordered by id. Pages start at 0.
func (s *ProductService) ListProducts(ctx context.Context, page, size int) (*ProductPage, error) {
	s.metrics.RecordProductOperation("list")
	defer s.metrics.TrackDBOperation("list_products")(time.Now())

	if page < 0 {
		page = 0
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		size = MaxPageSize
	}

	items, total, err := s.store.Products().ListActive(ctx, page*size, size)
	if err != nil {
		return nil, err
	}

	logger.FromContext(ctx).Debug("Products listed",
		zap.Int("page", page),
		zap.Int("size", size),
		zap.Int("returned", len(items)))
	return &ProductPage{
		Items:      items,
		Page:       page,
		Size:       size,
		TotalItems: total,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}, nil
}

// GetProduct returns a product whether or not it is active
func (s *ProductService) GetProduct(ctx context.Context, id uint) (*model.Product, error) {
	s.metrics.RecordProductOperation("get")
	defer s.metrics.TrackDBOperation("get_product")(time.Now())

	product, err := s.store.Products().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "product", id)
	}
	return product, nil
}

// DeleteProduct deactivates a product whose stock is zero
func (s *ProductService) DeleteProduct(ctx context.Context, id uint) (*model.Product, error) {
	log := logger.FromContext(ctx)
	s.metrics.RecordProductOperation("delete")
	defer s.metrics.TrackDBOperation("delete_product")(time.Now())

	var product *model.Product
	err := s.store.Transact(ctx, func(tx repository.Store) error {
		var err error
		product, err = tx.Products().FindByIDForUpdate(ctx, id)
		if err != nil {
			return notFound(err, "product", id)
		}
		if product.Stock > 0 {
			log.Warn("Delete refused, stock is not zero",
				zap.Uint("product_id", id),
				zap.Int("stock", product.Stock))
			return apperr.Rule("product.delete.stock.not.zero", product.Stock)
		}
		product.Active = false
		return tx.Products().Save(ctx, product)
	})
	if err != nil {
		return nil, err
	}

	log.Info("Product deactivated", zap.Uint("product_id", id))
	return product, nil
}
