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

// CustomerService registers and reads customers
type CustomerService struct {
	store   repository.Store
	metrics *prometheus.Metrics
}

// NewCustomerService creates a CustomerService
func NewCustomerService(store repository.Store, metrics *prometheus.Metrics) *CustomerService {
	return &CustomerService{store: store, metrics: metrics}
}

// CreateCustomer registers a REGULAR customer with no spend. Emails are unique.
func (s *CustomerService) CreateCustomer(ctx context.Context, name, email string) (*model.Customer, error) {
	log := logger.FromContext(ctx)
	s.metrics.RecordCustomerOperation("create")
	defer s.metrics.TrackDBOperation("create_customer")(time.Now())

	customer := &model.Customer{
		Name:       name,
		Email:      email,
		Tier:       model.TierRegular,
		TotalSpent: decimal.Zero,
		Active:     true,
	}
	err := s.store.Transact(ctx, func(tx repository.Store) error {
		exists, err := tx.Customers().ExistsByEmail(ctx, email)
		if err != nil {
			return err
		}
		if exists {
			log.Warn("Duplicate customer email", zap.String("email", email))
			return apperr.Duplicate("customer", "email", email)
		}
		err = tx.Customers().Save(ctx, customer)
		if errors.Is(err, repository.ErrDuplicate) {
			return apperr.Duplicate("customer", "email", email)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info("Customer created",
		zap.Uint("customer_id", customer.ID),
		zap.String("email", customer.Email))
	return customer, nil
}

// GetCustomer returns a customer by id
func (s *CustomerService) GetCustomer(ctx context.Context, id uint) (*model.Customer, error) {
	s.metrics.RecordCustomerOperation("get")
	defer s.metrics.TrackDBOperation("get_customer")(time.Now())

	customer, err := s.store.Customers().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "customer", id)
	}
	return customer, nil
}
