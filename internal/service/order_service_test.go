package service

import (
	"context"
	"math"
	"sync"
	"testing"

	"order-service/internal/apperr"
	"order-service/internal/inventory"
	"order-service/internal/model"
	"order-service/internal/repository"
	"order-service/prometheus"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store     *repository.MemoryStore
	metrics   *prometheus.Metrics
	orders    *OrderService
	products  *ProductService
	customers *CustomerService
}

func setup(t *testing.T) *fixture {
	store := repository.NewMemoryStore()
	metrics := prometheus.NewMetrics("test", promclient.NewRegistry())
	return &fixture{
		store:     store,
		metrics:   metrics,
		orders:    NewOrderService(store, metrics),
		products:  NewProductService(store, metrics),
		customers: NewCustomerService(store, metrics),
	}
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func (f *fixture) customer(t *testing.T, email string, tier model.Tier) *model.Customer {
	ctx := context.Background()
	customer, err := f.customers.CreateCustomer(ctx, "Customer "+email, email)
	require.NoError(t, err)
	if tier != model.TierRegular {
		customer.Tier = tier
		require.NoError(t, f.store.Customers().Save(ctx, customer))
	}
	return customer
}

func (f *fixture) product(t *testing.T, name string, price string, stock int) *model.Product {
	product, err := f.products.CreateProduct(context.Background(), ProductInput{
		Name:     name,
		Category: model.CategoryElectronics,
		Price:    dec(price),
		Stock:    stock,
	})
	require.NoError(t, err)
	return product
}

func (f *fixture) stock(t *testing.T, productID uint) int {
	product, err := f.store.Products().FindByID(context.Background(), productID)
	require.NoError(t, err)
	return product.Stock
}

func TestCreateOrderDiscountScenarios(t *testing.T) {
	cases := []struct {
		name     string
		tier     model.Tier
		price    string
		quantity int
		total    string
		discount string
		final    string
	}{
		{"gold small order", model.TierGold, "25000", 10, "250000", "25000.00", "225000.00"},
		{"gold above extra threshold", model.TierGold, "6000000", 1, "6000000", "900000.00", "5100000.00"},
		{"platinum above extra threshold", model.TierPlatinum, "10000000", 1, "10000000", "2500000.00", "7500000.00"},
		{"regular below threshold", model.TierRegular, "100000", 2, "200000", "0", "200000"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := setup(t)
			customer := f.customer(t, "buyer@example.com", tc.tier)
			product := f.product(t, "Item", tc.price, 100)

			result, err := f.orders.CreateOrder(context.Background(), customer.ID,
				[]inventory.Line{{ProductID: product.ID, Quantity: tc.quantity}})
			require.NoError(t, err)

			order := result.Order
			assert.Equal(t, model.OrderStatusCreated, order.Status)
			assert.True(t, order.TotalAmount.Equal(dec(tc.total)), "total %s", order.TotalAmount)
			assert.True(t, order.DiscountAmount.Equal(dec(tc.discount)), "discount %s", order.DiscountAmount)
			assert.True(t, order.FinalAmount.Equal(dec(tc.final)), "final %s", order.FinalAmount)
			assert.Equal(t, 100-tc.quantity, f.stock(t, product.ID))
		})
	}
}

func TestCreateOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Merges duplicate lines and snapshots prices", func(t *testing.T) {
		f := setup(t)
		customer := f.customer(t, "a@example.com", model.TierRegular)
		mouse := f.product(t, "Mouse", "150000", 20)
		cable := f.product(t, "Cable", "25000.50", 20)

		result, err := f.orders.CreateOrder(ctx, customer.ID, []inventory.Line{
			{ProductID: cable.ID, Quantity: 1},
			{ProductID: mouse.ID, Quantity: 3},
			{ProductID: cable.ID, Quantity: 2},
		})
		require.NoError(t, err)

		items := result.Order.Items
		require.Len(t, items, 2)
		assert.Equal(t, cable.ID, items[0].ProductID)
		assert.Equal(t, 3, items[0].Quantity)
		assert.Equal(t, "Cable", items[0].ProductName)
		assert.Equal(t, mouse.ID, items[1].ProductID)
		assert.True(t, result.Order.TotalAmount.Equal(dec("526501.50")))
		assert.Equal(t, 17, f.stock(t, cable.ID))
		assert.Equal(t, 17, f.stock(t, mouse.ID))

		// later price changes do not touch the stored order
		_, err = f.products.UpdateProduct(ctx, cable.ID, ProductInput{
			Name: "Cable", Category: model.CategoryElectronics, Price: dec("99999"), Stock: 17, Active: true,
		})
		require.NoError(t, err)

		stored, err := f.orders.GetOrder(ctx, result.Order.ID)
		require.NoError(t, err)
		assert.True(t, stored.Order.Items[0].PriceAtPurchase.Equal(dec("25000.50")))
		assert.Equal(t, customer.ID, stored.Customer.ID)
	})

	t.Run("Unknown customer", func(t *testing.T) {
		f := setup(t)
		product := f.product(t, "Mouse", "150000", 20)

		_, err := f.orders.CreateOrder(ctx, 404, []inventory.Line{{ProductID: product.ID, Quantity: 1}})

		var nf *apperr.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "customer", nf.Resource)
		assert.Equal(t, 20, f.stock(t, product.ID))
	})

	t.Run("Unknown product rolls back earlier reservations", func(t *testing.T) {
		f := setup(t)
		customer := f.customer(t, "a@example.com", model.TierRegular)
		product := f.product(t, "Mouse", "150000", 20)

		_, err := f.orders.CreateOrder(ctx, customer.ID, []inventory.Line{
			{ProductID: product.ID, Quantity: 5},
			{ProductID: 999, Quantity: 1},
		})

		var nf *apperr.NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "product", nf.Resource)
		assert.Equal(t, uint(999), nf.ID)
		assert.Equal(t, 20, f.stock(t, product.ID))
	})

	t.Run("Insufficient stock on merged quantity", func(t *testing.T) {
		f := setup(t)
		customer := f.customer(t, "a@example.com", model.TierRegular)
		first := f.product(t, "Keyboard", "300000", 10)
		second := f.product(t, "Monitor", "2000000", 4)

		_, err := f.orders.CreateOrder(ctx, customer.ID, []inventory.Line{
			{ProductID: first.ID, Quantity: 2},
			{ProductID: second.ID, Quantity: 3},
			{ProductID: second.ID, Quantity: 2},
		})

		var insufficient *apperr.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, "Monitor", insufficient.Name)
		assert.Equal(t, 4, insufficient.Available)
		assert.Equal(t, 5, insufficient.Requested)
		assert.Equal(t, 10, f.stock(t, first.ID))
		assert.Equal(t, 4, f.stock(t, second.ID))

		_, err = f.orders.GetOrder(ctx, 1)
		assert.Error(t, err, "no order is persisted")
	})

	t.Run("Quantities that would overflow are refused", func(t *testing.T) {
		f := setup(t)
		customer := f.customer(t, "a@example.com", model.TierRegular)
		product := f.product(t, "Mouse", "150000", 10)

		_, err := f.orders.CreateOrder(ctx, customer.ID, []inventory.Line{
			{ProductID: product.ID, Quantity: math.MaxInt},
			{ProductID: product.ID, Quantity: 1},
		})

		var insufficient *apperr.InsufficientStockError
		require.ErrorAs(t, err, &insufficient)
		assert.Equal(t, 10, insufficient.Available)
		assert.Equal(t, math.MaxInt, insufficient.Requested)
		assert.Equal(t, 10, f.stock(t, product.ID))
		_, err = f.orders.GetOrder(ctx, 1)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})

	t.Run("Non-positive quantity", func(t *testing.T) {
		f := setup(t)
		customer := f.customer(t, "a@example.com", model.TierRegular)
		product := f.product(t, "Mouse", "150000", 10)

		_, err := f.orders.CreateOrder(ctx, customer.ID, []inventory.Line{
			{ProductID: product.ID, Quantity: 3},
			{ProductID: product.ID, Quantity: -5},
		})

		assert.Equal(t, apperr.KindBusinessRule, apperr.KindOf(err))
		assert.Equal(t, 10, f.stock(t, product.ID))
	})

	t.Run("Inactive product", func(t *testing.T) {
		f := setup(t)
		customer := f.customer(t, "a@example.com", model.TierRegular)
		product := f.product(t, "Old Phone", "1000000", 0)
		_, err := f.products.DeleteProduct(ctx, product.ID)
		require.NoError(t, err)

		_, err = f.orders.CreateOrder(ctx, customer.ID, []inventory.Line{{ProductID: product.ID, Quantity: 1}})

		var inactive *apperr.ProductInactiveError
		require.ErrorAs(t, err, &inactive)
		assert.Equal(t, "Old Phone", inactive.Name)
	})

	t.Run("Records metrics", func(t *testing.T) {
		f := setup(t)
		customer := f.customer(t, "a@example.com", model.TierRegular)
		product := f.product(t, "Mouse", "150000", 20)

		_, err := f.orders.CreateOrder(ctx, customer.ID, []inventory.Line{{ProductID: product.ID, Quantity: 2}})
		require.NoError(t, err)
		_, err = f.orders.CreateOrder(ctx, customer.ID, []inventory.Line{{ProductID: product.ID, Quantity: 50}})
		require.Error(t, err)

		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.OrderOperationsCounter.WithLabelValues("create", "success")))
		assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.OrderOperationsCounter.WithLabelValues("create", "insufficient_stock")))
		assert.Equal(t, 18.0, testutil.ToFloat64(f.metrics.ProductInventoryGauge.WithLabelValues("1", "Mouse", "ELECTRONICS")))
	})
}

func TestPayOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Accrues spend and upgrades tier", func(t *testing.T) {
		f := setup(t)
		customer := f.customer(t, "a@example.com", model.TierRegular)
		product := f.product(t, "Server", "11000000", 5)

		created, err := f.orders.CreateOrder(ctx, customer.ID, []inventory.Line{{ProductID: product.ID, Quantity: 1}})
		require.NoError(t, err)
		// regular tier, above threshold: 5%
		assert.True(t, created.Order.FinalAmount.Equal(dec("10450000.00")))

		paid, err := f.orders.PayOrder(ctx, created.Order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusPaid, paid.Order.Status)
		assert.Equal(t, model.TierGold, paid.Customer.Tier)

		stored, err := f.customers.GetCustomer(ctx, customer.ID)
		require.NoError(t, err)
		assert.True(t, stored.TotalSpent.Equal(dec("10450000.00")))
		assert.Equal(t, model.TierGold, stored.Tier)
		assert.Equal(t, 4, f.stock(t, product.ID), "paying does not touch stock")
	})

	t.Run("Paying twice fails without side effects", func(t *testing.T) {
		f := setup(t)
		customer := f.customer(t, "a@example.com", model.TierRegular)
		product := f.product(t, "Mouse", "100000", 5)
		created, err := f.orders.CreateOrder(ctx, customer.ID, []inventory.Line{{ProductID: product.ID, Quantity: 1}})
		require.NoError(t, err)
		_, err = f.orders.PayOrder(ctx, created.Order.ID)
		require.NoError(t, err)

		_, err = f.orders.PayOrder(ctx, created.Order.ID)

		var invalid *apperr.InvalidOrderStateError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, model.OrderStatusPaid, invalid.Current)
		stored, _ := f.customers.GetCustomer(ctx, customer.ID)
		assert.True(t, stored.TotalSpent.Equal(dec("100000")))
	})

	t.Run("Cancelled order cannot be paid", func(t *testing.T) {
		f := setup(t)
		customer := f.customer(t, "a@example.com", model.TierRegular)
		product := f.product(t, "Mouse", "100000", 5)
		created, _ := f.orders.CreateOrder(ctx, customer.ID, []inventory.Line{{ProductID: product.ID, Quantity: 1}})
		_, err := f.orders.CancelOrder(ctx, created.Order.ID)
		require.NoError(t, err)

		_, err = f.orders.PayOrder(ctx, created.Order.ID)

		var invalid *apperr.InvalidOrderStateError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, model.OrderStatusCancelled, invalid.Current)
		stored, _ := f.customers.GetCustomer(ctx, customer.ID)
		assert.True(t, stored.TotalSpent.IsZero())
	})

	t.Run("Unknown order", func(t *testing.T) {
		f := setup(t)
		_, err := f.orders.PayOrder(ctx, 77)
		assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	})
}

func TestCancelOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("Restores stock", func(t *testing.T) {
		f := setup(t)
		customer := f.customer(t, "a@example.com", model.TierRegular)
		product := f.product(t, "Speaker", "500000", 100)

		created, err := f.orders.CreateOrder(ctx, customer.ID, []inventory.Line{{ProductID: product.ID, Quantity: 5}})
		require.NoError(t, err)
		require.Equal(t, 95, f.stock(t, product.ID))

		cancelled, err := f.orders.CancelOrder(ctx, created.Order.ID)
		require.NoError(t, err)

		assert.Equal(t, model.OrderStatusCancelled, cancelled.Order.Status)
		assert.Equal(t, 100, f.stock(t, product.ID))
		stored, err := f.orders.GetOrder(ctx, created.Order.ID)
		require.NoError(t, err)
		assert.Equal(t, model.OrderStatusCancelled, stored.Order.Status)
	})

	t.Run("Paid order cannot be cancelled", func(t *testing.T) {
		f := setup(t)
		customer := f.customer(t, "a@example.com", model.TierRegular)
		product := f.product(t, "Speaker", "500000", 100)
		created, _ := f.orders.CreateOrder(ctx, customer.ID, []inventory.Line{{ProductID: product.ID, Quantity: 5}})
		_, err := f.orders.PayOrder(ctx, created.Order.ID)
		require.NoError(t, err)

		_, err = f.orders.CancelOrder(ctx, created.Order.ID)

		var invalid *apperr.InvalidOrderStateError
		require.ErrorAs(t, err, &invalid)
		assert.Equal(t, model.OrderStatusPaid, invalid.Current)
		assert.Equal(t, 95, f.stock(t, product.ID))
	})

	t.Run("Cancelling twice fails", func(t *testing.T) {
		f := setup(t)
		customer := f.customer(t, "a@example.com", model.TierRegular)
		product := f.product(t, "Speaker", "500000", 100)
		created, _ := f.orders.CreateOrder(ctx, customer.ID, []inventory.Line{{ProductID: product.ID, Quantity: 5}})
		_, err := f.orders.CancelOrder(ctx, created.Order.ID)
		require.NoError(t, err)

		_, err = f.orders.CancelOrder(ctx, created.Order.ID)
		assert.Equal(t, apperr.KindInvalidOrderState, apperr.KindOf(err))
		assert.Equal(t, 100, f.stock(t, product.ID))
	})
}

func TestConcurrentOrdersNeverOversell(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	customer := f.customer(t, "a@example.com", model.TierRegular)
	product := f.product(t, "Limited Edition", "100000", 10)

	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
	)
	for i := 0; i < 25; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.orders.CreateOrder(ctx, customer.ID, []inventory.Line{{ProductID: product.ID, Quantity: 1}})
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
				return
			}
			assert.Equal(t, apperr.KindInsufficientStock, apperr.KindOf(err))
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, succeeded)
	assert.Equal(t, 0, f.stock(t, product.ID))
}
