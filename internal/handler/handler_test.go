package handler

import (
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"order-service/internal/repository"
	"order-service/pkg/jwtutil"
	"order-service/prometheus"

	"github.com/labstack/echo/v4"
	prom "github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool              `json:"success"`
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type testServer struct {
	e *echo.Echo
}

func setup(t *testing.T, authEnabled bool) *testServer {
	registry := prom.NewRegistry()
	e := NewRouter(RouterOptions{
		Store:       repository.NewMemoryStore(),
		Metrics:     prometheus.NewMetrics("test", registry),
		Gatherer:    registry,
		AuthEnabled: authEnabled,
	})
	return &testServer{e: e}
}

func (s *testServer) do(t *testing.T, method, path, body string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get(echo.HeaderContentType), echo.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (s *testServer) seed(t *testing.T, price string, stock int) (customerID, productID uint) {
	t.Helper()
	rec, env := s.do(t, http.MethodPost, "/api/customers", `{"name":"Budi","email":"budi@example.com"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var customer struct{ ID uint }
	require.NoError(t, json.Unmarshal(env.Data, &customer))

	rec, env = s.do(t, http.MethodPost, "/api/products",
		fmt.Sprintf(`{"name":"Headphones","category":"ELECTRONICS","price":%s,"stock":%d}`, price, stock))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var product struct{ ID uint }
	require.NoError(t, json.Unmarshal(env.Data, &product))

	return customer.ID, product.ID
}

func decodeOrder(t *testing.T, env envelope) OrderResponse {
	t.Helper()
	var order OrderResponse
	require.NoError(t, json.Unmarshal(env.Data, &order))
	return order
}

func TestOrderLifecycleOverHTTP(t *testing.T) {
	s := setup(t, false)
	customerID, productID := s.seed(t, "25000", 100)

	rec, env := s.do(t, http.MethodPost, "/api/orders", fmt.Sprintf(
		`{"customer_id":%d,"items":[{"product_id":%d,"quantity":4},{"product_id":%d,"quantity":1}]}`,
		customerID, productID, productID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.True(t, env.Success)
	assert.Equal(t, "Order created successfully", env.Message)

	order := decodeOrder(t, env)
	assert.Equal(t, "Budi", order.CustomerName)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 5, order.Items[0].Quantity)
	assert.Equal(t, "125000.00", order.Items[0].Subtotal)
	assert.Equal(t, "125000.00", order.TotalAmount)
	assert.Equal(t, "0.00", order.DiscountAmount)
	assert.Equal(t, "CREATED", string(order.Status))

	path := fmt.Sprintf("/api/orders/%d", order.ID)

	t.Run("Get", func(t *testing.T) {
		rec, env := s.do(t, http.MethodGet, path, "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, order.ID, decodeOrder(t, env).ID)
	})

	t.Run("Pay", func(t *testing.T) {
		rec, env := s.do(t, http.MethodPost, path+"/pay", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "PAID", string(decodeOrder(t, env).Status))

		rec, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/customers/%d", customerID), "")
		require.Equal(t, http.StatusOK, rec.Code)
		var customer struct {
			TotalSpent string `json:"total_spent"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &customer))
		assert.Equal(t, "125000", customer.TotalSpent)
	})

	t.Run("Pay again", func(t *testing.T) {
		rec, env := s.do(t, http.MethodPost, path+"/pay", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, env.Success)
		assert.Equal(t, "INVALID_ORDER_STATE", env.Code)
		assert.Equal(t, "Only CREATED orders can be paid, current status is PAID", env.Message)
	})

	t.Run("Cancel paid order", func(t *testing.T) {
		rec, env := s.do(t, http.MethodPost, path+"/cancel", "", "Accept-Language", "id-ID")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INVALID_ORDER_STATE", env.Code)
		assert.Equal(t, "Hanya pesanan berstatus CREATED yang dapat dibatalkan, status saat ini PAID", env.Message)
	})
}

func TestCancelRestoresStockOverHTTP(t *testing.T) {
	s := setup(t, false)
	customerID, productID := s.seed(t, "500000", 100)

	_, env := s.do(t, http.MethodPost, "/api/orders", fmt.Sprintf(
		`{"customer_id":%d,"items":[{"product_id":%d,"quantity":5}]}`, customerID, productID))
	order := decodeOrder(t, env)

	stock := func() int {
		_, env := s.do(t, http.MethodGet, fmt.Sprintf("/api/products/%d", productID), "")
		var product struct{ Stock int }
		require.NoError(t, json.Unmarshal(env.Data, &product))
		return product.Stock
	}
	require.Equal(t, 95, stock())

	rec, env := s.do(t, http.MethodPost, fmt.Sprintf("/api/orders/%d/cancel", order.ID), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Order cancelled successfully", env.Message)
	assert.Equal(t, "CANCELLED", string(decodeOrder(t, env).Status))
	assert.Equal(t, 100, stock())
}

func TestErrorMapping(t *testing.T) {
	s := setup(t, false)
	customerID, productID := s.seed(t, "2000000", 3)

	t.Run("Insufficient stock", func(t *testing.T) {
		rec, env := s.do(t, http.MethodPost, "/api/orders", fmt.Sprintf(
			`{"customer_id":%d,"items":[{"product_id":%d,"quantity":4}]}`, customerID, productID),
			"Accept-Language", "id")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INSUFFICIENT_STOCK", env.Code)
		assert.Equal(t, "Stok Headphones tidak mencukupi: tersedia 3, diminta 4", env.Message)
	})

	t.Run("Order not found", func(t *testing.T) {
		rec, env := s.do(t, http.MethodGet, "/api/orders/99", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "RESOURCE_NOT_FOUND", env.Code)
		assert.Equal(t, "Order with ID 99 not found", env.Message)
	})

	t.Run("Duplicate email", func(t *testing.T) {
		rec, env := s.do(t, http.MethodPost, "/api/customers", `{"name":"Budi 2","email":"budi@example.com"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
		assert.Equal(t, "DUPLICATE_RESOURCE", env.Code)
	})

	t.Run("Business rule", func(t *testing.T) {
		rec, env := s.do(t, http.MethodDelete, fmt.Sprintf("/api/products/%d", productID), "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "BUSINESS_ERROR", env.Code)
		assert.Equal(t, "Product can only be deleted when stock is 0, current stock is 3", env.Message)
	})

	t.Run("Validation", func(t *testing.T) {
		rec, env := s.do(t, http.MethodPost, "/api/products",
			`{"name":" ","category":"TOYS","price":0,"stock":2000000}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", env.Code)
		assert.Equal(t, "Validation failed", env.Message)
		assert.Equal(t, "must not be blank", env.Errors["name"])
		assert.Equal(t, "must be one of [ELECTRONICS FOOD FASHION]", env.Errors["category"])
		assert.Equal(t, "must be at least 0.01", env.Errors["price"])
		assert.Equal(t, "must be at most 1000000", env.Errors["stock"])
	})

	t.Run("Empty order", func(t *testing.T) {
		rec, env := s.do(t, http.MethodPost, "/api/orders", fmt.Sprintf(`{"customer_id":%d,"items":[]}`, customerID))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "must contain at least one item", env.Errors["items"])
	})

	t.Run("Zero quantity", func(t *testing.T) {
		rec, env := s.do(t, http.MethodPost, "/api/orders", fmt.Sprintf(
			`{"customer_id":%d,"items":[{"product_id":%d,"quantity":0}]}`, customerID, productID))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "must be at least 1", env.Errors["items[0].quantity"])
	})

	t.Run("Quantity too large", func(t *testing.T) {
		rec, env := s.do(t, http.MethodPost, "/api/orders", fmt.Sprintf(
			`{"customer_id":%d,"items":[{"product_id":%d,"quantity":%d},{"product_id":%d,"quantity":1}]}`,
			customerID, productID, math.MaxInt64, productID))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "VALIDATION_ERROR", env.Code)
		assert.Equal(t, "must be at most 1000000", env.Errors["items[0].quantity"])
		assert.Empty(t, env.Errors["items[1].quantity"])
	})

	t.Run("Merged quantity above stock", func(t *testing.T) {
		rec, env := s.do(t, http.MethodPost, "/api/orders", fmt.Sprintf(
			`{"customer_id":%d,"items":[{"product_id":%d,"quantity":1000000},{"product_id":%d,"quantity":1000000}]}`,
			customerID, productID, productID))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "INSUFFICIENT_STOCK", env.Code)
		assert.Contains(t, env.Message, "Insufficient stock for Headphones: available 3")
	})

	t.Run("Invalid email", func(t *testing.T) {
		_, env := s.do(t, http.MethodPost, "/api/customers", `{"name":"X","email":"not-an-email"}`)
		assert.Equal(t, "must be a valid email address", env.Errors["email"])
	})

	t.Run("Malformed body", func(t *testing.T) {
		rec, env := s.do(t, http.MethodPost, "/api/customers", `{"name":`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, CodeInvalidRequest, env.Code)
		assert.Equal(t, "Malformed request body", env.Message)
	})

	t.Run("Invalid id", func(t *testing.T) {
		rec, env := s.do(t, http.MethodGet, "/api/orders/abc", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Invalid id: abc", env.Message)
	})

	t.Run("Unknown route", func(t *testing.T) {
		rec, env := s.do(t, http.MethodGet, "/api/nothing", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Route not found", env.Message)
	})
}

func TestProductEndpoints(t *testing.T) {
	s := setup(t, false)
	for i := 1; i <= 3; i++ {
		rec, _ := s.do(t, http.MethodPost, "/api/products",
			fmt.Sprintf(`{"name":"Shirt %d","category":"FASHION","price":"150000.50","stock":%d}`, i, i))
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	}

	t.Run("List", func(t *testing.T) {
		rec, env := s.do(t, http.MethodGet, "/api/products?page=0&size=2", "")
		require.Equal(t, http.StatusOK, rec.Code)
		var page struct {
			Items      []struct{ Name string }
			TotalItems int64 `json:"total_items"`
			TotalPages int   `json:"total_pages"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &page))
		assert.Len(t, page.Items, 2)
		assert.EqualValues(t, 3, page.TotalItems)
		assert.Equal(t, 2, page.TotalPages)
	})

	t.Run("Bad page", func(t *testing.T) {
		rec, _ := s.do(t, http.MethodGet, "/api/products?page=x", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("Update requires active", func(t *testing.T) {
		rec, env := s.do(t, http.MethodPut, "/api/products/1",
			`{"name":"Shirt 1","category":"FASHION","price":160000,"stock":1}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "must not be blank", env.Errors["active"])
	})

	t.Run("Update", func(t *testing.T) {
		rec, env := s.do(t, http.MethodPut, "/api/products/1",
			`{"name":"Shirt One","category":"FASHION","price":160000,"stock":0,"active":true}`)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, "Product updated successfully", env.Message)
	})

	t.Run("Delete", func(t *testing.T) {
		rec, env := s.do(t, http.MethodDelete, "/api/products/1", "")
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var product struct{ Active bool }
		require.NoError(t, json.Unmarshal(env.Data, &product))
		assert.False(t, product.Active)
	})
}

func TestAuth(t *testing.T) {
	s := setup(t, true)
	body := `{"name":"Budi","email":"budi@example.com"}`

	t.Run("Missing token", func(t *testing.T) {
		rec, env := s.do(t, http.MethodPost, "/api/customers", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "UNAUTHORIZED", env.Code)
		assert.Equal(t, "Authentication required", env.Message)
	})

	t.Run("Bad token", func(t *testing.T) {
		rec, _ := s.do(t, http.MethodPost, "/api/customers", body, echo.HeaderAuthorization, "Bearer nope")
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("Valid token", func(t *testing.T) {
		token, err := jwtutil.GenerateToken("ops@example.com", "admin")
		require.NoError(t, err)
		rec, _ := s.do(t, http.MethodPost, "/api/customers", body, echo.HeaderAuthorization, "Bearer "+token)
		assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	})

	t.Run("Health stays open", func(t *testing.T) {
		rec, _ := s.do(t, http.MethodGet, "/health", "")
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestInfrastructureEndpoints(t *testing.T) {
	s := setup(t, false)

	t.Run("Request id is echoed", func(t *testing.T) {
		rec, _ := s.do(t, http.MethodGet, "/health", "", echo.HeaderXRequestID, "req-123")
		assert.Equal(t, "req-123", rec.Header().Get(echo.HeaderXRequestID))
	})

	t.Run("Request id is generated", func(t *testing.T) {
		rec, _ := s.do(t, http.MethodGet, "/health", "")
		assert.NotEmpty(t, rec.Header().Get(echo.HeaderXRequestID))
	})

	t.Run("Metrics", func(t *testing.T) {
		s.do(t, http.MethodGet, "/api/orders/5", "")
		rec, _ := s.do(t, http.MethodGet, "/metrics", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `test_http_requests_total{method="GET",path="/api/orders/:id",status="404"} 1`)
	})
}
