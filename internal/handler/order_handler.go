package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"order-service/internal/inventory"
	"order-service/internal/model"
	"order-service/internal/service"
	"order-service/pkg/i18n"

	"github.com/labstack/echo/v4"
)

// OrderItemRequest is one requested line of an order
type OrderItemRequest struct {
	ProductID *uint `json:"product_id"`
	Quantity  *int  `json:"quantity"`
}

// CreateOrderRequest is the body of POST /api/orders
type CreateOrderRequest struct {
	CustomerID *uint              `json:"customer_id"`
	Items      []OrderItemRequest `json:"items"`
}

func (r *CreateOrderRequest) validate() error {
	v := &ValidationError{}
	if r.CustomerID == nil {
		v.add("customer_id", i18n.KeyRequired)
	}
	if len(r.Items) == 0 {
		v.add("items", i18n.KeyNoItems)
	}
	for i, item := range r.Items {
		field := fmt.Sprintf("items[%d]", i)
		if item.ProductID == nil {
			v.add(field+".product_id", i18n.KeyRequired)
		}
		switch {
		case item.Quantity == nil:
			v.add(field+".quantity", i18n.KeyRequired)
		case *item.Quantity < 1:
			v.add(field+".quantity", i18n.KeyMin, 1)
		case *item.Quantity > maxStock:
			v.add(field+".quantity", i18n.KeyMax, strconv.Itoa(maxStock))
		}
	}
	return v.err()
}

func (r *CreateOrderRequest) lines() []inventory.Line {
	lines := make([]inventory.Line, 0, len(r.Items))
	for _, item := range r.Items {
		lines = append(lines, inventory.Line{ProductID: *item.ProductID, Quantity: *item.Quantity})
	}
	return lines
}

// OrderItemResponse is one line of an order as returned to clients
type OrderItemResponse struct {
	ProductID       uint   `json:"product_id"`
	ProductName     string `json:"product_name"`
	Quantity        int    `json:"quantity"`
	PriceAtPurchase string `json:"price_at_purchase"`
	Subtotal        string `json:"subtotal"`
}

// OrderResponse is an order as returned to clients
type OrderResponse struct {
	ID             uint                `json:"id"`
	CustomerID     uint                `json:"customer_id"`
	CustomerName   string              `json:"customer_name"`
	Items          []OrderItemResponse `json:"items"`
	TotalAmount    string              `json:"total_amount"`
	DiscountAmount string              `json:"discount_amount"`
	FinalAmount    string              `json:"final_amount"`
	Status         model.OrderStatus   `json:"status"`
	CreatedAt      time.Time           `json:"created_at"`
}

func newOrderResponse(result *service.OrderResult) OrderResponse {
	order := result.Order
	items := make([]OrderItemResponse, 0, len(order.Items))
	for _, item := range order.Items {
		items = append(items, OrderItemResponse{
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			Quantity:        item.Quantity,
			PriceAtPurchase: item.PriceAtPurchase.StringFixed(2),
			Subtotal:        item.Subtotal().StringFixed(2),
		})
	}
	return OrderResponse{
		ID:             order.ID,
		CustomerID:     order.CustomerID,
		CustomerName:   result.Customer.Name,
		Items:          items,
		TotalAmount:    order.TotalAmount.StringFixed(2),
		DiscountAmount: order.DiscountAmount.StringFixed(2),
		FinalAmount:    order.FinalAmount.StringFixed(2),
		Status:         order.Status,
		CreatedAt:      order.CreatedAt,
	}
}

// OrderHandler serves the order endpoints
type OrderHandler struct {
	orders *service.OrderService
}

// NewOrderHandler creates an OrderHandler
func NewOrderHandler(orders *service.OrderService) *OrderHandler {
	return &OrderHandler{orders: orders}
}

// Create handles placing a new order
func (h *OrderHandler) Create(c echo.Context) error {
	var req CreateOrderRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.validate(); err != nil {
		return err
	}

	result, err := h.orders.CreateOrder(c.Request().Context(), *req.CustomerID, req.lines())
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, "order.created.success", newOrderResponse(result))
}

// Get handles retrieving an order by id
func (h *OrderHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	result, err := h.orders.GetOrder(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, newOrderResponse(result))
}

// Pay handles settling a CREATED order
func (h *OrderHandler) Pay(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	result, err := h.orders.PayOrder(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "order.paid.success", newOrderResponse(result))
}

// Cancel handles cancelling a CREATED order
func (h *OrderHandler) Cancel(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	result, err := h.orders.CancelOrder(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "order.cancelled.success", newOrderResponse(result))
}
