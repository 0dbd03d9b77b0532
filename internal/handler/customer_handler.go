package handler

import (
	"net/http"
	"strings"

	"order-service/internal/service"
	"order-service/pkg/i18n"
	"order-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// CreateCustomerRequest is the body of POST /api/customers
type CreateCustomerRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (r *CreateCustomerRequest) validate() error {
	v := &ValidationError{}
	v.required("name", r.Name)
	v.required("email", r.Email)
	if r.Email != "" && !validEmail(r.Email) {
		v.add("email", i18n.KeyEmail)
	}
	return v.err()
}

// CustomerHandler serves the customer endpoints
type CustomerHandler struct {
	customers *service.CustomerService
}

// NewCustomerHandler creates a CustomerHandler
func NewCustomerHandler(customers *service.CustomerService) *CustomerHandler {
	return &CustomerHandler{customers: customers}
}

// Create handles registering a new customer
func (h *CustomerHandler) Create(c echo.Context) error {
	var req CreateCustomerRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	if err := req.validate(); err != nil {
		return err
	}

	customer, err := h.customers.CreateCustomer(c.Request().Context(), req.Name, req.Email)
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, "customer.created.success", customer)
}

// Get handles retrieving a customer by id
func (h *CustomerHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	logger.FromEcho(c).Debug("Getting customer", zap.Uint("customer_id", id))

	customer, err := h.customers.GetCustomer(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, customer)
}
