package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"order-service/internal/model"
	"order-service/internal/service"
	"order-service/pkg/i18n"
	"order-service/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductRequest is the body of product creation and update requests
type ProductRequest struct {
	Name     string           `json:"name"`
	Category string           `json:"category"`
	Price    *decimal.Decimal `json:"price"`
	Stock    *int             `json:"stock"`
	Active   *bool            `json:"active"`
}

func (r *ProductRequest) validate(creating bool) error {
	v := &ValidationError{}
	v.required("name", r.Name)

	if r.Category == "" {
		v.add("category", i18n.KeyRequired)
	} else if !model.Category(r.Category).Valid() {
		v.add("category", i18n.KeyCategory, fmt.Sprint(model.Categories))
	}

	if r.Price == nil {
		v.add("price", i18n.KeyRequired)
	} else if r.Price.LessThan(minPrice) {
		v.add("price", i18n.KeyMin, minPrice.String())
	}

	switch {
	case r.Stock == nil:
		v.add("stock", i18n.KeyRequired)
	case *r.Stock < 0:
		v.add("stock", i18n.KeyMin, 0)
	case creating && *r.Stock > maxStock:
		v.add("stock", i18n.KeyMax, strconv.Itoa(maxStock))
	}

	if !creating && r.Active == nil {
		v.add("active", i18n.KeyRequired)
	}
	return v.err()
}

func (r *ProductRequest) input() service.ProductInput {
	in := service.ProductInput{
		Name:     strings.TrimSpace(r.Name),
		Category: model.Category(r.Category),
		Price:    *r.Price,
		Stock:    *r.Stock,
		Active:   true,
	}
	if r.Active != nil {
		in.Active = *r.Active
	}
	return in
}

// ProductHandler serves the product catalog endpoints
type ProductHandler struct {
	products *service.ProductService
}

// NewProductHandler creates a ProductHandler
func NewProductHandler(products *service.ProductService) *ProductHandler {
	return &ProductHandler{products: products}
}

// List handles retrieving a page of active products
func (h *ProductHandler) List(c echo.Context) error {
	page, err := queryInt(c, "page", 0)
	if err != nil {
		return err
	}
	size, err := queryInt(c, "size", service.DefaultPageSize)
	if err != nil {
		return err
	}

	result, err := h.products.ListProducts(c.Request().Context(), page, size)
	if err != nil {
		return err
	}
	return ok(c, result)
}

// Get handles retrieving a single product by id
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	product, err := h.products.GetProduct(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return ok(c, product)
}

// Create handles adding a product to the catalog
func (h *ProductHandler) Create(c echo.Context) error {
	var req ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.validate(true); err != nil {
		return err
	}

	logger.FromEcho(c).Info("Product creation request",
		zap.String("name", req.Name),
		zap.String("category", req.Category),
		zap.String("price", req.Price.String()),
		zap.Int("stock", *req.Stock))

	product, err := h.products.CreateProduct(c.Request().Context(), req.input())
	if err != nil {
		return err
	}
	return success(c, http.StatusCreated, "product.created.success", product)
}

// Update handles replacing the writable fields of a product
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}
	var req ProductRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	if err := req.validate(false); err != nil {
		return err
	}

	product, err := h.products.UpdateProduct(c.Request().Context(), id, req.input())
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "product.updated.success", product)
}

// Delete handles deactivating a product with no stock left
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return err
	}

	product, err := h.products.DeleteProduct(c.Request().Context(), id)
	if err != nil {
		return err
	}
	return success(c, http.StatusOK, "product.deleted.success", product)
}
