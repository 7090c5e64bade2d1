package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coffee-store-api/internal/model"
	"github.com/iliyamo/coffee-store-api/internal/service"
)

// ProductHandler exposes CRUD endpoints for catalog products.
type ProductHandler struct {
	Products *service.ProductService
}

func NewProductHandler(s *service.ProductService) *ProductHandler {
	return &ProductHandler{Products: s}
}

type productReq struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
	CategoryID  int64   `json:"category_id"`
	IsActive    bool    `json:"is_active"`
}

type productResp struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Description  string  `json:"description"`
	Price        float64 `json:"price"`
	CategoryID   int64   `json:"category_id"`
	CategoryName string  `json:"category_name,omitempty"`
	IsActive     bool    `json:"is_active"`
}

func toProductResp(p *model.Product) productResp {
	resp := productResp{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Price,
		CategoryID:  p.CategoryID,
		IsActive:    p.IsActive,
	}
	if p.Category != nil {
		resp.CategoryName = p.Category.Name
	}
	return resp
}

// List handles GET /v1/products.
func (h *ProductHandler) List(c echo.Context) error {
	page, err := h.Products.List(c.Request().Context(), bindQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	items := make([]productResp, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, toProductResp(p))
	}
	return c.JSON(http.StatusOK, model.PagedResult[productResp]{
		Items:      items,
		TotalCount: page.TotalCount,
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
	})
}

// Get handles GET /v1/products/:id.
func (h *ProductHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	p, err := h.Products.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResp(p))
}

// Create handles POST /v1/products (admin).
func (h *ProductHandler) Create(c echo.Context) error {
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p, err := h.Products.Create(c.Request().Context(), service.ProductInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toProductResp(p))
}

// Update handles PUT /v1/products/:id (admin).
func (h *ProductHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	var req productReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p, err := h.Products.Update(c.Request().Context(), id, service.ProductInput(req))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toProductResp(p))
}

// Delete handles DELETE /v1/products/:id (admin). Products still
// referenced by order lines cannot be removed.
func (h *ProductHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid product id"})
	}
	if err := h.Products.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
