package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coffee-store-api/internal/model"
	"github.com/iliyamo/coffee-store-api/internal/service"
)

// CategoryHandler exposes CRUD endpoints for categories. Reads are
// public; mutations sit behind the Admin role gate in the router.
type CategoryHandler struct {
	Categories *service.CategoryService
}

func NewCategoryHandler(s *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{Categories: s}
}

type categoryReq struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type categoryResp struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

func toCategoryResp(c *model.Category) categoryResp {
	return categoryResp{ID: c.ID, Name: c.Name, Description: c.Description, CreatedAt: c.CreatedAt}
}

// List handles GET /v1/categories with search/sort/page parameters.
func (h *CategoryHandler) List(c echo.Context) error {
	page, err := h.Categories.List(c.Request().Context(), bindQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	items := make([]categoryResp, 0, len(page.Items))
	for _, cat := range page.Items {
		items = append(items, toCategoryResp(cat))
	}
	return c.JSON(http.StatusOK, model.PagedResult[categoryResp]{
		Items:      items,
		TotalCount: page.TotalCount,
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
	})
}

// Get handles GET /v1/categories/:id.
func (h *CategoryHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}
	cat, err := h.Categories.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toCategoryResp(cat))
}

// Create handles POST /v1/categories (admin).
func (h *CategoryHandler) Create(c echo.Context) error {
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	cat, err := h.Categories.Create(c.Request().Context(), req.Name, req.Description)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, toCategoryResp(cat))
}

// Update handles PUT /v1/categories/:id (admin).
func (h *CategoryHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}
	var req categoryReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	cat, err := h.Categories.Update(c.Request().Context(), id, req.Name, req.Description)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toCategoryResp(cat))
}

// Delete handles DELETE /v1/categories/:id (admin).
func (h *CategoryHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid category id"})
	}
	if err := h.Categories.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
