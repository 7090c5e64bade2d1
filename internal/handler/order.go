package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coffee-store-api/internal/model"
	"github.com/iliyamo/coffee-store-api/internal/queue"
	"github.com/iliyamo/coffee-store-api/internal/service"
)

// OrderHandler exposes order endpoints. Regular users only see and
// create their own orders; admins see everything and own the
// status/delete operations.
type OrderHandler struct {
	Orders *service.OrderService
}

func NewOrderHandler(s *service.OrderService) *OrderHandler {
	return &OrderHandler{Orders: s}
}

type orderLineReq struct {
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
}
type createOrderReq struct {
	Lines []orderLineReq `json:"lines"`
}
type orderStatusReq struct {
	Status string `json:"status"`
}

type orderLineResp struct {
	ID        int64   `json:"id"`
	ProductID int64   `json:"product_id"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}
type orderResp struct {
	ID        int64           `json:"id"`
	UserID    string          `json:"user_id"`
	OrderDate time.Time       `json:"order_date"`
	Status    string          `json:"status"`
	PaymentID *int64          `json:"payment_id,omitempty"`
	Total     float64         `json:"total"`
	Lines     []orderLineResp `json:"lines"`
}

func toOrderResp(o *model.Order) orderResp {
	resp := orderResp{
		ID:        o.ID,
		UserID:    o.UserID,
		OrderDate: o.OrderDate,
		Status:    o.Status,
		PaymentID: o.PaymentID,
		Total:     o.Total,
		Lines:     []orderLineResp{},
	}
	for _, d := range o.Details {
		resp.Lines = append(resp.Lines, orderLineResp{
			ID:        d.ID,
			ProductID: d.ProductID,
			Quantity:  d.Quantity,
			UnitPrice: d.UnitPrice,
			LineTotal: d.LineTotal(),
		})
	}
	return resp
}

// List handles GET /v1/orders. Non-admin callers are scoped to their
// own orders; search matches the status text.
func (h *OrderHandler) List(c echo.Context) error {
	userID, role := currentUser(c)
	scope := userID
	if role == model.RoleAdmin {
		scope = ""
	}
	page, err := h.Orders.List(c.Request().Context(), bindQuery(c), scope)
	if err != nil {
		return writeError(c, err)
	}
	items := make([]orderResp, 0, len(page.Items))
	for _, o := range page.Items {
		items = append(items, toOrderResp(o))
	}
	return c.JSON(http.StatusOK, model.PagedResult[orderResp]{
		Items:      items,
		TotalCount: page.TotalCount,
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
	})
}

// Get handles GET /v1/orders/:id, restricted to the owner or an
// admin.
func (h *OrderHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	order, err := h.Orders.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	userID, role := currentUser(c)
	if role != model.RoleAdmin && order.UserID != userID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}
	return c.JSON(http.StatusOK, toOrderResp(order))
}

// Create handles POST /v1/orders for the authenticated user. The
// order and all its lines commit atomically; afterwards an
// order.placed event is published best-effort.
func (h *OrderHandler) Create(c echo.Context) error {
	userID, _ := currentUser(c)
	var req createOrderReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	lines := make([]service.OrderLine, 0, len(req.Lines))
	for _, ln := range req.Lines {
		lines = append(lines, service.OrderLine(ln))
	}
	order, err := h.Orders.Create(c.Request().Context(), userID, lines)
	if err != nil {
		return writeError(c, err)
	}
	_ = queue.Publish(c.Request().Context(), queue.OrderPlacedQueue, queue.OrderPlacedEvent{
		OrderID:     order.ID,
		UserID:      order.UserID,
		LineCount:   len(order.Details),
		TotalAmount: order.Total,
		PlacedAt:    order.OrderDate.Format(time.RFC3339),
	})
	return c.JSON(http.StatusCreated, toOrderResp(order))
}

// UpdateStatus handles PATCH /v1/orders/:id/status (admin).
func (h *OrderHandler) UpdateStatus(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	var req orderStatusReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	order, err := h.Orders.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toOrderResp(order))
}

// Delete handles DELETE /v1/orders/:id (admin). Lines and payment go
// with the header.
func (h *OrderHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid order id"})
	}
	if err := h.Orders.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
