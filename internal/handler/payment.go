package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/coffee-store-api/internal/model"
	"github.com/iliyamo/coffee-store-api/internal/queue"
	"github.com/iliyamo/coffee-store-api/internal/service"
)

// PaymentHandler exposes payment endpoints, admin-only except for
// creation by the paying user.
type PaymentHandler struct {
	Payments *service.PaymentService
}

func NewPaymentHandler(s *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{Payments: s}
}

type paymentReq struct {
	OrderID       int64   `json:"order_id"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
}

type paymentResp struct {
	ID            int64     `json:"id"`
	OrderID       int64     `json:"order_id"`
	Amount        float64   `json:"amount"`
	PaymentDate   time.Time `json:"payment_date"`
	PaymentMethod string    `json:"payment_method"`
}

func toPaymentResp(p *model.Payment) paymentResp {
	return paymentResp{
		ID:            p.ID,
		OrderID:       p.OrderID,
		Amount:        p.Amount,
		PaymentDate:   p.PaymentDate,
		PaymentMethod: p.PaymentMethod,
	}
}

// List handles GET /v1/payments. Search matches the payment method.
func (h *PaymentHandler) List(c echo.Context) error {
	page, err := h.Payments.List(c.Request().Context(), bindQuery(c))
	if err != nil {
		return writeError(c, err)
	}
	items := make([]paymentResp, 0, len(page.Items))
	for _, p := range page.Items {
		items = append(items, toPaymentResp(p))
	}
	return c.JSON(http.StatusOK, model.PagedResult[paymentResp]{
		Items:      items,
		TotalCount: page.TotalCount,
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
	})
}

// Get handles GET /v1/payments/:id.
func (h *PaymentHandler) Get(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment id"})
	}
	p, err := h.Payments.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPaymentResp(p))
}

// Create handles POST /v1/payments. The payment and the order's Paid
// status commit together; afterwards a payment.completed event is
// published best-effort.
func (h *PaymentHandler) Create(c echo.Context) error {
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p, err := h.Payments.Create(c.Request().Context(), req.OrderID, req.Amount, req.PaymentMethod)
	if err != nil {
		return writeError(c, err)
	}
	_ = queue.Publish(c.Request().Context(), queue.PaymentCompletedQueue, queue.PaymentCompletedEvent{
		PaymentID: p.ID,
		OrderID:   p.OrderID,
		Amount:    p.Amount,
		Method:    p.PaymentMethod,
		PaidAt:    p.PaymentDate.Format(time.RFC3339),
	})
	return c.JSON(http.StatusCreated, toPaymentResp(p))
}

// Update handles PUT /v1/payments/:id (admin).
func (h *PaymentHandler) Update(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment id"})
	}
	var req paymentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	p, err := h.Payments.Update(c.Request().Context(), id, req.Amount, req.PaymentMethod)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, toPaymentResp(p))
}

// Delete handles DELETE /v1/payments/:id (admin). The owning order
// falls back to Pending.
func (h *PaymentHandler) Delete(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid payment id"})
	}
	if err := h.Payments.Delete(c.Request().Context(), id); err != nil {
		return writeError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
