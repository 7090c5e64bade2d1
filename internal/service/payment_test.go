package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/coffee-store-api/internal/model"
	"github.com/iliyamo/coffee-store-api/internal/service"
	"github.com/iliyamo/coffee-store-api/internal/store"
)

func TestPaymentCreateMarksOrderPaid(t *testing.T) {
	db := newTestDB(t)
	userID, products := seedCatalog(t, db)
	orders := service.NewOrderService(db)
	payments := service.NewPaymentService(db)
	ctx := context.Background()

	order, err := orders.Create(ctx, userID, []service.OrderLine{
		{ProductID: products[0], Quantity: 2, UnitPrice: 3.50},
	})
	require.NoError(t, err)

	p, err := payments.Create(ctx, order.ID, 7.00, "card")
	require.NoError(t, err)
	require.NotZero(t, p.ID)

	got, err := orders.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, service.StatusPaid, got.Status)
	require.NotNil(t, got.PaymentID)
	require.Equal(t, p.ID, *got.PaymentID)
}

func TestPaymentCreateRejectsSecondPayment(t *testing.T) {
	db := newTestDB(t)
	userID, products := seedCatalog(t, db)
	orders := service.NewOrderService(db)
	payments := service.NewPaymentService(db)
	ctx := context.Background()

	order, err := orders.Create(ctx, userID, []service.OrderLine{
		{ProductID: products[0], Quantity: 1, UnitPrice: 3.50},
	})
	require.NoError(t, err)

	_, err = payments.Create(ctx, order.ID, 3.50, "card")
	require.NoError(t, err)
	_, err = payments.Create(ctx, order.ID, 3.50, "cash")
	require.ErrorIs(t, err, store.ErrConflict)
}

func TestPaymentCreateValidation(t *testing.T) {
	db := newTestDB(t)
	payments := service.NewPaymentService(db)
	ctx := context.Background()

	_, err := payments.Create(ctx, 1, 0, "card")
	require.ErrorIs(t, err, store.ErrValidation)
	_, err = payments.Create(ctx, 1, 5, "")
	require.ErrorIs(t, err, store.ErrValidation)
	_, err = payments.Create(ctx, 404, 5, "card")
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestPaymentDeleteReturnsOrderToPending(t *testing.T) {
	db := newTestDB(t)
	userID, products := seedCatalog(t, db)
	orders := service.NewOrderService(db)
	payments := service.NewPaymentService(db)
	ctx := context.Background()

	order, err := orders.Create(ctx, userID, []service.OrderLine{
		{ProductID: products[0], Quantity: 1, UnitPrice: 3.50},
	})
	require.NoError(t, err)
	p, err := payments.Create(ctx, order.ID, 3.50, "card")
	require.NoError(t, err)

	require.NoError(t, payments.Delete(ctx, p.ID))

	got, err := orders.Get(ctx, order.ID)
	require.NoError(t, err)
	require.Equal(t, service.StatusPending, got.Status)
	require.Nil(t, got.PaymentID)

	// A fresh payment is accepted again.
	_, err = payments.Create(ctx, order.ID, 3.50, "cash")
	require.NoError(t, err)
}

func TestPaymentListSearchesByMethod(t *testing.T) {
	db := newTestDB(t)
	userID, products := seedCatalog(t, db)
	orders := service.NewOrderService(db)
	payments := service.NewPaymentService(db)
	ctx := context.Background()

	line := []service.OrderLine{{ProductID: products[0], Quantity: 1, UnitPrice: 3.50}}
	o1, err := orders.Create(ctx, userID, line)
	require.NoError(t, err)
	o2, err := orders.Create(ctx, userID, line)
	require.NoError(t, err)

	_, err = payments.Create(ctx, o1.ID, 3.50, "Card")
	require.NoError(t, err)
	_, err = payments.Create(ctx, o2.ID, 3.50, "Cash")
	require.NoError(t, err)

	page, err := payments.List(ctx, model.QueryParameters{Search: "card"})
	require.NoError(t, err)
	require.Equal(t, 1, page.TotalCount)
	require.Equal(t, "Card", page.Items[0].PaymentMethod)
}
