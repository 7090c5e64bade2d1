package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/coffee-store-api/internal/model"
	"github.com/iliyamo/coffee-store-api/internal/store"
)

// PaymentService records settlements against orders. Creating a
// payment also marks the owning order paid, so the two writes share
// one transaction.
type PaymentService struct {
	db *sql.DB
}

func NewPaymentService(db *sql.DB) *PaymentService {
	return &PaymentService{db: db}
}

// List returns one page of payments. Search matches the payment
// method text.
func (s *PaymentService) List(ctx context.Context, q model.QueryParameters) (*model.PagedResult[*model.Payment], error) {
	uow := store.New(s.db)
	defer uow.Close()

	sort, skip, take := pageWindow(&q)
	filter := searchFilter(q.Search, []string{"payment_method"})

	total, err := uow.Payments.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items, err := uow.Payments.GetPaged(ctx, filter, sort, skip, take)
	if err != nil {
		return nil, err
	}
	return paged(items, total, q), nil
}

// Get returns one payment by id.
func (s *PaymentService) Get(ctx context.Context, id int64) (*model.Payment, error) {
	uow := store.New(s.db)
	defer uow.Close()

	p, err := uow.Payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("payment %d: %w", id, store.ErrNotFound)
	}
	return p, nil
}

// Create records a payment for an order and marks the order paid.
// An order can hold at most one payment.
func (s *PaymentService) Create(ctx context.Context, orderID int64, amount float64, method string) (*model.Payment, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", store.ErrValidation)
	}
	if method == "" {
		return nil, fmt.Errorf("payment method is required: %w", store.ErrValidation)
	}

	uow := store.New(s.db)
	defer uow.Close()

	order, err := uow.Orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %d: %w", orderID, store.ErrNotFound)
	}
	if order.PaymentID != nil {
		return nil, fmt.Errorf("order %d is already paid: %w", orderID, store.ErrConflict)
	}

	if err := uow.BeginTransaction(ctx); err != nil {
		return nil, err
	}
	payment := &model.Payment{
		OrderID:       orderID,
		Amount:        amount,
		PaymentDate:   time.Now().UTC(),
		PaymentMethod: method,
	}
	uow.Payments.Add(payment)
	if _, err := uow.SaveChanges(ctx); err != nil {
		_ = uow.RollbackTransaction()
		return nil, err
	}
	order.PaymentID = &payment.ID
	order.Status = StatusPaid
	uow.Orders.Update(order)
	if err := uow.CommitTransaction(ctx); err != nil {
		return nil, err
	}
	return payment, nil
}

// Update changes a payment's amount and method.
func (s *PaymentService) Update(ctx context.Context, id int64, amount float64, method string) (*model.Payment, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("amount must be positive: %w", store.ErrValidation)
	}
	uow := store.New(s.db)
	defer uow.Close()

	p, err := uow.Payments.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("payment %d: %w", id, store.ErrNotFound)
	}
	p.Amount = amount
	if method != "" {
		p.PaymentMethod = method
	}
	uow.Payments.Update(p)
	if _, err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a payment and detaches it from its order,
// returning the order to Pending.
func (s *PaymentService) Delete(ctx context.Context, id int64) error {
	uow := store.New(s.db)
	defer uow.Close()

	p, err := uow.Payments.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("payment %d: %w", id, store.ErrNotFound)
	}

	if err := uow.BeginTransaction(ctx); err != nil {
		return err
	}
	order, err := uow.Orders.GetByID(ctx, p.OrderID)
	if err != nil {
		_ = uow.RollbackTransaction()
		return err
	}
	if order != nil && order.PaymentID != nil && *order.PaymentID == p.ID {
		order.PaymentID = nil
		order.Status = StatusPending
		uow.Orders.Update(order)
	}
	uow.Payments.Delete(p)
	return uow.CommitTransaction(ctx)
}
