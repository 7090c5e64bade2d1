package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/coffee-store-api/internal/model"
	"github.com/iliyamo/coffee-store-api/internal/store"
)

// OrderService manages purchase orders. Creation is the
// representative multi-row write of the system: the header and every
// line land in one transaction or not at all.
type OrderService struct {
	db *sql.DB
}

func NewOrderService(db *sql.DB) *OrderService {
	return &OrderService{db: db}
}

// OrderLine is one requested line of a new order.
type OrderLine struct {
	ProductID int64
	Quantity  int
	UnitPrice float64
}

// StatusPending is the state a new order starts in; StatusPaid is
// set when a payment is recorded against it.
const (
	StatusPending = "Pending"
	StatusPaid    = "Paid"
)

// List returns one page of orders with details and derived totals
// loaded. When userID is non-empty the result is scoped to that
// owner; search matches the status text. Both filters combine with
// AND.
func (s *OrderService) List(ctx context.Context, q model.QueryParameters, userID string) (*model.PagedResult[*model.Order], error) {
	uow := store.New(s.db)
	defer uow.Close()

	sort, skip, take := pageWindow(&q)
	var scope []store.Predicate
	if userID != "" {
		scope = append(scope, store.EqualsValue{Field: "user_id", Value: userID})
	}
	filter := searchFilter(q.Search, []string{"status"}, scope...)

	total, err := uow.Orders.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items, err := uow.Orders.GetPaged(ctx, filter, sort, skip, take, "Details")
	if err != nil {
		return nil, err
	}
	return paged(items, total, q), nil
}

// Get returns one order with its lines and derived total.
func (s *OrderService) Get(ctx context.Context, id int64) (*model.Order, error) {
	uow := store.New(s.db)
	defer uow.Close()

	items, err := uow.Orders.GetPaged(ctx, store.EqualsValue{Field: "id", Value: id}, nil, nil, nil, "Details")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("order %d: %w", id, store.ErrNotFound)
	}
	return items[0], nil
}

// Create places an order for the user inside an explicit
// transaction: the header is inserted and flushed to obtain its id,
// then every line is inserted, then the whole batch commits. Any
// failure rolls the entire order back, so a partial order is never
// observable. The total is never taken from the caller; it is the
// sum of the persisted lines.
func (s *OrderService) Create(ctx context.Context, userID string, lines []OrderLine) (*model.Order, error) {
	if userID == "" {
		return nil, fmt.Errorf("user id is required: %w", store.ErrValidation)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("an order needs at least one line: %w", store.ErrValidation)
	}
	for _, ln := range lines {
		if ln.Quantity <= 0 || ln.UnitPrice < 0 || ln.ProductID == 0 {
			return nil, fmt.Errorf("invalid order line: %w", store.ErrValidation)
		}
	}

	uow := store.New(s.db)
	defer uow.Close()

	if err := uow.BeginTransaction(ctx); err != nil {
		return nil, err
	}

	order := &model.Order{
		UserID:    userID,
		OrderDate: time.Now().UTC(),
		Status:    StatusPending,
	}
	uow.Orders.Add(order)
	if _, err := uow.SaveChanges(ctx); err != nil {
		_ = uow.RollbackTransaction()
		return nil, err
	}

	for _, ln := range lines {
		d := &model.OrderDetail{
			OrderID:   order.ID,
			ProductID: ln.ProductID,
			Quantity:  ln.Quantity,
			UnitPrice: ln.UnitPrice,
		}
		uow.OrderDetails.Add(d)
		order.Details = append(order.Details, d)
	}
	if err := uow.CommitTransaction(ctx); err != nil {
		return nil, err
	}

	for _, d := range order.Details {
		order.Total += d.LineTotal()
	}
	return order, nil
}

// UpdateStatus sets the order's status.
func (s *OrderService) UpdateStatus(ctx context.Context, id int64, status string) (*model.Order, error) {
	if status == "" {
		return nil, fmt.Errorf("status is required: %w", store.ErrValidation)
	}
	uow := store.New(s.db)
	defer uow.Close()

	order, err := uow.Orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, fmt.Errorf("order %d: %w", id, store.ErrNotFound)
	}
	order.Status = status
	uow.Orders.Update(order)
	if _, err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}
	return order, nil
}

// Delete removes an order together with its lines and payment, all
// in one transaction.
func (s *OrderService) Delete(ctx context.Context, id int64) error {
	uow := store.New(s.db)
	defer uow.Close()

	order, err := uow.Orders.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if order == nil {
		return fmt.Errorf("order %d: %w", id, store.ErrNotFound)
	}

	if err := uow.BeginTransaction(ctx); err != nil {
		return err
	}
	details, err := uow.OrderDetails.Find(ctx, store.EqualsValue{Field: "order_id", Value: id})
	if err != nil {
		_ = uow.RollbackTransaction()
		return err
	}
	for _, d := range details {
		uow.OrderDetails.Delete(d)
	}
	payments, err := uow.Payments.Find(ctx, store.EqualsValue{Field: "order_id", Value: id})
	if err != nil {
		_ = uow.RollbackTransaction()
		return err
	}
	for _, p := range payments {
		uow.Payments.Delete(p)
	}
	uow.Orders.Delete(order)
	return uow.CommitTransaction(ctx)
}
