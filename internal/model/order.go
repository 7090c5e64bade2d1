package model

import "time"

// Order is a purchase header owned by one user. The total is never
// stored: it is recomputed from the detail rows on every read so the
// header can never drift from its lines.
//
// Fields:
//  ID        – primary key identifier.
//  UserID    – owner of the order (users.id).
//  OrderDate – when the order was placed (UTC).
//  Status    – order state ("Pending", "Paid", ...).
//  PaymentID – link to the payment once one is recorded (nullable).
type Order struct {
	ID        int64     // orders.id
	UserID    string    // orders.user_id
	OrderDate time.Time // orders.order_date
	Status    string    // orders.status
	PaymentID *int64    // orders.payment_id (nullable)

	Details []*OrderDetail // loaded via the "Details" relation
	Total   float64        // derived: sum of Quantity*UnitPrice over Details
}

// OrderDetail is a single line of an order. It always references a
// valid product and a valid order; products cannot be deleted while
// details reference them, and deleting an order removes its details.
type OrderDetail struct {
	ID        int64   // order_details.id
	OrderID   int64   // order_details.order_id
	ProductID int64   // order_details.product_id
	Quantity  int     // order_details.quantity
	UnitPrice float64 // order_details.unit_price

	Product *Product // loaded via the "Product" relation
}

// LineTotal returns the extended price of the line.
func (d *OrderDetail) LineTotal() float64 {
	return float64(d.Quantity) * d.UnitPrice
}

// Payment records the settlement of one order (at most one per
// order). Creating a payment marks the owning order as paid.
type Payment struct {
	ID            int64     // payments.id
	OrderID       int64     // payments.order_id
	Amount        float64   // payments.amount
	PaymentDate   time.Time // payments.payment_date
	PaymentMethod string    // payments.payment_method
}
