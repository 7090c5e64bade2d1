// Package queue defines the domain events exchanged over the message
// broker and the background consumer that records them.
package queue

// OrderPlacedEvent is published after an order commits. It carries
// enough for downstream consumers (notifications, analytics) to act
// without querying the primary database.
type OrderPlacedEvent struct {
	OrderID     int64   `json:"order_id"`
	UserID      string  `json:"user_id"`
	LineCount   int     `json:"line_count"`
	TotalAmount float64 `json:"total_amount"`
	PlacedAt    string  `json:"placed_at"`
}

// PaymentCompletedEvent is published after a payment commits and its
// order is marked paid.
type PaymentCompletedEvent struct {
	PaymentID int64   `json:"payment_id"`
	OrderID   int64   `json:"order_id"`
	Amount    float64 `json:"amount"`
	Method    string  `json:"method"`
	PaidAt    string  `json:"paid_at"`
}
