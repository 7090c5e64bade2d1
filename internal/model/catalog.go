package model

import "time"

// Category groups products in the catalog.
//
// Fields:
//  ID          – primary key identifier.
//  Name        – category name.
//  Description – free-text description.
//  CreatedAt   – timestamp of creation.
type Category struct {
	ID          int64     // categories.id
	Name        string    // categories.name
	Description string    // categories.description
	CreatedAt   time.Time // categories.created_at
}

// Product is a sellable catalog item belonging to one category.
// The Category pointer is only populated when the "Category"
// relation is requested on a query; it is never written back.
type Product struct {
	ID          int64     // products.id
	Name        string    // products.name
	Description string    // products.description
	Price       float64   // products.price
	CategoryID  int64     // products.category_id
	IsActive    bool      // products.is_active
	CreatedAt   time.Time // products.created_at

	Category *Category // loaded via the "Category" relation
}
