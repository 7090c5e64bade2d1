package store

import (
	"context"
	"strings"

	"github.com/iliyamo/coffee-store-api/internal/model"
)

// Mappers bind each entity to its table. They are package-level and
// immutable; repositories share them across units of work.

var categoryMapper = &Mapper[model.Category]{
	Table:   "categories",
	IDCol:   "id",
	AutoID:  true,
	Columns: []string{"id", "name", "description", "created_at"},
	Fields: func(c *model.Category) []any {
		return []any{&c.ID, &c.Name, &c.Description, &c.CreatedAt}
	},
	Insert: func(c *model.Category) ([]string, []any) {
		return []string{"name", "description", "created_at"},
			[]any{c.Name, c.Description, c.CreatedAt}
	},
	ID:    func(c *model.Category) any { return c.ID },
	SetID: func(c *model.Category, id int64) { c.ID = id },
	Filterable: map[string]string{
		"name":        "name",
		"description": "description",
	},
	Sortable: map[string]string{
		"name":        "name",
		"createddate": "created_at",
	},
}

var productMapper = &Mapper[model.Product]{
	Table:  "products",
	IDCol:  "id",
	AutoID: true,
	Columns: []string{
		"id", "name", "description", "price", "category_id", "is_active", "created_at",
	},
	Fields: func(p *model.Product) []any {
		return []any{&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.IsActive, &p.CreatedAt}
	},
	Insert: func(p *model.Product) ([]string, []any) {
		return []string{"name", "description", "price", "category_id", "is_active", "created_at"},
			[]any{p.Name, p.Description, p.Price, p.CategoryID, p.IsActive, p.CreatedAt}
	},
	ID:    func(p *model.Product) any { return p.ID },
	SetID: func(p *model.Product, id int64) { p.ID = id },
	Filterable: map[string]string{
		"id":          "id",
		"name":        "name",
		"description": "description",
		"category_id": "category_id",
		"is_active":   "is_active",
	},
	Sortable: map[string]string{
		"name":  "name",
		"price": "price",
	},
	Relations: map[string]RelationLoader[model.Product]{
		"Category": loadProductCategories,
	},
}

var orderMapper = &Mapper[model.Order]{
	Table:   "orders",
	IDCol:   "id",
	AutoID:  true,
	Columns: []string{"id", "user_id", "order_date", "status", "payment_id"},
	Fields: func(o *model.Order) []any {
		return []any{&o.ID, &o.UserID, &o.OrderDate, &o.Status, &o.PaymentID}
	},
	Insert: func(o *model.Order) ([]string, []any) {
		return []string{"user_id", "order_date", "status", "payment_id"},
			[]any{o.UserID, o.OrderDate, o.Status, o.PaymentID}
	},
	ID:    func(o *model.Order) any { return o.ID },
	SetID: func(o *model.Order, id int64) { o.ID = id },
	Filterable: map[string]string{
		"id":      "id",
		"status":  "status",
		"user_id": "user_id",
	},
	Sortable: map[string]string{
		"orderdate": "order_date",
		"status":    "status",
	},
	Relations: map[string]RelationLoader[model.Order]{
		"Details": loadOrderDetails,
	},
}

var orderDetailMapper = &Mapper[model.OrderDetail]{
	Table:   "order_details",
	IDCol:   "id",
	AutoID:  true,
	Columns: []string{"id", "order_id", "product_id", "quantity", "unit_price"},
	Fields: func(d *model.OrderDetail) []any {
		return []any{&d.ID, &d.OrderID, &d.ProductID, &d.Quantity, &d.UnitPrice}
	},
	Insert: func(d *model.OrderDetail) ([]string, []any) {
		return []string{"order_id", "product_id", "quantity", "unit_price"},
			[]any{d.OrderID, d.ProductID, d.Quantity, d.UnitPrice}
	},
	ID:    func(d *model.OrderDetail) any { return d.ID },
	SetID: func(d *model.OrderDetail, id int64) { d.ID = id },
	Filterable: map[string]string{
		"order_id":   "order_id",
		"product_id": "product_id",
	},
	Relations: map[string]RelationLoader[model.OrderDetail]{
		"Product": loadDetailProducts,
	},
}

var paymentMapper = &Mapper[model.Payment]{
	Table:   "payments",
	IDCol:   "id",
	AutoID:  true,
	Columns: []string{"id", "order_id", "amount", "payment_date", "payment_method"},
	Fields: func(p *model.Payment) []any {
		return []any{&p.ID, &p.OrderID, &p.Amount, &p.PaymentDate, &p.PaymentMethod}
	},
	Insert: func(p *model.Payment) ([]string, []any) {
		return []string{"order_id", "amount", "payment_date", "payment_method"},
			[]any{p.OrderID, p.Amount, p.PaymentDate, p.PaymentMethod}
	},
	ID:    func(p *model.Payment) any { return p.ID },
	SetID: func(p *model.Payment, id int64) { p.ID = id },
	Filterable: map[string]string{
		"payment_method": "payment_method",
		"order_id":       "order_id",
	},
	Sortable: map[string]string{
		"paymentdate": "payment_date",
		"amount":      "amount",
	},
}

// Users carry client-assigned UUID keys, so AutoID is off and the id
// participates in the insert column list.
var userMapper = &Mapper[model.User]{
	Table:   "users",
	IDCol:   "id",
	AutoID:  false,
	Columns: []string{"id", "username", "email", "password_hash", "role", "created_at"},
	Fields: func(u *model.User) []any {
		return []any{&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt}
	},
	Insert: func(u *model.User) ([]string, []any) {
		return []string{"id", "username", "email", "password_hash", "role", "created_at"},
			[]any{u.ID, u.Username, u.Email, u.PasswordHash, u.Role, u.CreatedAt}
	},
	ID: func(u *model.User) any { return u.ID },
	Filterable: map[string]string{
		"username": "username",
		"email":    "email",
	},
	Sortable: map[string]string{
		"username":    "username",
		"createddate": "created_at",
	},
}

var refreshTokenMapper = &Mapper[model.RefreshToken]{
	Table:   "refresh_tokens",
	IDCol:   "id",
	AutoID:  true,
	Columns: []string{"id", "user_id", "token", "expires_at", "is_revoked", "created_at"},
	Fields: func(t *model.RefreshToken) []any {
		return []any{&t.ID, &t.UserID, &t.Token, &t.ExpiresAt, &t.IsRevoked, &t.CreatedAt}
	},
	Insert: func(t *model.RefreshToken) ([]string, []any) {
		return []string{"user_id", "token", "expires_at", "is_revoked", "created_at"},
			[]any{t.UserID, t.Token, t.ExpiresAt, t.IsRevoked, t.CreatedAt}
	},
	ID:    func(t *model.RefreshToken) any { return t.ID },
	SetID: func(t *model.RefreshToken, id int64) { t.ID = id },
	Filterable: map[string]string{
		"token":      "token",
		"user_id":    "user_id",
		"is_revoked": "is_revoked",
	},
}

// placeholders returns "?, ?, ..." for n bind arguments.
func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// loadProductCategories fills Product.Category for every product in
// the batch with a single IN query.
func loadProductCategories(ctx context.Context, q Queryer, items []*model.Product) error {
	ids := make([]any, 0, len(items))
	seen := map[int64]bool{}
	for _, p := range items {
		if !seen[p.CategoryID] {
			seen[p.CategoryID] = true
			ids = append(ids, p.CategoryID)
		}
	}
	query := "SELECT id, name, description, created_at FROM categories WHERE id IN (" +
		placeholders(len(ids)) + ")"
	rows, err := q.QueryContext(ctx, query, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	byID := map[int64]*model.Category{}
	for rows.Next() {
		c := new(model.Category)
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt); err != nil {
			return err
		}
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, p := range items {
		p.Category = byID[p.CategoryID]
	}
	return nil
}

// loadOrderDetails fills Order.Details for the batch and recomputes
// each order's derived total from its lines.
func loadOrderDetails(ctx context.Context, q Queryer, items []*model.Order) error {
	ids := make([]any, 0, len(items))
	byID := make(map[int64]*model.Order, len(items))
	for _, o := range items {
		ids = append(ids, o.ID)
		byID[o.ID] = o
		o.Details = nil
		o.Total = 0
	}
	query := "SELECT id, order_id, product_id, quantity, unit_price FROM order_details WHERE order_id IN (" +
		placeholders(len(ids)) + ") ORDER BY id ASC"
	rows, err := q.QueryContext(ctx, query, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		d := new(model.OrderDetail)
		if err := rows.Scan(&d.ID, &d.OrderID, &d.ProductID, &d.Quantity, &d.UnitPrice); err != nil {
			return err
		}
		if o := byID[d.OrderID]; o != nil {
			o.Details = append(o.Details, d)
			o.Total += d.LineTotal()
		}
	}
	return rows.Err()
}

// loadDetailProducts fills OrderDetail.Product for the batch.
func loadDetailProducts(ctx context.Context, q Queryer, items []*model.OrderDetail) error {
	ids := make([]any, 0, len(items))
	seen := map[int64]bool{}
	for _, d := range items {
		if !seen[d.ProductID] {
			seen[d.ProductID] = true
			ids = append(ids, d.ProductID)
		}
	}
	query := "SELECT id, name, description, price, category_id, is_active, created_at FROM products WHERE id IN (" +
		placeholders(len(ids)) + ")"
	rows, err := q.QueryContext(ctx, query, ids...)
	if err != nil {
		return err
	}
	defer rows.Close()
	byID := map[int64]*model.Product{}
	for rows.Next() {
		p := new(model.Product)
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.CategoryID, &p.IsActive, &p.CreatedAt); err != nil {
			return err
		}
		byID[p.ID] = p
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, d := range items {
		d.Product = byID[d.ProductID]
	}
	return nil
}
