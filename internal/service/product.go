package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/coffee-store-api/internal/model"
	"github.com/iliyamo/coffee-store-api/internal/store"
)

// ProductService manages catalog products.
type ProductService struct {
	db *sql.DB
}

func NewProductService(db *sql.DB) *ProductService {
	return &ProductService{db: db}
}

// ProductInput is the plain field bag for creates and updates.
type ProductInput struct {
	Name        string
	Description string
	Price       float64
	CategoryID  int64
	IsActive    bool
}

func (in ProductInput) validate() error {
	if in.Name == "" {
		return fmt.Errorf("product name is required: %w", store.ErrValidation)
	}
	if in.Price < 0 {
		return fmt.Errorf("price must not be negative: %w", store.ErrValidation)
	}
	if in.CategoryID == 0 {
		return fmt.Errorf("category_id is required: %w", store.ErrValidation)
	}
	return nil
}

// List returns one page of products with their categories loaded.
func (s *ProductService) List(ctx context.Context, q model.QueryParameters) (*model.PagedResult[*model.Product], error) {
	uow := store.New(s.db)
	defer uow.Close()

	sort, skip, take := pageWindow(&q)
	filter := searchFilter(q.Search, []string{"name", "description"})

	total, err := uow.Products.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items, err := uow.Products.GetPaged(ctx, filter, sort, skip, take, "Category")
	if err != nil {
		return nil, err
	}
	return paged(items, total, q), nil
}

// Get returns one product with its category loaded.
func (s *ProductService) Get(ctx context.Context, id int64) (*model.Product, error) {
	uow := store.New(s.db)
	defer uow.Close()

	items, err := uow.Products.GetPaged(ctx, store.EqualsValue{Field: "id", Value: id}, nil, nil, nil, "Category")
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("product %d: %w", id, store.ErrNotFound)
	}
	return items[0], nil
}

// Create inserts a product after checking the category exists.
func (s *ProductService) Create(ctx context.Context, in ProductInput) (*model.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	uow := store.New(s.db)
	defer uow.Close()

	cat, err := uow.Categories.GetByID(ctx, in.CategoryID)
	if err != nil {
		return nil, err
	}
	if cat == nil {
		return nil, fmt.Errorf("category %d: %w", in.CategoryID, store.ErrNotFound)
	}

	p := &model.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		CategoryID:  in.CategoryID,
		IsActive:    in.IsActive,
		CreatedAt:   time.Now().UTC(),
	}
	uow.Products.Add(p)
	if _, err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}
	p.Category = cat
	return p, nil
}

// Update replaces the product's mutable fields.
func (s *ProductService) Update(ctx context.Context, id int64, in ProductInput) (*model.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	uow := store.New(s.db)
	defer uow.Close()

	p, err := uow.Products.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, fmt.Errorf("product %d: %w", id, store.ErrNotFound)
	}
	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.CategoryID = in.CategoryID
	p.IsActive = in.IsActive
	uow.Products.Update(p)
	if _, err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes a product. Deletion is restricted while order
// details still reference it.
func (s *ProductService) Delete(ctx context.Context, id int64) error {
	uow := store.New(s.db)
	defer uow.Close()

	p, err := uow.Products.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("product %d: %w", id, store.ErrNotFound)
	}
	refs, err := uow.OrderDetails.Count(ctx, store.EqualsValue{Field: "product_id", Value: id})
	if err != nil {
		return err
	}
	if refs > 0 {
		return fmt.Errorf("product %d is referenced by %d order lines: %w", id, refs, store.ErrConflict)
	}
	uow.Products.Delete(p)
	_, err = uow.SaveChanges(ctx)
	return err
}
