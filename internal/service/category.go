package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/coffee-store-api/internal/model"
	"github.com/iliyamo/coffee-store-api/internal/store"
)

// CategoryService manages the product category reference table.
type CategoryService struct {
	db *sql.DB
}

func NewCategoryService(db *sql.DB) *CategoryService {
	return &CategoryService{db: db}
}

// List returns one page of categories. Search matches name or
// description, case-insensitively.
func (s *CategoryService) List(ctx context.Context, q model.QueryParameters) (*model.PagedResult[*model.Category], error) {
	uow := store.New(s.db)
	defer uow.Close()

	sort, skip, take := pageWindow(&q)
	filter := searchFilter(q.Search, []string{"name", "description"})

	total, err := uow.Categories.Count(ctx, filter)
	if err != nil {
		return nil, err
	}
	items, err := uow.Categories.GetPaged(ctx, filter, sort, skip, take)
	if err != nil {
		return nil, err
	}
	return paged(items, total, q), nil
}

// Get returns one category by id.
func (s *CategoryService) Get(ctx context.Context, id int64) (*model.Category, error) {
	uow := store.New(s.db)
	defer uow.Close()

	c, err := uow.Categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("category %d: %w", id, store.ErrNotFound)
	}
	return c, nil
}

// Create inserts a new category.
func (s *CategoryService) Create(ctx context.Context, name, description string) (*model.Category, error) {
	if name == "" {
		return nil, fmt.Errorf("category name is required: %w", store.ErrValidation)
	}
	uow := store.New(s.db)
	defer uow.Close()

	c := &model.Category{Name: name, Description: description, CreatedAt: time.Now().UTC()}
	uow.Categories.Add(c)
	if _, err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Update replaces the category's name and description.
func (s *CategoryService) Update(ctx context.Context, id int64, name, description string) (*model.Category, error) {
	uow := store.New(s.db)
	defer uow.Close()

	c, err := uow.Categories.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, fmt.Errorf("category %d: %w", id, store.ErrNotFound)
	}
	c.Name, c.Description = name, description
	uow.Categories.Update(c)
	if _, err := uow.SaveChanges(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a category and, through the schema cascade, its
// products.
func (s *CategoryService) Delete(ctx context.Context, id int64) error {
	uow := store.New(s.db)
	defer uow.Close()

	c, err := uow.Categories.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if c == nil {
		return fmt.Errorf("category %d: %w", id, store.ErrNotFound)
	}
	uow.Categories.Delete(c)
	_, err = uow.SaveChanges(ctx)
	return err
}
