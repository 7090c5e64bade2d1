package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Repository exposes typed CRUD and query operations for one entity
// collection. Reads execute immediately against the owning unit of
// work's session; Add, Update and Delete only stage work that the
// unit of work applies atomically on the next flush.
type Repository[T any] struct {
	uow *UnitOfWork
	m   *Mapper[T]
}

func newRepository[T any](uow *UnitOfWork, m *Mapper[T]) *Repository[T] {
	return &Repository[T]{uow: uow, m: m}
}

// GetByID returns the entity with the given id, or nil when no such
// row exists. A miss is not an error.
func (r *Repository[T]) GetByID(ctx context.Context, id any) (*T, error) {
	q := "SELECT " + r.m.selectList() + " FROM " + r.m.Table + " WHERE " + r.m.IDCol + " = ? LIMIT 1"
	e := new(T)
	err := r.uow.session().QueryRowContext(ctx, q, id).Scan(r.m.Fields(e)...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return e, nil
}

// GetAll returns every row in identity order. Intended for small
// reference tables only.
func (r *Repository[T]) GetAll(ctx context.Context) ([]*T, error) {
	q := "SELECT " + r.m.selectList() + " FROM " + r.m.Table + " ORDER BY " + r.m.IDCol + " ASC"
	rows, err := r.uow.session().QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	return r.m.scanAll(rows)
}

// Find returns all rows matching the predicate, in identity order.
func (r *Repository[T]) Find(ctx context.Context, p Predicate) ([]*T, error) {
	where, args, err := compileWhere(p, r.m.Filterable)
	if err != nil {
		return nil, err
	}
	q := "SELECT " + r.m.selectList() + " FROM " + r.m.Table + where +
		" ORDER BY " + r.m.IDCol + " ASC"
	rows, err := r.uow.session().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	return r.m.scanAll(rows)
}

// Count returns the number of rows matching the predicate; a nil
// predicate counts the whole table.
func (r *Repository[T]) Count(ctx context.Context, p Predicate) (int, error) {
	where, args, err := compileWhere(p, r.m.Filterable)
	if err != nil {
		return 0, err
	}
	var n int
	q := "SELECT COUNT(*) FROM " + r.m.Table + where
	if err := r.uow.session().QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

// GetPaged runs the composite query primitive: filter, then order,
// then the skip/take window, then the named relation loads on the
// returned rows. Ordering is always applied before the window (the
// identity fallback keeps pagination stable even without an explicit
// sort). A nil skip or take leaves that side of the window open.
func (r *Repository[T]) GetPaged(ctx context.Context, p Predicate, sort *Sort, skip, take *int, relations ...string) ([]*T, error) {
	where, args, err := compileWhere(p, r.m.Filterable)
	if err != nil {
		return nil, err
	}
	q := "SELECT " + r.m.selectList() + " FROM " + r.m.Table + where +
		orderClause(sort, r.m.Sortable, r.m.IDCol)
	if take != nil || skip != nil {
		limit := int64(math.MaxInt64) // window open on the take side
		if take != nil {
			limit = int64(*take)
		}
		q += " LIMIT " + strconv.FormatInt(limit, 10)
		if skip != nil {
			q += " OFFSET " + strconv.Itoa(*skip)
		}
	}
	rows, err := r.uow.session().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	items, err := r.m.scanAll(rows)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return items, nil
	}
	for _, name := range relations {
		loader, ok := r.m.Relations[name]
		if !ok {
			return nil, fmt.Errorf("unknown relation %q for %s: %w", name, r.m.Table, ErrValidation)
		}
		if err := loader(ctx, r.uow.session(), items); err != nil {
			return nil, err
		}
	}
	return items, nil
}

// Add stages an insert. Auto-increment identities are assigned when
// the unit of work flushes; the staged entity is updated in place.
func (r *Repository[T]) Add(e *T) *T {
	r.uow.stage(func(ctx context.Context, q Queryer) (int64, error) {
		cols, vals := r.m.Insert(e)
		stmt := "INSERT INTO " + r.m.Table + " (" + strings.Join(cols, ", ") + ") VALUES (" +
			placeholders(len(vals)) + ")"
		res, err := q.ExecContext(ctx, stmt, vals...)
		if err != nil {
			return 0, classify(err)
		}
		if r.m.AutoID {
			id, err := res.LastInsertId()
			if err != nil {
				return 0, err
			}
			r.m.SetID(e, id)
		}
		return res.RowsAffected()
	})
	return e
}

// Update stages a full-row update keyed by the entity's id.
func (r *Repository[T]) Update(e *T) {
	r.uow.stage(func(ctx context.Context, q Queryer) (int64, error) {
		cols, vals := r.m.Insert(e)
		// Client-assigned keys appear in the insert list; keep them
		// out of the SET clause.
		set := make([]string, 0, len(cols))
		args := make([]any, 0, len(vals)+1)
		for i, c := range cols {
			if c == r.m.IDCol {
				continue
			}
			set = append(set, c+" = ?")
			args = append(args, vals[i])
		}
		stmt := "UPDATE " + r.m.Table + " SET " + strings.Join(set, ", ") + " WHERE " + r.m.IDCol + " = ?"
		res, err := q.ExecContext(ctx, stmt, append(args, r.m.ID(e))...)
		if err != nil {
			return 0, classify(err)
		}
		return res.RowsAffected()
	})
}

// Delete stages removal of the entity's row.
func (r *Repository[T]) Delete(e *T) {
	r.uow.stage(func(ctx context.Context, q Queryer) (int64, error) {
		stmt := "DELETE FROM " + r.m.Table + " WHERE " + r.m.IDCol + " = ?"
		res, err := q.ExecContext(ctx, stmt, r.m.ID(e))
		if err != nil {
			return 0, classify(err)
		}
		return res.RowsAffected()
	})
}

// classify tags constraint violations with the taxonomy sentinels;
// other driver errors pass through untouched.
func classify(err error) error {
	switch {
	case isDuplicate(err):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	case isRestricted(err):
		return fmt.Errorf("%w: %v", ErrConflict, err)
	default:
		return err
	}
}
