package store

import (
	"context"
	"database/sql"
)

// Queryer is the slice of *sql.DB / *sql.Tx the store relies on.
// Every read goes through the unit of work's current session so
// queries inside an open transaction see its uncommitted writes.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// RelationLoader populates one named relation (a slice or pointer
// field) on a batch of already-loaded entities with a follow-up
// query. Relations are identified by name per entity; the mapper
// decides what a name means.
type RelationLoader[T any] func(ctx context.Context, q Queryer, items []*T) error

// Mapper describes how one entity type binds to its table: column
// layout, scan targets, insert shape and the logical field names the
// predicate language and sort keys may reference. One mapper exists
// per entity and is shared by every unit of work.
type Mapper[T any] struct {
	Table  string
	IDCol  string
	AutoID bool // database assigns the id on insert

	Columns []string          // select column order
	Fields  func(*T) []any    // scan destinations aligned with Columns
	Insert  func(*T) ([]string, []any)
	ID      func(*T) any
	SetID   func(*T, int64) // backfills AutoID keys after flush

	Filterable map[string]string // logical filter field -> column
	Sortable   map[string]string // sort key (lower-case) -> column
	Relations  map[string]RelationLoader[T]
}

// selectList returns the comma-joined column list for SELECTs.
func (m *Mapper[T]) selectList() string {
	out := ""
	for i, c := range m.Columns {
		if i > 0 {
			out += ", "
		}
		out += c
	}
	return out
}

// scanAll drains rows into freshly allocated entities.
func (m *Mapper[T]) scanAll(rows *sql.Rows) ([]*T, error) {
	defer rows.Close()
	var out []*T
	for rows.Next() {
		e := new(T)
		if err := rows.Scan(m.Fields(e)...); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
