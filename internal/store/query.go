package store

import (
	"fmt"
	"strings"
)

// Predicate is a composable boolean filter over an entity's logical
// fields. Concrete clauses form a small tagged union that the
// repository compiles into a parameterized WHERE fragment; field
// names are resolved through the entity mapper so callers never deal
// in column names.
type Predicate interface {
	appendSQL(cols map[string]string, w *whereBuilder) error
}

// TextContains matches rows whose field contains the value,
// case-insensitively.
type TextContains struct {
	Field string
	Value string
}

// EqualsValue matches rows whose field equals the value exactly.
type EqualsValue struct {
	Field string
	Value any
}

// And combines clauses conjunctively. An empty And matches all rows.
type And []Predicate

// Or combines clauses disjunctively. An empty Or matches all rows.
type Or []Predicate

// whereBuilder accumulates SQL fragments and their bind arguments,
// the same shape the hand-written search queries used to build.
type whereBuilder struct {
	sql  strings.Builder
	args []any
}

func (p TextContains) appendSQL(cols map[string]string, w *whereBuilder) error {
	col, ok := cols[p.Field]
	if !ok {
		return fmt.Errorf("unknown filter field %q: %w", p.Field, ErrValidation)
	}
	w.sql.WriteString("LOWER(" + col + ") LIKE ? ESCAPE '!'")
	w.args = append(w.args, "%"+escapeLike(strings.ToLower(p.Value))+"%")
	return nil
}

// escapeLike neutralizes LIKE metacharacters so the search value
// matches literally. '!' is the escape character because a backslash
// is spelled differently in MySQL and SQLite string literals.
var likeEscaper = strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (p EqualsValue) appendSQL(cols map[string]string, w *whereBuilder) error {
	col, ok := cols[p.Field]
	if !ok {
		return fmt.Errorf("unknown filter field %q: %w", p.Field, ErrValidation)
	}
	w.sql.WriteString(col + " = ?")
	w.args = append(w.args, p.Value)
	return nil
}

func (p And) appendSQL(cols map[string]string, w *whereBuilder) error {
	return appendJoined(p, " AND ", cols, w)
}

func (p Or) appendSQL(cols map[string]string, w *whereBuilder) error {
	return appendJoined(p, " OR ", cols, w)
}

func appendJoined(clauses []Predicate, sep string, cols map[string]string, w *whereBuilder) error {
	if len(clauses) == 0 {
		w.sql.WriteString("1=1")
		return nil
	}
	w.sql.WriteString("(")
	for i, c := range clauses {
		if i > 0 {
			w.sql.WriteString(sep)
		}
		if err := c.appendSQL(cols, w); err != nil {
			return err
		}
	}
	w.sql.WriteString(")")
	return nil
}

// compileWhere renders a predicate to "WHERE ..." plus bind args. A
// nil predicate yields the empty string.
func compileWhere(p Predicate, cols map[string]string) (string, []any, error) {
	if p == nil {
		return "", nil, nil
	}
	var w whereBuilder
	if err := p.appendSQL(cols, &w); err != nil {
		return "", nil, err
	}
	return " WHERE " + w.sql.String(), w.args, nil
}

// Sort names a sort key and direction for a paged query. Keys are
// logical names resolved through the mapper's sortable set; unknown
// keys fall back to identity order rather than failing.
type Sort struct {
	Key   string
	Order string // "asc" or "desc"
}

// orderClause resolves a sort against the mapper's sortable columns.
// Identity order (primary key ascending) is the stable fallback.
func orderClause(s *Sort, sortable map[string]string, idCol string) string {
	if s == nil {
		return " ORDER BY " + idCol + " ASC"
	}
	col, ok := sortable[strings.ToLower(s.Key)]
	if !ok {
		return " ORDER BY " + idCol + " ASC"
	}
	dir := "ASC"
	if strings.EqualFold(s.Order, "desc") {
		dir = "DESC"
	}
	return " ORDER BY " + col + " " + dir
}
