package service

import (
	"github.com/iliyamo/coffee-store-api/internal/model"
	"github.com/iliyamo/coffee-store-api/internal/store"
)

// pageWindow converts normalized query parameters into the sort and
// skip/take window GetPaged expects.
func pageWindow(q *model.QueryParameters) (*store.Sort, *int, *int) {
	q.Normalize()
	var sort *store.Sort
	if q.SortBy != "" {
		sort = &store.Sort{Key: q.SortBy, Order: q.SortOrder}
	}
	skip, take := q.Offset(), q.PageSize
	return sort, &skip, &take
}

// searchFilter builds the AND of an optional search predicate over
// the given text fields and any extra scoping clauses.
func searchFilter(search string, textFields []string, extra ...store.Predicate) store.Predicate {
	clauses := append([]store.Predicate{}, extra...)
	if search != "" {
		or := make(store.Or, 0, len(textFields))
		for _, f := range textFields {
			or = append(or, store.TextContains{Field: f, Value: search})
		}
		clauses = append(clauses, or)
	}
	if len(clauses) == 0 {
		return nil
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	return store.And(clauses)
}

func paged[T any](items []T, total int, q model.QueryParameters) *model.PagedResult[T] {
	return &model.PagedResult[T]{
		Items:      items,
		TotalCount: total,
		PageNumber: q.Page,
		PageSize:   q.PageSize,
	}
}
