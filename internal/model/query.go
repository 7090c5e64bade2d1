package model

// QueryParameters carries the list-query inputs every collection
// endpoint accepts. Search is a case-insensitive substring match over
// the entity's designated text fields, SortBy names a sort key
// (unknown keys fall back to identity order), and Page/PageSize
// describe a 1-based window.
type QueryParameters struct {
	Search    string `query:"search"`
	SortBy    string `query:"sortBy"`
	SortOrder string `query:"sortOrder"` // "asc" (default) or "desc"
	Page      int    `query:"page"`      // 1-based, default 1
	PageSize  int    `query:"pageSize"`  // default 10
}

// Normalize applies the documented defaults in place.
func (q *QueryParameters) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 10
	}
	if q.SortOrder != "desc" {
		q.SortOrder = "asc"
	}
}

// Offset returns the number of rows to skip for the requested page.
func (q QueryParameters) Offset() int {
	return (q.Page - 1) * q.PageSize
}

// PagedResult wraps one page of items with the paging totals the
// list endpoints return.
type PagedResult[T any] struct {
	Items      []T `json:"items"`
	TotalCount int `json:"total_count"`
	PageNumber int `json:"page_number"`
	PageSize   int `json:"page_size"`
}
