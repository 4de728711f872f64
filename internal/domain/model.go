package domain

import "strings"

// SortDirection is the ordering applied to the sort field of a search.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// ParseSortDirection maps "asc"/"desc" (any case) to a SortDirection.
// Anything else yields SortAsc and ok=false.
func ParseSortDirection(s string) (dir SortDirection, ok bool) {
	switch SortDirection(strings.ToLower(strings.TrimSpace(s))) {
	case SortAsc:
		return SortAsc, true
	case SortDesc:
		return SortDesc, true
	default:
		return SortAsc, false
	}
}

// SearchQuery holds pagination, free-text search and sorting parameters.
// Page is 0-based. Terms are matched case-insensitively against the
// searchable text fields of the aggregate.
type SearchQuery struct {
	Page      int
	PerPage   int
	Terms     string
	Sort      string
	Direction SortDirection
}

// Offset returns the number of rows to skip for the query's page.
func (q SearchQuery) Offset() int {
	if q.Page < 0 || q.PerPage < 0 {
		return 0
	}
	return q.Page * q.PerPage
}

// Pagination is one page of results plus the total number of matches.
type Pagination[T any] struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	Items       []T   `json:"items"`
}

// NewPagination builds a Pagination for the given query. A nil items slice is
// replaced by an empty one so it serializes as [].
func NewPagination[T any](q SearchQuery, total int64, items []T) *Pagination[T] {
	if items == nil {
		items = []T{}
	}
	return &Pagination[T]{
		CurrentPage: q.Page,
		PerPage:     q.PerPage,
		Total:       total,
		Items:       items,
	}
}

// MapPagination projects every item of p with fn, keeping the page metadata.
func MapPagination[T, U any](p *Pagination[T], fn func(T) U) *Pagination[U] {
	if p == nil {
		return nil
	}
	items := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, fn(item))
	}
	return &Pagination[U]{
		CurrentPage: p.CurrentPage,
		PerPage:     p.PerPage,
		Total:       p.Total,
		Items:       items,
	}
}
