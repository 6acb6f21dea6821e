package search

// Results is an ordered, type-erased result set handed to the HTTP layer.
type Results interface {
	Len() int
	// Page returns rows [offset, offset+limit) clamped to the available rows.
	Page(offset, limit int) any
}

// Table is the query surface of one indexed table, independent of its row type.
type Table interface {
	Len() int
	Terms() int
	All() Results
	Query(query string) Results
	Hits(query string) []Hit
}

var _ Table = (*Index[struct{}])(nil)

// Slice adapts a typed slice to Results.
type Slice[T any] []T

func (s Slice[T]) Len() int {
	return len(s)
}

func (s Slice[T]) Page(offset, limit int) any {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(s) || limit <= 0 {
		return []T{}
	}
	end := offset + limit
	if end > len(s) {
		end = len(s)
	}
	return []T(s[offset:end])
}
