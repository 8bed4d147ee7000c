package ports

import "math"

// PageRequest is a 1-based page number and a page size.
type PageRequest struct {
	Page     int
	PageSize int
}

// Offset returns the number of rows to skip.
func (p PageRequest) Offset() int {
	return (p.Page - 1) * p.PageSize
}

// Valid reports whether both page and size are at least 1 and the offset
// of the page fits in an int.
func (p PageRequest) Valid() bool {
	if p.Page < 1 || p.PageSize < 1 {
		return false
	}
	return p.Page-1 <= math.MaxInt/p.PageSize
}

// Page is one page of a listing.
type Page[T any] struct {
	Items      []T
	Page       int
	PageSize   int
	Total      int64
	TotalPages int
}

// NewPage builds a Page and computes TotalPages = ceil(total / pageSize).
func NewPage[T any](items []T, req PageRequest, total int64) *Page[T] {
	if items == nil {
		items = []T{}
	}
	return &Page[T]{
		Items:      items,
		Page:       req.Page,
		PageSize:   req.PageSize,
		Total:      total,
		TotalPages: TotalPages(total, req.PageSize),
	}
}

// TotalPages returns ceil(total / pageSize) using integer arithmetic.
func TotalPages(total int64, pageSize int) int {
	if pageSize < 1 || total <= 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}
