package dto

import "math"

// Default and maximum page sizes for list endpoints.
const (
	DefaultLimit = 10
	MaxLimit     = 100
)

// Pagination captures pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// NewPagination computes the metadata for a page of results.
func NewPagination(page, limit int, total int64) Pagination {
	return Pagination{
		Page:       page,
		Limit:      limit,
		Total:      total,
		TotalPages: TotalPages(total, limit),
	}
}

// TotalPages returns ceil(total/limit), or zero when there is nothing to page through.
func TotalPages(total int64, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return int(math.Ceil(float64(total) / float64(limit)))
}

// ListQuery holds the shared filters accepted by list endpoints.
type ListQuery struct {
	Page     int
	Limit    int
	Search   string
	Status   string
	ParentID string
	Tool     string
	Category string
}

// ListResult wraps a page of items.
type ListResult[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}
