package models

// Default and maximum page sizes for paginated listings.
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// Page is one slice of a paginated listing.
type Page[T any] struct {
	Contents   []T   `json:"contents"`
	PageIndex  int   `json:"page_index"`
	PageSize   int   `json:"page_size"`
	TotalCount int64 `json:"total_count"`
	TotalPages int   `json:"total_pages"`
}

// NormalizePaging clamps a zero-based page index and a page size to sane values.
func NormalizePaging(pageIndex, pageSize int) (int, int) {
	if pageIndex < 0 {
		pageIndex = 0
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return pageIndex, pageSize
}

// NewPage assembles a page and derives the page count from the total.
func NewPage[T any](contents []T, pageIndex, pageSize int, total int64) Page[T] {
	if contents == nil {
		contents = []T{}
	}
	pages := 0
	if pageSize > 0 {
		pages = int((total + int64(pageSize) - 1) / int64(pageSize))
	}
	return Page[T]{
		Contents:   contents,
		PageIndex:  pageIndex,
		PageSize:   pageSize,
		TotalCount: total,
		TotalPages: pages,
	}
}
