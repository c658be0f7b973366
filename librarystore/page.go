package librarystore

// Page is one page of a sorted listing.
type Page[T any] struct {
	Items      []T
	TotalItems int
	PageNumber int
	PageSize   int
}

// TotalPages returns how many pages of PageSize hold TotalItems.
func (p Page[T]) TotalPages() int {
	if p.PageSize <= 0 {
		return 0
	}

	return (p.TotalItems + p.PageSize - 1) / p.PageSize
}

// HasNextPage reports whether another page follows this one.
func (p Page[T]) HasNextPage() bool {
	return p.PageNumber < p.TotalPages()
}

// MapPage converts the items of a page, keeping the paging information.
func MapPage[T any, R any](page Page[T], convert func(T) R) Page[R] {
	items := make([]R, 0, len(page.Items))
	for _, item := range page.Items {
		items = append(items, convert(item))
	}

	return Page[R]{
		Items:      items,
		TotalItems: page.TotalItems,
		PageNumber: page.PageNumber,
		PageSize:   page.PageSize,
	}
}
