package pagination

// DefaultPageSize is used when a caller asks for a page size below 1
const DefaultPageSize = 10

// Summary is the pagination block rendered next to a page of results
type Summary struct {
	Count    int `json:"count"`
	Offset   int `json:"offset"`
	Page     int `json:"page"`
	PageSize int `json:"page_size"`
	LastPage int `json:"last_page"`
}

// Paginator computes offsets and page counts for an offset-paginated result set.
// It is immutable once constructed.
type Paginator struct {
	page       int
	pageSize   int
	totalCount int
	totalPages int
}

// New creates a paginator for the requested page. A page outside
// [1, TotalPages()] is reset to 1.
func New(page, pageSize, totalCount int) *Paginator {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	if totalCount < 0 {
		totalCount = 0
	}

	totalPages := (totalCount + pageSize - 1) / pageSize
	if page < 1 || page > totalPages {
		page = 1
	}

	return &Paginator{
		page:       page,
		pageSize:   pageSize,
		totalCount: totalCount,
		totalPages: totalPages,
	}
}

// Offset returns the number of rows to skip
func (p *Paginator) Offset() int {
	return (p.page - 1) * p.pageSize
}

// Page returns the effective page number
func (p *Paginator) Page() int {
	return p.page
}

// PageSize returns the effective page size
func (p *Paginator) PageSize() int {
	return p.pageSize
}

// TotalCount returns the number of rows in the whole result set
func (p *Paginator) TotalCount() int {
	return p.totalCount
}

// TotalPages returns ceil(TotalCount / PageSize); 0 for an empty set
func (p *Paginator) TotalPages() int {
	return p.totalPages
}

// Summary returns the pagination metadata
func (p *Paginator) Summary() Summary {
	return Summary{
		Count:    p.totalCount,
		Offset:   p.Offset(),
		Page:     p.page,
		PageSize: p.pageSize,
		LastPage: p.totalPages,
	}
}
