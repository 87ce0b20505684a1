package pagination

// Pagination carries page-number pagination as submitted by the dashboard
// tables (?page=N, synced into the URL by the search box).
type Pagination struct {
	Page     int `form:"page,default=1"`
	PageSize int `form:"page_size"`
}

const maxPageSize = 100

// Normalize clamps the pagination to sane values, filling PageSize from the
// provided default when the caller did not ask for one.
func (p Pagination) Normalize(defaultSize int) Pagination {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize <= 0 {
		p.PageSize = defaultSize
	}
	if p.PageSize > maxPageSize {
		p.PageSize = maxPageSize
	}
	return p
}

func (p Pagination) Offset() int {
	return (p.Page - 1) * p.PageSize
}

type PageInfo struct {
	Page       int   `json:"page"`
	TotalPages int   `json:"total_pages"`
	TotalItems int64 `json:"total_items"`
}

func BuildPageInfo(p Pagination, total int64) PageInfo {
	totalPages := 0
	if p.PageSize > 0 {
		totalPages = int((total + int64(p.PageSize) - 1) / int64(p.PageSize))
	}
	return PageInfo{
		Page:       p.Page,
		TotalPages: totalPages,
		TotalItems: total,
	}
}
