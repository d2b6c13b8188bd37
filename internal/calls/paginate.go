package calls

import (
	"net/url"
	"strconv"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 5
)

// PageSizeOptions are the sizes offered by the pagination control.
var PageSizeOptions = []int{5, 10, 25, 50}

// PageParams is the page position carried in the URL query.
type PageParams struct {
	Page     int
	PageSize int
}

// ParsePageParams reads page and pageSize from q. Missing, non-numeric or
// non-positive values fall back to DefaultPage and DefaultPageSize.
func ParsePageParams(q url.Values) PageParams {
	p := PageParams{Page: DefaultPage, PageSize: DefaultPageSize}

	if v := q.Get("page"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			p.Page = parsed
		}
	}
	if v := q.Get("pageSize"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			p.PageSize = parsed
		}
	}
	return p
}

// Query encodes p back into URL query form.
func (p PageParams) Query() url.Values {
	q := url.Values{}
	q.Set("page", strconv.Itoa(p.Page))
	q.Set("pageSize", strconv.Itoa(p.PageSize))
	return q
}

// Bounds returns the half-open window [start, end) of a sequence of length
// total shown on this page. Both values are clamped to total, so a page past
// the end yields an empty window.
func (p PageParams) Bounds(total int) (start, end int) {
	if p.Page < 1 || p.PageSize < 1 || p.Page-1 > total/p.PageSize {
		return total, total
	}
	start = (p.Page - 1) * p.PageSize
	end = start + p.PageSize
	if end > total || end < start {
		end = total
	}
	return start, end
}

// TotalPages is the number of pages needed for total records.
func (p PageParams) TotalPages(total int) int {
	if total <= 0 || p.PageSize <= 0 {
		return 0
	}
	return (total + p.PageSize - 1) / p.PageSize
}

// Paginate returns the slice of flat shown on page p.
func Paginate(flat []GroupedCall, p PageParams) []GroupedCall {
	start, end := p.Bounds(len(flat))
	return flat[start:end]
}
