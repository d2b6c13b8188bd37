package calls

import "time"

// Row is one rendered entry of the list. ShowHeader is set on the first row
// of each date key within the current page.
type Row struct {
	GroupedCall
	ShowHeader bool
}

// Listing is everything the list page needs to render one request.
type Listing struct {
	Rows    []Row
	Total   int
	Params  PageParams
	Filters Filters
}

// BuildListing runs the filter, group and paginate pipeline over records.
func BuildListing(records []Call, f Filters, p PageParams, loc *time.Location) Listing {
	f = f.Normalize()
	flat := GroupByDate(Filter(records, f), loc)
	window := Paginate(flat, p)

	rows := make([]Row, 0, len(window))
	seen := make(map[string]struct{})
	for _, gc := range window {
		_, dup := seen[gc.DateKey]
		if !dup {
			seen[gc.DateKey] = struct{}{}
		}
		rows = append(rows, Row{GroupedCall: gc, ShowHeader: !dup})
	}

	return Listing{
		Rows:    rows,
		Total:   len(flat),
		Params:  p,
		Filters: f,
	}
}

// ShowPagination reports whether the pagination control is rendered.
func (l Listing) ShowPagination() bool {
	return l.Total > 0
}

// TotalPages is the page count for the filtered sequence.
func (l Listing) TotalPages() int {
	return l.Params.TotalPages(l.Total)
}
