package ui

import (
	"fmt"
	"strconv"

	"github.com/jw6ventures/callhistory/internal/calls"
)

type pageLink struct {
	Label    string
	URL      string
	Active   bool
	Disabled bool
}

type paginationView struct {
	Summary string
	Prev    pageLink
	Next    pageLink
	Pages   []pageLink
	Sizes   []pageLink
}

func listURL(p calls.PageParams) string {
	return "/calls?" + p.Query().Encode()
}

// buildPagination returns the pagination control for l, or nil when the
// filtered list is empty. Page links keep the page size; size links always
// go back to the first page.
func buildPagination(l calls.Listing) *paginationView {
	if !l.ShowPagination() {
		return nil
	}
	p := l.Params
	last := l.TotalPages()

	view := &paginationView{
		Summary: summary(p, l.Total),
		Prev: pageLink{
			Label:    "Previous",
			URL:      listURL(calls.PageParams{Page: p.Page - 1, PageSize: p.PageSize}),
			Disabled: p.Page <= 1,
		},
		Next: pageLink{
			Label:    "Next",
			URL:      listURL(calls.PageParams{Page: p.Page + 1, PageSize: p.PageSize}),
			Disabled: p.Page >= last,
		},
	}

	for n := 1; n <= last; n++ {
		view.Pages = append(view.Pages, pageLink{
			Label:  strconv.Itoa(n),
			URL:    listURL(calls.PageParams{Page: n, PageSize: p.PageSize}),
			Active: n == p.Page,
		})
	}
	for _, size := range calls.PageSizeOptions {
		view.Sizes = append(view.Sizes, pageLink{
			Label:  strconv.Itoa(size),
			URL:    listURL(calls.PageParams{Page: 1, PageSize: size}),
			Active: size == p.PageSize,
		})
	}
	return view
}

func summary(p calls.PageParams, total int) string {
	start, end := p.Bounds(total)
	if start == end {
		return fmt.Sprintf("0 of %d", total)
	}
	return fmt.Sprintf("%d - %d of %d", start+1, end, total)
}
