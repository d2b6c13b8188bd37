package ui

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jw6ventures/callhistory/internal/calls"
	httperrors "github.com/jw6ventures/callhistory/internal/http/errors"
)

type callView struct {
	calls.Call
	DateKey    string
	ShowHeader bool
	Date       string
	URL        string
}

func (h *Handler) newCallView(c calls.Call, dateKey string, header bool) callView {
	return callView{
		Call:       c,
		DateKey:    dateKey,
		ShowHeader: header,
		Date:       calls.FormatDate(c.CreatedAt, h.loc),
		URL:        "/calls/" + url.PathEscape(c.ID),
	}
}

// ListCalls renders the filtered, date grouped and paginated call list.
func (h *Handler) ListCalls(w http.ResponseWriter, r *http.Request) {
	params := calls.ParsePageParams(r.URL.Query())

	filters, err := h.filters.Load(r)
	if err != nil {
		httperrors.LogWarn(r, "ignoring unreadable filter session", err)
	}

	ctx, cancel := h.fetchContext(r.Context())
	defer cancel()
	page, err := h.source.PaginatedCalls(ctx, fetchOffset, fetchLimit)
	if err != nil {
		h.renderFetchFailure(w, r, err)
		return
	}

	listing := calls.BuildListing(page.Nodes, filters, params, h.loc)
	rows := make([]callView, len(listing.Rows))
	for i, row := range listing.Rows {
		rows[i] = h.newCallView(row.Call, row.DateKey, row.ShowHeader)
	}

	data := map[string]any{
		"Title":      "Calls History",
		"Rows":       rows,
		"Filters":    filterMenus(listing.Filters),
		"PageSize":   params.PageSize,
		"Pagination": buildPagination(listing),
	}
	h.render(w, r, http.StatusOK, "calls.html", h.withCSRF(r, data))
}

// UpdateFilters stores the posted selectors in the session and sends the
// visitor back to the first page of the list, keeping the page size.
// Missing or unknown values leave that selector unchanged.
func (h *Handler) UpdateFilters(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		httperrors.BadRequestError(w, r, err, "invalid form")
		return
	}

	current, err := h.filters.Load(r)
	if err != nil {
		httperrors.LogWarn(r, "ignoring unreadable filter session", err)
	}
	if v, ok := calls.ParseCallTypeFilter(r.PostForm.Get("callType")); ok {
		current.CallType = v
	}
	if v, ok := calls.ParseDirectionFilter(r.PostForm.Get("direction")); ok {
		current.Direction = v
	}

	if err := h.filters.Save(w, r, current); err != nil {
		httperrors.InternalError(w, r, err, "failed to save filters")
		return
	}

	params := calls.ParsePageParams(url.Values{"pageSize": {r.PostForm.Get("pageSize")}})
	h.redirect(w, r, "/calls", map[string]string{
		"page":     strconv.Itoa(calls.DefaultPage),
		"pageSize": strconv.Itoa(params.PageSize),
	})
}

// ViewCall renders every attribute of a single call.
func (h *Handler) ViewCall(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httperrors.BadRequestError(w, r, err, "invalid call id")
		return
	}

	ctx, cancel := h.fetchContext(r.Context())
	defer cancel()
	call, err := h.source.Call(ctx, id.String())
	if errors.Is(err, calls.ErrNotFound) {
		h.NotFound(w, r)
		return
	}
	if err != nil {
		h.renderFetchFailure(w, r, err)
		return
	}

	data := map[string]any{
		"Title":     call.Title(),
		"Call":      h.newCallView(*call, calls.DateKey(call.CreatedAt, h.loc), true),
		"CreatedAt": call.CreatedAt.In(h.location()).Format(time.RFC1123),
	}
	h.render(w, r, http.StatusOK, "call.html", data)
}

func (h *Handler) location() *time.Location {
	if h.loc == nil {
		return time.UTC
	}
	return h.loc
}
