package ui

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/jw6ventures/callhistory/internal/calls"
	"github.com/jw6ventures/callhistory/internal/http/csrf"
	httperrors "github.com/jw6ventures/callhistory/internal/http/errors"
)

// withCSRF adds the CSRF token to template data.
func (h *Handler) withCSRF(r *http.Request, data map[string]any) map[string]any {
	if token := csrf.TokenFromContext(r.Context()); token != "" {
		data["CSRFToken"] = token
	}
	return data
}

// redirect redirects to a path with query parameters.
func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, path string, params map[string]string) {
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	location := path
	if encoded := q.Encode(); encoded != "" {
		location += "?" + encoded
	}
	http.Redirect(w, r, location, http.StatusFound)
}

// render executes a template into a buffer and writes it with status, so a
// failing template never leaves a half-written page behind.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	tmpl, ok := h.templates[name]
	if !ok {
		httperrors.InternalError(w, r, fmt.Errorf("template not found"), fmt.Sprintf("template %q not found", name))
		return
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		httperrors.InternalError(w, r, err, fmt.Sprintf("template render error for %q", name))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

// fetchContext bounds a source call by the configured fetch budget.
func (h *Handler) fetchContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if h.cfg.FetchTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, h.cfg.FetchTimeout)
}

// renderFetchFailure picks the placeholder page for a failed source call:
// loading while the budget ran out, not found for an empty payload, and a
// bare error otherwise.
func (h *Handler) renderFetchFailure(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded) && r.Context().Err() == nil:
		httperrors.LogWarn(r, "calls fetch still pending", err)
		h.render(w, r, http.StatusOK, "status.html", map[string]any{
			"Title":   "Calls History",
			"Message": "Loading calls...",
			"Refresh": loadingRefresh,
		})
	case errors.Is(err, calls.ErrNoData):
		httperrors.LogWarn(r, "calls source returned no data", err)
		h.render(w, r, http.StatusNotFound, "status.html", map[string]any{
			"Title":   "Calls History",
			"Message": "Not found",
		})
	default:
		httperrors.LogError(r, "calls fetch failed", err)
		h.render(w, r, http.StatusBadGateway, "status.html", map[string]any{
			"Title":   "Calls History",
			"Message": "ERROR",
		})
	}
}
