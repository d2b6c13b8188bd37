package ui

import "net/http"

// NotFound renders the fallback page for unmatched routes.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, http.StatusNotFound, "not_found.html", map[string]any{
		"Title":   "Oops! Bad Route",
		"Message": "The page you're looking for doesn't exist or was moved.",
	})
}
