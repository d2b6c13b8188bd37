// Package ui serves the server-rendered call history pages.
package ui

import (
	"html/template"
	"time"

	"github.com/jw6ventures/callhistory/internal/calls"
	"github.com/jw6ventures/callhistory/internal/config"
	"github.com/jw6ventures/callhistory/internal/session"
)

// The list page always asks the source for the same window and does the
// rest of the work locally.
const (
	fetchOffset = 0
	fetchLimit  = 100
)

// loadingRefresh is how many seconds the loading page waits before reloading.
const loadingRefresh = 2

// Handler serves server-rendered HTML pages.
type Handler struct {
	cfg       *config.Config
	source    calls.Source
	filters   session.FilterStore
	templates map[string]*template.Template
	loc       *time.Location
}

func NewHandler(cfg *config.Config, source calls.Source, filters session.FilterStore) *Handler {
	return &Handler{
		cfg:       cfg,
		source:    source,
		filters:   filters,
		templates: templates,
		loc:       cfg.Location,
	}
}
