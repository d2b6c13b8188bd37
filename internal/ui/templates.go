package ui

import (
	"embed"
	"html/template"
	"io/fs"
	"time"

	"github.com/jw6ventures/callhistory/internal/calls"
)

//go:embed templates/*
var templateFS embed.FS

var templates = mustParseTemplates()

var funcMap = template.FuncMap{
	"formatTime": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.UTC().Format(time.RFC3339)
	},
	"formatDuration": calls.FormatDuration,
	"directionIcon": func(d calls.Direction) string {
		if d == calls.DirectionInbound {
			return "↙"
		}
		return "↗"
	},
}

// mustParseTemplates builds one template set per page, each a clone of
// base.html with the page's blocks layered on top.
func mustParseTemplates() map[string]*template.Template {
	files, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		panic(err)
	}

	base := template.Must(template.New("base.html").Funcs(funcMap).ParseFS(templateFS, "templates/base.html"))

	sets := make(map[string]*template.Template)
	for _, file := range files {
		if file == "templates/base.html" {
			continue
		}

		set := template.Must(base.Clone())
		template.Must(set.ParseFS(templateFS, file))
		sets[file[len("templates/"):]] = set
	}

	return sets
}
