package api

import (
	"embed"
	"html/template"

	"github.com/xrclskn/biolink/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

func LoadTemplates() (*template.Template, error) {
	funcs := template.FuncMap{
		// linkHref prefers the tracked short URL over the raw target.
		"linkHref": func(l models.LinkItem) string {
			if l.ShortURL != "" {
				return l.ShortURL
			}
			return l.OriginalURL
		},
	}

	return template.New("base").Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}
