package http

import (
	"embed"
	"fmt"
	"html/template"

	"github.com/mrlokans/library-manager/internal/entities"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed templates/default_cover.svg
var defaultCoverSVG []byte

// loadTemplates parses the embedded page templates.
func loadTemplates() *template.Template {
	funcMap := template.FuncMap{
		"coverURL": func(b entities.Book) string {
			return fmt.Sprintf("/covers/%d", b.ID)
		},
	}
	return template.Must(template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/*.html"))
}
