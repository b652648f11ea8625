package view

import (
	"embed"
	"html/template"
	"io"

	"github.com/ANIKETSHETTY47/meters-dashboard/internal/pagination"
)

//go:embed templates/*.html
var templateFS embed.FS

var tmpl = template.Must(template.New("base").Funcs(template.FuncMap{
	"isPage": func(b pagination.Button) bool { return b.Kind == pagination.KindPage },
}).ParseFS(templateFS, "templates/*.html"))

// Render writes the meters table page.
func Render(w io.Writer, p Page) error {
	return tmpl.ExecuteTemplate(w, "table.html", p)
}
