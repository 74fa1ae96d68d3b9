package render

import (
	"embed"
	"html/template"
	"io"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplate = template.Must(template.ParseFS(templateFS, "templates/index.html"))

// PageData feeds the question form and answer page.
type PageData struct {
	Question string
	Points   []string
	Snippet  string
	Topic    string
	Language string
	// Warning replaces the answer for questions outside technical scope.
	Warning string
	// Error replaces the answer when the model call failed.
	Error string
	// CanDownload shows the PDF link for the answer kept in the session.
	CanDownload bool
}

// Page renders the form, and the answer when there is one.
func Page(w io.Writer, data PageData) error {
	return pageTemplate.ExecuteTemplate(w, "index.html", data)
}
