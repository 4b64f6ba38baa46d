package web

import (
	"embed"
	"html/template"
	"net/http"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

type templateSet struct {
	t *template.Template
}

func loadTemplates() (*templateSet, error) {
	t := template.New("").Funcs(template.FuncMap{
		"display": displayText,
		"initial": avatarInitial,
	})
	t, err := t.ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	return &templateSet{t: t}, nil
}

// render writes one page template. Template failures after the status line
// can only be logged.
func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.templates.t.ExecuteTemplate(w, name, data); err != nil {
		s.log.Error("template render failed", "template", name, "error", err)
	}
}
