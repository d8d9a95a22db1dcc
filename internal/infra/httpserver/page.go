package httpserver

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/bryanwahyu/aarogyam/internal/domain/locale"
)

//go:embed web/index.html
var webFS embed.FS

var indexTmpl = template.Must(template.ParseFS(webFS, "web/index.html"))

type indexData struct {
	Languages     []locale.Language
	LogoAvailable bool
}

// GET /
func (r *Router) handleIndex(w http.ResponseWriter, req *http.Request) error {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	return indexTmpl.Execute(w, indexData{
		Languages:     locale.Languages(),
		LogoAvailable: r.logoAvailable(),
	})
}
