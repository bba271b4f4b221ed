package views

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/http"
)

type Page string

const (
	PageSignIn       Page = "signin"
	PageAccounts     Page = "accounts"
	PageTransactions Page = "transactions"
	PageMessage      Page = "message"
	PageError        Page = "error"
)

//go:embed templates/*.html
var files embed.FS

var pages = mustParse(PageSignIn, PageAccounts, PageTransactions, PageMessage, PageError)

func mustParse(names ...Page) map[Page]*template.Template {
	out := make(map[Page]*template.Template, len(names))
	for _, name := range names {
		out[name] = template.Must(template.ParseFS(files, "templates/layout.html", "templates/"+string(name)+".html"))
	}
	return out
}

// Render executes page into a buffer first so a template failure never
// leaves a half-written response behind.
func Render(w http.ResponseWriter, status int, page Page, data any) error {
	tmpl, ok := pages[page]
	if !ok {
		return fmt.Errorf("unknown page %q", page)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", page, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, err := buf.WriteTo(w)
	return err
}
