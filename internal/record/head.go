package record

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"sync"

	"github.com/Masterminds/sprig/v3"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var (
	templatesOnce sync.Once
	templates     *template.Template
	templatesErr  error
)

type headTemplateData struct {
	Record  Record
	BaseURL string
	Head    HeadMetadata
}

// RenderHead writes the head tags the framework injects for r.
func RenderHead(w io.Writer, r Record) error {
	return execute(w, "head", r)
}

// RenderIndex writes a client-only shell page for r, anchored at its base URL.
func RenderIndex(w io.Writer, r Record) error {
	return execute(w, "index", r)
}

func execute(w io.Writer, name string, r Record) error {
	tmpl, err := loadTemplates()
	if err != nil {
		return err
	}

	data := headTemplateData{
		Record:  r,
		BaseURL: r.BaseURL,
	}
	if r.Head != nil {
		data.Head = *r.Head
	}

	if err := tmpl.ExecuteTemplate(w, name, data); err != nil {
		return fmt.Errorf("render %s: %w", name, err)
	}
	return nil
}

func loadTemplates() (*template.Template, error) {
	templatesOnce.Do(func() {
		templates, templatesErr = template.New("record").
			Funcs(sprig.HtmlFuncMap()).
			ParseFS(templateFS, "templates/*.tmpl")
		if templatesErr != nil {
			templatesErr = fmt.Errorf("parse templates: %w", templatesErr)
		}
	})
	return templates, templatesErr
}
