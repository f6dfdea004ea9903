package web

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"

	"github.com/a-h/templ"
)

// ErrRender reports a template lookup or execution failure.
var ErrRender = errors.New("render error")

// Renderer holds the page templates, parsed once with FuncMap registered.
// It is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded page templates. A parse failure is fatal
// for the caller: the server must not start with a broken template.
func NewRenderer() (*Renderer, error) {
	return NewRendererFS(TemplateFS, "templates/*.html")
}

// NewRendererFS parses the templates matching patterns in fsys.
func NewRendererFS(fsys fs.FS, patterns ...string) (*Renderer, error) {
	tmpl, err := template.New("pages").Funcs(FuncMap()).ParseFS(fsys, patterns...)
	if err != nil {
		return nil, fmt.Errorf("parsing page templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// Component returns the named template bound to data as a templ.Component.
// Errors from Render wrap ErrRender.
func (r *Renderer) Component(name string, data map[string]any) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		t := r.tmpl.Lookup(name)
		if t == nil {
			return fmt.Errorf("%w: template %q not found", ErrRender, name)
		}
		if err := t.Execute(w, data); err != nil {
			return fmt.Errorf("%w: %w", ErrRender, err)
		}
		return nil
	})
}
