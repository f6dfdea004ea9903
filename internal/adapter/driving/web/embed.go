package web

import "embed"

// TemplateFS holds the embedded page templates.
//
//go:embed templates/*.html
var TemplateFS embed.FS
