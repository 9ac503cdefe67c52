package renderer

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
)

//go:embed templates/*
var templateFiles embed.FS

// HTMLRenderer implements Renderer with html/template over the embedded
// templates directory. Each template is parsed once at construction.
type HTMLRenderer struct {
	index         *template.Template
	cliTokenForm  *template.Template
	loggedIn      *template.Template
	revoke        *template.Template
	revoked       *template.Template
	privacyPolicy *template.Template
}

// NewHTML parses every embedded template and returns a ready HTMLRenderer.
func NewHTML() (*HTMLRenderer, error) {
	sub, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		return nil, fmt.Errorf("creating templates sub filesystem: %w", err)
	}

	names := map[string]**template.Template{
		"index.html":          nil,
		"cli_token_form.html": nil,
		"logged_in.html":      nil,
		"revoke.html":         nil,
		"revoked.html":        nil,
		"privacy_policy.html": nil,
	}
	parsed := make(map[string]*template.Template, len(names))
	for name := range names {
		tmpl, err := template.New(name).ParseFS(sub, name)
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		parsed[name] = tmpl
	}

	return &HTMLRenderer{
		index:         parsed["index.html"],
		cliTokenForm:  parsed["cli_token_form.html"],
		loggedIn:      parsed["logged_in.html"],
		revoke:        parsed["revoke.html"],
		revoked:       parsed["revoked.html"],
		privacyPolicy: parsed["privacy_policy.html"],
	}, nil
}

func (h *HTMLRenderer) Index(w io.Writer, data IndexData) error {
	return h.index.ExecuteTemplate(w, "index.html", data)
}

func (h *HTMLRenderer) CliTokenForm(w io.Writer, data CliTokenFormData) error {
	return h.cliTokenForm.ExecuteTemplate(w, "cli_token_form.html", data)
}

func (h *HTMLRenderer) LoggedIn(w io.Writer, data LoggedInData) error {
	return h.loggedIn.ExecuteTemplate(w, "logged_in.html", data)
}

func (h *HTMLRenderer) Revoke(w io.Writer, data RevokeFormData) error {
	return h.revoke.ExecuteTemplate(w, "revoke.html", data)
}

func (h *HTMLRenderer) Revoked(w io.Writer, data RevokedData) error {
	return h.revoked.ExecuteTemplate(w, "revoked.html", data)
}

func (h *HTMLRenderer) PrivacyPolicy(w io.Writer, appName string) error {
	return h.privacyPolicy.ExecuteTemplate(w, "privacy_policy.html", struct{ AppName string }{appName})
}
