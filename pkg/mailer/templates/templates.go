package templates

import (
	"bytes"
	"embed"
	htmpl "html/template"
	texttpl "text/template"

	"replier/pkg/mailer"
)

//go:embed *.tmpl
var FS embed.FS

// Subjects keyed by template name.
var subjects = map[string]string{
	mailer.TemplateVerifyEmail:   "Confirm your account",
	mailer.TemplateResetPassword: "Reset your password",
	mailer.TemplateEmailChanged:  "Your account email was changed",
}

// Render produces the subject, plain-text and HTML bodies for a
// template name. Unknown names render with an empty subject so the
// worker can reject them.
func Render(name string, data map[string]any) (subject, text, html string, err error) {
	html, err = renderFile(name+".html.tmpl", true, data)
	if err != nil {
		return "", "", "", err
	}
	text, err = renderFile(name+".txt.tmpl", false, data)
	if err != nil {
		return "", "", "", err
	}
	return subjects[name], text, html, nil
}

// Known reports whether name maps to an embedded template.
func Known(name string) bool {
	_, ok := subjects[name]
	return ok
}

func renderFile(filename string, isHTML bool, data any) (string, error) {
	var buf bytes.Buffer
	if isHTML {
		t, err := htmpl.ParseFS(FS, filename)
		if err != nil {
			return "", err
		}
		if err := t.Execute(&buf, data); err != nil {
			return "", err
		}
	} else {
		t, err := texttpl.ParseFS(FS, filename)
		if err != nil {
			return "", err
		}
		if err := t.Execute(&buf, data); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}
