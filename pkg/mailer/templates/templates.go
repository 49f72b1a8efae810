package templates

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	htmpl "html/template"
	"strings"
	"sync"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

const DueReminder = "due_reminder"

// EmailData is the shared shape behind every template's data map.
type EmailData struct {
	Name           string `json:"Name"`
	Email          string `json:"Email"`
	RecipientEmail string `json:"RecipientEmail"`
	Type           string `json:"Type"`

	AppName string `json:"AppName"`
	AppURL  string `json:"AppURL"`

	Tasks []DueItem `json:"Tasks"`
}

// ToMap flattens EmailData into the map carried by EmailJob.Data, which
// survives the queue as plain JSON.
func ToMap(d EmailData) map[string]any {
	b, _ := json.Marshal(d)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}

// defaultFn backs {{ .Value | default "Fallback" }}. Blank strings and nil count as unset.
func defaultFn(fallback, value any) any {
	switch x := value.(type) {
	case nil:
		return fallback
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
	}
	return value
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

var funcs = map[string]any{
	"now":     func() time.Time { return time.Now().UTC() },
	"upper":   strings.ToUpper,
	"default": defaultFn,
	"plural":  plural,
}

// Subjects and plain-text bodies share one text/template set; HTML bodies
// get their own html/template set so task titles are escaped.
var (
	loadOnce sync.Once
	textSet  *texttpl.Template
	htmlSet  *htmpl.Template
	loadErr  error
)

func load() error {
	loadOnce.Do(func() {
		textSet, loadErr = texttpl.New("text").Funcs(funcs).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl")
		if loadErr != nil {
			loadErr = fmt.Errorf("parse text templates: %w", loadErr)
			return
		}
		htmlSet, loadErr = htmpl.New("html").Funcs(funcs).ParseFS(FS, "*.html.tmpl")
		if loadErr != nil {
			loadErr = fmt.Errorf("parse html templates: %w", loadErr)
		}
	})
	return loadErr
}

func execText(name string, data any) (string, error) {
	t := textSet.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

func execHTML(name string, data any) (string, error) {
	t := htmlSet.Lookup(name)
	if t == nil {
		return "", fmt.Errorf("template %q not found", name)
	}
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("exec %q: %w", name, err)
	}
	return buf.String(), nil
}

// Render produces subject, text and html for name from
// <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
func Render(name string, data any) (subject, text, html string, err error) {
	if err = load(); err != nil {
		return "", "", "", err
	}
	if subject, err = execText(name+".subject.tmpl", data); err != nil {
		return "", "", "", err
	}
	if text, err = execText(name+".text.tmpl", data); err != nil {
		return "", "", "", err
	}
	if html, err = execHTML(name+".html.tmpl", data); err != nil {
		return "", "", "", err
	}
	return strings.TrimSpace(subject), text, html, nil
}
