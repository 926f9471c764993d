package notify

import (
	"bytes"
	_ "embed"
	"fmt"
	htmltemplate "html/template"
	"sort"
	texttemplate "text/template"

	"gopkg.in/yaml.v2"
)

//go:embed templates.yaml
var catalogYAML []byte

type catalogFile struct {
	Layout    string                 `yaml:"layout"`
	Templates map[string]templateDef `yaml:"templates"`
}

type templateDef struct {
	Subject string `yaml:"subject"`
	Text    string `yaml:"text"`
	Body    string `yaml:"body"`
}

type entry struct {
	subject *texttemplate.Template
	text    *texttemplate.Template
	html    *htmltemplate.Template
}

// Rendered is a message ready to hand to a Sender.
type Rendered struct {
	Subject string
	Text    string
	HTML    string
}

// Catalog holds the parsed email templates keyed by name.
type Catalog struct {
	entries map[string]*entry
}

// LoadCatalog parses the embedded template catalog.
func LoadCatalog() (*Catalog, error) {
	return ParseCatalog(catalogYAML)
}

func ParseCatalog(raw []byte) (*Catalog, error) {
	var file catalogFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("failed to parse template catalog: %w", err)
	}

	layout, err := htmltemplate.New("layout").Parse(file.Layout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse layout: %w", err)
	}

	c := &Catalog{entries: make(map[string]*entry, len(file.Templates))}
	for name, def := range file.Templates {
		e := &entry{}
		if e.subject, err = texttemplate.New(name + ".subject").Parse(def.Subject); err != nil {
			return nil, fmt.Errorf("template %s subject: %w", name, err)
		}
		if e.text, err = texttemplate.New(name + ".text").Parse(def.Text); err != nil {
			return nil, fmt.Errorf("template %s text: %w", name, err)
		}
		html, err := layout.Clone()
		if err != nil {
			return nil, err
		}
		if _, err := html.New("content").Parse(def.Body); err != nil {
			return nil, fmt.Errorf("template %s body: %w", name, err)
		}
		e.html = html
		c.entries[name] = e
	}
	return c, nil
}

func (c *Catalog) Has(name string) bool {
	_, ok := c.entries[name]
	return ok
}

func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for name := range c.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Render executes the named template with data. The rendered subject is also
// exposed to the layout as "subject".
func (c *Catalog) Render(name string, data map[string]any) (*Rendered, error) {
	e, ok := c.entries[name]
	if !ok {
		return nil, fmt.Errorf("unknown email template %q", name)
	}

	vars := make(map[string]any, len(data)+1)
	for k, v := range data {
		vars[k] = v
	}

	var subject, text, html bytes.Buffer
	if err := e.subject.Execute(&subject, vars); err != nil {
		return nil, fmt.Errorf("render %s subject: %w", name, err)
	}
	vars["subject"] = subject.String()
	if err := e.text.Execute(&text, vars); err != nil {
		return nil, fmt.Errorf("render %s text: %w", name, err)
	}
	if err := e.html.ExecuteTemplate(&html, "layout", vars); err != nil {
		return nil, fmt.Errorf("render %s body: %w", name, err)
	}
	return &Rendered{Subject: subject.String(), Text: text.String(), HTML: html.String()}, nil
}
