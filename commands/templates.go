package commands

import (
	"bytes"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"unbind/catalog"
	"unbind/config"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context string
	Title   string
	Omnibus string
	Number  int
	Type    string
	Author  string
}

func expandTemplate(vb *catalog.VirtualBook, om *catalog.Omnibus, name config.TemplateFieldName, field string) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context: string(name),
		Title:   vb.Title,
		Omnibus: om.Title,
		Number:  vb.Number,
		Type:    vb.WorkType.String(),
		Author:  vb.Metadata["author"],
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
