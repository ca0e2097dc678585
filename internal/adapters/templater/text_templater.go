package templater

import (
	"fmt"
	"os"
	"strings"
	"text/template"

	"kgen/internal/ports"
)

var _ ports.Templater = (*TextTemplater)(nil)

// TextTemplater renders text/template templates. A template that references a
// missing key is rendered again with zero values and a warning is printed.
type TextTemplater struct{}

func ProvideTextTemplater() ports.Templater {
	return &TextTemplater{}
}

var funcs = template.FuncMap{
	"lower": strings.ToLower,
	"upper": strings.ToUpper,
}

func (t TextTemplater) Render(templateText string, templateName string, values map[string]interface{}) (string, error) {
	tmpl, err := template.New(templateName).Funcs(funcs).Option("missingkey=error").Parse(templateText)
	if err != nil {
		return "", err
	}
	var result strings.Builder
	err = tmpl.Execute(&result, values)
	if err == nil {
		return result.String(), nil
	}

	originalErr := err
	tmpl, err = template.New(templateName).Funcs(funcs).Option("missingkey=zero").Parse(templateText)
	if err != nil {
		return "", err
	}
	var resultWithMissingKeys strings.Builder
	if err := tmpl.Execute(&resultWithMissingKeys, values); err != nil {
		return "", err
	}
	fmt.Fprintf(os.Stderr, "WARN: %v\n", originalErr)
	// Missing interface values print as "<no value>" even with missingkey=zero.
	return strings.ReplaceAll(resultWithMissingKeys.String(), "<no value>", ""), nil
}
