package assets

import (
	"bytes"
	_ "embed"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed templates/index.html.go.tmpl
var fallbackIndexTemplate string

//go:embed templates/entry.md.go.tmpl
var fallbackEntryTemplate string

const (
	indexTemplateName = "index.html.go.tmpl"
	entryTemplateName = "entry.md.go.tmpl"
)

// IndexPage is the data available to the index page template
type IndexPage struct {
	Title      string
	DataPath   string
	HealthPath string
}

// RenderIndexPage renders the index page once; the result is served as a static page.
// templatePath overrides the embedded template when it exists and parses.
func RenderIndexPage(templatePath string, data IndexPage) ([]byte, error) {
	tmpl, err := parseHTMLTemplateWithFallback(templatePath, fallbackIndexTemplate)
	if err != nil {
		return nil, fmt.Errorf("parseHTMLTemplateWithFallback() > %w", err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("tmpl.Execute() > %w", err)
	}
	return buf.Bytes(), nil
}

// readOverride returns the contents of templatePath, or false when it cannot be used
func readOverride(templatePath string) (string, bool) {
	if templatePath == "" {
		return "", false
	}
	contents, err := os.ReadFile(templatePath)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Default().Warn("failed to read a templatePath",
				slog.String("templatePath", templatePath),
				slog.Any("error", err),
			)
		}
		return "", false
	}
	return string(contents), true
}

func parseTextTemplateWithFallback(templatePath string, fallbackTemplate string) (*template.Template, error) {
	funcMap := template.FuncMap{
		"join": strings.Join,
	}

	if contents, ok := readOverride(templatePath); ok {
		tmpl, err := template.New(filepath.Base(templatePath)).
			Funcs(funcMap).
			Parse(contents)
		if err == nil {
			return tmpl, nil
		}
		slog.Default().Warn("failed to parse a templatePath",
			slog.String("templatePath", templatePath),
			slog.Any("error", err),
		)
	}

	tmpl, err := template.New(entryTemplateName).
		Funcs(funcMap).
		Parse(fallbackTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}

func parseHTMLTemplateWithFallback(templatePath string, fallbackTemplate string) (*htmltemplate.Template, error) {
	if contents, ok := readOverride(templatePath); ok {
		tmpl, err := htmltemplate.New(filepath.Base(templatePath)).Parse(contents)
		if err == nil {
			return tmpl, nil
		}
		slog.Default().Warn("failed to parse a templatePath",
			slog.String("templatePath", templatePath),
			slog.Any("error", err),
		)
	}

	tmpl, err := htmltemplate.New(indexTemplateName).Parse(fallbackTemplate)
	if err != nil {
		return nil, fmt.Errorf("failed to parse embedded template: %w", err)
	}
	return tmpl, nil
}
