// Package convert turns whole jotdown documents into HTML, handling front
// matter, highlighting setup, page wrapping and file I/O around the markup
// pipeline.
package convert

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/gerunddev/jotdown/internal/config"
	"github.com/gerunddev/jotdown/internal/highlight"
	"github.com/gerunddev/jotdown/internal/logger"
	"github.com/gerunddev/jotdown/internal/markup"
)

// NoHighlight disables highlighting when used as the style name
const NoHighlight = "none"

// Options configures a Converter
type Options struct {
	Mode             markup.CodeMode
	HighlightStyle   string
	HighlightClasses bool
	Standalone       bool
	Logger           *logger.Logger
}

// OptionsFromConfig derives converter options from the loaded configuration
func OptionsFromConfig(cfg *config.Config, log *logger.Logger) Options {
	return Options{
		Mode:             cfg.Mode(),
		HighlightStyle:   cfg.HighlightStyle,
		HighlightClasses: cfg.HighlightClasses,
		Standalone:       cfg.Standalone,
		Logger:           log,
	}
}

// Document is the result of converting one source text
type Document struct {
	Meta      Meta
	Fragments []string
}

// Body joins the fragments into the document body
func (d *Document) Body() string {
	return strings.Join(d.Fragments, "")
}

// Converter converts documents. It is safe for concurrent use.
type Converter struct {
	opts        Options
	markup      *markup.Converter
	highlighter *highlight.Chroma
	log         *logger.Logger
}

// NewConverter creates a converter. Highlighting is only set up for fenced
// code, the one mode where a fence can carry a language line.
func NewConverter(opts Options) (*Converter, error) {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}

	c := &Converter{opts: opts, log: log}
	markupOpts := []markup.Option{
		markup.WithCodeMode(opts.Mode),
		markup.WithLogger(log),
	}

	if opts.Mode == markup.CodeFenced && opts.HighlightStyle != NoHighlight {
		h, err := highlight.New(highlight.Options{
			Style:   opts.HighlightStyle,
			Classes: opts.HighlightClasses,
		})
		if err != nil {
			return nil, err
		}
		c.highlighter = h
		markupOpts = append(markupOpts, markup.WithHighlighter(h))
	}

	c.markup = markup.New(markupOpts...)
	return c, nil
}

// Convert parses front matter and renders the remaining text
func (c *Converter) Convert(text string) (*Document, error) {
	meta, body, err := ParseFrontMatter(text)
	if err != nil {
		return nil, err
	}

	fragments, err := c.markup.Convert(body)
	if err != nil {
		return nil, err
	}

	return &Document{Meta: meta, Fragments: fragments}, nil
}

// Render returns the output for doc: the bare body, or a full page when
// standalone output is configured or requested by the front matter.
func (c *Converter) Render(doc *Document) (string, error) {
	standalone := c.opts.Standalone
	if doc.Meta.Standalone != nil {
		standalone = *doc.Meta.Standalone
	}
	if !standalone {
		return doc.Body(), nil
	}
	return c.page(doc)
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html{{if .Lang}} lang="{{.Lang}}"{{end}}>
<head>
<meta charset="utf-8">
{{if .Title}}<title>{{.Title}}</title>
{{end}}{{if .CSS}}<style>
{{.CSS}}</style>
{{end}}</head>
<body>
{{.Body}}
</body>
</html>
`))

func (c *Converter) page(doc *Document) (string, error) {
	var css bytes.Buffer
	if c.highlighter != nil && c.opts.HighlightClasses {
		if err := c.highlighter.WriteCSS(&css); err != nil {
			return "", fmt.Errorf("failed to write highlight css: %w", err)
		}
	}

	var out bytes.Buffer
	err := pageTemplate.Execute(&out, struct {
		Title string
		Lang  string
		CSS   template.CSS
		Body  template.HTML
	}{
		Title: doc.Meta.Title,
		Lang:  doc.Meta.Lang,
		CSS:   template.CSS(css.String()),
		Body:  template.HTML(doc.Body()),
	})
	if err != nil {
		return "", fmt.Errorf("failed to render page: %w", err)
	}
	return out.String(), nil
}

// ConvertFile reads inPath, converts it and writes the result to outPath.
// "-" stands for stdin or stdout.
func (c *Converter) ConvertFile(inPath, outPath string) (*Document, error) {
	src, err := readSource(inPath)
	if err != nil {
		return nil, err
	}

	doc, err := c.Convert(string(src))
	if err != nil {
		return nil, fmt.Errorf("failed to convert %s: %w", inPath, err)
	}

	out, err := c.Render(doc)
	if err != nil {
		return nil, err
	}

	if err := writeOutput(outPath, out); err != nil {
		return nil, err
	}
	return doc, nil
}

// OutputPath maps a source file to its .html sibling
func OutputPath(inPath string) string {
	return strings.TrimSuffix(inPath, filepath.Ext(inPath)) + ".html"
}

func readSource(path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}
	return data, nil
}

func writeOutput(path, content string) error {
	if path == "-" {
		_, err := io.WriteString(os.Stdout, content)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}
