// Package highlight adapts chroma to the markup highlighting hook.
package highlight

import (
	"fmt"
	"io"
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
)

// DefaultStyle is used when no style is configured
const DefaultStyle = "monokai"

// Options controls how highlighted code is emitted
type Options struct {
	Style       string
	Classes     bool // emit CSS classes instead of inline styles
	LineNumbers bool
}

// Chroma highlights fenced code with chroma lexers
type Chroma struct {
	style     *chroma.Style
	formatter *html.Formatter
}

// New creates a highlighter. An unknown style name is an error.
func New(opts Options) (*Chroma, error) {
	name := opts.Style
	if name == "" {
		name = DefaultStyle
	}
	style, ok := styles.Registry[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown highlight style %q", name)
	}

	return &Chroma{
		style: style,
		formatter: html.New(
			html.WithClasses(opts.Classes),
			html.WithLineNumbers(opts.LineNumbers),
			html.TabWidth(4),
		),
	}, nil
}

// Known reports whether lang is the name or an alias of a chroma lexer.
// File names such as "main.go" do not count.
func (c *Chroma) Known(lang string) bool {
	return lookup(lang) != nil
}

// lookup finds a lexer by name or alias only. lexers.Get also matches
// filename globs, which would turn ordinary words into languages.
func lookup(lang string) chroma.Lexer {
	if lang == "" {
		return nil
	}
	lexer := lexers.Get(lang)
	if lexer == nil {
		return nil
	}
	cfg := lexer.Config()
	if strings.EqualFold(cfg.Name, lang) {
		return lexer
	}
	for _, alias := range cfg.Aliases {
		if strings.EqualFold(alias, lang) {
			return lexer
		}
	}
	return nil
}

// Highlight renders body as HTML for the given language
func (c *Chroma) Highlight(lang, body string) (string, error) {
	lexer := lookup(lang)
	if lexer == nil {
		return "", fmt.Errorf("no lexer for %q", lang)
	}
	lexer = chroma.Coalesce(lexer)

	iterator, err := lexer.Tokenise(nil, body)
	if err != nil {
		return "", fmt.Errorf("failed to tokenise %s: %w", lang, err)
	}

	var sb strings.Builder
	if err := c.formatter.Format(&sb, c.style, iterator); err != nil {
		return "", fmt.Errorf("failed to format %s: %w", lang, err)
	}
	return sb.String(), nil
}

// WriteCSS writes the stylesheet needed when Classes is set
func (c *Chroma) WriteCSS(w io.Writer) error {
	return c.formatter.WriteCSS(w, c.style)
}

// Styles returns the names of all available styles
func Styles() []string {
	return styles.Names()
}
