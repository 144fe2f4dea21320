// Package markup converts the jotdown text dialect into HTML fragments.
//
// The pipeline has three stages. The Lexer splits the text into contiguous
// spans, Parse groups matching delimiters and gathers paragraphs, and the
// Renderer emits one HTML fragment per paragraph, heading or code fence.
package markup

import "github.com/gerunddev/jotdown/internal/logger"

// Converter runs the whole pipeline. It holds no per-document state and may
// be shared between goroutines.
type Converter struct {
	lexer    *Lexer
	renderer *Renderer
	log      *logger.Logger
}

type options struct {
	mode        CodeMode
	highlighter Highlighter
	log         *logger.Logger
}

// Option configures a Converter
type Option func(*options)

// WithCodeMode selects the backtick model
func WithCodeMode(mode CodeMode) Option {
	return func(o *options) {
		o.mode = mode
	}
}

// WithHighlighter enables syntax highlighting of fenced code. It only takes
// effect with CodeFenced, since paired backticks never form a fence.
func WithHighlighter(h Highlighter) Option {
	return func(o *options) {
		o.highlighter = h
	}
}

// WithLogger sets the logger used for degraded rendering paths
func WithLogger(l *logger.Logger) Option {
	return func(o *options) {
		o.log = l
	}
}

// New creates a Converter
func New(opts ...Option) *Converter {
	o := options{mode: CodePaired}
	for _, opt := range opts {
		opt(&o)
	}
	if o.log == nil {
		o.log = logger.Discard()
	}
	return &Converter{
		lexer:    NewLexer(o.mode),
		renderer: NewRenderer(o.highlighter, o.log),
		log:      o.log,
	}
}

// Mode returns the backtick model in use
func (c *Converter) Mode() CodeMode {
	return c.lexer.Mode()
}

// Convert renders text to HTML fragments. Joining the fragments in order
// yields the document body.
func (c *Converter) Convert(text string) ([]string, error) {
	spans := c.lexer.Tokenize(text)
	nodes := Parse(spans, c.lexer.Mode())
	fragments, err := c.renderer.Render(text, nodes)
	if err != nil {
		return nil, err
	}
	c.log.Debug("converted",
		"bytes", len(text),
		"spans", len(spans),
		"slots", len(nodes),
		"fragments", len(fragments))
	return fragments, nil
}
