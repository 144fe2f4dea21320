package markup

import (
	"fmt"
	"strings"

	"github.com/gerunddev/jotdown/internal/logger"
)

// Highlighter turns a fenced code body into markup for a named language
type Highlighter interface {
	// Known reports whether lang names a language the highlighter supports
	Known(lang string) bool
	Highlight(lang, body string) (string, error)
}

const maxHeadingLevel = 6

var groupTags = map[Kind]string{
	Code:   "code",
	Italic: "i",
	Bold:   "b",
}

// Renderer emits one HTML fragment per top-level slot
type Renderer struct {
	highlighter Highlighter
	log         *logger.Logger
}

// NewRenderer creates a renderer. A nil highlighter disables highlighting and
// a nil logger discards output.
func NewRenderer(h Highlighter, log *logger.Logger) *Renderer {
	if log == nil {
		log = logger.Discard()
	}
	return &Renderer{highlighter: h, log: log}
}

// Render walks nodes once and returns the HTML fragments in document order.
// A heading at the very end of the document with nothing after it is dropped.
func (r *Renderer) Render(src string, nodes []Node) ([]string, error) {
	fragments := make([]string, 0, len(nodes))

	for i := 0; i < len(nodes); i++ {
		switch n := nodes[i].(type) {
		case *Block:
			html, err := r.inline(src, n)
			if err != nil {
				return nil, err
			}
			fragments = append(fragments, wrap("p", html))

		case *Group:
			html, err := r.group(src, n)
			if err != nil {
				return nil, err
			}
			fragments = append(fragments, wrap("p", html))

		case Span:
			switch n.Kind {
			case Heading:
				if i+1 == len(nodes) {
					r.log.Debug("dropping trailing empty heading", "offset", n.Start)
					return fragments, nil
				}
				next := nodes[i+1]
				if !contentLike(next) {
					if _, ok := next.(*Block); !ok {
						return nil, fault(ErrMalformedHeading, n.Start, "followed by %s", describe(next))
					}
				}
				html, err := r.inline(src, next)
				if err != nil {
					return nil, err
				}
				tag := fmt.Sprintf("h%d", headingLevel(n.Text(src)))
				fragments = append(fragments, wrap(tag, html))
				i++

			case Code:
				fragments = append(fragments, r.fence(src, n))

			case Content:
				fragments = append(fragments, wrap("p", n.Text(src)))

			default:
				return nil, fault(ErrUnexpectedNode, n.Start, "standalone %s span", n.Kind)
			}

		default:
			return nil, fault(ErrUnexpectedNode, offsetOf(n), "%T", n)
		}
	}

	return fragments, nil
}

// inline renders a Content span, a Group or a Block without a block wrapper
func (r *Renderer) inline(src string, n Node) (string, error) {
	switch n := n.(type) {
	case Span:
		if n.Kind != Content {
			return "", fault(ErrUnexpectedNode, n.Start, "%s span inside inline content", n.Kind)
		}
		return n.Text(src), nil
	case *Group:
		return r.group(src, n)
	case *Block:
		var sb strings.Builder
		for _, item := range n.Items {
			html, err := r.inline(src, item)
			if err != nil {
				return "", err
			}
			sb.WriteString(html)
		}
		return sb.String(), nil
	}
	return "", fault(ErrUnexpectedNode, offsetOf(n), "%T", n)
}

func (r *Renderer) group(src string, g *Group) (string, error) {
	if g.Open.Kind != g.Close.Kind {
		return "", fault(ErrInvariant, g.Open.Start, "group opened by %s closed by %s", g.Open.Kind, g.Close.Kind)
	}
	tag, ok := groupTags[g.Kind()]
	if !ok {
		return "", fault(ErrInvariant, g.Open.Start, "group bounded by %s", g.Kind())
	}
	if !contentLike(g.Inner) {
		return "", fault(ErrInvariant, offsetOf(g.Inner), "group center is %s", describe(g.Inner))
	}
	html, err := r.inline(src, g.Inner)
	if err != nil {
		return "", err
	}
	return wrap(tag, html), nil
}

// fence renders an atomic `...` span. A first line naming a known language
// is replaced by highlighted markup for the rest of the body.
func (r *Renderer) fence(src string, s Span) string {
	body := src[s.Start+1 : s.End-1]
	if r.highlighter == nil {
		return wrap("code", body)
	}

	// Only a first line followed by a break can name a language
	i := strings.IndexAny(body, "\r\n")
	if i < 0 {
		return wrap("code", body)
	}
	lang := body[:i]
	if lang == "" || !r.highlighter.Known(lang) {
		return wrap("code", body)
	}

	code := trimLineBreak(body[len(lang):])
	html, err := r.highlighter.Highlight(lang, code)
	if err != nil {
		r.log.Warn("highlighting failed, emitting plain code",
			"lang", lang,
			"offset", s.Start,
			"error", err)
		return wrap("code", body)
	}
	return html
}

func headingLevel(marker string) int {
	level := strings.Count(marker, "#")
	if level > maxHeadingLevel {
		level = maxHeadingLevel
	}
	return level
}

func trimLineBreak(s string) string {
	switch {
	case strings.HasPrefix(s, "\r\n"):
		return s[2:]
	case strings.HasPrefix(s, "\n"), strings.HasPrefix(s, "\r"):
		return s[1:]
	}
	return s
}

func wrap(tag, html string) string {
	return "<" + tag + ">" + html + "</" + tag + ">"
}

func describe(n Node) string {
	switch n := n.(type) {
	case Span:
		return n.Kind.String() + " span"
	case *Group:
		return n.Kind().String() + " group"
	case *Block:
		return "block"
	}
	return fmt.Sprintf("%T", n)
}
