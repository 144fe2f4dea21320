// Package diff previews how a fresh conversion would change an existing
// HTML output.
package diff

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/gerunddev/jotdown/internal/convert"
	"github.com/hexops/gotextdiff"
	"github.com/hexops/gotextdiff/myers"
	"github.com/hexops/gotextdiff/span"
)

// Format represents the output format for diffs
type Format int

const (
	// FormatTerminal renders the diff through glamour (default)
	FormatTerminal Format = iota
	// FormatPlain emits the raw unified diff
	FormatPlain
)

// Unified returns a unified diff from the current contents of dest to what
// converting src would write. An empty string means no change.
func Unified(c *convert.Converter, src, dest string) (string, error) {
	srcContent, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("failed to read source file: %w", err)
	}

	// A missing output diffs against an empty file
	current, err := os.ReadFile(dest)
	if err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("failed to read output file: %w", err)
	}

	doc, err := c.Convert(string(srcContent))
	if err != nil {
		return "", fmt.Errorf("failed to convert %s: %w", src, err)
	}
	fresh, err := c.Render(doc)
	if err != nil {
		return "", err
	}

	// Fragments share a line; break between tags so hunks stay readable
	before := splitTags(string(current))
	after := splitTags(fresh)

	destName := filepath.Base(dest)
	edits := myers.ComputeEdits(span.URIFromPath(destName), before, after)
	if len(edits) == 0 {
		return "", nil
	}
	return fmt.Sprint(gotextdiff.ToUnified(destName, destName+" (new)", before, edits)), nil
}

// Generate renders the diff between dest and a fresh conversion of src
func Generate(c *convert.Converter, src, dest string, format Format) (string, error) {
	unified, err := Unified(c, src, dest)
	if err != nil || unified == "" {
		return unified, err
	}

	switch format {
	case FormatPlain:
		return unified, nil
	case FormatTerminal:
		return render(unified), nil
	default:
		return "", fmt.Errorf("unsupported diff format: %d", format)
	}
}

func render(unified string) string {
	// Wrap in diff code fence for + in green and - in red
	diffMarkdown := fmt.Sprintf("```diff\n%s```\n", unified)

	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(120),
	)
	if err != nil {
		// Fallback to plain diff if glamour fails
		return diffMarkdown
	}

	rendered, err := renderer.Render(diffMarkdown)
	if err != nil {
		return diffMarkdown
	}
	return rendered
}

// splitTags puts a line break after every closing block tag
func splitTags(html string) string {
	if html == "" {
		return ""
	}
	r := strings.NewReplacer(
		"</p>", "</p>\n",
		"</h1>", "</h1>\n",
		"</h2>", "</h2>\n",
		"</h3>", "</h3>\n",
		"</h4>", "</h4>\n",
		"</h5>", "</h5>\n",
		"</h6>", "</h6>\n",
	)
	out := r.Replace(strings.TrimRight(html, "\n"))
	if !strings.HasSuffix(out, "\n") {
		out += "\n"
	}
	return out
}
