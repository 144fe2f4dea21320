package convert

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Meta holds the optional YAML front matter of a document
type Meta struct {
	Title      string `yaml:"title"`
	Lang       string `yaml:"lang"`
	Standalone *bool  `yaml:"standalone"`
}

const fence = "---"

// SplitFrontMatter separates a leading ---/--- block from the body.
// ok is false when the text does not open with a complete block.
func SplitFrontMatter(text string) (frontMatter, body string, ok bool) {
	first, rest, found := cutLine(text)
	if !found || first != fence {
		return "", text, false
	}

	var fm strings.Builder
	for rest != "" {
		var line string
		line, rest, _ = cutLine(rest)
		if line == fence {
			return fm.String(), rest, true
		}
		fm.WriteString(line)
		fm.WriteByte('\n')
	}
	return "", text, false
}

// ParseFrontMatter splits and decodes front matter. Text without a front
// matter block yields a zero Meta and the unchanged text.
func ParseFrontMatter(text string) (Meta, string, error) {
	var meta Meta
	fm, body, ok := SplitFrontMatter(text)
	if !ok {
		return meta, text, nil
	}
	if err := yaml.Unmarshal([]byte(fm), &meta); err != nil {
		return meta, text, fmt.Errorf("failed to parse front matter: %w", err)
	}
	return meta, body, nil
}

// cutLine splits off the first line, accepting \n, \r\n or \r endings
func cutLine(s string) (line, rest string, found bool) {
	i := strings.IndexAny(s, "\r\n")
	if i < 0 {
		return s, "", false
	}
	line, rest = s[:i], s[i+1:]
	if s[i] == '\r' && strings.HasPrefix(rest, "\n") {
		rest = rest[1:]
	}
	return line, rest, true
}
