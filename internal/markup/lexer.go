package markup

import "strings"

// finder returns the first match of a pattern starting at or after from,
// or start = -1 when there is none.
type finder func(text string, from int) (start, end int)

type pattern struct {
	kind Kind
	find finder
}

// Lexer splits source text into a contiguous sequence of spans
type Lexer struct {
	mode     CodeMode
	patterns []pattern
}

// NewLexer returns a lexer for the given code model. Patterns are kept in
// tie-break order: tags first so delimiter characters inside tag attributes
// are never tokenized, then blank runs, then the single character rules.
func NewLexer(mode CodeMode) *Lexer {
	code := findByte('`')
	if mode == CodeFenced {
		code = findFence
	}
	return &Lexer{
		mode: mode,
		patterns: []pattern{
			{Tag, findTag},
			{Blank, findBlank},
			{Code, code},
			{Italic, findByte('_')},
			{Bold, findByte('*')},
			{Heading, findHeading},
		},
	}
}

// Mode returns the code model the lexer was built for
func (l *Lexer) Mode() CodeMode {
	return l.mode
}

// Tokenize scans text once and returns spans covering [0, len(text)).
// At every step the pattern whose next match starts earliest wins; equal
// starts go to the pattern listed first.
func (l *Lexer) Tokenize(text string) []Span {
	var spans []Span

	type cached struct{ start, end int }
	next := make([]cached, len(l.patterns))
	for i, p := range l.patterns {
		s, e := p.find(text, 0)
		next[i] = cached{s, e}
	}

	cursor := 0
	for {
		best := -1
		for i, p := range l.patterns {
			c := next[i]
			if c.start < 0 {
				continue
			}
			// A match that began before the cursor overlapped the previous
			// token; look again from the cursor.
			if c.start < cursor {
				s, e := p.find(text, cursor)
				c = cached{s, e}
				next[i] = c
				if c.start < 0 {
					continue
				}
			}
			if best < 0 || c.start < next[best].start {
				best = i
			}
		}

		if best < 0 {
			if cursor != len(text) {
				spans = append(spans, Span{Start: cursor, End: len(text), Kind: Content})
			}
			return spans
		}

		m := next[best]
		if cursor != m.start {
			spans = append(spans, Span{Start: cursor, End: m.start, Kind: Content})
		}
		spans = append(spans, Span{Start: m.start, End: m.end, Kind: l.patterns[best].kind})
		cursor = m.end
	}
}

func findByte(b byte) finder {
	return func(text string, from int) (int, int) {
		i := strings.IndexByte(text[from:], b)
		if i < 0 {
			return -1, -1
		}
		return from + i, from + i + 1
	}
}

// findTag matches the shortest <...> run, which may span lines
func findTag(text string, from int) (int, int) {
	i := strings.IndexByte(text[from:], '<')
	if i < 0 {
		return -1, -1
	}
	start := from + i
	j := strings.IndexByte(text[start+1:], '>')
	if j < 0 {
		return -1, -1
	}
	return start, start + 1 + j + 1
}

// findFence matches a backtick, any non-backtick bytes, and a closing backtick
func findFence(text string, from int) (int, int) {
	i := strings.IndexByte(text[from:], '`')
	if i < 0 {
		return -1, -1
	}
	start := from + i
	j := strings.IndexByte(text[start+1:], '`')
	if j < 0 {
		return -1, -1
	}
	return start, start + 1 + j + 1
}

// findBlank matches a run of newline bytes holding two or more line breaks.
// \r\n, \r and \n each count as a single break.
func findBlank(text string, from int) (int, int) {
	i := from
	for i < len(text) {
		k := strings.IndexAny(text[i:], "\r\n")
		if k < 0 {
			return -1, -1
		}
		start := i + k
		j, breaks := start, 0
		for j < len(text) && (text[j] == '\r' || text[j] == '\n') {
			if text[j] == '\r' && j+1 < len(text) && text[j+1] == '\n' {
				j += 2
			} else {
				j++
			}
			breaks++
		}
		if breaks >= 2 {
			return start, j
		}
		i = j
	}
	return -1, -1
}

// findHeading matches a run of '#' plus one space at the start of a line
func findHeading(text string, from int) (int, int) {
	p := from
	for p < len(text) {
		if p == 0 || text[p-1] == '\n' || text[p-1] == '\r' {
			j := p
			for j < len(text) && text[j] == '#' {
				j++
			}
			if j > p && j < len(text) && text[j] == ' ' {
				return p, j + 1
			}
		}
		k := strings.IndexAny(text[p:], "\r\n")
		if k < 0 {
			return -1, -1
		}
		p += k + 1
	}
	return -1, -1
}
