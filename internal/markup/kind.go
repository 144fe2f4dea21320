package markup

// Kind classifies a Span produced by the lexer
type Kind int

// Delimiter kinds, in tie-break priority order. Content is the fallback for
// literal text between delimiters.
const (
	Tag Kind = iota
	Blank
	Code
	Italic
	Bold
	Heading

	Content Kind = -1
)

var kindNames = map[Kind]string{
	Tag:     "tag",
	Blank:   "blank",
	Code:    "code",
	Italic:  "italic",
	Bold:    "bold",
	Heading: "heading",
	Content: "content",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// CodeMode selects how backticks are tokenized
type CodeMode int

const (
	// CodePaired treats each backtick as a delimiter that the parser pairs
	// like italic and bold, so code can nest emphasis
	CodePaired CodeMode = iota
	// CodeFenced consumes a whole `...` run as one atomic span; its first
	// line may name a language for the highlighter
	CodeFenced
)

func (m CodeMode) String() string {
	switch m {
	case CodePaired:
		return "paired"
	case CodeFenced:
		return "fenced"
	}
	return "unknown"
}

// ParseCodeMode maps a config value to a CodeMode
func ParseCodeMode(s string) (CodeMode, bool) {
	switch s {
	case "", "paired":
		return CodePaired, true
	case "fenced":
		return CodeFenced, true
	}
	return CodePaired, false
}

// pairable reports whether k may bound a Group in the given mode
func (m CodeMode) pairable(k Kind) bool {
	switch k {
	case Italic, Bold:
		return true
	case Code:
		return m == CodePaired
	}
	return false
}

// floating reports whether an ungrouped span of kind k degrades to literal
// text after pairing
func (m CodeMode) floating(k Kind) bool {
	switch k {
	case Content, Tag, Italic, Bold:
		return true
	case Code:
		return m == CodePaired
	}
	return false
}
