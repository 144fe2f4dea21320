package markup

// Node is one slot of the parsed document: a Span, a *Group or a *Block
type Node interface {
	node()
}

// Span is a half-open byte range [Start, End) of the source text
type Span struct {
	Start int
	End   int
	Kind  Kind
}

func (Span) node() {}

// Text returns the source bytes covered by s
func (s Span) Text(src string) string {
	return src[s.Start:s.End]
}

// Len returns the number of bytes covered by s
func (s Span) Len() int {
	return s.End - s.Start
}

// Group is a matched pair of identical inline delimiters around a center
// that is either a Content span or another Group.
type Group struct {
	Open  Span
	Inner Node
	Close Span
}

func (*Group) node() {}

// Kind returns the delimiter kind shared by both ends of the group
func (g *Group) Kind() Kind {
	return g.Open.Kind
}

// newGroup is the only constructor for Group; callers have already checked
// that open and close share a pairable kind.
func newGroup(open Span, inner Node, close Span) *Group {
	return &Group{Open: open, Inner: inner, Close: close}
}

// Block is a run of inline slots rendered as one paragraph
type Block struct {
	Items []Node
}

func (*Block) node() {}

// contentLike reports whether n can sit at the center of a Group
func contentLike(n Node) bool {
	switch n := n.(type) {
	case Span:
		return n.Kind == Content
	case *Group:
		return true
	}
	return false
}

// kindOf returns the span kind of n, or ok=false for composite nodes
func kindOf(n Node) (Kind, bool) {
	if s, ok := n.(Span); ok {
		return s.Kind, true
	}
	return 0, false
}
