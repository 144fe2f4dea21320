package markup

// Parse turns the flat span sequence into the slot sequence consumed by the
// renderer. It runs four passes: delimiter pairing, floating token
// consolidation, paragraph blocking and blank stripping.
func Parse(spans []Span, mode CodeMode) []Node {
	nodes := pair(spans, mode)
	nodes = consolidate(nodes, mode)
	nodes = blocks(nodes)
	return stripBlanks(nodes)
}

// pair collapses delimiter/center/delimiter windows into groups. The stack
// holds the already-processed prefix, so after every push only the top three
// slots can form a new group; a fresh group is retried as the center of an
// enclosing pair once its right neighbour arrives.
func pair(spans []Span, mode CodeMode) []Node {
	stack := make([]Node, 0, len(spans))
	for _, s := range spans {
		stack = append(stack, s)
		n := len(stack)
		if n < 3 {
			continue
		}
		left, lok := kindOf(stack[n-3])
		right, rok := kindOf(stack[n-1])
		if !lok || !rok || left != right || !mode.pairable(left) || !contentLike(stack[n-2]) {
			continue
		}
		g := newGroup(stack[n-3].(Span), stack[n-2], stack[n-1].(Span))
		stack = append(stack[:n-3], g)
	}
	return stack
}

// consolidate turns every delimiter that survived pairing into literal text,
// merging it into a directly preceding Content span when there is one.
func consolidate(nodes []Node, mode CodeMode) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		s, ok := n.(Span)
		if !ok || !mode.floating(s.Kind) {
			out = append(out, n)
			continue
		}
		if len(out) > 0 {
			if prev, ok := out[len(out)-1].(Span); ok && prev.Kind == Content {
				prev.End = s.End
				out[len(out)-1] = prev
				continue
			}
		}
		s.Kind = Content
		out = append(out, s)
	}
	return out
}

// blocks wraps every run of two or more inline slots in a Block. Headings,
// blank runs and standalone fences end a run without joining it.
func blocks(nodes []Node) []Node {
	out := make([]Node, 0, len(nodes))
	var run []Node

	flush := func() {
		switch len(run) {
		case 0:
		case 1:
			out = append(out, run[0])
		default:
			out = append(out, &Block{Items: run})
		}
		run = nil
	}

	for _, n := range nodes {
		if contentLike(n) {
			run = append(run, n)
			continue
		}
		flush()
		out = append(out, n)
	}
	flush()
	return out
}

func stripBlanks(nodes []Node) []Node {
	out := nodes[:0]
	for _, n := range nodes {
		if k, ok := kindOf(n); ok && k == Blank {
			continue
		}
		out = append(out, n)
	}
	return out
}
