package markup

import (
	"errors"
	"fmt"
)

// Contract faults. These indicate a parser defect or a heading with nothing
// usable after it; malformed user markup never produces them.
var (
	ErrInvariant        = errors.New("structural invariant violated")
	ErrMalformedHeading = errors.New("malformed heading")
	ErrUnexpectedNode   = errors.New("unexpected node kind")
)

// Error records where in the source a contract fault was detected
type Error struct {
	Offset int
	Detail string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("markup: %v at offset %d: %s", e.Err, e.Offset, e.Detail)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func fault(err error, offset int, format string, args ...any) error {
	return &Error{Offset: offset, Detail: fmt.Sprintf(format, args...), Err: err}
}

// offsetOf returns the first source offset covered by n
func offsetOf(n Node) int {
	switch n := n.(type) {
	case Span:
		return n.Start
	case *Group:
		return n.Open.Start
	case *Block:
		if len(n.Items) > 0 {
			return offsetOf(n.Items[0])
		}
	}
	return -1
}
