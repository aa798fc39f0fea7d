// Package format tracks the text formatting state shared by the binary and
// preview backends.
//
// State is an immutable snapshot; Enter returns the state produced by
// opening a formatting tag, and restoring the prior state on tag exit is
// done by popping an explicit Stack.  Both backends drive the same
// transitions, so the printed bytes and the preview always agree on the
// formatting in effect.
package format

import "github.com/limousyf/receipt-printer/ast"

// Alignment is the horizontal alignment of a printed line.
type Alignment uint8

const (
	AlignLeft Alignment = iota
	AlignCenter
	AlignRight
)

func (a Alignment) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	}
	return "left"
}

// State is the formatting in effect at a point in the walk.
type State struct {
	Align     Alignment
	Bold      bool
	Underline bool
	Width     int // character width multiplier, 1 or 2
	Height    int // character height multiplier, 1 or 2
}

// Default returns the state in effect at the top level of a render.
func Default() State {
	return State{Align: AlignLeft, Width: 1, Height: 1}
}

// Enter returns the state produced by opening the given tag.  Leaf command
// tags leave the state unchanged.  Exiting a tag restores the state saved on
// the Stack at entry, so e.g. [center] nested inside [right] reverts to
// right alignment, not left.
func (s State) Enter(kind ast.TagKind) State {
	switch kind {
	case ast.TagCenter:
		s.Align = AlignCenter
	case ast.TagRight:
		s.Align = AlignRight
	case ast.TagBold:
		s.Bold = true
	case ast.TagUnderline:
		s.Underline = true
	case ast.TagDoubleHeight:
		s.Height = 2
	case ast.TagDoubleWidth:
		s.Width = 2
	}
	return s
}

// Stack is the explicit stack of saved states, one frame per open
// formatting tag.  It is empty before and after a complete render.
type Stack []State

// Push saves the state in effect before a tag is entered.
func (st *Stack) Push(s State) {
	*st = append(*st, s)
}

// Pop restores the most recently saved state.
func (st *Stack) Pop() State {
	var s = (*st)[len(*st)-1]
	*st = (*st)[:len(*st)-1]
	return s
}

// Depth reports the current tag nesting depth.
func (st Stack) Depth() int {
	return len(st)
}
