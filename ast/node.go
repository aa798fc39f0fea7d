// Package ast contains definitions for the in-memory representation of a
// receipt template.
package ast

import (
	"bytes"
	"fmt"
	"sort"
	"strconv"
)

// Node represents any singular piece of a receipt template.  For example, a
// sequence of raw text or a formatting tag.
type Node interface {
	String() string // String returns the template source representation of this node.
	Position() Pos  // byte position of start of node in full original input string
}

// Pos represents a byte position in the original input text from which this
// template was parsed.  It is useful to construct helpful error messages.
type Pos int

// Position returns this position.  It is implemented as a method so that Nodes
// may embed a Pos and fulfill this part of the Node interface for free.
func (p Pos) Position() Pos {
	return p
}

// ListNode holds a sequence of nodes.
type ListNode struct {
	Pos
	Nodes []Node // The element nodes in lexical order.
}

func (l *ListNode) String() string {
	b := new(bytes.Buffer)
	for _, n := range l.Nodes {
		fmt.Fprint(b, n)
	}
	return b.String()
}

// TextNode holds literal text.
type TextNode struct {
	Pos
	Text string // The text; may span newlines.
}

func (t *TextNode) String() string {
	return t.Text
}

// VariableNode is a {{name}} substitution.  Path is a dotted path into the
// render data, or "." for the current each-block element.
type VariableNode struct {
	Pos
	Path string
}

func (v *VariableNode) String() string {
	return "{{" + v.Path + "}}"
}

// EachNode is a {{#each name}}...{{/each}} repetition block.
type EachNode struct {
	Pos
	Collection string // name of the list to iterate
	Body       *ListNode
}

func (e *EachNode) String() string {
	return "{{#each " + e.Collection + "}}" + e.Body.String() + "{{/each}}"
}

// TagNode is a bracket tag, e.g. [bold]...[/bold] or [feed n="2"].
// Body is nil for tags that take no content.
type TagNode struct {
	Pos
	Kind  TagKind
	Attrs map[string]string
	Body  *ListNode
}

func (t *TagNode) String() string {
	var b bytes.Buffer
	b.WriteByte('[')
	b.WriteString(t.Kind.String())
	var names = make([]string, 0, len(t.Attrs))
	for name := range t.Attrs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		b.WriteByte(' ')
		b.WriteString(name)
		b.WriteByte('=')
		b.WriteString(strconv.Quote(t.Attrs[name]))
	}
	b.WriteByte(']')
	if t.Kind.HasBody() {
		if t.Body != nil {
			b.WriteString(t.Body.String())
		}
		b.WriteString("[/" + t.Kind.String() + "]")
	}
	return b.String()
}

// Attr returns the named attribute value, or the given default if the tag
// does not carry that attribute.
func (t *TagNode) Attr(name, def string) string {
	if v, ok := t.Attrs[name]; ok {
		return v
	}
	return def
}
